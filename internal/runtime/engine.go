// Package runtime implements the orchestration core: the dialog stack
// manager, the waterfall step runner and the interruption router. It is
// driven one turn at a time; all state lives in domain.State so execution
// can resume after arbitrary turn gaps.
package runtime

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/registry"
)

// DefaultInterruptThreshold is the minimum NLU confidence for an
// interruption intent to preempt the active dialog.
const DefaultInterruptThreshold = 0.5

// maxStepsPerTurn bounds synchronous step chains within one turn. A dialog
// graph that never suspends or ends is a contract violation, not a hang.
const maxStepsPerTurn = 100

// Engine drives the dialog stack for one conversation turn.
type Engine struct {
	registry   *registry.Registry
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	authorizer ports.Authorizer
	threshold  float64
	rootDialog string

	cancelText    string
	helpText      string
	signedOutText string
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithAuthorizer sets the credential collaborator used for Logout.
func WithAuthorizer(a ports.Authorizer) EngineOption {
	return func(e *Engine) {
		e.authorizer = a
	}
}

// WithInterruptThreshold overrides the confidence threshold.
func WithInterruptThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithRootDialog names the dialog restarted after cancel/logout.
// Empty means the conversation simply goes idle.
func WithRootDialog(name string) EngineOption {
	return func(e *Engine) {
		e.rootDialog = name
	}
}

// WithInterruptionTexts overrides the cancel/help/sign-out fallback texts.
func WithInterruptionTexts(cancel, help, signedOut string) EngineOption {
	return func(e *Engine) {
		if cancel != "" {
			e.cancelText = cancel
		}
		if help != "" {
			e.helpText = help
		}
		if signedOut != "" {
			e.signedOutText = signedOut
		}
	}
}

// NewEngine creates a runtime engine over the given dialog registry.
func NewEngine(reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:      reg,
		logger:        logging.NewNop(),
		threshold:     DefaultInterruptThreshold,
		cancelText:    "No problem. Let me know if there is anything else I can do.",
		helpText:      "I can help you search, book and cancel. Say \"never mind\" to start over.",
		signedOutText: "You have been signed out.",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RootDialog returns the configured root dialog name.
func (e *Engine) RootDialog() string {
	return e.rootDialog
}

// FlowFailure is the error produced when a step returns a Failed result.
// The caller routes it to the uniform abort path: log, apologize, clear
// state, cancel the stack.
type FlowFailure struct {
	Dialog string
	Kind   domain.FailureKind
	Err    error
}

func (f *FlowFailure) Error() string {
	return fmt.Sprintf("dialog %s failed (%s): %v", f.Dialog, f.Kind, f.Err)
}

func (f *FlowFailure) Unwrap() error {
	return f.Err
}
