package parley

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/dialogs"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/session"
	"github.com/aretw0/parley/pkg/skill"
)

// Engine is the high-level entry point for the Parley library. It wraps the
// internal runtime with session locking, persistence, NLU recognition and
// skill routing, and exposes one operation per inbound turn.
type Engine struct {
	registry   *registry.Registry
	runtime    *runtime.Engine
	sessions   *session.Manager
	store      ports.StateStore
	recognizer ports.Recognizer
	channel    ports.Channel
	authorizer ports.Authorizer
	locker     ports.DistributedLocker
	skill      *skill.Skill
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	threshold   float64
	rootDialog  string
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a persistence backend. Default is the in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithRecognizer sets the NLU collaborator consumed at the start of each
// message turn. Without one, turns carry no intent and only active dialogs
// make progress.
func WithRecognizer(r ports.Recognizer) Option {
	return func(e *Engine) {
		e.recognizer = r
	}
}

// WithChannel sets an outbound channel. Replies are then pushed through it
// in addition to being returned from ProcessTurn.
func WithChannel(ch ports.Channel) Option {
	return func(e *Engine) {
		e.channel = ch
	}
}

// WithAuthorizer sets the credential collaborator used by the logout
// interruption.
func WithAuthorizer(a ports.Authorizer) Option {
	return func(e *Engine) {
		e.authorizer = a
	}
}

// WithLocker enables distributed session locking, for running several
// engine replicas over one shared store.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithInterruptThreshold overrides the NLU confidence above which
// cancel/help/logout preempt the active dialog.
func WithInterruptThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithRootDialog names the dialog restarted after cancel and sign-out.
func WithRootDialog(name string) Option {
	return func(e *Engine) {
		e.rootDialog = name
	}
}

// New initializes a Parley engine for one skill. The shared selection
// dialog is pre-registered; the skill's own dialogs are added with Register.
func New(sk *skill.Skill, opts ...Option) (*Engine, error) {
	if sk == nil {
		return nil, fmt.Errorf("parley: a skill is required")
	}

	e := &Engine{
		registry:  registry.New(),
		skill:     sk,
		logger:    logging.NewNop(),
		threshold: runtime.DefaultInterruptThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.New()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	e.logger = e.logger.With("skill", sk.Name)
	e.runtime = runtime.NewEngine(e.registry,
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithAuthorizer(e.authorizer),
		runtime.WithInterruptThreshold(e.threshold),
		runtime.WithRootDialog(e.rootDialog),
	)

	e.registry.Register(dialogs.Choice())
	return e, nil
}

// Register adds dialogs to the engine's registry.
func (e *Engine) Register(ds ...registry.Dialog) {
	for _, d := range ds {
		e.registry.Register(d)
	}
}

// Dialogs returns the registered dialog names.
func (e *Engine) Dialogs() []string {
	return e.registry.Names()
}

// Store returns the underlying state store.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

// Inspect loads the current state of a conversation without processing a
// turn.
func (e *Engine) Inspect(ctx context.Context, conversationID string) (*domain.State, error) {
	return e.sessions.Load(ctx, conversationID)
}

// EndConversation drops a conversation from the store.
func (e *Engine) EndConversation(ctx context.Context, conversationID string) error {
	return e.sessions.Delete(ctx, conversationID)
}

// ProcessTurn runs one inbound turn to completion and returns the replies,
// in emission order. Turns for the same conversation are serialized; the
// state is loaded, mutated and saved under the session lock.
func (e *Engine) ProcessTurn(ctx context.Context, conversationID string, turn domain.Turn) ([]domain.Activity, error) {
	var replies []domain.Activity
	err := e.sessions.WithLock(ctx, conversationID, func(ctx context.Context) error {
		var err error
		replies, err = e.processLocked(ctx, conversationID, turn)
		return err
	})
	if err != nil {
		return nil, err
	}

	if e.channel != nil && len(replies) > 0 {
		if err := e.channel.Send(ctx, conversationID, replies...); err != nil {
			return replies, fmt.Errorf("delivering replies: %w", err)
		}
	}
	return replies, nil
}

func (e *Engine) processLocked(ctx context.Context, conversationID string, turn domain.Turn) ([]domain.Activity, error) {
	state, err := e.loadOrStart(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	if e.hooks.OnTurnStart != nil {
		e.hooks.OnTurnStart(ctx, &domain.TurnEvent{ConversationID: conversationID})
	}

	sc := registry.NewStepContext(state, turn)
	var rec *domain.Recognition

	switch turn.Type {
	case domain.ActivityEndOfConversation:
		// The hosting assistant tore the conversation down.
		e.runtime.CancelAll(ctx, state)
		if err := e.store.Delete(ctx, conversationID); err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
			return nil, err
		}
		e.emitTurnEnd(ctx, conversationID, "", started, nil)
		return nil, nil

	case domain.ActivityEvent:
		skill.MergeEvent(state, turn.Value)

	default:
		rec = e.recognize(ctx, turn)
		if err := e.runMessageTurn(ctx, sc, rec); err != nil {
			e.emitTurnEnd(ctx, conversationID, intentOf(rec), started, err)
			return nil, err
		}
	}

	if err := e.store.Save(ctx, conversationID, state); err != nil {
		return nil, fmt.Errorf("persisting conversation: %w", err)
	}
	e.emitTurnEnd(ctx, conversationID, intentOf(rec), started, nil)
	return sc.Replies(), nil
}

// runMessageTurn is the per-utterance pipeline: interruption routing, then
// dialog resumption or skill entry, then the uniform abort path for flow
// failures.
func (e *Engine) runMessageTurn(ctx context.Context, sc *registry.StepContext, rec *domain.Recognition) error {
	sc.Recognition = rec
	state := sc.State
	wasActive := len(state.Stack) > 0

	handled, err := e.runtime.RouteInterruption(ctx, sc, rec)
	if err != nil {
		return e.abortFlow(ctx, sc, err)
	}
	if handled {
		return nil
	}

	began := false
	switch {
	case len(state.Stack) > 0:
		err = e.runtime.Continue(ctx, sc, sc.Turn.Text)
	default:
		if binding, ok := e.skill.Bind(rec); ok {
			began = true
			opts := binding.Prepare(rec, state)
			err = e.runtime.Begin(ctx, sc, binding.Dialog, opts)
		} else if fb, ok := e.skill.FallbackActivity(); ok && sc.Turn.Text != "" {
			sc.Reply(fb)
			return nil
		}
	}
	if err != nil {
		return e.abortFlow(ctx, sc, err)
	}

	if len(state.Stack) == 0 {
		if wasActive || began {
			sc.Reply(e.skill.Closing()...)
		} else if welcome, ok := e.skill.WelcomeActivity(); ok {
			sc.Reply(welcome)
		}
	}
	return nil
}

// abortFlow is the single unrecoverable-error path: log with the failing
// dialog, apologize by failure category, cancel the stack and wipe state.
// The user is never left mid-flow referencing stale data.
func (e *Engine) abortFlow(ctx context.Context, sc *registry.StepContext, err error) error {
	state := sc.State

	kind := domain.FailServiceError
	dialog := ""
	var failure *runtime.FlowFailure
	if errors.As(err, &failure) {
		kind = failure.Kind
		dialog = failure.Dialog
	}
	e.logger.Error("flow aborted",
		"conversation_id", state.ConversationID,
		"dialog", dialog,
		"kind", string(kind),
		"err", err,
	)

	switch kind {
	case domain.FailRetryExceeded:
		var exceeded *dialogs.RetryExceededError
		if errors.As(err, &exceeded) && e.hooks.OnRetryExceeded != nil {
			e.hooks.OnRetryExceeded(ctx, &domain.PromptEvent{
				ConversationID: state.ConversationID,
				PromptID:       exceeded.PromptID,
				Attempts:       exceeded.Attempts,
			})
		}
		sc.Reply(domain.Message(domain.TemplateRetryExceeded,
			"Sorry, I still couldn't understand that, so I've stopped for now."))
	case domain.FailAccessDenied:
		sc.Reply(domain.Message(domain.TemplateAccessDenied,
			"Sorry, you don't have access to do that."))
	default:
		sc.Reply(domain.Message(domain.TemplateError,
			"Sorry, something went wrong on my end. Let's start over."))
	}

	e.runtime.CancelAll(ctx, state)
	state.Reset()
	return nil
}

// loadOrStart fetches the state, creating a fresh one on first contact.
// The caller already holds the session lock, so the store is used directly.
func (e *Engine) loadOrStart(ctx context.Context, conversationID string) (*domain.State, error) {
	state, err := e.store.Load(ctx, conversationID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	return domain.NewState(conversationID), nil
}

func (e *Engine) recognize(ctx context.Context, turn domain.Turn) *domain.Recognition {
	if e.recognizer == nil || turn.Text == "" {
		return nil
	}
	rec, err := e.recognizer.Recognize(ctx, turn)
	if err != nil {
		// Best effort: an NLU outage degrades the turn to "no intent"
		// rather than failing it.
		e.logger.Warn("recognition failed", "err", err)
		return nil
	}
	return &rec
}

func (e *Engine) emitTurnEnd(ctx context.Context, conversationID, intent string, started time.Time, err error) {
	if e.hooks.OnTurnEnd == nil {
		return
	}
	e.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
		ConversationID: conversationID,
		Intent:         intent,
		Duration:       time.Since(started),
		Err:            err,
	})
}

func intentOf(rec *domain.Recognition) string {
	if rec == nil {
		return ""
	}
	return rec.Intent
}
