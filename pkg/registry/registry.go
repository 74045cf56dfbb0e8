// Package registry holds the closed set of named dialogs: each dialog is an
// ordered list of plain step functions. Frames reference dialogs by name and
// are resolved here at begin/replace time, so mutually-referencing dialogs
// are unproblematic.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// StepFunc is one waterfall step. It receives the frame's begin-time
// options, the previous step's result (or the user's raw turn input after a
// suspension) and the conversation state — all explicitly, never ambiently.
type StepFunc func(ctx context.Context, step *StepContext) (domain.StepResult, error)

// Dialog is a named, ordered step list.
type Dialog struct {
	Name  string
	Steps []StepFunc
}

// StepContext carries everything a step may read or mutate during one turn.
type StepContext struct {
	// State is the persistent conversation state.
	State *domain.State
	// Options is the active frame's begin-time options value.
	Options map[string]any
	// Input is the previous step's result, or the raw user text when the
	// step resumes after a suspension.
	Input any
	// Turn is the inbound turn being processed.
	Turn domain.Turn
	// Recognition is the NLU verdict for this turn, when available.
	Recognition *domain.Recognition

	replies []domain.Activity
}

// NewStepContext creates the per-turn context shared by all steps of a turn.
func NewStepContext(state *domain.State, turn domain.Turn) *StepContext {
	return &StepContext{State: state, Turn: turn}
}

// Reply queues an outbound activity for delivery at the end of the turn.
func (sc *StepContext) Reply(activities ...domain.Activity) {
	sc.replies = append(sc.replies, activities...)
}

// Replies returns the activities queued so far, in emission order.
func (sc *StepContext) Replies() []domain.Activity {
	return sc.replies
}

// Registry manages the available dialogs.
type Registry struct {
	mu      sync.RWMutex
	dialogs map[string]Dialog
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		dialogs: make(map[string]Dialog),
	}
}

// Register adds a dialog to the registry.
// If a dialog with the same name exists, it is overwritten.
func (r *Registry) Register(d Dialog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs[d.Name] = d
}

// Resolve looks up a dialog by name.
func (r *Registry) Resolve(name string) (Dialog, error) {
	r.mu.RLock()
	d, ok := r.dialogs[name]
	r.mu.RUnlock()

	if !ok {
		return Dialog{}, fmt.Errorf("%w: %s", domain.ErrDialogNotFound, name)
	}
	return d, nil
}

// Names returns the registered dialog names, for introspection.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.dialogs))
	for name := range r.dialogs {
		names = append(names, name)
	}
	return names
}
