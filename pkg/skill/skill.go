// Package skill maps recognized intents onto registered dialogs. A Skill is
// the entry surface one assistant capability exposes: its intent bindings,
// its idle-turn texts and whether it runs standalone or embedded inside a
// larger assistant.
package skill

import (
	"github.com/aretw0/parley/pkg/domain"
)

// Digester pre-fills conversation state from a recognition before the bound
// dialog starts. Digestion is best-effort: implementations log and keep what
// they salvaged rather than failing the turn.
type Digester func(rec *domain.Recognition, state *domain.State)

// Binding ties one intent to one registered dialog.
type Binding struct {
	// Dialog is the registry name begun when the intent wins the turn.
	Dialog string

	// Options builds the frame's begin-time options from the recognition.
	// Nil means no options.
	Options func(rec *domain.Recognition) map[string]any

	// Digest pre-fills slots from recognized entities. Nil means no
	// digestion.
	Digest Digester
}

// Skill describes one assistant capability.
type Skill struct {
	// Name identifies the skill in logs and metrics.
	Name string

	// Bindings maps intent names to dialogs.
	Bindings map[string]Binding

	// Welcome is sent when a standalone skill is idle: on the first turn
	// and again whenever a flow completes. Empty suppresses it.
	Welcome string

	// Fallback is sent when no binding matches an utterance and no dialog
	// is active.
	Fallback string

	// Embedded marks the skill as a sub-skill of a larger assistant: idle
	// turns stay silent and completed flows emit end-of-conversation
	// instead of the welcome text.
	Embedded bool
}

// Templates for idle-turn activities.
const (
	TemplateWelcome  = "skill.welcome"
	TemplateFallback = "skill.fallback"
)

// Bind resolves the recognition to a binding. The second return is false
// when the recognition is nil, carries no intent, or no binding exists.
func (s *Skill) Bind(rec *domain.Recognition) (Binding, bool) {
	if rec == nil || rec.Intent == "" {
		return Binding{}, false
	}
	b, ok := s.Bindings[rec.Intent]
	return b, ok
}

// Prepare digests the recognition into state and returns the frame options
// for the bound dialog.
func (b Binding) Prepare(rec *domain.Recognition, state *domain.State) map[string]any {
	if b.Digest != nil {
		b.Digest(rec, state)
	}
	if b.Options != nil {
		return b.Options(rec)
	}
	return nil
}

// WelcomeActivity returns the idle-turn greeting, or false when the skill
// stays silent (embedded, or no welcome text configured).
func (s *Skill) WelcomeActivity() (domain.Activity, bool) {
	if s.Embedded || s.Welcome == "" {
		return domain.Activity{}, false
	}
	return domain.Message(TemplateWelcome, s.Welcome), true
}

// FallbackActivity returns the "didn't understand" reply, or false when the
// skill has none configured.
func (s *Skill) FallbackActivity() (domain.Activity, bool) {
	if s.Fallback == "" {
		return domain.Activity{}, false
	}
	return domain.Message(TemplateFallback, s.Fallback), true
}

// Closing returns the activities emitted when the dialog stack drains:
// end-of-conversation for embedded skills, the welcome text for standalone
// ones.
func (s *Skill) Closing() []domain.Activity {
	if s.Embedded {
		return []domain.Activity{domain.EndOfConversation()}
	}
	if a, ok := s.WelcomeActivity(); ok {
		return []domain.Activity{a}
	}
	return nil
}
