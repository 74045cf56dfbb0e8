package runtime

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// Decide computes the interruption decision for this turn. The decision is
// ephemeral; it is never persisted.
func (e *Engine) Decide(state *domain.State, rec *domain.Recognition) domain.InterruptKind {
	if rec == nil || rec.Score <= e.threshold {
		return domain.InterruptNone
	}

	// Prompts may opt out of preemption so answers like "no" reach the
	// dialog instead of the router.
	if top := state.Top(); top != nil && top.Waiting && top.Prompt != nil && top.Prompt.NonInterruptible {
		return domain.InterruptNone
	}

	switch rec.Intent {
	case domain.IntentCancel:
		return domain.InterruptCancel
	case domain.IntentHelp:
		return domain.InterruptHelp
	case domain.IntentLogout:
		return domain.InterruptLogout
	default:
		return domain.InterruptNone
	}
}

// RouteInterruption runs before step execution on every message turn.
// It returns true when the turn was fully handled and normal dialog
// resumption must not happen.
func (e *Engine) RouteInterruption(ctx context.Context, sc *registry.StepContext, rec *domain.Recognition) (bool, error) {
	kind := e.Decide(sc.State, rec)
	if kind == domain.InterruptNone {
		return false, nil
	}

	e.logger.Info("interruption routed",
		"conversation_id", sc.State.ConversationID,
		"kind", string(kind),
		"score", rec.Score,
	)
	if e.hooks.OnInterruption != nil {
		e.hooks.OnInterruption(ctx, &domain.InterruptionEvent{
			ConversationID: sc.State.ConversationID,
			Kind:           kind,
			Score:          rec.Score,
		})
	}

	switch kind {
	case domain.InterruptCancel:
		sc.Reply(domain.Message(domain.TemplateCancelled, e.cancelText))
		e.CancelAll(ctx, sc.State)
		sc.State.Reset()
		return true, e.restartRoot(ctx, sc)

	case domain.InterruptHelp:
		sc.Reply(domain.Message(domain.TemplateHelp, e.helpText))
		// Re-ask whatever the active frame was waiting on.
		if top := sc.State.Top(); top != nil && top.Waiting && top.Prompt != nil {
			sc.Reply(top.Prompt.Activity())
		}
		return true, nil

	case domain.InterruptLogout:
		if e.authorizer != nil {
			if err := e.authorizer.SignOut(ctx, sc.State.ConversationID); err != nil {
				// Revocation failure follows the external-service-error
				// path: the conversation still recovers to a clean slate.
				e.logger.Error("sign-out failed",
					"conversation_id", sc.State.ConversationID,
					"err", err,
				)
				sc.Reply(domain.Message(domain.TemplateError, "Something went wrong signing you out. Please try again."))
				e.CancelAll(ctx, sc.State)
				sc.State.Reset()
				return true, nil
			}
		}
		sc.Reply(domain.Message(domain.TemplateSignedOut, e.signedOutText))
		e.CancelAll(ctx, sc.State)
		sc.State.Reset()
		return true, e.restartRoot(ctx, sc)
	}

	return false, nil
}

func (e *Engine) restartRoot(ctx context.Context, sc *registry.StepContext) error {
	if e.rootDialog == "" {
		return nil
	}
	return e.Begin(ctx, sc, e.rootDialog, nil)
}
