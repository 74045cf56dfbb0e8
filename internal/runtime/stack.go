package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// Begin pushes a new frame for the named dialog and executes its first step
// within the same turn. No turn boundary is required to cross into a child.
func (e *Engine) Begin(ctx context.Context, sc *registry.StepContext, dialog string, options map[string]any) error {
	if _, err := e.registry.Resolve(dialog); err != nil {
		return err
	}

	sc.State.Stack = append(sc.State.Stack, domain.Frame{
		Dialog:  dialog,
		Step:    0,
		Options: options,
	})
	e.emitDialogBegin(ctx, sc.State.ConversationID, dialog)

	return e.run(ctx, sc, nil)
}

// Continue resumes the top frame's current step, supplying input as the
// answer the suspended step was waiting for.
func (e *Engine) Continue(ctx context.Context, sc *registry.StepContext, input any) error {
	top := sc.State.Top()
	if top == nil {
		return domain.ErrNoActiveDialog
	}
	top.Waiting = false

	return e.run(ctx, sc, input)
}

// CancelAll clears the entire stack unconditionally. Idempotent.
func (e *Engine) CancelAll(ctx context.Context, state *domain.State) {
	if len(state.Stack) == 0 {
		return
	}
	e.logger.Debug("cancelling dialog stack",
		"conversation_id", state.ConversationID,
		"frames", len(state.Stack),
	)
	for i := len(state.Stack) - 1; i >= 0; i-- {
		e.emitDialogEnd(ctx, state.ConversationID, state.Stack[i].Dialog)
	}
	state.Stack = nil
}

// run drives the top frame until the stack empties, a step suspends, or a
// step fails. Step indices move strictly forward; looping only happens via
// explicit Replace/Begin.
func (e *Engine) run(ctx context.Context, sc *registry.StepContext, input any) error {
	state := sc.State

	for iter := 0; ; iter++ {
		if iter >= maxStepsPerTurn {
			return &FlowFailure{
				Dialog: e.topDialogName(state),
				Kind:   domain.FailContract,
				Err:    fmt.Errorf("exceeded %d steps in a single turn", maxStepsPerTurn),
			}
		}

		frame := state.Top()
		if frame == nil {
			return nil
		}

		dialog, err := e.registry.Resolve(frame.Dialog)
		if err != nil {
			// A persisted frame referencing an unregistered dialog is a
			// contract violation, not a user error.
			return &FlowFailure{Dialog: frame.Dialog, Kind: domain.FailContract, Err: err}
		}

		// Walking past the last step ends the dialog implicitly.
		if frame.Step >= len(dialog.Steps) {
			input = e.pop(ctx, state, nil)
			continue
		}

		sc.Options = frame.Options
		sc.Input = input

		e.logger.Debug("executing step",
			"conversation_id", state.ConversationID,
			"dialog", frame.Dialog,
			"step", frame.Step,
		)

		result, err := dialog.Steps[frame.Step](ctx, sc)
		if err != nil {
			return &FlowFailure{Dialog: frame.Dialog, Kind: domain.FailServiceError, Err: err}
		}

		switch result.Kind {
		case domain.StepNext:
			frame.Step++
			input = result.Value

		case domain.StepSuspend:
			// The answer resumes the following step.
			frame.Step++
			frame.Waiting = true
			frame.Prompt = result.Prompt
			sc.Reply(result.Prompt.Activity())
			return nil

		case domain.StepReprompt:
			// The answer resumes this same step.
			frame.Waiting = true
			frame.Prompt = result.Prompt
			sc.Reply(result.Prompt.Activity())
			return nil

		case domain.StepReplace:
			if _, err := e.registry.Resolve(result.Dialog); err != nil {
				return &FlowFailure{Dialog: frame.Dialog, Kind: domain.FailContract, Err: err}
			}
			e.emitDialogEnd(ctx, state.ConversationID, frame.Dialog)
			state.Stack[len(state.Stack)-1] = domain.Frame{
				Dialog:  result.Dialog,
				Step:    0,
				Options: result.Options,
			}
			e.emitDialogBegin(ctx, state.ConversationID, result.Dialog)
			input = nil

		case domain.StepBegin:
			if _, err := e.registry.Resolve(result.Dialog); err != nil {
				return &FlowFailure{Dialog: frame.Dialog, Kind: domain.FailContract, Err: err}
			}
			// The child's End resumes this frame's next step.
			frame.Step++
			state.Stack = append(state.Stack, domain.Frame{
				Dialog:  result.Dialog,
				Step:    0,
				Options: result.Options,
			})
			e.emitDialogBegin(ctx, state.ConversationID, result.Dialog)
			input = nil

		case domain.StepEnd:
			input = e.pop(ctx, state, result.Value)

		case domain.StepFailed:
			return &FlowFailure{Dialog: frame.Dialog, Kind: result.Failure, Err: result.Err}

		default:
			return &FlowFailure{
				Dialog: frame.Dialog,
				Kind:   domain.FailContract,
				Err:    fmt.Errorf("unknown step result kind %d", result.Kind),
			}
		}
	}
}

// pop removes the top frame and returns the result that becomes the parent's
// next input.
func (e *Engine) pop(ctx context.Context, state *domain.State, result any) any {
	frame := state.Top()
	if frame == nil {
		return result
	}
	e.emitDialogEnd(ctx, state.ConversationID, frame.Dialog)
	state.Stack = state.Stack[:len(state.Stack)-1]
	return result
}

func (e *Engine) topDialogName(state *domain.State) string {
	if top := state.Top(); top != nil {
		return top.Dialog
	}
	return ""
}

func (e *Engine) emitDialogBegin(ctx context.Context, conversationID, dialog string) {
	if e.hooks.OnDialogBegin != nil {
		e.hooks.OnDialogBegin(ctx, &domain.DialogEvent{ConversationID: conversationID, Dialog: dialog})
	}
}

func (e *Engine) emitDialogEnd(ctx context.Context, conversationID, dialog string) {
	if e.hooks.OnDialogEnd != nil {
		e.hooks.OnDialogEnd(ctx, &domain.DialogEvent{ConversationID: conversationID, Dialog: dialog})
	}
}
