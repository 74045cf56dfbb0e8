package domain

// FailureKind classifies first-class step failures. The runner routes all
// of them through the same abort path: log, apologize, clear state, cancel
// the stack.
type FailureKind string

const (
	// FailRetryExceeded means a retry-bounded prompt hit its ceiling.
	FailRetryExceeded FailureKind = "retry_exceeded"
	// FailServiceError means a domain collaborator call failed.
	FailServiceError FailureKind = "service_error"
	// FailAccessDenied means an auth/permission failure from a collaborator.
	FailAccessDenied FailureKind = "access_denied"
	// FailContract means a programming/contract violation, e.g. a selection
	// referencing a cleared candidate list.
	FailContract FailureKind = "contract_violation"
)

// StepResultKind enumerates the closed set of outcomes a step may produce.
type StepResultKind int

const (
	// StepNext advances to the following step in the same frame.
	StepNext StepResultKind = iota
	// StepSuspend emits a prompt and pauses until the next inbound turn;
	// the user's answer resumes the following step.
	StepSuspend
	// StepReprompt emits a prompt and pauses; the user's answer resumes
	// the same step index (retry loops).
	StepReprompt
	// StepReplace swaps the current frame for another dialog.
	StepReplace
	// StepBegin pushes a child dialog; its result resumes the next step.
	StepBegin
	// StepEnd pops the current frame, handing a result to the parent.
	StepEnd
	// StepFailed aborts the whole flow with a classified failure.
	StepFailed
)

// StepResult is the value returned by every waterfall step. Exactly one
// variant applies; use the constructors below.
type StepResult struct {
	Kind    StepResultKind
	Value   any            // Next, End
	Prompt  *Prompt        // Suspend
	Dialog  string         // Replace, Begin
	Options map[string]any // Replace, Begin
	Failure FailureKind    // Failed
	Err     error          // Failed
}

// Next advances to the following step; value becomes its input.
func Next(value any) StepResult {
	return StepResult{Kind: StepNext, Value: value}
}

// Suspend emits the prompt and pauses the frame. The user's next message
// becomes the input of the following step (the "after-prompt" continuation).
func Suspend(p Prompt) StepResult {
	return StepResult{Kind: StepSuspend, Prompt: &p}
}

// Reprompt emits the prompt and pauses the frame at the current step, so
// the same step validates the next answer. Used for bounded retry loops.
func Reprompt(p Prompt) StepResult {
	return StepResult{Kind: StepReprompt, Prompt: &p}
}

// Replace pops the current frame and pushes the named dialog in its place.
// Conversation state is untouched; only the frame changes.
func Replace(dialog string, options map[string]any) StepResult {
	return StepResult{Kind: StepReplace, Dialog: dialog, Options: options}
}

// Begin pushes the named dialog as a child. Its End result becomes the
// input of this frame's next step.
func Begin(dialog string, options map[string]any) StepResult {
	return StepResult{Kind: StepBegin, Dialog: dialog, Options: options}
}

// End pops the current frame and resumes the parent with value as input.
func End(value any) StepResult {
	return StepResult{Kind: StepEnd, Value: value}
}

// Fail aborts the containing flow with a classified failure.
func Fail(kind FailureKind, err error) StepResult {
	return StepResult{Kind: StepFailed, Failure: kind, Err: err}
}
