package dialogs

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// DefaultMaxAttempts bounds how many failed answers a prompt tolerates
// before it gives up on the whole flow.
const DefaultMaxAttempts = 3

const promptPrefix = "prompt/"

// Validator inspects one user answer. It returns the digested value and
// whether the answer was accepted. A nil Validator accepts any non-empty
// text as-is.
type Validator func(ctx context.Context, input string, state *domain.State) (any, bool)

// PromptConfig describes one retry-bounded prompt.
type PromptConfig struct {
	// Question is asked on entry. Its ID keys the retry counter; when
	// empty the dialog id is used.
	Question domain.Prompt

	// Retry is asked after a rejected answer. When zero it is derived
	// from Question with a "didn't catch that" preamble.
	Retry domain.Prompt

	// MaxAttempts is the retry ceiling. An answer may fail validation up
	// to MaxAttempts times; the following failure aborts the flow.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int

	Validate Validator
}

// RetryExceededError reports a prompt whose answer failed validation more
// times than its ceiling allows.
type RetryExceededError struct {
	PromptID string
	Attempts int
}

func (e *RetryExceededError) Error() string {
	return fmt.Sprintf("prompt %q: %d failed attempts", e.PromptID, e.Attempts)
}

// PromptName returns the registry name for the prompt dialog with the
// given id.
func PromptName(id string) string { return promptPrefix + id }

// Prompt builds a two-step dialog named "prompt/<id>" that asks
// cfg.Question, validates the answer and ends with the digested value.
// Rejected answers re-ask with cfg.Retry until the ceiling is hit, at
// which point the dialog fails with a RetryExceededError.
func Prompt(id string, cfg PromptConfig) registry.Dialog {
	question := cfg.Question
	if question.ID == "" {
		question.ID = id
	}
	retry := cfg.Retry
	if retry.Text == "" && retry.Template == "" {
		retry = question
		retry.Text = "Sorry, I didn't catch that. " + question.Text
	}
	if retry.ID == "" {
		retry.ID = question.ID
	}
	max := cfg.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	validate := cfg.Validate
	if validate == nil {
		validate = acceptNonEmpty
	}

	return registry.Dialog{
		Name: PromptName(id),
		Steps: []registry.StepFunc{
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				delete(sc.State.Retries, question.ID)
				return domain.Suspend(question), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				value, ok := validate(ctx, InputText(sc.Input), sc.State)
				if ok {
					delete(sc.State.Retries, question.ID)
					return domain.End(value), nil
				}
				if sc.State.Retries == nil {
					sc.State.Retries = map[string]int{}
				}
				n := sc.State.Retries[question.ID] + 1
				sc.State.Retries[question.ID] = n
				if n > max {
					delete(sc.State.Retries, question.ID)
					return domain.Fail(domain.FailRetryExceeded,
						&RetryExceededError{PromptID: question.ID, Attempts: n}), nil
				}
				return domain.Reprompt(retry), nil
			},
		},
	}
}

// Confirm builds a yes/no prompt dialog ending with a bool. The question
// is marked non-interruptible so a "cancel everything?" confirmation is
// not itself hijacked by the cancel intent.
func Confirm(id string, question domain.Prompt, maxAttempts int) registry.Dialog {
	question.NonInterruptible = true
	return Prompt(id, PromptConfig{
		Question:    question,
		MaxAttempts: maxAttempts,
		Validate: func(ctx context.Context, input string, _ *domain.State) (any, bool) {
			return ParseYesNo(input)
		},
	})
}

// ParseYesNo maps common affirmations and negations to a bool. The second
// return is false when the text is neither.
func ParseYesNo(input string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "yeah", "yep", "sure", "ok", "okay", "true", "1":
		return true, true
	case "n", "no", "nope", "nah", "false", "0":
		return false, true
	}
	return false, false
}

// InputText renders a step input as text. Step inputs are user utterances
// or results of child dialogs, so anything non-string is formatted.
func InputText(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func acceptNonEmpty(_ context.Context, input string, _ *domain.State) (any, bool) {
	text := strings.TrimSpace(input)
	return text, text != ""
}
