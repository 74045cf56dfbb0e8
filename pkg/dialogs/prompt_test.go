package dialogs_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/dialogs"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

func newContext(conversationID string) *registry.StepContext {
	return registry.NewStepContext(domain.NewState(conversationID), domain.MessageTurn(""))
}

// host wraps a child dialog so tests can observe the value it ends with.
func host(child string, options map[string]any, got *any) registry.Dialog {
	return registry.Dialog{
		Name: "host",
		Steps: []registry.StepFunc{
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				return domain.Begin(child, options), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				*got = sc.Input
				return domain.End(nil), nil
			},
		},
	}
}

func numberValidator(ctx context.Context, input string, _ *domain.State) (any, bool) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return nil, false
	}
	return n, true
}

func TestPrompt_ValidAnswerEndsWithDigestedValue(t *testing.T) {
	reg := registry.New()
	reg.Register(dialogs.Prompt("capacity", dialogs.PromptConfig{
		Question: domain.Prompt{Text: "How many seats do you need?"},
		Validate: numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("capacity"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	require.Len(t, sc.Replies(), 1)
	assert.Equal(t, "How many seats do you need?", sc.Replies()[0].Text)

	require.NoError(t, engine.Continue(context.Background(), sc, "12"))
	assert.Equal(t, 12, got)
	assert.Empty(t, sc.State.Stack)
	assert.Empty(t, sc.State.Retries, "accepted answer must clear the retry counter")
}

func TestPrompt_RejectedAnswerReasksSameStep(t *testing.T) {
	reg := registry.New()
	reg.Register(dialogs.Prompt("capacity", dialogs.PromptConfig{
		Question: domain.Prompt{Text: "How many seats?"},
		Retry:    domain.Prompt{Text: "A number, please. How many seats?"},
		Validate: numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("capacity"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	require.NoError(t, engine.Continue(context.Background(), sc, "a few"))
	require.NoError(t, engine.Continue(context.Background(), sc, "lots"))
	require.NoError(t, engine.Continue(context.Background(), sc, "8"))

	assert.Equal(t, 8, got)
	texts := make([]string, 0, len(sc.Replies()))
	for _, a := range sc.Replies() {
		texts = append(texts, a.Text)
	}
	assert.Equal(t, []string{
		"How many seats?",
		"A number, please. How many seats?",
		"A number, please. How many seats?",
	}, texts)
	assert.Empty(t, sc.State.Retries)
}

func TestPrompt_FailingExactlyCeilingTimesStillSucceeds(t *testing.T) {
	const ceiling = 3
	reg := registry.New()
	reg.Register(dialogs.Prompt("capacity", dialogs.PromptConfig{
		Question:    domain.Prompt{Text: "How many seats?"},
		MaxAttempts: ceiling,
		Validate:    numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("capacity"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	for i := 0; i < ceiling; i++ {
		require.NoError(t, engine.Continue(context.Background(), sc, "nope"))
	}
	require.NoError(t, engine.Continue(context.Background(), sc, "4"))
	assert.Equal(t, 4, got)
}

func TestPrompt_FailingPastCeilingAbortsFlow(t *testing.T) {
	const ceiling = 3
	reg := registry.New()
	reg.Register(dialogs.Prompt("capacity", dialogs.PromptConfig{
		Question:    domain.Prompt{Text: "How many seats?"},
		MaxAttempts: ceiling,
		Validate:    numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("capacity"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	for i := 0; i < ceiling; i++ {
		require.NoError(t, engine.Continue(context.Background(), sc, "nope"))
	}
	err := engine.Continue(context.Background(), sc, "still nope")
	require.Error(t, err)

	var failure *runtime.FlowFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.FailRetryExceeded, failure.Kind)

	var exceeded *dialogs.RetryExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "capacity", exceeded.PromptID)
	assert.Equal(t, ceiling+1, exceeded.Attempts)
}

func TestPrompt_FreshRunResetsStaleRetryCounter(t *testing.T) {
	reg := registry.New()
	reg.Register(dialogs.Prompt("capacity", dialogs.PromptConfig{
		Question: domain.Prompt{Text: "How many seats?"},
		Validate: numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("capacity"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")
	sc.State.Retries["capacity"] = 2 // left over from an aborted earlier run

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	require.NoError(t, engine.Continue(context.Background(), sc, "bad"))
	assert.Equal(t, 1, sc.State.Retries["capacity"])
}

func TestPrompt_DefaultRetryDerivedFromQuestion(t *testing.T) {
	reg := registry.New()
	reg.Register(dialogs.Prompt("when", dialogs.PromptConfig{
		Question: domain.Prompt{Text: "For when?"},
		Validate: numberValidator,
	}))
	var got any
	reg.Register(host(dialogs.PromptName("when"), nil, &got))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	require.NoError(t, engine.Continue(context.Background(), sc, "tomorrow-ish"))
	require.Len(t, sc.Replies(), 2)
	assert.Equal(t, "Sorry, I didn't catch that. For when?", sc.Replies()[1].Text)
}

func TestConfirm_AnswersMapToBool(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"yes", true},
		{"Yep", true},
		{"OK", true},
		{"no", false},
		{"Nah", false},
	}
	for _, tc := range cases {
		t.Run(tc.answer, func(t *testing.T) {
			reg := registry.New()
			reg.Register(dialogs.Confirm("sure", domain.Prompt{Text: "Are you sure?"}, 0))
			var got any
			reg.Register(host(dialogs.PromptName("sure"), nil, &got))
			engine := runtime.NewEngine(reg)
			sc := newContext("c1")

			require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
			require.NoError(t, engine.Continue(context.Background(), sc, tc.answer))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConfirm_PromptIsNonInterruptible(t *testing.T) {
	reg := registry.New()
	reg.Register(dialogs.Confirm("sure", domain.Prompt{Text: "Are you sure?"}, 0))
	engine := runtime.NewEngine(reg)
	sc := newContext("c1")

	require.NoError(t, engine.Begin(context.Background(), sc, dialogs.PromptName("sure"), nil))
	top := sc.State.Top()
	require.NotNil(t, top)
	require.NotNil(t, top.Prompt)
	assert.True(t, top.Prompt.NonInterruptible)
}

func TestParseYesNo_UnknownAnswerRejected(t *testing.T) {
	_, ok := dialogs.ParseYesNo("maybe")
	assert.False(t, ok)
	_, ok = dialogs.ParseYesNo("")
	assert.False(t, ok)
}

func TestInputText(t *testing.T) {
	assert.Equal(t, "", dialogs.InputText(nil))
	assert.Equal(t, "hi", dialogs.InputText("hi"))
	assert.Equal(t, "7", dialogs.InputText(7))
}

func TestRetryExceededError_Message(t *testing.T) {
	err := error(&dialogs.RetryExceededError{PromptID: "when", Attempts: 4})
	assert.Equal(t, `prompt "when": 4 failed attempts`, err.Error())

	var target *dialogs.RetryExceededError
	assert.True(t, errors.As(err, &target))
}
