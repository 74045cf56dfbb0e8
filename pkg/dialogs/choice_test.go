package dialogs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/dialogs"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

var alexes = []domain.Candidate{
	{Name: "Alex Kim", Key: "u-1"},
	{Name: "Alex Morgan", Key: "u-2"},
	{Name: "Alexandra Reis", Key: "u-3"},
	{Name: "Alex Tanaka", Key: "u-4"},
	{Name: "Alexis Moreau", Key: "u-5"},
}

func choiceHarness(t *testing.T, candidates []domain.Candidate, opts dialogs.ChoiceOptions) (*runtime.Engine, *registry.StepContext, *dialogs.Selection) {
	t.Helper()
	reg := registry.New()
	reg.Register(dialogs.Choice())

	got := &dialogs.Selection{}
	reg.Register(registry.Dialog{
		Name: "host",
		Steps: []registry.StepFunc{
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				sc.State.SetCandidates(candidates)
				return domain.Begin(dialogs.ChoiceName, opts.Map()), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				*got = sc.Input.(dialogs.Selection)
				return domain.End(nil), nil
			},
		},
	})

	engine := runtime.NewEngine(reg)
	sc := newContext("c1")
	require.NoError(t, engine.Begin(context.Background(), sc, "host", nil))
	return engine, sc, got
}

func TestChoice_NoCandidatesEndsNotFound(t *testing.T) {
	_, sc, got := choiceHarness(t, nil, dialogs.NewChoiceOptions("pick", "Who do you mean?"))

	assert.Equal(t, dialogs.OutcomeNotFound, got.Outcome)
	assert.Nil(t, got.Candidate)
	assert.Empty(t, sc.Replies(), "nothing to ask when there is nothing to pick")
	assert.Empty(t, sc.State.Stack)
}

func TestChoice_SingleCandidateAutoSelected(t *testing.T) {
	_, sc, got := choiceHarness(t, alexes[:1], dialogs.NewChoiceOptions("pick", "Who do you mean?"))

	assert.Equal(t, dialogs.OutcomeAutoSelected, got.Outcome)
	require.NotNil(t, got.Candidate)
	assert.Equal(t, "u-1", got.Candidate.Key)
	assert.Empty(t, sc.Replies())
	assert.Empty(t, sc.State.Candidates, "a settled choice must consume the candidate list")
}

func TestChoice_AutoSelectSingleDisabledStillAsks(t *testing.T) {
	opts := dialogs.NewChoiceOptions("pick", "Who do you mean?")
	opts.AutoSelectSingle = false
	engine, sc, got := choiceHarness(t, alexes[:1], opts)

	require.Len(t, sc.Replies(), 1)
	assert.Contains(t, sc.Replies()[0].Text, "1. Alex Kim")

	require.NoError(t, engine.Continue(context.Background(), sc, "1"))
	assert.Equal(t, dialogs.OutcomeChosen, got.Outcome)
	assert.Equal(t, "u-1", got.Candidate.Key)
}

func TestChoice_OrdinalPicksFromCurrentPage(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.Len(t, sc.Replies(), 1)
	prompt := sc.Replies()[0].Text
	assert.Contains(t, prompt, "Which Alex?")
	assert.Contains(t, prompt, "1. Alex Kim")
	assert.Contains(t, prompt, "3. Alexandra Reis")
	assert.NotContains(t, prompt, "Alex Tanaka", "page one shows only the first page")

	require.NoError(t, engine.Continue(context.Background(), sc, "2"))
	assert.Equal(t, dialogs.OutcomeChosen, got.Outcome)
	assert.Equal(t, "u-2", got.Candidate.Key)
	assert.Empty(t, sc.State.Candidates)
}

func TestChoice_OrdinalWordsAccepted(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "third"))
	assert.Equal(t, dialogs.OutcomeChosen, got.Outcome)
	assert.Equal(t, "u-3", got.Candidate.Key)
}

func TestChoice_NameMatchPicksCandidate(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "tanaka"))
	assert.Equal(t, dialogs.OutcomeChosen, got.Outcome)
	assert.Equal(t, "u-4", got.Candidate.Key)
}

func TestChoice_AmbiguousNameEndsNotFound(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "alex"))
	assert.Equal(t, dialogs.OutcomeNotFound, got.Outcome)
	assert.Empty(t, sc.State.Candidates)
}

func TestChoice_PagingMovesWindow(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "next"))
	assert.Equal(t, 1, sc.State.PageIndex)
	page2 := sc.Replies()[len(sc.Replies())-1].Text
	assert.Contains(t, page2, "1. Alex Tanaka")
	assert.Contains(t, page2, "2. Alexis Moreau")

	require.NoError(t, engine.Continue(context.Background(), sc, "2"))
	assert.Equal(t, dialogs.OutcomeChosen, got.Outcome)
	assert.Equal(t, "u-5", got.Candidate.Key, "ordinal must be page-relative")
}

func TestChoice_PagingPastLastPageIsNoOp(t *testing.T) {
	engine, sc, _ := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "next"))
	require.NoError(t, engine.Continue(context.Background(), sc, "next"))
	assert.Equal(t, 1, sc.State.PageIndex, "page index must not move past the last page")

	replies := sc.Replies()
	require.GreaterOrEqual(t, len(replies), 2)
	boundary := replies[len(replies)-2]
	assert.Equal(t, domain.TemplateLastPage, boundary.Template)

	top := sc.State.Top()
	require.NotNil(t, top)
	assert.True(t, top.Waiting, "the selection must stay open after a boundary no-op")
}

func TestChoice_PagingBeforeFirstPageIsNoOp(t *testing.T) {
	engine, sc, _ := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "previous"))
	assert.Equal(t, 0, sc.State.PageIndex)

	replies := sc.Replies()
	require.GreaterOrEqual(t, len(replies), 2)
	assert.Equal(t, domain.TemplateFirstPage, replies[len(replies)-2].Template)
}

func TestChoice_OrdinalOutOfRangeEndsNotFound(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "9"))
	assert.Equal(t, dialogs.OutcomeNotFound, got.Outcome)
	assert.Empty(t, sc.State.Candidates)
	assert.Empty(t, sc.State.Stack)
}

func TestChoice_UnmatchedAnswerEndsNotFound(t *testing.T) {
	engine, sc, got := choiceHarness(t, alexes, dialogs.NewChoiceOptions("pick", "Which Alex?"))

	require.NoError(t, engine.Continue(context.Background(), sc, "someone else entirely"))
	assert.Equal(t, dialogs.OutcomeNotFound, got.Outcome)
	assert.Empty(t, sc.State.Candidates)
}

func TestChoiceOptions_MapRoundTrip(t *testing.T) {
	opts := dialogs.NewChoiceOptions("pick", "Which one?")
	opts.PageSize = 5
	opts.NonInterruptible = true

	engine, sc, _ := choiceHarness(t, alexes, opts)
	_ = engine

	top := sc.State.Top()
	require.NotNil(t, top)
	require.NotNil(t, top.Prompt)
	assert.Equal(t, "pick", top.Prompt.ID)
	assert.True(t, top.Prompt.NonInterruptible)
	assert.Contains(t, top.Prompt.Text, "5. Alexis Moreau", "page size five shows all candidates")
}
