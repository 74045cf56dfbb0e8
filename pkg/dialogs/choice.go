package dialogs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// ChoiceName is the registry name of the shared selection dialog.
const ChoiceName = "choice"

// DefaultPageSize is how many candidates one page shows.
const DefaultPageSize = 3

// Outcome classifies how a Choice run ended.
type Outcome string

const (
	// OutcomeNotFound means no candidate matched, or there were none.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeAutoSelected means a single candidate was taken without asking.
	OutcomeAutoSelected Outcome = "auto_selected"
	// OutcomeChosen means the user picked one from the list.
	OutcomeChosen Outcome = "chosen"
)

// Selection is the result value a Choice dialog ends with.
type Selection struct {
	Outcome   Outcome
	Candidate *domain.Candidate
}

// ChoiceOptions configure one Choice run. They travel through the frame's
// option map, so every field must survive a JSON round trip.
type ChoiceOptions struct {
	// PromptID keys the page prompt and its retry counter.
	PromptID string `mapstructure:"prompt_id"`
	// Title is shown above the numbered candidate list.
	Title string `mapstructure:"title"`
	// Template tags the page prompt for channels that render their own UI.
	Template string `mapstructure:"template"`
	// PageSize caps how many candidates one page shows. Zero means
	// DefaultPageSize.
	PageSize int `mapstructure:"page_size"`
	// AutoSelectSingle skips the question when exactly one candidate is
	// in play.
	AutoSelectSingle bool `mapstructure:"auto_select_single"`
	// NonInterruptible shields the selection prompt from intent routing.
	NonInterruptible bool `mapstructure:"non_interruptible"`
}

// NewChoiceOptions returns options with the usual defaults applied.
func NewChoiceOptions(promptID, title string) ChoiceOptions {
	return ChoiceOptions{
		PromptID:         promptID,
		Title:            title,
		Template:         "core.choice",
		PageSize:         DefaultPageSize,
		AutoSelectSingle: true,
	}
}

// Map renders the options as a frame option map for Begin.
func (o ChoiceOptions) Map() map[string]any {
	return map[string]any{
		"prompt_id":          o.PromptID,
		"title":              o.Title,
		"template":           o.Template,
		"page_size":          o.PageSize,
		"auto_select_single": o.AutoSelectSingle,
		"non_interruptible":  o.NonInterruptible,
	}
}

// Choice builds the shared selection dialog. Callers stage candidates
// with State.SetCandidates, then Begin(ChoiceName, opts.Map()); the
// dialog ends with a Selection and clears the candidate list whenever
// it settles on one candidate or none.
func Choice() registry.Dialog {
	return registry.Dialog{
		Name: ChoiceName,
		Steps: []registry.StepFunc{
			chooseEntry,
			chooseAnswer,
		},
	}
}

func chooseEntry(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
	opts, err := decodeChoiceOptions(sc.Options)
	if err != nil {
		return domain.StepResult{}, err
	}
	state := sc.State
	switch n := len(state.Candidates); {
	case n == 0:
		return domain.End(Selection{Outcome: OutcomeNotFound}), nil
	case n == 1 && opts.AutoSelectSingle:
		picked := state.Candidates[0]
		state.ClearCandidates()
		return domain.End(Selection{Outcome: OutcomeAutoSelected, Candidate: &picked}), nil
	}
	state.PageIndex = 0
	return domain.Suspend(pagePrompt(state, opts)), nil
}

func chooseAnswer(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
	opts, err := decodeChoiceOptions(sc.Options)
	if err != nil {
		return domain.StepResult{}, err
	}
	state := sc.State
	total := len(state.Candidates)
	answer := strings.ToLower(strings.TrimSpace(InputText(sc.Input)))

	switch answer {
	case "next", "more", "show more", "show next":
		if (state.PageIndex+1)*opts.PageSize >= total {
			sc.Reply(domain.Message(domain.TemplateLastPage, "That's already the last page."))
			return domain.Reprompt(pagePrompt(state, opts)), nil
		}
		state.PageIndex++
		return domain.Reprompt(pagePrompt(state, opts)), nil
	case "previous", "prev", "back", "show previous":
		if state.PageIndex == 0 {
			sc.Reply(domain.Message(domain.TemplateFirstPage, "That's already the first page."))
			return domain.Reprompt(pagePrompt(state, opts)), nil
		}
		state.PageIndex--
		return domain.Reprompt(pagePrompt(state, opts)), nil
	}

	if ordinal, ok := parseOrdinal(answer); ok {
		index := state.PageIndex*opts.PageSize + ordinal - 1
		if index < 0 || index >= total {
			state.ClearCandidates()
			return domain.End(Selection{Outcome: OutcomeNotFound}), nil
		}
		picked := state.Candidates[index]
		state.ClearCandidates()
		return domain.End(Selection{Outcome: OutcomeChosen, Candidate: &picked}), nil
	}

	if picked, ok := matchByName(state.Candidates, answer); ok {
		state.ClearCandidates()
		return domain.End(Selection{Outcome: OutcomeChosen, Candidate: &picked}), nil
	}

	state.ClearCandidates()
	return domain.End(Selection{Outcome: OutcomeNotFound}), nil
}

func decodeChoiceOptions(raw map[string]any) (ChoiceOptions, error) {
	opts := ChoiceOptions{}
	if err := mapstructure.WeakDecode(raw, &opts); err != nil {
		return opts, fmt.Errorf("choice: decoding options: %w", err)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PromptID == "" {
		opts.PromptID = ChoiceName
	}
	if opts.Template == "" {
		opts.Template = "core.choice"
	}
	return opts, nil
}

func pagePrompt(state *domain.State, opts ChoiceOptions) domain.Prompt {
	total := len(state.Candidates)
	start := state.PageIndex * opts.PageSize
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(opts.Title)
		b.WriteString("\n")
	}
	names := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "%d. %s\n", i-start+1, state.Candidates[i].Name)
		names = append(names, state.Candidates[i].Name)
	}
	hasNext := end < total
	hasPrev := state.PageIndex > 0
	switch {
	case hasNext && hasPrev:
		b.WriteString(`Say a number or a name, or "next"/"previous" for more.`)
	case hasNext:
		b.WriteString(`Say a number or a name, or "next" for more.`)
	case hasPrev:
		b.WriteString(`Say a number or a name, or "previous" to go back.`)
	default:
		b.WriteString("Say a number or a name.")
	}

	return domain.Prompt{
		ID:       opts.PromptID,
		Template: opts.Template,
		Text:     b.String(),
		Data: map[string]any{
			"options":  names,
			"page":     state.PageIndex,
			"total":    total,
			"has_next": hasNext,
			"has_prev": hasPrev,
		},
		NonInterruptible: opts.NonInterruptible,
	}
}

var ordinalWords = map[string]int{
	"one": 1, "first": 1,
	"two": 2, "second": 2,
	"three": 3, "third": 3,
	"four": 4, "fourth": 4,
	"five": 5, "fifth": 5,
}

func parseOrdinal(answer string) (int, bool) {
	answer = strings.TrimSuffix(answer, ".")
	answer = strings.TrimPrefix(answer, "option ")
	answer = strings.TrimPrefix(answer, "number ")
	if n, err := strconv.Atoi(answer); err == nil {
		return n, true
	}
	if n, ok := ordinalWords[answer]; ok {
		return n, true
	}
	return 0, false
}

func matchByName(candidates []domain.Candidate, answer string) (domain.Candidate, bool) {
	if answer == "" {
		return domain.Candidate{}, false
	}
	for _, c := range candidates {
		if strings.ToLower(c.Name) == answer || strings.ToLower(c.Key) == answer {
			return c, true
		}
	}
	matched := -1
	for i, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), answer) {
			if matched >= 0 {
				return domain.Candidate{}, false
			}
			matched = i
		}
	}
	if matched >= 0 {
		return candidates[matched], true
	}
	return domain.Candidate{}, false
}
