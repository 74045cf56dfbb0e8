// Package demoskill ships the meeting-rooms skill used by the parley CLI:
// a slot-filling booking flow with disambiguation, retry-bounded prompts and
// a keyword recognizer. It doubles as a reference for wiring real skills.
package demoskill

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/dialogs"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/skill"
)

var rooms = map[string][]domain.Candidate{
	"building 1": {
		{Name: "Huddle 1.04", Key: "r-104", Payload: map[string]any{"seats": 4}},
	},
	"building 2": {
		{Name: "Boardroom 2.01", Key: "r-201", Payload: map[string]any{"seats": 14}},
		{Name: "Huddle 2.07", Key: "r-207", Payload: map[string]any{"seats": 4}},
		{Name: "Focus 2.12", Key: "r-212", Payload: map[string]any{"seats": 2}},
		{Name: "Workshop 2.20", Key: "r-220", Payload: map[string]any{"seats": 24}},
	},
	"building 3": {
		{Name: "Skyline 3.30", Key: "r-330", Payload: map[string]any{"seats": 10}},
		{Name: "Garden 3.01", Key: "r-301", Payload: map[string]any{"seats": 8}},
	},
}

var people = []domain.Candidate{
	{Name: "Alex Kim", Key: "alex.kim"},
	{Name: "Alex Morgan", Key: "alex.morgan"},
	{Name: "Alexa Reis", Key: "alexa.reis"},
	{Name: "Dana Wu", Key: "dana.wu"},
	{Name: "Lee Costa", Key: "lee.costa"},
}

// Directory is the demo people-lookup collaborator.
type Directory struct{}

// Search filters the demo staff list by substring on the name.
func (Directory) Search(_ context.Context, criteria map[string]any) ([]domain.Candidate, error) {
	query, _ := criteria["name"].(string)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	var out []domain.Candidate
	for _, p := range people {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Skill returns the rooms skill description.
func Skill() *skill.Skill {
	return &skill.Skill{
		Name:     "rooms",
		Welcome:  "Hi! I can **find and book meeting rooms**. Try \"find a meeting room\" or \"invite dana\".",
		Fallback: "Sorry, I didn't catch that. I can find and book meeting rooms.",
		Bindings: map[string]skill.Binding{
			"BookRoom": {Dialog: "rooms/book"},
			"Invite": {
				Dialog: "rooms/invite",
				Digest: func(rec *domain.Recognition, state *domain.State) {
					if name, ok := skill.FirstString(rec.Entities, "name"); ok {
						state.Slots["contact_query"] = name
					}
				},
			},
		},
	}
}

// Recognizer returns the keyword NLU used by the demo. Real deployments
// plug a hosted NLU service in through the same port.
func Recognizer() ports.Recognizer {
	return ports.RecognizerFunc(func(_ context.Context, turn domain.Turn) (domain.Recognition, error) {
		text := strings.ToLower(turn.Text)
		switch {
		case strings.Contains(text, "never mind") || text == "cancel" || text == "stop":
			return domain.Recognition{Intent: domain.IntentCancel, Score: 0.9}, nil
		case text == "help" || text == "?":
			return domain.Recognition{Intent: domain.IntentHelp, Score: 0.9}, nil
		case strings.Contains(text, "sign out") || text == "logout":
			return domain.Recognition{Intent: domain.IntentLogout, Score: 0.9}, nil
		case strings.Contains(text, "room"):
			return domain.Recognition{Intent: "BookRoom", Score: 0.8}, nil
		case strings.HasPrefix(text, "invite "):
			return domain.Recognition{
				Intent: "Invite",
				Score:  0.8,
				Entities: map[string]any{
					"name": strings.TrimSpace(strings.TrimPrefix(text, "invite ")),
				},
			}, nil
		}
		return domain.Recognition{}, nil
	})
}

// NewEngine builds a fully wired demo engine: skill, recognizer and all
// dialogs. Extra options (store, hooks, logger) are passed through.
func NewEngine(opts ...parley.Option) (*parley.Engine, error) {
	eng, err := parley.New(Skill(), append([]parley.Option{
		parley.WithRecognizer(Recognizer()),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	Install(eng)
	return eng, nil
}

// Install registers the demo dialogs on an existing engine.
func Install(eng *parley.Engine) {
	eng.Register(
		bookRoomDialog(),
		inviteDialog(Directory{}),
		dialogs.Prompt("duration", dialogs.PromptConfig{
			Question: domain.Prompt{Template: "rooms.duration", Text: "How long do you need the room for?"},
		}),
		dialogs.Prompt("building", dialogs.PromptConfig{
			Question: domain.Prompt{Template: "rooms.building", Text: "Which building? (Building 1, 2 or 3)"},
			Retry:    domain.Prompt{Template: "rooms.building", Text: "I don't know that building. Which building? (Building 1, 2 or 3)"},
			Validate: func(_ context.Context, input string, _ *domain.State) (any, bool) {
				key := strings.ToLower(strings.TrimSpace(input))
				if _, ok := rooms[key]; ok {
					return strings.TrimSpace(input), true
				}
				return nil, false
			},
		}),
		dialogs.Confirm("confirm_room", domain.Prompt{Template: "rooms.confirm", Text: "Shall I book it?"}, 0),
		dialogs.Prompt("participants", dialogs.PromptConfig{
			Question: domain.Prompt{Template: "rooms.participants", Text: "Who should I invite? (or say \"nobody\")"},
		}),
	)
}

func bookRoomDialog() registry.Dialog {
	return registry.Dialog{
		Name: "rooms/book",
		Steps: []registry.StepFunc{
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				return domain.Begin(dialogs.PromptName("duration"), nil), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				sc.State.Slots["duration"] = sc.Input
				return domain.Begin(dialogs.PromptName("building"), nil), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				building, _ := sc.Input.(string)
				sc.State.Slots["building"] = building
				sc.State.SetCandidates(rooms[strings.ToLower(building)])
				opts := dialogs.NewChoiceOptions("room", "Here's what's free:")
				opts.AutoSelectSingle = false
				return domain.Begin(dialogs.ChoiceName, opts.Map()), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				sel, _ := sc.Input.(dialogs.Selection)
				if sel.Outcome == dialogs.OutcomeNotFound {
					sc.Reply(domain.Message("rooms.none", "I couldn't find a free room there."))
					return domain.End(nil), nil
				}
				sc.State.Slots["room"] = sel.Candidate.Name
				seats := sel.Candidate.Payload["seats"]
				sc.Reply(domain.Message("rooms.found",
					fmt.Sprintf("**%s** seats %v.", sel.Candidate.Name, seats)))
				return domain.Begin(dialogs.PromptName("confirm_room"), nil), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				if confirmed, _ := sc.Input.(bool); !confirmed {
					sc.Reply(domain.Message("rooms.declined", "Okay, I won't book it."))
					return domain.End(nil), nil
				}
				room, _ := sc.State.Slots["room"].(string)
				duration, _ := sc.State.Slots["duration"].(string)
				sc.Reply(domain.Message("rooms.booked",
					fmt.Sprintf("**%s** is booked for %s.", room, duration)))
				return domain.Begin(dialogs.PromptName("participants"), nil), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				who, _ := sc.Input.(string)
				if strings.EqualFold(strings.TrimSpace(who), "nobody") {
					sc.Reply(domain.Message("rooms.done", "All set. Enjoy your meeting!"))
					return domain.End(nil), nil
				}
				sc.State.Slots["contact_query"] = who
				return domain.Replace("rooms/invite", nil), nil
			},
		},
	}
}

func inviteDialog(directory ports.CandidateSource) registry.Dialog {
	return registry.Dialog{
		Name: "rooms/invite",
		Steps: []registry.StepFunc{
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				query, _ := sc.State.Slots["contact_query"].(string)
				found, err := directory.Search(ctx, map[string]any{"name": query})
				if err != nil {
					return domain.Fail(domain.FailServiceError, err), nil
				}
				sc.State.SetCandidates(found)
				opts := dialogs.NewChoiceOptions("contact", "Which one do you mean?")
				return domain.Begin(dialogs.ChoiceName, opts.Map()), nil
			},
			func(ctx context.Context, sc *registry.StepContext) (domain.StepResult, error) {
				sel, _ := sc.Input.(dialogs.Selection)
				if sel.Outcome == dialogs.OutcomeNotFound {
					sc.Reply(domain.Message("rooms.no_contact", "I couldn't find anyone by that name."))
					return domain.End(nil), nil
				}
				invited, _ := sc.State.Slots["invited"].([]any)
				sc.State.Slots["invited"] = append(invited, sel.Candidate.Key)
				sc.Reply(domain.Message("rooms.invited",
					fmt.Sprintf("Invited **%s**.", sel.Candidate.Name)))
				return domain.End(nil), nil
			},
		},
	}
}
