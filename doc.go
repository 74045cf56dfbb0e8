/*
Package parley is a stacked, resumable dialog orchestration engine for
building multi-turn conversational skills.

A skill is a set of named dialogs; each dialog is an ordered list of
waterfall steps. The engine runs exactly one step chain per inbound turn,
suspends at prompts, and persists the whole dialog stack between turns, so
a conversation can resume after arbitrary gaps and across process restarts.

# Concept

All conversational memory lives in a serializable State: the slot values
collected so far, the pending candidate list, per-prompt retry counters and
the stack of active dialog frames. Steps receive state, frame options and
the previous step's result explicitly and answer with one of a closed set
of results: Next, Suspend, Reprompt, Replace, Begin, End or Fail. The
engine owns everything around the steps: intent routing, cancel/help/logout
interruptions, disambiguation of ambiguous search results, retry ceilings
and the uniform abort path that never leaves a user mid-flow with stale
state.

This hexagonal layout keeps the core independent of transports and
backends. State stores, NLU recognizers, outbound channels and credential
collaborators plug in through the ports package; in-memory and Redis
adapters ship with the module.

# Usage

Describe a skill, register its dialogs and feed the engine one turn at a
time:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/parley"
		"github.com/aretw0/parley/pkg/dialogs"
		"github.com/aretw0/parley/pkg/domain"
		"github.com/aretw0/parley/pkg/skill"
	)

	func main() {
		sk := &skill.Skill{
			Name:     "echo",
			Welcome:  "Hi! Tell me to ask you something.",
			Fallback: "I only know how to ask questions.",
			Bindings: map[string]skill.Binding{
				"Ask": {Dialog: dialogs.PromptName("name")},
			},
		}

		eng, err := parley.New(sk, parley.WithRecognizer(myRecognizer()))
		if err != nil {
			log.Fatal(err)
		}
		eng.Register(dialogs.Prompt("name", dialogs.PromptConfig{
			Question: domain.Prompt{Text: "What's your name?"},
		}))

		ctx := context.Background()
		replies, err := eng.ProcessTurn(ctx, "conv-1", domain.MessageTurn("ask me"))
		if err != nil {
			log.Fatal(err)
		}
		for _, a := range replies {
			fmt.Println(a.Text)
		}
	}
*/
package parley
