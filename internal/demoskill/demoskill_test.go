package demoskill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/demoskill"
	"github.com/aretw0/parley/pkg/domain"
)

func say(t *testing.T, eng *parley.Engine, text string) []domain.Activity {
	t.Helper()
	replies, err := eng.ProcessTurn(context.Background(), "demo", domain.MessageTurn(text))
	require.NoError(t, err)
	return replies
}

func TestDemo_BookingWithInviteHandoff(t *testing.T) {
	eng, err := demoskill.NewEngine()
	require.NoError(t, err)

	replies := say(t, eng, "find a meeting room")
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "How long")

	say(t, eng, "1 hour")
	replies = say(t, eng, "Building 2")
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "1. Boardroom 2.01")
	assert.Contains(t, replies[0].Text, "3. Focus 2.12")

	replies = say(t, eng, "2")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "Huddle 2.07")
	assert.Contains(t, replies[1].Text, "Shall I book it?")

	replies = say(t, eng, "yes")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "booked for 1 hour")
	assert.Contains(t, replies[1].Text, "Who should I invite?")

	// Naming a person hands the flow over to the invite dialog.
	replies = say(t, eng, "dana")
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "Invited **Dana Wu**.")

	state, err := eng.Inspect(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, []any{"dana.wu"}, state.Slots["invited"])
	assert.Empty(t, state.Stack)
}

func TestDemo_InviteIntentDisambiguates(t *testing.T) {
	eng, err := demoskill.NewEngine()
	require.NoError(t, err)

	replies := say(t, eng, "invite alex")
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "1. Alex Kim")

	replies = say(t, eng, "alex morgan")
	assert.Contains(t, replies[0].Text, "Invited **Alex Morgan**.")
}
