package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	conversationID := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(conversationID)
		state.Slots["destination"] = "Building 2"
		state.Retries["duration"] = 2
		state.Stack = []domain.Frame{
			{Dialog: "book-room", Step: 1, Waiting: true, Prompt: &domain.Prompt{ID: "duration", Text: "How long?"}},
		}
		state.SetCandidates([]domain.Candidate{{Name: "Room 2001", Key: "2001"}})

		err := store.Save(ctx, conversationID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conversationID, loaded.ConversationID)
		assert.Equal(t, "Building 2", loaded.Slots["destination"])
		require.Len(t, loaded.Stack, 1)
		assert.Equal(t, "book-room", loaded.Stack[0].Dialog)
		assert.Equal(t, 1, loaded.Stack[0].Step)
		assert.True(t, loaded.Stack[0].Waiting)
		require.NotNil(t, loaded.Stack[0].Prompt)
		assert.Equal(t, "duration", loaded.Stack[0].Prompt.ID)
		require.Len(t, loaded.Candidates, 1)
		assert.Equal(t, "Room 2001", loaded.Candidates[0].Name)
		// Retry counts survive persistence; JSON may widen the int.
		assert.NotNil(t, loaded.Retries["duration"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, conversationID, domain.NewState(conversationID))
		require.NoError(t, err)

		err = store.Delete(ctx, conversationID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(conversationID)
		state.Slots["subject"] = "standup"
		require.NoError(t, store.Save(ctx, conversationID, state))

		// Mutating the saved pointer must not leak into the store.
		state.Slots["subject"] = "retro"

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err)
		assert.Equal(t, "standup", loaded.Slots["subject"])
	})

	if lister, ok := store.(Lister); ok {
		t.Run("List", func(t *testing.T) {
			require.NoError(t, store.Save(ctx, conversationID, domain.NewState(conversationID)))

			ids, err := lister.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, ids, conversationID)
		})
	}
}
