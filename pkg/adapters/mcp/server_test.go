package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
)

type fakeEngine struct {
	states map[string]*domain.State
	turns  []domain.Turn
}

func (f *fakeEngine) ProcessTurn(_ context.Context, conversationID string, turn domain.Turn) ([]domain.Activity, error) {
	f.turns = append(f.turns, turn)
	if f.states == nil {
		f.states = make(map[string]*domain.State)
	}
	state := domain.NewState(conversationID)
	state.Stack = []domain.Frame{{Dialog: "rooms/book", Waiting: true}}
	f.states[conversationID] = state
	return []domain.Activity{domain.Message("q", "Which building?")}, nil
}

func (f *fakeEngine) Inspect(_ context.Context, conversationID string) (*domain.State, error) {
	state, ok := f.states[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return state, nil
}

func (f *fakeEngine) EndConversation(_ context.Context, conversationID string) error {
	delete(f.states, conversationID)
	return nil
}

func TestHandleSendMessage(t *testing.T) {
	engine := &fakeEngine{}
	s := NewServer(engine, "test")

	result, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"conversation_id": "c1",
		"text":            "find a meeting room",
		"locale":          "en-US",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", result.ConversationID)
	require.Len(t, result.Replies, 1)
	assert.Equal(t, "Which building?", result.Replies[0].Text)
	assert.True(t, result.Active)

	require.Len(t, engine.turns, 1)
	assert.Equal(t, domain.ActivityMessage, engine.turns[0].Type)
	assert.Equal(t, "en-US", engine.turns[0].Locale)
}

func TestHandleSendEvent(t *testing.T) {
	engine := &fakeEngine{}
	s := NewServer(engine, "test")

	_, err := s.handleSendEvent(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"conversation_id": "c1",
		"value":           `{"building":"Building 2"}`,
	})
	require.NoError(t, err)
	require.Len(t, engine.turns, 1)
	assert.Equal(t, domain.ActivityEvent, engine.turns[0].Type)
	assert.Equal(t, "Building 2", engine.turns[0].Value["building"])

	_, err = s.handleSendEvent(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"conversation_id": "c1",
		"value":           "not json",
	})
	assert.Error(t, err)
}
