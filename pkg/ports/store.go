package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// StateStore defines the interface for persisting conversation state.
// Turns may be separated by seconds or days; everything a dialog needs to
// resume must round-trip through here.
type StateStore interface {
	// Save persists the state for a given conversation ID.
	Save(ctx context.Context, conversationID string, state *domain.State) error

	// Load retrieves the state for a given conversation ID.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.State, error)

	// Delete removes the state for a given conversation ID.
	Delete(ctx context.Context, conversationID string) error
}

// Lister is implemented by stores that can enumerate active conversations.
// Used by operational tooling (CLI inspection), not by the engine itself.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}
