package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// Recognizer is the NLU collaborator. It is consumed once at the start of
// each message turn; entities are digested into state by skill-specific
// mapping rules.
type Recognizer interface {
	Recognize(ctx context.Context, turn domain.Turn) (domain.Recognition, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, turn domain.Turn) (domain.Recognition, error)

func (f RecognizerFunc) Recognize(ctx context.Context, turn domain.Turn) (domain.Recognition, error) {
	return f(ctx, turn)
}

// Channel delivers outbound activities. Rendering (cards, speech strings,
// localization) is the channel's responsibility.
type Channel interface {
	Send(ctx context.Context, conversationID string, activities ...domain.Activity) error
}

// Authorizer revokes stored credentials when the user asks to sign out.
type Authorizer interface {
	SignOut(ctx context.Context, conversationID string) error
}

// CandidateSource is how domain services (mail, calendar, maps, directory)
// surface search results to the core: an ordered candidate list. The core
// never branches on which domain produced it.
type CandidateSource interface {
	Search(ctx context.Context, criteria map[string]any) ([]domain.Candidate, error)
}
