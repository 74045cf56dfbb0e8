package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.New()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_StackIsolation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	state := domain.NewState("conv-1")
	state.Stack = []domain.Frame{{Dialog: "root", Step: 0}}
	require.NoError(t, store.Save(ctx, "conv-1", state))

	// Advancing the caller's frame must not advance the stored one.
	state.Stack[0].Step = 5

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Stack[0].Step)
}
