package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, step *registry.StepContext) (domain.StepResult, error) {
	return domain.End(nil), nil
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := registry.New()
	_, err := reg.Resolve("missing")
	assert.ErrorIs(t, err, domain.ErrDialogNotFound)
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := registry.New()
	reg.Register(registry.Dialog{Name: "book-room", Steps: []registry.StepFunc{noop, noop}})

	d, err := reg.Resolve("book-room")
	require.NoError(t, err)
	assert.Equal(t, "book-room", d.Name)
	assert.Len(t, d.Steps, 2)
	assert.Contains(t, reg.Names(), "book-room")
}

func TestStepContext_RepliesOrdered(t *testing.T) {
	sc := registry.NewStepContext(domain.NewState("c1"), domain.MessageTurn("hi"))
	sc.Reply(domain.Message("a", "first"))
	sc.Reply(domain.Message("b", "second"))

	replies := sc.Replies()
	require.Len(t, replies, 2)
	assert.Equal(t, "first", replies[0].Text)
	assert.Equal(t, "second", replies[1].Text)
}
