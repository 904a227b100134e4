package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

func TestElevateRunsAsAdministratorAndRestoresCaller(t *testing.T) {
	ctx := ContextWithActor(context.Background(), Actor{User: "cs@tk.ng", Roles: []string{"Customer Service"}})

	var inside Actor
	err := Elevate(ctx, func(elevated context.Context) error {
		var err error
		inside, err = RequireAdministrator(elevated)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, Administrator, inside.User)
	assert.Equal(t, "cs@tk.ng", inside.OnBehalfOf)

	after, ok := ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "cs@tk.ng", after.User)
	assert.False(t, after.IsAdministrator())
}

func TestElevatePropagatesErrorsWithoutLeaking(t *testing.T) {
	ctx := ContextWithActor(context.Background(), Actor{User: "cs@tk.ng"})
	boom := errors.New("boom")

	err := Elevate(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = RequireAdministrator(ctx)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestElevateRequiresCaller(t *testing.T) {
	called := false
	err := Elevate(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
	assert.False(t, called)
}

func TestNestedElevationKeepsOriginalCaller(t *testing.T) {
	ctx := ContextWithActor(context.Background(), Actor{User: "cs@tk.ng"})
	err := Elevate(ctx, func(outer context.Context) error {
		return Elevate(outer, func(inner context.Context) error {
			actor, _ := ActorFromContext(inner)
			assert.Equal(t, "cs@tk.ng", actor.OnBehalfOf)
			return nil
		})
	})
	require.NoError(t, err)
}
