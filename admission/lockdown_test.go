package admission

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/admission/lockstore"
)

func TestLockdownController(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	l := NewLockdownController(lockstore.NewMemLockStore(), slog.Default())

	active, err := l.IsActive(ctx, "c1")
	require.NoError(err)
	assert.False(active)

	require.NoError(l.Activate(ctx, "c1", time.Now().Add(time.Hour)))
	active, err = l.IsActive(ctx, "c1")
	require.NoError(err)
	assert.True(active)

	// other communities are unaffected
	active, err = l.IsActive(ctx, "c2")
	require.NoError(err)
	assert.False(active)

	require.NoError(l.Deactivate(ctx, "c1"))
	active, err = l.IsActive(ctx, "c1")
	require.NoError(err)
	assert.False(active)

	// re-activation overwrites, last write wins
	require.NoError(l.Activate(ctx, "c1", time.Now().Add(time.Hour)))
	require.NoError(l.Activate(ctx, "c1", time.Now().Add(-time.Minute)))
	active, err = l.IsActive(ctx, "c1")
	require.NoError(err)
	assert.False(active)
}

func TestEngineLockdownWithoutController(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Lockdowns = nil
	ctx := context.Background()

	err := eng.ActivateLockdown(ctx, "c1", time.Now().Add(time.Hour))
	assert.ErrorIs(err, ErrNoLockdowns)
	err = eng.DeactivateLockdown(ctx, "c1")
	assert.ErrorIs(err, ErrNoLockdowns)
}
