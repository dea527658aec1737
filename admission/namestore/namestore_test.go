package namestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMemNameStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemNameStore()
	assert.NoError(s.Observe(ctx, "u1", "first"))
	assert.NoError(s.Observe(ctx, "u1", "second"))
	assert.NoError(s.Observe(ctx, "u1", "first"))

	names, err := s.UsernamesOf(ctx, "u1")
	assert.NoError(err)
	assert.Equal([]string{"first", "second"}, names)

	names, err = s.UsernamesOf(ctx, "unknown")
	assert.NoError(err)
	assert.Empty(names)

	assert.NoError(s.Observe(ctx, "u2", "third"))
	history, err := s.UsernamesOfMany(ctx, []string{"u1", "u2", "unknown"})
	assert.NoError(err)
	assert.Equal([]string{"first", "second"}, history["u1"])
	assert.Equal([]string{"third"}, history["u2"])
	assert.NotContains(history, "unknown")
}

func TestGormNameStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(err)
	s, err := NewGormNameStore(db)
	require.NoError(err)

	require.NoError(s.Observe(ctx, "u1", "first"))
	require.NoError(s.Observe(ctx, "u1", "second"))
	// duplicate observation is a no-op
	require.NoError(s.Observe(ctx, "u1", "first"))

	names, err := s.UsernamesOf(ctx, "u1")
	require.NoError(err)
	assert.ElementsMatch([]string{"first", "second"}, names)

	require.NoError(s.Observe(ctx, "u2", "third"))
	history, err := s.UsernamesOfMany(ctx, []string{"u1", "u2", "unknown"})
	require.NoError(err)
	assert.ElementsMatch([]string{"first", "second"}, history["u1"])
	assert.ElementsMatch([]string{"third"}, history["u2"])
	assert.NotContains(history, "unknown")
}
