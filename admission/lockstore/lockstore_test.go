package lockstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMemLockStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemLockStore()
	got, err := s.Get(ctx, "c1")
	assert.NoError(err)
	assert.Nil(got)

	exp := time.Now().Add(time.Hour).UTC()
	assert.NoError(s.Set(ctx, "c1", exp))
	got, err = s.Get(ctx, "c1")
	assert.NoError(err)
	require.NotNil(t, got)
	assert.True(got.Equal(exp))

	assert.NoError(s.Clear(ctx, "c1"))
	got, err = s.Get(ctx, "c1")
	assert.NoError(err)
	assert.Nil(got)
}

func TestGormLockStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(err)
	s, err := NewGormLockStore(db)
	require.NoError(err)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(s.Set(ctx, "c1", exp))

	// last write wins
	exp2 := exp.Add(time.Hour)
	require.NoError(s.Set(ctx, "c1", exp2))

	got, err := s.Get(ctx, "c1")
	require.NoError(err)
	require.NotNil(got)
	assert.True(got.Equal(exp2))

	require.NoError(s.Clear(ctx, "c1"))
	got, err = s.Get(ctx, "c1")
	require.NoError(err)
	assert.Nil(got)
}
