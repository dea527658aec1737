package admission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextVerdictLastWriterWins(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()

	c := eng.NewContext(context.Background(), TestMember("u1", "alice"), Config{Enabled: true})
	assert.True(c.Approved, "a context with no recorded reasons is approved")

	c.AddRejectionReason("first strike")
	assert.False(c.Approved)

	c.AddRejectionReason("second strike")
	assert.False(c.Approved)

	c.AddApprovalReason("overturned")
	assert.True(c.Approved, "the last reason recorded decides the verdict")

	c.AddRejectionReason("final strike")
	assert.False(c.Approved)

	// the trail is append-only: nothing gets dropped when overturned
	assert.Equal([]string{"overturned"}, c.ApprovalReasons)
	assert.Equal([]string{"first strike", "second strike", "final strike"}, c.RejectionReasons)
}

func TestContextUsernamesIncludeHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, _ := EngineTestFixture()
	ctx := context.Background()

	require.NoError(eng.Names.Observe(ctx, "u1", "oldname"))
	require.NoError(eng.Names.Observe(ctx, "u1", "alice"))

	c := eng.NewContext(ctx, TestMember("u1", "alice"), Config{Enabled: true})
	names, err := c.Usernames()
	require.NoError(err)
	assert.Contains(names, "alice")
	assert.Contains(names, "oldname")
	assert.Equal("alice", names[0], "current username comes first")

	// the current name is not duplicated even though it is also on record
	count := 0
	for _, n := range names {
		if n == "alice" {
			count++
		}
	}
	assert.Equal(1, count)
}
