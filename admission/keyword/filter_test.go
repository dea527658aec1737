package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSubstring(t *testing.T) {
	assert := assert.New(t)

	f := MustCompileFilter("spam")
	assert.True(f.Matches("spam"))
	assert.True(f.Matches("SPAM"))
	assert.True(f.Matches("xXspamXx"))
	assert.True(f.Matches("s p a m"))
	assert.True(f.Matches("5p4m"))
	assert.False(f.Matches("span"))
}

func TestFilterFullMatch(t *testing.T) {
	assert := assert.New(t)

	f := MustCompileFilter("spam")
	assert.True(f.MatchesFull("spam"))
	assert.True(f.MatchesFull("Spam"))
	assert.True(f.MatchesFull("s.p.a.m"))
	// full match never matches a proper substring
	assert.False(f.MatchesFull("xXspamXx"))
	assert.False(f.MatchesFull("spammer"))
}

func TestFilterLookalikes(t *testing.T) {
	assert := assert.New(t)

	f := MustCompileFilter("evil")
	assert.True(f.Matches("3v1l"))
	assert.True(f.Matches("e-v-i-l"))
	assert.False(f.Matches("good"))
}

func TestCompileFilters(t *testing.T) {
	assert := assert.New(t)

	fs, err := CompileFilters([]string{"one", "two"})
	assert.NoError(err)
	assert.Len(fs, 2)
	assert.Equal("one", fs[0].Original)
}
