package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		in  string
		out string
	}{
		{in: "", out: ""},
		{in: "Some User", out: "someuser"},
		{in: "the_name-99!", out: "thename99"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, Slugify(fix.in))
	}
}

func TestFold(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("gdansk", Fold("Gdańsk"))
	assert.Equal("uber", Fold("Über"))
	assert.Equal("plain", Fold("plain"))
}

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		in  string
		out string
	}{
		{in: "Some   User", out: "some user"},
		{in: "  SOME\tuser ", out: "some user"},
		{in: "someuser", out: "someuser"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, Normalize(fix.in))
	}
}

func TestTokenizeName(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		in  string
		out []string
	}{
		{in: "", out: []string{}},
		{in: "MysticWizard", out: []string{"mystic", "wizard"}},
		{in: "mystic-wizard_99", out: []string{"mystic", "wizard", "99"}},
		{in: "XMLParser", out: []string{"xml", "parser"}},
		{in: "a b c", out: []string{}},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, TokenizeName(fix.in))
	}
}
