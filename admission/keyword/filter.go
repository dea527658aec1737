package keyword

import (
	"fmt"
	"regexp"
	"strings"
)

// look-alike substitutions commonly used to dodge naive string filters
var confusables = map[rune]string{
	'a': "aа@4",
	'b': "b8",
	'c': "cс",
	'e': "eе3",
	'i': "iі1!l",
	'l': "l1|i",
	'o': "oо0",
	's': "s5$",
	't': "t7+",
	'u': "uц",
	'x': "xх",
	'y': "yу",
	'z': "z2",
}

// A Filter matches one literal filter string permissively: case
// insensitive, tolerant of common look-alike characters, and allowing
// separator characters between the filter's letters.
type Filter struct {
	// The literal string the pattern was built from, used verbatim in
	// rejection reasons.
	Original string
	pattern  *regexp.Regexp
	full     *regexp.Regexp
}

// CompileFilter builds a permissive pattern from a literal filter string.
// Returns an error only for strings that produce an invalid expression.
func CompileFilter(orig string) (*Filter, error) {
	var b strings.Builder
	b.WriteString(`(?i)`)
	first := true
	for _, r := range strings.ToLower(orig) {
		if !first {
			// tolerate separators and repeats between characters
			b.WriteString(`[\s._\-]*`)
		}
		first = false
		if subs, ok := confusables[r]; ok {
			b.WriteString("[" + regexp.QuoteMeta(subs) + "]")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	expr := b.String()
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", orig, err)
	}
	full, err := regexp.Compile(`\A(?:` + expr + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", orig, err)
	}
	return &Filter{Original: orig, pattern: pattern, full: full}, nil
}

// MustCompileFilter is like CompileFilter but panics on error. Intended
// for static filter chains.
func MustCompileFilter(orig string) *Filter {
	f, err := CompileFilter(orig)
	if err != nil {
		panic(err)
	}
	return f
}

// CompileFilters compiles a list of literal filter strings.
func CompileFilters(origs []string) ([]*Filter, error) {
	out := make([]*Filter, 0, len(origs))
	for _, o := range origs {
		f, err := CompileFilter(o)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Matches reports whether the value contains the filter pattern. The value
// is checked both raw and unicode-folded.
func (f *Filter) Matches(val string) bool {
	return f.pattern.MatchString(val) || f.pattern.MatchString(Fold(val))
}

// MatchesFull reports whether the entire value matches the filter pattern.
func (f *Filter) MatchesFull(val string) bool {
	return f.full.MatchString(val) || f.full.MatchString(Fold(val))
}
