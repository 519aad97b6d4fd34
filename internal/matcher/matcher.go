// Package matcher compiles blacklist phrases into order-independent word patterns.
package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const matchTimeout = time.Second

// Pattern matches text containing every word of one phrase, in any order.
type Pattern struct {
	phrase string
	re     *regexp2.Regexp
}

// Phrase returns the source phrase.
func (p *Pattern) Phrase() string { return p.phrase }

func (p *Pattern) String() string { return p.re.String() }

// Match reports whether text contains every word of the phrase.
func (p *Pattern) Match(text string) bool {
	ok, err := p.re.MatchString(text)
	// a timeout is the only possible error; treat it as no match
	return err == nil && ok
}

// Compile builds one pattern per non-blank phrase. Each whitespace-separated
// token becomes a lookahead requiring the token as a whole word anywhere in
// the text, so "Senior Software" matches "Software Engineer (Senior)".
func Compile(phrases []string) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(phrases))
	for _, phrase := range phrases {
		tokens := strings.Fields(phrase)
		if len(tokens) == 0 {
			continue
		}

		var b strings.Builder
		for _, token := range tokens {
			b.WriteString(`(?=.*(?<!\w)`)
			b.WriteString(regexp2.Escape(token))
			b.WriteString(`(?!\w))`)
		}

		re, err := regexp2.Compile(b.String(), regexp2.IgnoreCase|regexp2.Singleline)
		if err != nil {
			return nil, fmt.Errorf("compile phrase %q: %w", phrase, err)
		}
		re.MatchTimeout = matchTimeout

		patterns = append(patterns, &Pattern{phrase: strings.Join(tokens, " "), re: re})
	}
	return patterns, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(phrases []string) []*Pattern {
	patterns, err := Compile(phrases)
	if err != nil {
		panic(err)
	}
	return patterns
}

// Matches reports whether any pattern matches text.
func Matches(patterns []*Pattern, text string) bool {
	_, ok := FirstMatch(patterns, text)
	return ok
}

// FirstMatch returns the first pattern matching text.
func FirstMatch(patterns []*Pattern, text string) (*Pattern, bool) {
	for _, p := range patterns {
		if p.Match(text) {
			return p, true
		}
	}
	return nil, false
}
