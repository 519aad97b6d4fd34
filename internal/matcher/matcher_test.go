package matcher

import "testing"

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		phrases []string
		text    string
		expect  bool
	}{
		{
			name:    "tokens in any order",
			phrases: []string{"Senior Engineer"},
			text:    "Engineer, Senior Level",
			expect:  true,
		},
		{
			name:    "non contiguous tokens",
			phrases: []string{"Senior Software"},
			text:    "Software Engineer (Senior)",
			expect:  true,
		},
		{
			name:    "whole words only",
			phrases: []string{"Senior Engineer"},
			text:    "Engineering",
			expect:  false,
		},
		{
			name:    "prefix of a word does not match",
			phrases: []string{"Engineer"},
			text:    "Engineering Manager",
			expect:  false,
		},
		{
			name:    "case insensitive",
			phrases: []string{"staff engineer"},
			text:    "STAFF ENGINEER",
			expect:  true,
		},
		{
			name:    "every token is required",
			phrases: []string{"Staff Engineer"},
			text:    "Backend Engineer",
			expect:  false,
		},
		{
			name:    "any phrase may match",
			phrases: []string{"Staff Engineer", "Backend"},
			text:    "Backend Engineer",
			expect:  true,
		},
		{
			name:    "metacharacters are literal",
			phrases: []string{"C++"},
			text:    "Senior C++ Developer",
			expect:  true,
		},
		{
			name:    "escaped token does not act as a pattern",
			phrases: []string{"C++"},
			text:    "Senior C Developer",
			expect:  false,
		},
		{
			name:    "dots are literal",
			phrases: []string{".NET"},
			text:    "ANET engineer",
			expect:  false,
		},
		{
			name:    "empty list never matches",
			phrases: nil,
			text:    "anything",
			expect:  false,
		},
		{
			name:    "blank phrases are ignored",
			phrases: []string{"   ", ""},
			text:    "anything",
			expect:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			patterns, err := Compile(tt.phrases)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			if got := Matches(patterns, tt.text); got != tt.expect {
				t.Fatalf("Matches(%q, %q) = %v, expected %v", tt.phrases, tt.text, got, tt.expect)
			}
		})
	}
}

func TestCompileNormalizesPhrase(t *testing.T) {
	patterns := MustCompile([]string{"  Senior\t Engineer "})
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Phrase() != "Senior Engineer" {
		t.Fatalf("unexpected phrase: %q", patterns[0].Phrase())
	}
}

func TestFirstMatchReturnsMatchingPhrase(t *testing.T) {
	patterns := MustCompile([]string{"Recruiter", "Staff Engineer"})

	p, ok := FirstMatch(patterns, "Engineer (Staff)")
	if !ok {
		t.Fatalf("expected a match")
	}
	if p.Phrase() != "Staff Engineer" {
		t.Fatalf("unexpected phrase: %q", p.Phrase())
	}
}
