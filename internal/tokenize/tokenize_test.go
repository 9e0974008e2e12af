package tokenize

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "empty", input: "", expect: []string{}},
		{name: "punctuation only", input: " ,.;+ ", expect: []string{}},
		{name: "simple sentence", input: "python developer, aws", expect: []string{"python", "developer", "aws"}},
		{name: "symbols split tokens", input: "c++ node.js ci/cd", expect: []string{"c", "node", "js", "ci", "cd"}},
		{name: "digits and underscore", input: "5+ yrs snake_case", expect: []string{"5", "yrs", "snake_case"}},
		{name: "unicode letters", input: "русский язык", expect: []string{"русский", "язык"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Words(tt.input)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
			if Count(tt.input) != len(tt.expect) {
				t.Fatalf("expected count %d, got %d", len(tt.expect), Count(tt.input))
			}
		})
	}
}

func TestTermsDropsSingleRuneTokens(t *testing.T) {
	t.Parallel()

	got := Terms("c python 5 years r go")
	expect := []string{"python", "years", "go"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}
