// Package normalize maps free-form respondent text onto one of the three SDQ
// answer options. The mapping is deterministic and auditable; anything it
// cannot place returns model.CategoryUnresolved, which callers must handle by
// re-prompting or interpreting, never by picking a default.
package normalize

import (
	"strings"

	"github.com/haimtran/sdq-assistant/internal/model"
)

// Multi-word phrases are matched by substring; short single words are matched
// as whole tokens so "no" does not fire inside "now and then".
var (
	notTruePhrases       = []string{"hardly ever", "not really"}
	notTrueWords         = []string{"never", "rarely", "no"}
	certainlyTruePhrases = []string{"every time"}
	certainlyTrueWords   = []string{"always", "very", "definitely", "constantly", "frequently"}
	somewhatTruePhrases  = []string{"in between", "now and then"}
	somewhatTrueWords    = []string{"sometimes", "occasionally"}
)

// Option resolves text to an answer option, in priority order: canonical
// phrase, collapsed single-token variant, frequency-adverb heuristics,
// otherwise CategoryUnresolved.
func Option(text string) model.Category {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return model.CategoryUnresolved
	}

	// Canonical phrases, anywhere in the text.
	switch {
	case strings.Contains(lower, "not true"):
		return model.CategoryNotTrue
	case strings.Contains(lower, "certainly true"):
		return model.CategoryCertainlyTrue
	case strings.Contains(lower, "somewhat true"):
		return model.CategorySomewhatTrue
	}

	// Collapsed single-token variants.
	switch lower {
	case "nottrue":
		return model.CategoryNotTrue
	case "certainlytrue":
		return model.CategoryCertainlyTrue
	case "somewhattrue":
		return model.CategorySomewhatTrue
	}

	tokens := tokenize(lower)
	switch {
	case matches(lower, tokens, notTruePhrases, notTrueWords):
		return model.CategoryNotTrue
	case matches(lower, tokens, certainlyTruePhrases, certainlyTrueWords):
		return model.CategoryCertainlyTrue
	case matches(lower, tokens, somewhatTruePhrases, somewhatTrueWords):
		return model.CategorySomewhatTrue
	}

	return model.CategoryUnresolved
}

func matches(lower string, tokens map[string]bool, phrases, words []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, w := range words {
		if tokens[w] {
			return true
		}
	}
	return false
}

func tokenize(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
