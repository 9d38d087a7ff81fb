// Package spell holds the spelling correctors that feed candidate words to the suggester.
//
// A Corrector splits a query into words and reports, per word, the alternative spellings it
// knows. A word the corrector has nothing to say about comes back with no suggestions.
package spell

import (
	"context"
	"strings"
	"unicode"
)

// Corrector proposes alternative spellings for the words of a query.
type Corrector interface {
	Correct(ctx context.Context, query string) ([]Correction, error)
}

// Correction is the outcome for one query word. Suggestions is empty when the word needs no correction.
type Correction struct {
	Word        string
	Suggestions []string
}

// CorrectorFunc adapts a function to the Corrector interface.
type CorrectorFunc func(ctx context.Context, query string) ([]Correction, error)

func (f CorrectorFunc) Correct(ctx context.Context, query string) ([]Correction, error) {
	return f(ctx, query)
}

// Words splits query on whitespace and trims surrounding punctuation from each word.
func Words(query string) []string {
	fields := strings.Fields(query)
	words := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Static corrects words from a fixed table. Lookups try the word as written, then lowercased.
type Static map[string][]string

func (s Static) Correct(ctx context.Context, query string) ([]Correction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Correction
	for _, w := range Words(query) {
		sugg, ok := s[w]
		if !ok {
			sugg = s[strings.ToLower(w)]
		}
		out = append(out, Correction{Word: w, Suggestions: sugg})
	}
	return out, nil
}
