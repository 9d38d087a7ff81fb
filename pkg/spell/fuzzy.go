package spell

import (
	"context"
	"strings"
	"sync"

	"github.com/sajari/fuzzy"
)

// Fuzzy is a Corrector backed by a symmetric delete model.
type Fuzzy struct {
	model       *fuzzy.Model
	suggestions int

	mu    sync.RWMutex
	known map[string]struct{}
}

// NewFuzzy creates an untrained model searching up to depth edits and returning at most
// suggestions alternatives per word.
func NewFuzzy(depth, suggestions int) *Fuzzy {
	model := fuzzy.NewModel()
	model.SetDepth(depth)
	model.SetThreshold(1)
	if suggestions <= 0 {
		suggestions = DefaultDictionaryOptions().MaxSuggestions
	}
	return &Fuzzy{model: model, suggestions: suggestions, known: make(map[string]struct{})}
}

// Add trains word with its count. Trained words are always eligible as suggestions.
func (f *Fuzzy) Add(word string, count int) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	f.model.SetCount(word, count, true)
	f.mu.Lock()
	f.known[word] = struct{}{}
	f.mu.Unlock()
}

// AddWords trains every word of freqs.
func (f *Fuzzy) AddWords(freqs map[string]int) {
	for w, c := range freqs {
		f.Add(w, c)
	}
}

func (f *Fuzzy) Correct(ctx context.Context, query string) ([]Correction, error) {
	var out []Correction
	for _, w := range Words(query) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lw := strings.ToLower(w)

		f.mu.RLock()
		_, ok := f.known[lw]
		empty := len(f.known) == 0
		f.mu.RUnlock()
		if ok || empty {
			out = append(out, Correction{Word: w})
			continue
		}

		var sugg []string
		for _, s := range f.model.SpellCheckSuggestions(lw, f.suggestions) {
			if s != "" && s != lw {
				sugg = append(sugg, s)
			}
		}
		out = append(out, Correction{Word: w, Suggestions: sugg})
	}
	return out, nil
}
