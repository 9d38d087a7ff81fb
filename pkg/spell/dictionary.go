package spell

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/hbollon/go-edlib"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DictionaryOptions tune the edit distance search of a Dictionary.
type DictionaryOptions struct {
	// MaxDistance is the largest Levenshtein distance a suggestion may be from the word.
	MaxDistance int
	// MaxSuggestions caps the suggestions returned per word.
	MaxSuggestions int
	// MinWordLength is the rune length below which words are passed through uncorrected.
	MinWordLength int
	// SameInitial limits candidates to words starting with the same letter as the word.
	SameInitial bool
}

// DefaultDictionaryOptions returns the options used when none are given.
func DefaultDictionaryOptions() DictionaryOptions {
	return DictionaryOptions{
		MaxDistance:    2,
		MaxSuggestions: 5,
		MinWordLength:  3,
		SameInitial:    true,
	}
}

// Dictionary is a Corrector over a word list held in a patricia trie. Words are stored lowercased
// together with a score; closer and higher scored words are suggested first.
type Dictionary struct {
	opts DictionaryOptions

	mu   sync.RWMutex
	trie *patricia.Trie
	size int
}

// NewDictionary creates an empty dictionary. An empty dictionary passes every word through.
func NewDictionary(opts DictionaryOptions) *Dictionary {
	def := DefaultDictionaryOptions()
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = def.MaxDistance
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = def.MaxSuggestions
	}
	return &Dictionary{opts: opts, trie: patricia.NewTrie()}
}

// Add inserts word with score, keeping the higher score when the word is already known.
func (d *Dictionary) Add(word string, score int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if insert(d.trie, word, score) {
		d.size++
	}
}

// Replace swaps the whole word list for words.
func (d *Dictionary) Replace(words map[string]int) {
	trie := patricia.NewTrie()
	size := 0
	for w, s := range words {
		if insert(trie, w, s) {
			size++
		}
	}
	d.mu.Lock()
	d.trie, d.size = trie, size
	d.mu.Unlock()
}

// insert reports whether word was new to trie.
func insert(trie *patricia.Trie, word string, score int) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	key := patricia.Prefix(word)
	if prev := trie.Get(key); prev != nil {
		if prev.(int) < score {
			trie.Set(key, score)
		}
		return false
	}
	return trie.Insert(key, score)
}

// AddWords inserts every word of freqs.
func (d *Dictionary) AddWords(freqs map[string]int) {
	for w, s := range freqs {
		d.Add(w, s)
	}
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// Contains reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.trie.Get(patricia.Prefix(strings.ToLower(word))) != nil
}

func (d *Dictionary) Correct(ctx context.Context, query string) ([]Correction, error) {
	var out []Correction
	for _, w := range Words(query) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, Correction{Word: w, Suggestions: d.suggest(w)})
	}
	return out, nil
}

type candidate struct {
	word     string
	distance int
	score    int
}

func (d *Dictionary) suggest(word string) []string {
	lw := strings.ToLower(word)
	if utf8.RuneCountInString(lw) < d.opts.MinWordLength {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.size == 0 || d.trie.Get(patricia.Prefix(lw)) != nil {
		return nil
	}

	var prefix patricia.Prefix
	if d.opts.SameInitial {
		r, size := utf8.DecodeRuneInString(lw)
		if r != utf8.RuneError {
			prefix = patricia.Prefix(lw[:size])
		}
	}

	wordLen := utf8.RuneCountInString(lw)
	var found []candidate
	visit := func(p patricia.Prefix, item patricia.Item) error {
		cand := string(p)
		if diff := utf8.RuneCountInString(cand) - wordLen; diff > d.opts.MaxDistance || -diff > d.opts.MaxDistance {
			return nil
		}
		dist := edlib.LevenshteinDistance(lw, cand)
		if dist > d.opts.MaxDistance {
			return nil
		}
		found = append(found, candidate{word: cand, distance: dist, score: item.(int)})
		return nil
	}
	var err error
	if len(prefix) > 0 {
		err = d.trie.VisitSubtree(prefix, visit)
	} else {
		err = d.trie.Visit(visit)
	}
	if err != nil {
		log.Errorf("Error visiting dictionary subtree: %v", err)
		return nil
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].word < found[j].word
	})
	if len(found) > d.opts.MaxSuggestions {
		found = found[:d.opts.MaxSuggestions]
	}

	sugg := make([]string, len(found))
	for i, c := range found {
		sugg[i] = c.word
	}
	return sugg
}
