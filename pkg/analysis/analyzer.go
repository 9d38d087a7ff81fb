// Package analysis holds the text analyzers that turn raw words into index terms.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownAnalyzer is returned by Get for names nothing registered.
var ErrUnknownAnalyzer = errors.New("unknown analyzer")

// Analyzer normalizes one raw word into the form it takes in a field's lexicon.
type Analyzer interface {
	Normalize(raw string) string
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc func(string) string

func (f AnalyzerFunc) Normalize(raw string) string { return f(raw) }

const (
	Keyword   = "keyword"
	Lowercase = "lowercase"
	Simple    = "simple"
	Folding   = "folding"
	English   = "english"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Analyzer{}

	// a transform.Chain holds buffers, so every goroutine needs its own
	stripMarks = sync.Pool{New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}}
)

func init() {
	Register(Keyword, AnalyzerFunc(func(s string) string { return s }))
	Register(Lowercase, AnalyzerFunc(lowercase))
	Register(Simple, AnalyzerFunc(simple))
	Register(Folding, AnalyzerFunc(fold))
	Register(English, AnalyzerFunc(stem))
}

// named is a registered analyzer that remembers its registry name.
type named struct {
	Analyzer
	name string
}

// Name returns the registry name of an analyzer obtained from Get, or "" for any other.
func Name(a Analyzer) string {
	if n, ok := a.(named); ok {
		return n.name
	}
	return ""
}

// Register makes an analyzer available by name, replacing any previous one.
func Register(name string, a Analyzer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = named{Analyzer: a, name: name}
}

// Get looks up a registered analyzer. The empty name resolves to Keyword.
func Get(name string) (Analyzer, error) {
	if name == "" {
		name = Keyword
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, name)
	}
	return a, nil
}

// Names lists the registered analyzers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tokenize splits text into words on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func lowercase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func simple(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

func fold(s string) string {
	t := stripMarks.Get().(transform.Transformer)
	defer stripMarks.Put(t)
	folded, _, err := transform.String(t, lowercase(s))
	if err != nil {
		return lowercase(s)
	}
	return folded
}

func stem(s string) string {
	return snowballeng.Stem(lowercase(s), false)
}
