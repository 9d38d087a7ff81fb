package suggest

import (
	"sort"
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/analysis"
)

// fieldKeys are the lookup keys of one field, ascending, and the word each key came from.
// When two words normalize to the same key the later word is kept as its origin.
type fieldKeys struct {
	keys   []string
	origin map[string]string
}

// cacheKey identifies a field together with the analyzer applied to it, since indexes may
// analyze fields of the same name differently.
type cacheKey struct {
	field    string
	analyzer string
	raw      bool
}

// normalizer turns the flattened candidate words into lookup keys, once per field and
// analyzer. It lives for a single Suggest call.
type normalizer struct {
	candidates []string
	cache      map[cacheKey]*fieldKeys
}

func newNormalizer(candidates []string) *normalizer {
	return &normalizer{candidates: candidates, cache: make(map[cacheKey]*fieldKeys)}
}

// keys returns the keys for field under a. A nil analyzer keeps words as they are.
// Keys of one rune or less are dropped. Analyzers without a registry name are not cached.
func (n *normalizer) keys(field string, a analysis.Analyzer) *fieldKeys {
	ck := cacheKey{field: field, analyzer: analysis.Name(a), raw: a == nil}
	cacheable := ck.raw || ck.analyzer != ""
	if fk, ok := n.cache[ck]; ok && cacheable {
		return fk
	}

	fk := &fieldKeys{origin: make(map[string]string, len(n.candidates))}
	for _, word := range n.candidates {
		key := word
		if a != nil {
			key = a.Normalize(word)
		}
		if utf8.RuneCountInString(key) <= 1 {
			continue
		}
		fk.origin[key] = word
	}
	fk.keys = make([]string, 0, len(fk.origin))
	for key := range fk.origin {
		fk.keys = append(fk.keys, key)
	}
	sort.Strings(fk.keys)

	if cacheable {
		n.cache[ck] = fk
	}
	return fk
}
