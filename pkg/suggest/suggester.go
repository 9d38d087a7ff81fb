package suggest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/pkg/index"
	"github.com/bastiangx/termserve/pkg/spell"
	"github.com/charmbracelet/log"
)

// DefaultLimit is the number of suggestions returned when Options.Limit is zero.
const DefaultLimit = 10

// Options configure a Suggester. Start from DefaultOptions; the zero value disables seek mode.
type Options struct {
	// Fields restricts scanning to these fields. Empty scans every field of each index schema.
	Fields []string
	// Indexes are the handles passed to Opener, scanned in order. Required.
	Indexes []string
	// Limit caps the number of distinct suggested terms. Zero means DefaultLimit.
	// Scanning stops at the limit, so the kept terms are the first ones found in index,
	// segment and field order, not the most frequent overall.
	Limit int
	// Optimize seeks straight to each candidate's area of the lexicon instead of walking all of it.
	Optimize bool
	// Speller proposes candidate words. Nil uses an empty spell.Dictionary, which keeps words as typed.
	Speller spell.Corrector
	// Opener opens index handles. Nil treats handles as index directories.
	Opener index.Opener
	// Debug traces every scanned field. It never changes results.
	Debug  bool
	Logger *log.Logger
}

// DefaultOptions returns options with the default limit and seek mode on.
func DefaultOptions() Options {
	return Options{Limit: DefaultLimit, Optimize: true}
}

// Suggester proposes lexicon terms for a query. It holds only configuration and is safe for
// concurrent use; index readers are opened per call and closed before the call returns.
type Suggester struct {
	fields   []string
	indexes  []string
	limit    int
	optimize bool
	speller  spell.Corrector
	opener   index.Opener
	log      *log.Logger
}

// New validates opts and fills in defaults.
func New(opts Options) (*Suggester, error) {
	if len(opts.Indexes) == 0 {
		return nil, fmt.Errorf("%w: no indexes given", ErrConfiguration)
	}
	for i, h := range opts.Indexes {
		if strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("%w: index %d has an empty handle", ErrConfiguration, i)
		}
	}
	for i, f := range opts.Fields {
		if f == "" {
			return nil, fmt.Errorf("%w: field %d is empty", ErrConfiguration, i)
		}
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrConfiguration, opts.Limit)
	}

	s := &Suggester{
		fields:   slices.Clone(opts.Fields),
		indexes:  slices.Clone(opts.Indexes),
		limit:    opts.Limit,
		optimize: opts.Optimize,
		speller:  opts.Speller,
		opener:   opts.Opener,
		log:      opts.Logger,
	}
	if s.limit == 0 {
		s.limit = DefaultLimit
	}
	if s.speller == nil {
		s.speller = spell.NewDictionary(spell.DefaultDictionaryOptions())
	}
	if s.opener == nil {
		s.opener = index.DirOpener{}
	}
	switch {
	case s.log != nil && opts.Debug:
		// derived so the caller's logger keeps its level
		s.log = s.log.With()
		s.log.SetLevel(log.DebugLevel)
	case opts.Debug:
		s.log = logger.NewWithConfig("suggest", log.DebugLevel, true, true, log.TextFormatter)
	case s.log == nil:
		s.log = logger.New("suggest")
	}
	return s, nil
}

// Limit returns the configured result limit.
func (s *Suggester) Limit() int {
	return s.limit
}

// Suggest returns up to Limit terms for query, most frequent first, using the configured scan mode.
func (s *Suggester) Suggest(ctx context.Context, query string) ([]string, error) {
	return s.SuggestWith(ctx, query, s.optimize)
}

// SuggestWith is Suggest with the scan mode chosen per call. Both modes return the same terms.
func (s *Suggester) SuggestWith(ctx context.Context, query string, optimize bool) ([]string, error) {
	matches, err := s.Rank(ctx, query, optimize)
	if err != nil {
		return nil, err
	}
	terms := make([]string, len(matches))
	for i, m := range matches {
		terms[i] = m.Term
	}
	return terms, nil
}

// Rank is SuggestWith that also reports each term's summed document frequency.
func (s *Suggester) Rank(ctx context.Context, query string, optimize bool) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidArgument)
	}
	start := time.Now()

	candidates, err := s.candidates(ctx, query)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Query %q: candidates %v", query, candidates)

	m := &merger{
		opener:   s.opener,
		handles:  s.indexes,
		fields:   s.fields,
		optimize: optimize,
		norm:     newNormalizer(candidates),
		acc:      newAccumulator(s.limit),
		log:      s.log,
	}
	if err := m.accumulate(ctx); err != nil {
		return nil, err
	}

	matches := rank(m.acc.freqs)
	s.log.Debugf("Query %q: %d suggestions in %v", query, len(matches), time.Since(start))
	return matches, nil
}

// candidates flattens the speller output. A word without suggestions stands for itself;
// a corrected word is replaced by its suggestions. Duplicates are dropped, first seen kept.
func (s *Suggester) candidates(ctx context.Context, query string) ([]string, error) {
	corrections, err := s.speller.Correct(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("spell correction failed: %w", err)
	}

	var words []string
	seen := make(map[string]struct{})
	add := func(w string) {
		if _, dup := seen[w]; dup || w == "" {
			return
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	for _, c := range corrections {
		if len(c.Suggestions) == 0 {
			add(c.Word)
			continue
		}
		for _, sugg := range c.Suggestions {
			add(sugg)
		}
	}
	return words, nil
}
