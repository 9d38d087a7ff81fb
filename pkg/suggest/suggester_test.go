package suggest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bastiangx/termserve/internal/testutil"
	"github.com/bastiangx/termserve/pkg/index"
	"github.com/bastiangx/termserve/pkg/lexicon"
	"github.com/bastiangx/termserve/pkg/spell"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyOpener records which indexes, segments and fields a suggestion touched.
type spyOpener struct {
	inner     index.Opener
	failField string

	opened   []string
	closed   []string
	lexicons []string
}

func (s *spyOpener) Open(handle string) (index.Index, error) {
	idx, err := s.inner.Open(handle)
	if err != nil {
		return nil, err
	}
	s.opened = append(s.opened, handle)
	return &spyIndex{Index: idx, spy: s, handle: handle}, nil
}

type spyIndex struct {
	index.Index
	spy    *spyOpener
	handle string
}

func (i *spyIndex) Segments() []index.Segment {
	segs := i.Index.Segments()
	out := make([]index.Segment, len(segs))
	for n, seg := range segs {
		out[n] = &spySegment{Segment: seg, spy: i.spy, name: fmt.Sprintf("%s/%d", i.handle, n)}
	}
	return out
}

func (i *spyIndex) Close() error {
	i.spy.closed = append(i.spy.closed, i.handle)
	return i.Index.Close()
}

type spySegment struct {
	index.Segment
	spy  *spyOpener
	name string
}

func (s *spySegment) Lexicon(field string) (lexicon.Cursor, error) {
	s.spy.lexicons = append(s.spy.lexicons, s.name+":"+field)
	if field == s.spy.failField {
		return nil, errors.New("disk on fire")
	}
	return s.Segment.Lexicon(field)
}

func newSuggester(t *testing.T, mutate func(*Options)) (*Suggester, *spyOpener) {
	t.Helper()
	spy := &spyOpener{inner: testutil.Opener()}
	opts := DefaultOptions()
	opts.Indexes = []string{"main"}
	opts.Speller = testutil.Speller()
	opts.Opener = spy
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s, spy
}

func TestSuggestRanksByFrequency(t *testing.T) {
	s, spy := newSuggester(t, nil)

	for _, optimize := range []bool{true, false} {
		got, err := s.SuggestWith(context.Background(), testutil.Query, optimize)
		require.NoError(t, err)
		assert.Equal(t, testutil.Ranked, got, "optimize=%v", optimize)
	}

	matches, err := s.Rank(context.Background(), testutil.Query, true)
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{"brown", 9}, {"fox", 8}, {"quick", 5}, {"run", 4}, {"brawn", 3}, {"quirk", 3},
	}, matches)

	assert.Equal(t, spy.opened, spy.closed, "every opened index is closed")
}

func TestSuggestLimitAbortsScan(t *testing.T) {
	s, spy := newSuggester(t, func(o *Options) { o.Limit = 2 })

	matches, err := s.Rank(context.Background(), testutil.Query, true)
	require.NoError(t, err)
	assert.Equal(t, []Match{{"fox", 8}, {"brown", 4}}, matches,
		"the first two terms found win, with only the frequency seen before the limit")
	assert.Equal(t, []string{"main/0:title"}, spy.lexicons, "nothing is scanned after the limit")
	assert.Equal(t, []string{"main"}, spy.closed)

	got, err := s.SuggestWith(context.Background(), testutil.Query, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox", "brown"}, got)
}

func TestSuggestFieldRestriction(t *testing.T) {
	all, _ := newSuggester(t, func(o *Options) { o.Fields = nil })
	title, spy := newSuggester(t, func(o *Options) { o.Fields = []string{"title"} })

	got, err := all.Suggest(context.Background(), testutil.Query)
	require.NoError(t, err)
	assert.Contains(t, got, "brawn")

	got, err = title.Suggest(context.Background(), testutil.Query)
	require.NoError(t, err)
	assert.Equal(t, testutil.TitleRanked, got)
	assert.NotContains(t, got, "brawn", "brawn only exists in body")
	for _, l := range spy.lexicons {
		assert.True(t, strings.HasSuffix(l, ":title"), l)
	}
}

func TestSuggestUncorrectedWord(t *testing.T) {
	s, _ := newSuggester(t, func(o *Options) { o.Speller = nil })

	got, err := s.Suggest(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, []string{"fox"}, got)

	got, err = s.Suggest(context.Background(), "Quick!")
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, got, "the field analyzer lowercases candidates")
}

func TestSuggestPrefixOnly(t *testing.T) {
	s, _ := newSuggester(t, func(o *Options) { o.Speller = nil })

	got, err := s.Suggest(context.Background(), "bro qu")
	require.NoError(t, err)
	assert.Equal(t, []string{"brown", "quick", "quirk"}, got)
	for _, term := range got {
		assert.True(t, strings.HasPrefix(term, "bro") || strings.HasPrefix(term, "qu"), term)
	}
}

func TestSuggestSingleCharacterCandidates(t *testing.T) {
	s, _ := newSuggester(t, func(o *Options) {
		o.Speller = spell.Static{"zz": {"b", "q"}}
	})

	got, err := s.Suggest(context.Background(), "f x zz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestEmptyFieldAndUnknownField(t *testing.T) {
	s, spy := newSuggester(t, func(o *Options) {
		o.Fields = []string{"tags", "nosuch", "title"}
	})

	got, err := s.Suggest(context.Background(), testutil.Query)
	require.NoError(t, err)
	assert.Equal(t, testutil.TitleRanked, got)
	assert.Contains(t, spy.lexicons, "main/0:tags")
	assert.Contains(t, spy.lexicons, "main/1:nosuch")
}

func TestSuggestSumsAcrossIndexes(t *testing.T) {
	schema, err := index.NewSchema(index.FieldDef{Name: "title"})
	require.NoError(t, err)
	a := index.NewMemIndex(schema)
	a.NewSegment().AddTerm("title", "fox", 1, 2)
	b := index.NewMemIndex(schema)
	b.NewSegment().AddTerm("title", "fox", 1, 2, 3)
	b.NewSegment().AddTerm("title", "foxglove", 9)

	s, err := New(Options{
		Indexes: []string{"a", "b"},
		Limit:   5,
		Opener:  index.MemOpener{"a": a, "b": b},
	})
	require.NoError(t, err)

	matches, err := s.Rank(context.Background(), "fox", false)
	require.NoError(t, err)
	assert.Equal(t, []Match{{"fox", 5}, {"foxglove", 1}}, matches)
}

func TestSuggestDirectoryIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "main")
	var segs []*index.MemSegment
	for _, seg := range testutil.Index().Segments() {
		segs = append(segs, seg.(*index.MemSegment))
	}
	require.NoError(t, index.WriteDir(dir, testutil.Fields, segs...))

	opts := DefaultOptions()
	opts.Indexes = []string{dir}
	opts.Speller = testutil.Speller()
	s, err := New(opts)
	require.NoError(t, err)

	for _, optimize := range []bool{true, false} {
		got, err := s.SuggestWith(context.Background(), testutil.Query, optimize)
		require.NoError(t, err)
		assert.Equal(t, testutil.Ranked, got, "optimize=%v", optimize)
	}
}

func TestSuggestModesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pieces := []string{"b", "br", "bro", "brown", "bra", "f", "fo", "fox", "q", "qu", "qui",
		"quick", "quirky", "r", "ru", "run", "runs", "l", "la", "d", "do", "dog", "j", "jum", "zebra"}

	for _, limit := range []int{1, 3, 100} {
		s, _ := newSuggester(t, func(o *Options) {
			o.Speller = nil
			o.Limit = limit
		})
		for round := 0; round < 100; round++ {
			words := make([]string, 1+rng.Intn(4))
			for i := range words {
				words[i] = pieces[rng.Intn(len(pieces))]
			}
			query := strings.Join(words, " ")

			seek, err := s.SuggestWith(context.Background(), query, true)
			require.NoError(t, err)
			full, err := s.SuggestWith(context.Background(), query, false)
			require.NoError(t, err)
			assert.Equal(t, full, seek, "limit %d query %q", limit, query)
			assert.LessOrEqual(t, len(seek), limit)
		}
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		description string
		opts        Options
	}{
		{"no indexes", Options{}},
		{"blank handle", Options{Indexes: []string{"main", " "}}},
		{"negative limit", Options{Indexes: []string{"main"}, Limit: -1}},
		{"empty field", Options{Indexes: []string{"main"}, Fields: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			s, err := New(tt.opts)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Nil(t, s)
		})
	}

	s, err := New(Options{Indexes: []string{"main"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, s.Limit())
}

func TestNewCopiesOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Indexes = []string{"main"}
	opts.Fields = []string{"title"}
	opts.Opener = testutil.Opener()
	opts.Speller = testutil.Speller()
	s, err := New(opts)
	require.NoError(t, err)

	opts.Fields[0] = "body"
	opts.Indexes[0] = "gone"

	got, err := s.Suggest(context.Background(), testutil.Query)
	require.NoError(t, err)
	assert.Equal(t, testutil.TitleRanked, got)
}

func TestSuggestErrors(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		s, _ := newSuggester(t, nil)
		for _, q := range []string{"", "   \t"} {
			_, err := s.Suggest(context.Background(), q)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		}
	})

	t.Run("unknown index", func(t *testing.T) {
		s, spy := newSuggester(t, func(o *Options) { o.Indexes = []string{"main", "missing"} })
		_, err := s.Suggest(context.Background(), testutil.Query)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIndexAccess)
		assert.ErrorIs(t, err, index.ErrNotFound)

		var iae *IndexAccessError
		require.ErrorAs(t, err, &iae)
		assert.Equal(t, "missing", iae.Index)
		assert.Empty(t, iae.Field)
		assert.Equal(t, []string{"main"}, spy.closed)
	})

	t.Run("lexicon failure", func(t *testing.T) {
		s, spy := newSuggester(t, nil)
		spy.failField = "body"
		_, err := s.Suggest(context.Background(), testutil.Query)

		var iae *IndexAccessError
		require.ErrorAs(t, err, &iae)
		assert.Equal(t, "main", iae.Index)
		assert.Equal(t, "0", iae.Segment)
		assert.Equal(t, "body", iae.Field)
		assert.EqualError(t, err, `index "main" segment 0 field "body": disk on fire`)
		assert.Equal(t, []string{"main"}, spy.closed)
	})

	t.Run("speller failure", func(t *testing.T) {
		boom := errors.New("speller offline")
		s, _ := newSuggester(t, func(o *Options) {
			o.Speller = spell.CorrectorFunc(func(context.Context, string) ([]spell.Correction, error) {
				return nil, boom
			})
		})
		_, err := s.Suggest(context.Background(), "fox")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		s, spy := newSuggester(t, func(o *Options) { o.Speller = nil })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Suggest(ctx, "fox")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, spy.opened)
	})
}

// accentIndexes serves two indexes whose "name" field is folded in one and kept raw in the other.
func accentIndexes(t *testing.T) index.MemOpener {
	t.Helper()
	folded, err := index.NewSchema(index.FieldDef{Name: "name", Analyzer: "folding"})
	require.NoError(t, err)
	raw, err := index.NewSchema(index.FieldDef{Name: "name", Analyzer: "keyword"})
	require.NoError(t, err)

	a := index.NewMemIndex(folded)
	a.NewSegment().Add(1, "name", "Café Crème")
	b := index.NewMemIndex(raw)
	b.NewSegment().Add(1, "name", "Café")

	return index.MemOpener{"folded": a, "raw": b}
}

func TestSuggestSameFieldDifferentAnalyzers(t *testing.T) {
	opts := DefaultOptions()
	opts.Indexes = []string{"folded", "raw"}
	opts.Opener = accentIndexes(t)
	opts.Speller = spell.Static{}
	s, err := New(opts)
	require.NoError(t, err)

	for _, optimize := range []bool{true, false} {
		got, err := s.SuggestWith(context.Background(), "Café", optimize)
		require.NoError(t, err)
		assert.Equal(t, []string{"Café", "cafe"}, got, "optimize=%v", optimize)
	}
}

func TestSuggestConcurrent(t *testing.T) {
	opts := DefaultOptions()
	opts.Indexes = []string{"folded"}
	opts.Opener = accentIndexes(t)
	opts.Speller = spell.Static{}
	s, err := New(opts)
	require.NoError(t, err)

	queries := map[string][]string{"CAFÉ": {"cafe"}, "crème brûlée": {"creme"}, "Crêpe": {}}
	var wg sync.WaitGroup
	failures := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for q, want := range queries {
					got, err := s.Suggest(context.Background(), q)
					if err != nil || !assert.ObjectsAreEqual(want, got) {
						failures <- fmt.Sprintf("%q: got %v, %v", q, got, err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(failures)
	for f := range failures {
		t.Error(f)
	}
}

func TestNewDebugKeepsCallerLogger(t *testing.T) {
	var buf strings.Builder
	own := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	opts := DefaultOptions()
	opts.Indexes = []string{"main"}
	opts.Opener = testutil.Opener()
	opts.Logger = own
	opts.Debug = true
	s, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, log.InfoLevel, own.GetLevel())
	assert.Equal(t, log.DebugLevel, s.log.GetLevel())

	_, err = s.Suggest(context.Background(), "fox")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scanned", "debug output goes to the caller's writer")

	opts.Logger = nil
	s, err = New(opts)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, s.log.GetLevel())
}
