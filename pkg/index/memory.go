package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bastiangx/termserve/pkg/analysis"
	"github.com/bastiangx/termserve/pkg/lexicon"
)

var (
	_ Index   = (*MemIndex)(nil)
	_ Segment = (*MemSegment)(nil)
	_ Opener  = MemOpener(nil)
)

// MemIndex is an in-memory index made of MemSegments.
type MemIndex struct {
	schema   Schema
	segments []*MemSegment
}

// NewMemIndex creates an empty index over schema.
func NewMemIndex(schema Schema) *MemIndex {
	return &MemIndex{schema: schema}
}

// NewSegment appends an empty segment and returns it.
func (m *MemIndex) NewSegment() *MemSegment {
	seg := NewMemSegment(m.schema)
	m.segments = append(m.segments, seg)
	return seg
}

func (m *MemIndex) Schema() Schema {
	return m.schema
}

func (m *MemIndex) Segments() []Segment {
	segs := make([]Segment, len(m.segments))
	for i, s := range m.segments {
		segs[i] = s
	}
	return segs
}

// Close is a no-op; memory indexes hold nothing to release.
func (m *MemIndex) Close() error {
	return nil
}

// MemSegment keeps per-field postings as roaring bitmaps of document ids.
type MemSegment struct {
	schema   Schema
	postings map[string]map[string]*roaring.Bitmap

	mu     sync.Mutex
	sorted map[string][]string
}

// NewMemSegment creates an empty segment. schema may be nil, in which case every field stores raw words.
func NewMemSegment(schema Schema) *MemSegment {
	return &MemSegment{
		schema:   schema,
		postings: make(map[string]map[string]*roaring.Bitmap),
		sorted:   make(map[string][]string),
	}
}

// Add tokenizes text, runs each token through the field's analyzer and records doc as containing it.
func (s *MemSegment) Add(doc uint32, field, text string) {
	var a analysis.Analyzer
	if s.schema != nil {
		a = s.schema.Analyzer(field)
	}
	for _, tok := range analysis.Tokenize(text) {
		term := tok
		if a != nil {
			term = a.Normalize(tok)
		}
		s.AddTerm(field, term, doc)
	}
}

// AddTerm records term in field for every doc, bypassing analysis.
func (s *MemSegment) AddTerm(field, term string, docs ...uint32) {
	if term == "" || len(docs) == 0 {
		return
	}
	terms, ok := s.postings[field]
	if !ok {
		terms = make(map[string]*roaring.Bitmap)
		s.postings[field] = terms
	}
	bm, ok := terms[term]
	if !ok {
		bm = roaring.New()
		terms[term] = bm
	}
	bm.AddMany(docs)

	s.mu.Lock()
	delete(s.sorted, field)
	s.mu.Unlock()
}

// Fields lists the fields holding at least one term, sorted.
func (s *MemSegment) Fields() []string {
	fields := make([]string, 0, len(s.postings))
	for f, terms := range s.postings {
		if len(terms) > 0 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	return fields
}

// Terms returns the sorted lexicon of field.
func (s *MemSegment) Terms(field string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if terms, ok := s.sorted[field]; ok {
		return terms
	}
	postings := s.postings[field]
	terms := make([]string, 0, len(postings))
	for term := range postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	s.sorted[field] = terms
	return terms
}

// Postings returns the documents containing term in field, or nil.
func (s *MemSegment) Postings(field, term string) *roaring.Bitmap {
	return s.postings[field][term]
}

func (s *MemSegment) Lexicon(field string) (lexicon.Cursor, error) {
	terms := s.Terms(field)
	if len(terms) == 0 {
		return nil, nil
	}
	return lexicon.NewSliceCursor(terms), nil
}

func (s *MemSegment) DocFreq(field, term string) (int, error) {
	bm := s.Postings(field, term)
	if bm == nil {
		return 0, nil
	}
	return int(bm.GetCardinality()), nil
}

// MemOpener serves MemIndexes by handle.
type MemOpener map[string]*MemIndex

func (o MemOpener) Open(handle string) (Index, error) {
	idx, ok := o[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, handle)
	}
	return idx, nil
}
