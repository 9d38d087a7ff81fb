/*
Package index defines the read side of the inverted indexes the suggester scans, and ships
three implementations of it.

An Index is a schema plus an ordered list of segments. A segment exposes, per field, a sorted
lexicon cursor and a document frequency lookup; nothing here writes to an index.

  - MemIndex keeps segments in memory with roaring bitmap postings. Useful for tests and for
    embedding small vocabularies.
  - BoltSegment reads one segment from a bolt file: one bucket per field, term keys, and a
    serialized roaring bitmap of document ids as the value.
  - DirOpener opens a directory holding a schema.toml and seg_NNNN.db files. Segments are
    opened on first use and closed with the index.
*/
package index

import (
	"errors"

	"github.com/bastiangx/termserve/pkg/analysis"
	"github.com/bastiangx/termserve/pkg/lexicon"
)

var (
	// ErrNotFound is returned when a handle does not name an index.
	ErrNotFound = errors.New("index not found")
	// ErrBadSchema is returned when a schema is missing, empty or malformed.
	ErrBadSchema = errors.New("bad index schema")
)

// Opener turns an index handle into an open Index.
type Opener interface {
	Open(handle string) (Index, error)
}

// Index is an opened, read-only index. Close releases every resource acquired through it.
type Index interface {
	Schema() Schema
	Segments() []Segment
	Close() error
}

// Schema lists the fields of an index and how each one is analyzed.
type Schema interface {
	FieldNames() []string
	// Analyzer returns nil when the field stores raw words.
	Analyzer(field string) analysis.Analyzer
}

// Segment is one independently readable partition of an index.
type Segment interface {
	// Lexicon returns nil, nil when the field has no terms in this segment.
	Lexicon(field string) (lexicon.Cursor, error)
	DocFreq(field, term string) (int, error)
}
