package index

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bastiangx/termserve/pkg/lexicon"
	"github.com/boltdb/bolt"
	"github.com/charmbracelet/log"
)

var _ Segment = (*BoltSegment)(nil)

// BoltSegment reads a segment file. It holds one read transaction open until Close.
type BoltSegment struct {
	path string
	db   *bolt.DB
	tx   *bolt.Tx
}

// OpenBoltSegment opens path read-only.
func OpenBoltSegment(path string) (*BoltSegment, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open segment %s: %w", path, err)
	}
	tx, err := db.Begin(false)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin read on segment %s: %w", path, err)
	}
	log.Debugf("Opened segment %s", path)
	return &BoltSegment{path: path, db: db, tx: tx}, nil
}

// Path returns the file the segment was read from.
func (s *BoltSegment) Path() string {
	return s.path
}

func (s *BoltSegment) Lexicon(field string) (lexicon.Cursor, error) {
	b := s.tx.Bucket([]byte(field))
	if b == nil {
		return nil, nil
	}
	if k, _ := b.Cursor().First(); k == nil {
		return nil, nil
	}
	return lexicon.NewBoltCursor(b), nil
}

func (s *BoltSegment) DocFreq(field, term string) (int, error) {
	b := s.tx.Bucket([]byte(field))
	if b == nil {
		return 0, nil
	}
	v := b.Get([]byte(term))
	if v == nil {
		return 0, nil
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(v); err != nil {
		return 0, fmt.Errorf("corrupt postings for %s:%q in %s: %w", field, term, s.path, err)
	}
	return int(bm.GetCardinality()), nil
}

// Close ends the read transaction and closes the file.
func (s *BoltSegment) Close() error {
	if err := s.tx.Rollback(); err != nil {
		log.Warnf("Rolling back read on %s: %v", s.path, err)
	}
	return s.db.Close()
}

// WriteBoltSegment materialises an in-memory segment as a bolt file at path.
func WriteBoltSegment(path string, seg *MemSegment) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to create segment %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		for _, field := range seg.Fields() {
			b, err := tx.CreateBucketIfNotExists([]byte(field))
			if err != nil {
				return fmt.Errorf("bucket %s: %w", field, err)
			}
			for _, term := range seg.Terms(field) {
				data, err := seg.Postings(field, term).ToBytes()
				if err != nil {
					return fmt.Errorf("encode postings %s:%q: %w", field, term, err)
				}
				if err := b.Put([]byte(term), data); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
