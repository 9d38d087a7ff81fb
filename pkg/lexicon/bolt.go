package lexicon

import (
	"github.com/boltdb/bolt"
)

var _ Cursor = (*BoltCursor)(nil)

// BoltCursor adapts a bolt bucket cursor. Bucket keys are the terms; bolt keeps them in
// byte order, which is the order the scanner relies on.
//
// The cursor is only valid for the lifetime of the transaction that owns the bucket.
type BoltCursor struct {
	cursor *bolt.Cursor
	key    []byte
}

// NewBoltCursor returns a cursor positioned on the first key of b.
func NewBoltCursor(b *bolt.Bucket) *BoltCursor {
	c := &BoltCursor{cursor: b.Cursor()}
	c.Reset()
	return c
}

func (c *BoltCursor) Term() (string, bool) {
	if c.key == nil {
		return "", false
	}
	return string(c.key), true
}

func (c *BoltCursor) Next() bool {
	if c.key == nil {
		return false
	}
	c.key, _ = c.cursor.Next()
	return c.key != nil
}

func (c *BoltCursor) Seek(term string) bool {
	c.key, _ = c.cursor.Seek([]byte(term))
	return c.key != nil
}

func (c *BoltCursor) Reset() bool {
	c.key, _ = c.cursor.First()
	return c.key != nil
}
