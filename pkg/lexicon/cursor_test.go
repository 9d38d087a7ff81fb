package lexicon

import (
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureTerms = []string{"brawn", "brown", "fox", "quick", "quirk", "run", "running"}

func newBoltFixture(t *testing.T, terms []string) (*bolt.DB, *bolt.Tx) {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "lex.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("body"))
		if err != nil {
			return err
		}
		// insert out of order, bolt keeps keys sorted
		for i := len(terms) - 1; i >= 0; i-- {
			if err := b.Put([]byte(terms[i]), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	tx, err := db.Begin(false)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback() })
	return db, tx
}

func TestCursorImplementations(t *testing.T) {
	_, tx := newBoltFixture(t, fixtureTerms)

	cursors := map[string]Cursor{
		"slice": NewSliceCursor(fixtureTerms),
		"bolt":  NewBoltCursor(tx.Bucket([]byte("body"))),
	}

	for name, c := range cursors {
		t.Run(name, func(t *testing.T) {
			term, ok := c.Term()
			require.True(t, ok)
			assert.Equal(t, "brawn", term, "new cursor starts on the first term")

			var walked []string
			for ok := true; ok; ok = c.Next() {
				term, _ := c.Term()
				walked = append(walked, term)
			}
			assert.Equal(t, fixtureTerms, walked)

			_, ok = c.Term()
			assert.False(t, ok, "cursor is exhausted after the last term")
			assert.False(t, c.Next(), "advancing an exhausted cursor stays exhausted")

			require.True(t, c.Seek("qui"))
			term, _ = c.Term()
			assert.Equal(t, "quick", term)

			require.True(t, c.Seek("br"), "seek is absolute and may move backwards")
			term, _ = c.Term()
			assert.Equal(t, "brawn", term)

			require.True(t, c.Seek("run"))
			term, _ = c.Term()
			assert.Equal(t, "run", term, "seek lands on an exact match")

			assert.False(t, c.Seek("zebra"))
			_, ok = c.Term()
			assert.False(t, ok)

			require.True(t, c.Reset())
			term, _ = c.Term()
			assert.Equal(t, "brawn", term)
		})
	}
}

func TestSliceCursorEmpty(t *testing.T) {
	c := NewSliceCursor(nil)
	_, ok := c.Term()
	assert.False(t, ok)
	assert.False(t, c.Next())
	assert.False(t, c.Seek("a"))
	assert.False(t, c.Reset())
	assert.Equal(t, 0, c.Len())
}

func TestBoltCursorEmptyBucket(t *testing.T) {
	_, tx := newBoltFixture(t, nil)
	c := NewBoltCursor(tx.Bucket([]byte("body")))
	_, ok := c.Term()
	assert.False(t, ok)
	assert.False(t, c.Next())
	assert.False(t, c.Reset())
}
