package lexicon

import "sort"

// SliceCursor is an in-memory Cursor over a sorted, de-duplicated term slice.
type SliceCursor struct {
	terms []string
	pos   int
}

// NewSliceCursor wraps terms, which must already be sorted ascending without duplicates.
// The slice is not copied.
func NewSliceCursor(terms []string) *SliceCursor {
	return &SliceCursor{terms: terms}
}

func (c *SliceCursor) Term() (string, bool) {
	if c.pos >= len(c.terms) {
		return "", false
	}
	return c.terms[c.pos], true
}

func (c *SliceCursor) Next() bool {
	if c.pos < len(c.terms) {
		c.pos++
	}
	return c.pos < len(c.terms)
}

func (c *SliceCursor) Seek(term string) bool {
	c.pos = sort.SearchStrings(c.terms, term)
	return c.pos < len(c.terms)
}

func (c *SliceCursor) Reset() bool {
	c.pos = 0
	return len(c.terms) > 0
}

// Len returns the number of terms behind the cursor.
func (c *SliceCursor) Len() int {
	return len(c.terms)
}
