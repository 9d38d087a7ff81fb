/*
Package lexicon provides sorted term cursors over a field's vocabulary and the prefix scanner
that walks them.

A Cursor is a small state machine with two states: positioned on a term, or exhausted.
Next, Seek and Reset are the only mutators. Seek is absolute: it lands on the first term
that is greater than or equal to its argument regardless of where the cursor was before.

	c := lexicon.NewSliceCursor([]string{"brawn", "brown", "fox"})
	c.Seek("br")   // positioned on "brawn"
	c.Next()       // positioned on "brown"
	c.Seek("zzz")  // exhausted
	c.Reset()      // positioned on "brawn" again

Terms are compared bytewise, which for valid UTF-8 is the same as comparing code points.
*/
package lexicon

// Cursor walks the terms of one field within one segment in strictly ascending order.
// A freshly created cursor is positioned on the first term (or exhausted when empty).
type Cursor interface {
	// Term returns the current term, and false when the cursor is exhausted.
	Term() (string, bool)
	// Next advances to the following term. It reports whether the cursor is still positioned.
	Next() bool
	// Seek moves to the first term >= term.
	Seek(term string) bool
	// Reset moves back to the first term.
	Reset() bool
}
