package lexicon

import (
	"errors"
	"sort"
	"strings"
)

// ErrStop can be returned by a VisitFunc to end a scan early. Scan hands it back unchanged.
var ErrStop = errors.New("lexicon: stop scan")

// VisitFunc receives every term that matches at least one candidate key.
// Returning a non-nil error stops the scan and that error is returned from Scan.
type VisitFunc func(term string) error

// Stats counts the cursor work done by one scan.
type Stats struct {
	Seeks   int // absolute repositionings (Seek or Reset)
	Steps   int // terms looked at
	Matches int // terms handed to the visitor
}

// Scan walks c and calls visit once for every term that has one of keys as a literal prefix.
//
// With optimize set, the cursor jumps to each key in ascending order and only walks the area
// of terms sharing the key's leading byte. Without it, the cursor is reset and every term
// is tested. Both modes visit the same terms in ascending order, each exactly once.
//
// A nil cursor stands for a field without lexicon and yields nothing.
func Scan(c Cursor, keys []string, optimize bool, visit VisitFunc) error {
	_, err := ScanWithStats(c, keys, optimize, visit)
	return err
}

// ScanWithStats is Scan that also reports how much of the lexicon was touched.
func ScanWithStats(c Cursor, keys []string, optimize bool, visit VisitFunc) (Stats, error) {
	var st Stats
	if c == nil || len(keys) == 0 {
		return st, nil
	}
	if !sort.StringsAreSorted(keys) {
		sorted := make([]string, len(keys))
		copy(sorted, keys)
		sort.Strings(sorted)
		keys = sorted
	}

	var err error
	if optimize {
		err = scanAreas(c, keys, visit, &st)
	} else {
		err = scanAll(c, keys, visit, &st)
	}
	return st, err
}

func scanAll(c Cursor, keys []string, visit VisitFunc, st *Stats) error {
	st.Seeks++
	for ok := c.Reset(); ok; ok = c.Next() {
		term, _ := c.Term()
		st.Steps++
		if !hasAnyPrefix(term, keys) {
			continue
		}
		st.Matches++
		if err := visit(term); err != nil {
			return err
		}
	}
	return nil
}

// scanAreas seeks to every key and walks forward until the leading byte moves past the key's.
// Bytes, not runes, since the lexicon is ordered bytewise and keys may be invalid UTF-8. Terms matching a key that extends an earlier key sit inside the earlier key's
// area and were already emitted, so anything not above the last emitted term is skipped.
func scanAreas(c Cursor, keys []string, visit VisitFunc, st *Stats) error {
	var last string
	emitted := false

	for _, key := range keys {
		st.Seeks++
		for ok := c.Seek(key); ok; ok = c.Next() {
			term, _ := c.Term()
			st.Steps++
			if key != "" && term != "" && term[0] > key[0] {
				break
			}
			if !strings.HasPrefix(term, key) {
				continue
			}
			if emitted && term <= last {
				continue
			}
			last, emitted = term, true
			st.Matches++
			if err := visit(term); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasAnyPrefix(term string, keys []string) bool {
	for _, key := range keys {
		if key > term {
			// keys are sorted and a prefix never sorts after the term it prefixes
			return false
		}
		if strings.HasPrefix(term, key) {
			return true
		}
	}
	return false
}
