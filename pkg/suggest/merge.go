package suggest

import (
	"context"
	"errors"
	"strconv"

	"github.com/bastiangx/termserve/pkg/index"
	"github.com/bastiangx/termserve/pkg/lexicon"
	"github.com/charmbracelet/log"
)

// errLimitReached unwinds every loop of a scan once enough distinct terms are recorded.
var errLimitReached = errors.New("suggestion limit reached")

// accumulator sums document frequencies per matched term.
type accumulator struct {
	freqs map[string]int
	limit int
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{freqs: make(map[string]int, limit), limit: limit}
}

func (a *accumulator) add(term string, freq int) error {
	a.freqs[term] += freq
	if len(a.freqs) >= a.limit {
		return errLimitReached
	}
	return nil
}

// merger walks indexes, segments and fields in order and feeds prefix matches to the accumulator.
type merger struct {
	opener   index.Opener
	handles  []string
	fields   []string
	optimize bool
	norm     *normalizer
	acc      *accumulator
	log      *log.Logger
}

// accumulate scans every configured index. Reaching the limit is not an error.
func (m *merger) accumulate(ctx context.Context) error {
	for _, handle := range m.handles {
		if err := m.scanIndex(ctx, handle); err != nil {
			if errors.Is(err, errLimitReached) {
				m.log.Debugf("Limit of %d reached in index %s", m.acc.limit, handle)
				return nil
			}
			return err
		}
	}
	return nil
}

func (m *merger) scanIndex(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := m.opener.Open(handle)
	if err != nil {
		return &IndexAccessError{Index: handle, cause: err}
	}
	defer func() {
		if err := idx.Close(); err != nil {
			m.log.Warnf("Closing index %s: %v", handle, err)
		}
	}()

	schema := idx.Schema()
	fields := m.fields
	if len(fields) == 0 {
		fields = schema.FieldNames()
	}

	for i, seg := range idx.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, field := range fields {
			if err := m.scanField(handle, strconv.Itoa(i), seg, field, schema); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *merger) scanField(handle, segment string, seg index.Segment, field string, schema index.Schema) error {
	cursor, err := seg.Lexicon(field)
	if err != nil {
		return &IndexAccessError{Index: handle, Segment: segment, Field: field, cause: err}
	}
	if cursor == nil {
		return nil
	}
	fk := m.norm.keys(field, schema.Analyzer(field))
	if len(fk.keys) == 0 {
		return nil
	}

	stats, err := lexicon.ScanWithStats(cursor, fk.keys, m.optimize, func(term string) error {
		freq, err := seg.DocFreq(field, term)
		if err != nil {
			return &IndexAccessError{Index: handle, Segment: segment, Field: field, cause: err}
		}
		return m.acc.add(term, freq)
	})
	m.log.Debug("scanned",
		"index", handle, "segment", segment, "field", field,
		"keys", len(fk.keys), "seeks", stats.Seeks, "steps", stats.Steps, "matches", stats.Matches)
	return err
}
