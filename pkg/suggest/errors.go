package suggest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned by New when the options cannot produce a working Suggester.
	ErrConfiguration = errors.New("invalid suggester configuration")
	// ErrInvalidArgument is returned when a query is empty or blank.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexAccess matches every *IndexAccessError.
	ErrIndexAccess = errors.New("index access failed")
)

// IndexAccessError reports an index that could not be opened or a segment whose lexicon or
// frequencies could not be read. Segment and Field are empty when the index itself failed to open.
//
// The underlying error can be accessed via errors.Unwrap.
type IndexAccessError struct {
	Index   string
	Segment string
	Field   string
	cause   error
}

func (e *IndexAccessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "index %q", e.Index)
	if e.Segment != "" {
		fmt.Fprintf(&b, " segment %s", e.Segment)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *IndexAccessError) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrIndexAccess) match.
func (e *IndexAccessError) Is(target error) bool { return target == ErrIndexAccess }
