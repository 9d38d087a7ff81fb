package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bastiangx/termserve/pkg/lexicon"
	"github.com/charmbracelet/log"
)

var _ Opener = DirOpener{}

// SegmentFileName returns the file name of segment id inside an index directory.
func SegmentFileName(id int) string {
	return fmt.Sprintf("seg_%04d.db", id)
}

// DirOpener opens index directories. The handle is the directory path.
type DirOpener struct{}

// Open reads the schema and lists the segment files. Segment files are only opened when
// a lexicon or frequency is first asked for.
func (DirOpener) Open(dir string) (Index, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	schema, err := LoadSchema(dir)
	if err != nil {
		return nil, err
	}
	paths, err := segmentFiles(dir)
	if err != nil {
		return nil, err
	}
	log.Debugf("Index %s: %d fields, %d segments", dir, len(schema.FieldNames()), len(paths))

	segs := make([]*lazySegment, len(paths))
	for i, p := range paths {
		segs[i] = &lazySegment{path: p}
	}
	return &dirIndex{dir: dir, schema: schema, segments: segs}, nil
}

// segmentFiles lists seg_NNNN.db files ordered by their numeric id.
func segmentFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "seg_*.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for segment files: %w", err)
	}

	type numbered struct {
		id   int
		path string
	}
	var found []numbered
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "seg_"), ".db")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Warnf("Ignoring segment file with bad id: %s", file)
			continue
		}
		found = append(found, numbered{id: id, path: file})
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].id < found[j].id
	})

	paths := make([]string, len(found))
	for i, n := range found {
		paths[i] = n.path
	}
	return paths, nil
}

type dirIndex struct {
	dir      string
	schema   *FieldSchema
	segments []*lazySegment
}

func (d *dirIndex) Schema() Schema {
	return d.schema
}

func (d *dirIndex) Segments() []Segment {
	segs := make([]Segment, len(d.segments))
	for i, s := range d.segments {
		segs[i] = s
	}
	return segs
}

func (d *dirIndex) Close() error {
	var errs []error
	for _, s := range d.segments {
		if err := s.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lazySegment opens its bolt file on first use.
type lazySegment struct {
	path string

	once sync.Once
	seg  *BoltSegment
	err  error
}

func (l *lazySegment) open() (*BoltSegment, error) {
	l.once.Do(func() {
		l.seg, l.err = OpenBoltSegment(l.path)
	})
	return l.seg, l.err
}

func (l *lazySegment) Lexicon(field string) (lexicon.Cursor, error) {
	seg, err := l.open()
	if err != nil {
		return nil, err
	}
	return seg.Lexicon(field)
}

func (l *lazySegment) DocFreq(field, term string) (int, error) {
	seg, err := l.open()
	if err != nil {
		return 0, err
	}
	return seg.DocFreq(field, term)
}

func (l *lazySegment) close() error {
	if l.seg == nil {
		return nil
	}
	return l.seg.Close()
}

// WriteDir lays out segs as an index directory with the given schema.
func WriteDir(dir string, defs []FieldDef, segs ...*MemSegment) error {
	if err := WriteSchema(dir, defs...); err != nil {
		return err
	}
	for i, seg := range segs {
		if err := WriteBoltSegment(filepath.Join(dir, SegmentFileName(i+1)), seg); err != nil {
			return err
		}
	}
	return nil
}
