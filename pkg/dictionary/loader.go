// Package dictionary loads the word lists that back the spelling correctors.
//
// Words ship as numbered binary chunks, dict_0001.bin, dict_0002.bin and so on, optionally
// zstd compressed as dict_0001.bin.zst. Each chunk is a little-endian int32 word count followed
// by that many entries of [uint16 length][word bytes][uint16 rank]. Rank 1 is the most common
// word; ranks are turned into scores so that higher means more common.
package dictionary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	chunkPrefix     = "dict_"
	chunkExt        = ".bin"
	compressedExt   = ".bin.zst"
	defaultParallel = 4
)

// ChunkInfo describes one chunk file on disk.
type ChunkInfo struct {
	ID         int
	Path       string
	WordCount  int
	Compressed bool
}

// Stats summarise what a Loader holds.
type Stats struct {
	TotalWords      int
	LoadedChunks    int
	AvailableChunks int
	MaxScore        int
}

// Loader reads chunks from one directory and keeps the words of every loaded chunk.
type Loader struct {
	dirPath  string
	maxWords int
	parallel int

	mu     sync.RWMutex
	chunks map[int]map[string]int
}

// NewLoader creates a loader for dirPath. maxWords bounds LoadAll; zero loads every chunk.
func NewLoader(dirPath string, maxWords int) *Loader {
	return &Loader{
		dirPath:  dirPath,
		maxWords: maxWords,
		parallel: defaultParallel,
		chunks:   make(map[int]map[string]int),
	}
}

// SetParallel sets how many chunks LoadAll reads at once.
func (l *Loader) SetParallel(n int) {
	if n > 0 {
		l.parallel = n
	}
}

// GetAvailable lists chunk files ordered by id. When both a plain and a compressed file carry
// the same id the plain one wins.
func (l *Loader) GetAvailable() ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(l.dirPath, chunkPrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	byID := make(map[int]ChunkInfo)
	for _, file := range files {
		id, compressed, ok := parseChunkName(filepath.Base(file))
		if !ok {
			continue
		}
		if prev, seen := byID[id]; seen && !prev.Compressed {
			continue
		}
		count, err := readWordCount(file, compressed)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			continue
		}
		byID[id] = ChunkInfo{ID: id, Path: file, WordCount: count, Compressed: compressed}
	}

	chunks := make([]ChunkInfo, 0, len(byID))
	for _, c := range byID {
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// parseChunkName extracts the id from dict_0001.bin or dict_0001.bin.zst.
func parseChunkName(base string) (id int, compressed bool, ok bool) {
	if !strings.HasPrefix(base, chunkPrefix) {
		return 0, false, false
	}
	rest := strings.TrimPrefix(base, chunkPrefix)
	switch {
	case strings.HasSuffix(rest, compressedExt):
		rest, compressed = strings.TrimSuffix(rest, compressedExt), true
	case strings.HasSuffix(rest, chunkExt):
		rest = strings.TrimSuffix(rest, chunkExt)
	default:
		return 0, false, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, false
	}
	return id, compressed, true
}

// LoadAll loads chunks in id order until maxWords is covered, reading up to SetParallel
// chunks concurrently. The first failure cancels the rest.
func (l *Loader) LoadAll(ctx context.Context) error {
	chunks, err := l.GetAvailable()
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunk files found in %s", l.dirPath)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	var selected []ChunkInfo
	words := 0
	for _, c := range chunks {
		if l.maxWords > 0 && words >= l.maxWords {
			break
		}
		selected = append(selected, c)
		words += c.WordCount
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallel)
	for _, c := range selected {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return l.load(c)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Debugf("Loaded %d chunks, %d words", len(selected), l.GetStats().TotalWords)
	return nil
}

// Load reads a single chunk by id. Loading a chunk twice is a no-op.
func (l *Loader) Load(id int) error {
	if l.isLoaded(id) {
		return nil
	}
	chunks, err := l.GetAvailable()
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if c.ID == id {
			return l.load(c)
		}
	}
	return fmt.Errorf("chunk %d not found in %s", id, l.dirPath)
}

func (l *Loader) load(c ChunkInfo) error {
	if l.isLoaded(c.ID) {
		return nil
	}
	words, err := ReadChunk(c.Path)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", c.ID, err)
	}

	l.mu.Lock()
	l.chunks[c.ID] = words
	l.mu.Unlock()

	log.Debugf("Chunk %d loaded: %d words", c.ID, len(words))
	return nil
}

func (l *Loader) isLoaded(id int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.chunks[id]
	return ok
}

// Evict drops a loaded chunk.
func (l *Loader) Evict(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.chunks[id]; !ok {
		return fmt.Errorf("chunk %d is not loaded", id)
	}
	delete(l.chunks, id)
	log.Debugf("Evicted chunk %d", id)
	return nil
}

// GetLoadedIDs returns the ids of loaded chunks, ascending.
func (l *Loader) GetLoadedIDs() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]int, 0, len(l.chunks))
	for id := range l.chunks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Words merges every loaded chunk into one map. A word present in several chunks keeps its
// highest score.
func (l *Loader) Words() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int)
	for _, words := range l.chunks {
		for w, score := range words {
			if score > out[w] {
				out[w] = score
			}
		}
	}
	return out
}

// GetStats reports the loaded words and chunks.
func (l *Loader) GetStats() Stats {
	available, _ := l.GetAvailable()
	words := l.Words()

	st := Stats{
		TotalWords:      len(words),
		AvailableChunks: len(available),
	}
	for _, score := range words {
		if score > st.MaxScore {
			st.MaxScore = score
		}
	}
	l.mu.RLock()
	st.LoadedChunks = len(l.chunks)
	l.mu.RUnlock()
	return st
}

// ChunkFileName returns the file name of chunk id.
func ChunkFileName(id int, compressed bool) string {
	if compressed {
		return fmt.Sprintf("%s%04d%s", chunkPrefix, id, compressedExt)
	}
	return fmt.Sprintf("%s%04d%s", chunkPrefix, id, chunkExt)
}

// readWordCount reads only the header of a chunk.
func readWordCount(path string, compressed bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r, closer, err := chunkReader(f, compressed)
	if err != nil {
		return 0, err
	}
	defer closer()
	return readHeader(r)
}
