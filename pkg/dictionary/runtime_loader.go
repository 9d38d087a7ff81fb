package dictionary

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Target receives the full word list whenever the loaded chunks change.
type Target interface {
	Replace(words map[string]int)
}

// RuntimeLoader grows or shrinks the loaded chunk set while a server runs and republishes the
// words to its target.
type RuntimeLoader struct {
	loader *Loader
	target Target
	mu     sync.Mutex
}

// NewRuntimeLoader wraps loader. The target is refreshed after every size change.
func NewRuntimeLoader(loader *Loader, target Target) *RuntimeLoader {
	return &RuntimeLoader{loader: loader, target: target}
}

// SizeOption is a loadable dictionary size.
type SizeOption struct {
	ChunkCount int    `msgpack:"chunk_count"`
	WordCount  int    `msgpack:"word_count"`
	SizeLabel  string `msgpack:"size_label"`
}

// Sync publishes the currently loaded words to the target.
func (rl *RuntimeLoader) Sync() {
	words := rl.loader.Words()
	rl.target.Replace(words)
	log.Debugf("Dictionary published: %d words", len(words))
}

// SetDictionarySize loads or evicts chunks until exactly targetChunks are loaded, lowest ids
// kept first.
func (rl *RuntimeLoader) SetDictionarySize(targetChunks int) error {
	if targetChunks < 1 {
		return fmt.Errorf("minimum dictionary size is 1 chunk")
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	chunks, err := rl.loader.GetAvailable()
	if err != nil {
		return err
	}
	if targetChunks > len(chunks) {
		return fmt.Errorf("only %d chunks available, %d requested", len(chunks), targetChunks)
	}

	want := make(map[int]bool, targetChunks)
	for _, c := range chunks[:targetChunks] {
		want[c.ID] = true
		if err := rl.loader.Load(c.ID); err != nil {
			return err
		}
	}
	for _, id := range rl.loader.GetLoadedIDs() {
		if !want[id] {
			if err := rl.loader.Evict(id); err != nil {
				log.Warnf("Failed to evict chunk %d: %v", id, err)
			}
		}
	}
	log.Debugf("Dictionary size set to %d chunks", targetChunks)
	rl.Sync()
	return nil
}

// GetDictionarySizeOptions lists every prefix of the available chunks with its word count.
func (rl *RuntimeLoader) GetDictionarySizeOptions() ([]SizeOption, error) {
	chunks, err := rl.loader.GetAvailable()
	if err != nil {
		return nil, err
	}
	options := make([]SizeOption, 0, len(chunks))
	total := 0
	for i, c := range chunks {
		total += c.WordCount
		options = append(options, SizeOption{
			ChunkCount: i + 1,
			WordCount:  total,
			SizeLabel:  fmt.Sprintf("%dK words", total/1000),
		})
	}
	return options, nil
}

// Stats returns the wrapped loader's stats.
func (rl *RuntimeLoader) Stats() Stats {
	return rl.loader.GetStats()
}
