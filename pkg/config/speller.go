package config

import (
	"context"
	"fmt"
	"os"

	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/spell"
	"github.com/bastiangx/termserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Spell engines.
const (
	EngineDictionary = "dictionary"
	EngineFuzzy      = "fuzzy"
	EngineRediSearch = "redisearch"
	EngineNone       = "none"
)

// Speller is the corrector built from [spell], plus the chunk loader behind it when the
// dictionary engine reads a chunk directory. Loader is nil otherwise.
type Speller struct {
	Corrector spell.Corrector
	Loader    *dictionary.RuntimeLoader
	close     func() error
}

// Close releases connections held by the corrector.
func (s *Speller) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewSpeller builds the configured corrector. dict_path may name a chunk directory or a single
// dictionary file; an empty path gives an empty dictionary.
func (c *Config) NewSpeller(ctx context.Context) (*Speller, error) {
	sc := c.Spell
	switch sc.Engine {
	case EngineNone:
		return &Speller{Corrector: spell.Static{}}, nil

	case EngineRediSearch:
		if sc.RedisIndex == "" {
			return nil, fmt.Errorf("%w: spell.redis_index is required for redisearch", suggest.ErrConfiguration)
		}
		pool := spell.NewPool(sc.RedisAddr)
		r := spell.NewRediSearch(pool, sc.RedisIndex, spell.RediSearchOptions{Distance: sc.MaxDistance})
		return &Speller{Corrector: r, close: pool.Close}, nil

	case EngineFuzzy:
		f := spell.NewFuzzy(sc.MaxDistance, sc.MaxSuggestions)
		if sc.DictPath != "" {
			words, err := loadWords(ctx, sc.DictPath, sc.MaxWords)
			if err != nil {
				return nil, err
			}
			f.AddWords(words)
		}
		return &Speller{Corrector: f}, nil

	case EngineDictionary:
		d := spell.NewDictionary(spell.DictionaryOptions{
			MaxDistance:    sc.MaxDistance,
			MaxSuggestions: sc.MaxSuggestions,
			MinWordLength:  sc.MinWordLength,
			SameInitial:    true,
		})
		sp := &Speller{Corrector: d}
		if sc.DictPath == "" {
			return sp, nil
		}
		info, err := os.Stat(sc.DictPath)
		if err != nil {
			return nil, fmt.Errorf("%w: spell.dict_path: %w", suggest.ErrConfiguration, err)
		}
		if !info.IsDir() {
			words, err := dictionary.LoadFile(sc.DictPath)
			if err != nil {
				return nil, err
			}
			d.Replace(words)
			return sp, nil
		}
		loader := dictionary.NewLoader(sc.DictPath, sc.MaxWords)
		if err := loader.LoadAll(ctx); err != nil {
			return nil, err
		}
		sp.Loader = dictionary.NewRuntimeLoader(loader, d)
		sp.Loader.Sync()
		return sp, nil
	}
	return nil, fmt.Errorf("%w: unknown spell engine %q", suggest.ErrConfiguration, sc.Engine)
}

func loadWords(ctx context.Context, path string, maxWords int) (map[string]int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: spell.dict_path: %w", suggest.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return dictionary.LoadFile(path)
	}
	loader := dictionary.NewLoader(path, maxWords)
	if err := loader.LoadAll(ctx); err != nil {
		return nil, err
	}
	words := loader.Words()
	log.Debugf("Loaded %d dictionary words from %s", len(words), path)
	return words, nil
}
