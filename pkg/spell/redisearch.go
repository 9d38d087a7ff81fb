package spell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
)

// ConnPool hands out redis connections.
type ConnPool interface {
	Get() redis.Conn
	Close() error
}

// NewPool returns a connection pool dialing addr.
func NewPool(addr string) *redis.Pool {
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
		MaxIdle:     8,
		IdleTimeout: 4 * time.Minute,
	}
	pool.TestOnBorrow = func(c redis.Conn, t time.Time) (err error) {
		if time.Since(t) > time.Second {
			_, err = c.Do("PING")
		}
		return err
	}
	return pool
}

// RediSearch corrects queries with FT.SPELLCHECK against a RediSearch index.
type RediSearch struct {
	pool     ConnPool
	index    string
	distance int
	include  []string
	exclude  []string
}

// RediSearchOptions are the optional FT.SPELLCHECK arguments.
type RediSearchOptions struct {
	// Distance is the maximum Levenshtein distance, 1 to 4. Zero leaves the server default.
	Distance int
	// Include and Exclude name custom dictionaries.
	Include []string
	Exclude []string
}

// NewRediSearch creates a corrector checking queries against index.
func NewRediSearch(pool ConnPool, index string, opts RediSearchOptions) *RediSearch {
	return &RediSearch{
		pool:     pool,
		index:    index,
		distance: opts.Distance,
		include:  opts.Include,
		exclude:  opts.Exclude,
	}
}

func (r *RediSearch) args(query string) redis.Args {
	args := redis.Args{r.index, query}
	if r.distance > 0 {
		args = append(args, "DISTANCE", r.distance)
	}
	for _, d := range r.include {
		args = append(args, "TERMS", "INCLUDE", d)
	}
	for _, d := range r.exclude {
		args = append(args, "TERMS", "EXCLUDE", d)
	}
	return args
}

func (r *RediSearch) Correct(ctx context.Context, query string) ([]Correction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := r.pool.Get()
	defer conn.Close()

	res, err := redis.Values(conn.Do("FT.SPELLCHECK", r.args(query)...))
	if err != nil {
		return nil, fmt.Errorf("spellcheck %s: %w", r.index, err)
	}
	misspelled, err := parseSpellcheckReply(res)
	if err != nil {
		return nil, err
	}

	words := Words(query)
	out := make([]Correction, len(words))
	for i, w := range words {
		out[i] = Correction{Word: w, Suggestions: misspelled[strings.ToLower(w)]}
	}
	return out, nil
}

// parseSpellcheckReply reads the FT.SPELLCHECK reply: one ["TERM", term, [[score, suggestion]...]]
// entry per misspelled term. Suggestions keep the server's order.
func parseSpellcheckReply(res []interface{}) (map[string][]string, error) {
	out := make(map[string][]string, len(res))
	for _, entry := range res {
		arr, err := redis.Values(entry, nil)
		if err != nil {
			return nil, err
		}
		if len(arr) < 3 {
			return nil, fmt.Errorf("expects 3 elements per misspelled term, got %d", len(arr))
		}
		term, err := redis.String(arr[1], nil)
		if err != nil {
			return nil, fmt.Errorf("could not parse term: %w", err)
		}
		lst, err := redis.Values(arr[2], nil)
		if err != nil {
			return nil, fmt.Errorf("could not get suggestions for %s: %w", term, err)
		}
		var sugg []string
		for _, item := range lst {
			pair, err := redis.Values(item, nil)
			if err != nil {
				return nil, fmt.Errorf("could not get suggestion pair for %s: %w", term, err)
			}
			if len(pair) != 2 {
				return nil, fmt.Errorf("expects 2 elements per suggestion")
			}
			if _, err := redis.Float64(pair[0], nil); err != nil {
				return nil, fmt.Errorf("could not parse score: %w", err)
			}
			s, err := redis.String(pair[1], nil)
			if err != nil {
				return nil, fmt.Errorf("could not parse suggestion: %w", err)
			}
			sugg = append(sugg, s)
		}
		out[strings.ToLower(term)] = sugg
	}
	return out, nil
}
