package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Actions understood besides suggestion requests.
const (
	ActionHealth     = "health"
	ActionGetInfo    = "get_info"
	ActionSetSize    = "set_size"
	ActionGetOptions = "get_options"
)

// Server answers msgpack requests read from reader until EOF.
type Server struct {
	opts    suggest.Options
	config  *config.Config
	runtime *dictionary.RuntimeLoader

	mu         sync.Mutex
	suggesters map[int]*suggest.Suggester
	requests   int

	reader io.Reader
	writer *bufio.Writer
	enc    *msgpack.Encoder
}

// NewServer serves stdin and stdout. runtime may be nil when the speller is not chunk backed.
func NewServer(opts suggest.Options, cfg *config.Config, runtime *dictionary.RuntimeLoader) (*Server, error) {
	return NewServerWithIO(opts, cfg, runtime, os.Stdin, os.Stdout)
}

// NewServerWithIO is NewServer over custom streams.
func NewServerWithIO(opts suggest.Options, cfg *config.Config, runtime *dictionary.RuntimeLoader, r io.Reader, w io.Writer) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// max_limit also keeps ranks within uint16
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := suggest.New(opts)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(w)
	return &Server{
		opts:       opts,
		config:     cfg,
		runtime:    runtime,
		suggesters: map[int]*suggest.Suggester{base.Limit(): base},
		reader:     r,
		writer:     bw,
		enc:        msgpack.NewEncoder(bw),
	}, nil
}

// Start writes the ready status and handles requests until the input ends or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting msgpack server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			// the stream cannot be resynchronised after a bad frame
			log.Errorf("Failed to decode request: %v", err)
			if sendErr := s.sendError("", "malformed request", CodeBadRequest); sendErr != nil {
				return sendErr
			}
			return fmt.Errorf("decode request: %w", err)
		}
		if err := s.handle(ctx, req); err != nil {
			return err
		}
	}
}

// handle only returns write failures; request failures are reported to the client.
func (s *Server) handle(ctx context.Context, req Request) error {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	switch req.Action {
	case "":
		return s.handleSuggest(ctx, req)
	case ActionHealth:
		return s.send(StatusResponse{
			ID:       req.ID,
			Status:   "ok",
			Indexes:  s.opts.Indexes,
			Requests: s.requestCount(),
		})
	case ActionGetInfo, ActionSetSize, ActionGetOptions:
		return s.handleDictionary(req)
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action %q", req.Action), CodeNotFound)
	}
}

func (s *Server) handleSuggest(ctx context.Context, req Request) error {
	start := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return s.sendError(req.ID, "empty query", CodeBadRequest)
	}
	if maxLen := s.config.Server.MaxQueryLen; maxLen > 0 && utf8.RuneCountInString(req.Query) > maxLen {
		return s.sendError(req.ID, fmt.Sprintf("query longer than %d characters", maxLen), CodeBadRequest)
	}
	if req.Limit < 0 {
		return s.sendError(req.ID, "limit must not be negative", CodeBadRequest)
	}

	sg, err := s.suggester(req.Limit)
	if err != nil {
		return s.sendError(req.ID, err.Error(), CodeInternal)
	}
	optimize := s.opts.Optimize
	if req.Optimize != nil {
		optimize = *req.Optimize
	}

	matches, err := sg.Rank(ctx, req.Query, optimize)
	if err != nil {
		log.Warnf("Request %s failed: %v", req.ID, err)
		return s.sendError(req.ID, err.Error(), errorCode(err))
	}

	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		out[i] = Suggestion{Word: m.Term, Rank: uint16(i + 1), Frequency: m.Frequency}
	}
	return s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleDictionary(req Request) error {
	if s.runtime == nil {
		return s.sendError(req.ID, "spell dictionary is not chunk backed", CodeUnavailable)
	}
	switch req.Action {
	case ActionSetSize:
		if req.ChunkCount == nil {
			return s.sendError(req.ID, "chunk_count is required", CodeBadRequest)
		}
		if err := s.runtime.SetDictionarySize(*req.ChunkCount); err != nil {
			return s.sendError(req.ID, err.Error(), CodeBadRequest)
		}
		return s.sendInfo(req.ID)
	case ActionGetOptions:
		options, err := s.runtime.GetDictionarySizeOptions()
		if err != nil {
			return s.sendError(req.ID, err.Error(), CodeInternal)
		}
		return s.send(StatusResponse{ID: req.ID, Status: "ok", Options: options})
	default:
		return s.sendInfo(req.ID)
	}
}

func (s *Server) sendInfo(id string) error {
	st := s.runtime.Stats()
	return s.send(StatusResponse{
		ID:              id,
		Status:          "ok",
		Words:           st.TotalWords,
		CurrentChunks:   st.LoadedChunks,
		AvailableChunks: st.AvailableChunks,
	})
}

// suggester returns the suggester for a request limit. Zero means the configured limit and
// anything above server.max_limit is capped.
func (s *Server) suggester(limit int) (*suggest.Suggester, error) {
	if limit == 0 {
		limit = s.opts.Limit
		if limit == 0 {
			limit = suggest.DefaultLimit
		}
	}
	if maxLimit := s.config.Server.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sg, ok := s.suggesters[limit]; ok {
		return sg, nil
	}
	opts := s.opts
	opts.Limit = limit
	sg, err := suggest.New(opts)
	if err != nil {
		return nil, err
	}
	s.suggesters[limit] = sg
	return sg, nil
}

func (s *Server) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return s.writer.Flush()
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, suggest.ErrInvalidArgument):
		return CodeBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
