// Package cli is an interactive prompt for trying queries against the configured indexes.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Ranker is the part of suggest.Suggester the prompt needs.
type Ranker interface {
	Rank(ctx context.Context, query string, optimize bool) ([]suggest.Match, error)
}

// Options tune the prompt.
type Options struct {
	MinQueryLength int
	MaxQueryLength int
	Optimize       bool
	ShowFrequency  bool
}

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// InputHandler reads one query per line and prints the ranked suggestions.
// ":mode" switches between the seek and full scans, ":q" leaves.
type InputHandler struct {
	ranker       Ranker
	opts         Options
	in           io.Reader
	out          io.Writer
	requestCount int
}

// NewInputHandler builds a prompt over in and out.
func NewInputHandler(r Ranker, opts Options, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{ranker: r, opts: opts, in: in, out: out}
}

// Start runs the prompt until the input ends, ":q" is entered or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, "termserve CLI")
	fmt.Fprintln(h.out, "type a query and press Enter to see the suggestions (:mode toggles scan mode, :q quits)")

	reader := bufio.NewReader(h.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		switch query := strings.TrimSpace(line); query {
		case "":
		case ":q", ":quit":
			return nil
		case ":mode":
			h.opts.Optimize = !h.opts.Optimize
			fmt.Fprintf(h.out, "scan mode: %s\n", modeName(h.opts.Optimize))
		default:
			if err := h.handleInput(ctx, query); err != nil {
				return err
			}
		}
		if eof {
			return nil
		}
	}
}

// handleInput validates one query and prints its suggestions. Only a cancelled context is
// returned; other failures are printed so the prompt keeps going.
func (h *InputHandler) handleInput(ctx context.Context, query string) error {
	h.requestCount++

	n := utf8.RuneCountInString(query)
	if n < h.opts.MinQueryLength {
		fmt.Fprintf(h.out, "query too short: %s\n", query)
		return nil
	}
	if h.opts.MaxQueryLength > 0 && n > h.opts.MaxQueryLength {
		fmt.Fprintf(h.out, "query too long: %s\n", query)
		return nil
	}
	if !utils.HasWordChars(query) {
		fmt.Fprintf(h.out, "no suggestions for %q\n", query)
		return nil
	}

	start := time.Now()
	matches, err := h.ranker.Rank(ctx, query, h.opts.Optimize)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Error("Query failed", "query", query, "err", err)
		fmt.Fprintf(h.out, "error: %v\n", err)
		return nil
	}
	log.Debugf("Took [ %v ] for query '%s' (%s scan)", elapsed, query, modeName(h.opts.Optimize))

	if len(matches) == 0 {
		fmt.Fprintf(h.out, "no suggestions for %q\n", query)
		return nil
	}

	fmt.Fprintf(h.out, "%d suggestions for %q:\n", len(matches), query)
	for i, m := range matches {
		if h.opts.ShowFrequency {
			fmt.Fprintf(h.out, "%2d. %-30s %s\n", i+1, wordStyle.Render(m.Term),
				faintStyle.Render("(freq: "+utils.FormatWithCommas(m.Frequency)+")"))
			continue
		}
		fmt.Fprintf(h.out, "%2d. %s\n", i+1, wordStyle.Render(m.Term))
	}
	return nil
}

func modeName(optimize bool) string {
	if optimize {
		return "seek"
	}
	return "full"
}
