// Package confirm asks the user to approve irreversible actions.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned by Prompt when no answer can be read from a terminal.
var ErrNotInteractive = errors.New("confirmation required but input is not a terminal; pass --yes to skip")

// Confirmer approves or declines an action described by question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, question string) (bool, error)

func (f Func) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// Always answers every question with answer.
func Always(answer bool) Confirmer {
	return Func(func(context.Context, string) (bool, error) { return answer, nil })
}

// Prompt asks on Out and reads a y/n answer from In. Anything other than
// "y" or "yes" (case-insensitive) declines. A Prompt reads In through a single
// buffered reader, one line per question, so later answers are never lost.
type Prompt struct {
	In  io.Reader
	Out io.Writer
	// RequireTTY rejects non-terminal input instead of reading from it.
	RequireTTY bool

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan answer // read started for a question that was cancelled
}

type answer struct {
	line string
	err  error
}

// NewPrompt returns a prompt on stdin/stdout that refuses to read piped input.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stdout, RequireTTY: true}
}

func (p *Prompt) Confirm(ctx context.Context, question string) (bool, error) {
	if p.RequireTTY && !IsTerminal(p.In) {
		return false, ErrNotInteractive
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.Out, "%s [y/N]: ", question); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// a line typed after a cancelled question answers this one
	if p.pending == nil {
		if p.reader == nil {
			p.reader = bufio.NewReader(p.In)
		}
		ch := make(chan answer, 1)
		go func(r *bufio.Reader) {
			line, err := r.ReadString('\n')
			ch <- answer{line: line, err: err}
		}(p.reader)
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-p.pending:
		p.pending = nil
		if a.err != nil && (!errors.Is(a.err, io.EOF) || a.line == "") {
			if errors.Is(a.err, io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
