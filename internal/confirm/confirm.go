// Package confirm implements the two-phase "ask, then act" step required
// before destructive operations.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrSettled is returned when a confirmation is committed after it was
	// already committed or cancelled.
	ErrSettled = errors.New("confirmation already settled")
	// ErrDeclined is returned by Ask when the user answers no.
	ErrDeclined = errors.New("cancelled")
)

// Pending is a destructive action waiting for an explicit yes or no.
// Nothing happens until Commit is called.
type Pending struct {
	prompt string
	action func(ctx context.Context) error

	mu      sync.Mutex
	settled bool
}

func New(prompt string, action func(ctx context.Context) error) *Pending {
	return &Pending{prompt: prompt, action: action}
}

func (p *Pending) Prompt() string { return p.prompt }

// Commit runs the action. It runs at most once.
func (p *Pending) Commit(ctx context.Context) error {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return ErrSettled
	}
	p.settled = true
	p.mu.Unlock()

	return p.action(ctx)
}

// Cancel declines the action. It has no other effect.
func (p *Pending) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = true
}

// Settled reports whether the confirmation was committed or cancelled.
func (p *Pending) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Ask prints the prompt and commits on "y" or "yes". assumeYes skips the
// question. Any other answer cancels and returns ErrDeclined.
func Ask(ctx context.Context, in io.Reader, out io.Writer, p *Pending, assumeYes bool) error {
	if !assumeYes {
		fmt.Fprintf(out, "%s [y/N]: ", p.Prompt())
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			p.Cancel()
			return fmt.Errorf("failed to read answer: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			p.Cancel()
			return ErrDeclined
		}
	}
	return p.Commit(ctx)
}
