package referee

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

var (
	ErrPlayerClosed = errors.New("player closed its output")
)

// Player is the external collaborator that answers one move per turn
type Player interface {
	// Send writes the turn input, one line at a time
	Send(lines []string) error

	// Receive blocks until the player answers or ctx is done
	Receive(ctx context.Context) (string, error)

	// Close releases the player
	Close() error
}

// ProcessPlayer runs a player program and talks to it over stdin/stdout
type ProcessPlayer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// StartProcessPlayer launches the command and starts reading its output
func StartProcessPlayer(ctx context.Context, name string, args ...string) (*ProcessPlayer, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open player stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open player stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player: %w", err)
	}

	p := &ProcessPlayer{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 16),
		done:  make(chan struct{}),
	}
	go p.readLoop(stdout)
	return p, nil
}

func (p *ProcessPlayer) readLoop(r io.Reader) {
	defer close(p.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.done:
			return
		}
	}
}

// Send writes the lines to the player's stdin
func (p *ProcessPlayer) Send(lines []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if _, err := io.WriteString(p.stdin, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("failed to write player input: %w", err)
	}
	return nil
}

// Receive returns the next output line
func (p *ProcessPlayer) Receive(ctx context.Context) (string, error) {
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrPlayerClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the player process
func (p *ProcessPlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.stdin.Close()
	p.mu.Unlock()

	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	// the process was killed, its exit status carries no information
	p.cmd.Wait()
	return nil
}
