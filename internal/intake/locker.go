package intake

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Locker suspends background scrolling while the form is open.
type Locker interface {
	Lock()
	Unlock()
}

// NopLocker does nothing.
type NopLocker struct{}

func (NopLocker) Lock()   {}
func (NopLocker) Unlock() {}

// TerminalLocker switches a terminal to its alternate screen while the form
// is open, so the scrollback behind it is left untouched.
type TerminalLocker struct {
	mu     sync.Mutex
	out    io.Writer
	active bool
}

// NewTerminalLocker returns a locker for f, or a NopLocker when f is not a terminal.
func NewTerminalLocker(f *os.File) Locker {
	if !term.IsTerminal(int(f.Fd())) {
		return NopLocker{}
	}
	return &TerminalLocker{out: f}
}

func (l *TerminalLocker) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		return
	}
	_, _ = io.WriteString(l.out, "\x1b[?1049h\x1b[H")
	l.active = true
}

func (l *TerminalLocker) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	_, _ = io.WriteString(l.out, "\x1b[?1049l")
	l.active = false
}
