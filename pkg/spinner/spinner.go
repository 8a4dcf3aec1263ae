// Package spinner shows a one-line activity indicator while a chart is being
// generated. On a terminal it animates; elsewhere it prints static lines.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	carriageReturn = "\r"

	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"

	symbolSuccess = "✓"
	symbolFailure = "✗"
)

// Frames is a sequence of animation characters.
type Frames []string

var (
	// Braille is the default animation.
	Braille = Frames{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	// Line works on terminals without Unicode support.
	Line = Frames{"|", "/", "-", "\\"}
)

// Options configures a Spinner.
type Options struct {
	Frames  Frames
	Message string

	// Interval between frames. Default: 80ms.
	Interval time.Duration

	// ShowElapsed appends "(1.2s)" to the message.
	ShowElapsed bool

	// Writer defaults to os.Stderr.
	Writer io.Writer

	// TTY forces terminal mode on or off; nil auto-detects from Writer.
	TTY *bool
}

// Spinner displays an animated indicator until stopped.
type Spinner struct {
	mu sync.Mutex

	opts    Options
	tty     bool
	active  bool
	started time.Time
	frame   int
	width   int

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a spinner with default options and the given message.
func New(message string) *Spinner {
	return NewWithOptions(Options{Message: message, ShowElapsed: true})
}

// NewWithOptions creates a spinner, filling unset options with defaults.
func NewWithOptions(opts Options) *Spinner {
	if len(opts.Frames) == 0 {
		opts.Frames = Braille
	}
	if opts.Interval <= 0 {
		opts.Interval = 80 * time.Millisecond
	}
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	tty := isTerminal(opts.Writer)
	if opts.TTY != nil {
		tty = *opts.TTY
	}
	return &Spinner{opts: opts, tty: tty}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Message
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Update replaces the message, also while running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Message = message
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true
	s.started = time.Now()
	s.frame = 0

	if !s.tty {
		fmt.Fprintf(s.opts.Writer, "%s...\n", strings.TrimSuffix(s.opts.Message, "..."))
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	fmt.Fprint(s.opts.Writer, hideCursor)
	go s.loop(s.stopCh, s.doneCh)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	line := s.opts.Frames[s.frame%len(s.opts.Frames)] + " " + s.opts.Message
	if s.opts.ShowElapsed {
		line += " " + formatElapsed(time.Since(s.started))
	}
	s.frame++

	s.clear()
	fmt.Fprint(s.opts.Writer, line)
	s.width = len(line)
}

// clear blanks the previous frame. Caller holds mu.
func (s *Spinner) clear() {
	if s.width > 0 {
		fmt.Fprint(s.opts.Writer, carriageReturn+strings.Repeat(" ", s.width)+carriageReturn)
		s.width = 0
	}
}

// halt stops the animation goroutine and returns the elapsed time. It
// reports false if the spinner was not running.
func (s *Spinner) halt() (time.Duration, bool) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0, false
	}
	s.active = false
	elapsed := time.Since(s.started)
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	if s.tty {
		close(stop)
		<-done

		s.mu.Lock()
		s.clear()
		fmt.Fprint(s.opts.Writer, showCursor)
		s.mu.Unlock()
	}
	return elapsed, true
}

// Stop ends the animation and clears the line. Stopping an idle spinner is
// a no-op.
func (s *Spinner) Stop() {
	s.halt()
}

// Success stops the spinner and prints "✓ message". An empty message
// reuses the spinner's message.
func (s *Spinner) Success(message string) {
	s.finish(message, symbolSuccess, colorGreen)
}

// Fail stops the spinner and prints "✗ message".
func (s *Spinner) Fail(message string) {
	s.finish(message, symbolFailure, colorRed)
}

func (s *Spinner) finish(message, symbol, color string) {
	elapsed, wasActive := s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = s.opts.Message
	}
	mark := symbol
	if s.tty {
		mark = color + symbol + colorReset
	}
	line := mark + " " + message
	if s.opts.ShowElapsed && wasActive {
		line += " " + formatElapsed(elapsed)
	}
	fmt.Fprintln(s.opts.Writer, line)
}

// formatElapsed renders "(1.2s)" below a minute and "(1m 30s)" above.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}
