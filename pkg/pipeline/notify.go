package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// EventKind identifies a pipeline lifecycle event.
type EventKind string

const (
	EventStarted   EventKind = "chart_started"
	EventCompleted EventKind = "chart_completed"
	EventFailed    EventKind = "chart_failed"
)

// Event is delivered to a Notifier. On EventStarted only ID, Format and
// StartedAt of the Result are set.
type Event struct {
	Kind   EventKind
	Result Result
}

// Notifier receives pipeline events. Implementations must not block for long.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ev Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ev Event) { f(ev) }

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ev Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ev)
		}
	}
}

// ConsoleNotifier prints a one-line confirmation for each finished run and
// a formatted error for each failure. Start events are ignored.
type ConsoleNotifier struct {
	mu        sync.Mutex
	out       io.Writer
	formatter *cerrors.Formatter
}

// NewConsoleNotifier writes to w; a nil w means stdout.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	if w == nil {
		w = os.Stdout
	}
	f := cerrors.DefaultFormatter()
	f.Writer = w
	file, ok := w.(*os.File)
	f.UseColor = ok && cerrors.IsTTY(file)
	return &ConsoleNotifier{out: w, formatter: f}
}

// Notify implements Notifier.
func (c *ConsoleNotifier) Notify(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventCompleted:
		fmt.Fprintf(c.out, "✓ %s\n", SuccessMessage(ev.Result))
		if ev.Result.Location != "" {
			fmt.Fprintf(c.out, "  %s\n", ev.Result.Location)
		}
	case EventFailed:
		fmt.Fprintln(c.out, c.formatter.Format(ev.Result.Err))
	}
}

// SuccessMessage is the confirmation shown after a successful run, e.g.
// "PDF generated successfully!".
func SuccessMessage(r Result) string {
	name := strings.ToUpper(string(r.Format))
	if name == "" {
		name = "PDF"
	}
	if r.Ops > 0 && r.Size == 0 {
		return fmt.Sprintf("%s dry run painted %d operations", name, r.Ops)
	}
	return name + " generated successfully!"
}
