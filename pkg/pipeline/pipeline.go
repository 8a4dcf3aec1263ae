// Package pipeline runs one chart generation end to end: sample data,
// layout, painting, encoding and delivery to a sink.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/r3d91ll/tempchart/pkg/chart"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/export"
	"github.com/r3d91ll/tempchart/pkg/output"
)

// DefaultBaseName is the artifact name without extension.
const DefaultBaseName = "test"

// Options configures a Pipeline.
type Options struct {
	Config chart.Config
	Format export.Format

	// Sink receives the encoded document. Nil writes to the downloads folder.
	Sink output.Sink

	// Notifier is told about every run. May be nil.
	Notifier Notifier

	// Source overrides the temperature source. Nil draws uniformly from the
	// config's sample band using Rand.
	Source chart.TemperatureSource
	Rand   *rand.Rand

	// Clock returns the run start time; the first sample is dated from it.
	Clock func() time.Time

	// BaseName is the artifact name without extension. Default: "test".
	BaseName string

	// DryRun paints into a recorder and skips encoding and delivery.
	DryRun bool

	// Version is embedded in document metadata.
	Version string
}

// Result describes one finished run.
type Result struct {
	ID          uuid.UUID
	Location    string
	Format      export.Format
	ContentType string
	Size        int
	StartedAt   time.Time
	Duration    time.Duration
	Err         error

	// Data holds the encoded document on success.
	Data []byte

	// Ops counts drawing operations on a dry run.
	Ops int
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Pipeline generates charts for one configuration. Runs are serialized.
type Pipeline struct {
	opts   Options
	layout *chart.Layout
	source chart.TemperatureSource

	runMu sync.Mutex

	mu     sync.RWMutex
	last   *Result
	lastOK *Result
}

// New validates the configuration and prepares a pipeline.
func New(opts Options) (*Pipeline, error) {
	layout, err := chart.NewLayout(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = export.FormatPDF
	}
	if _, err := export.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.Sink == nil {
		opts.Sink = output.NewFileSink("")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.BaseName == "" {
		opts.BaseName = DefaultBaseName
	}

	src := opts.Source
	if src == nil {
		lo, hi := opts.Config.SampleBand()
		src = chart.NewUniformSource(lo, hi, opts.Rand)
	}

	return &Pipeline{opts: opts, layout: layout, source: src}, nil
}

// Layout returns the computed page geometry.
func (p *Pipeline) Layout() *chart.Layout { return p.layout }

// Options returns the pipeline's effective options.
func (p *Pipeline) Options() Options { return p.opts }

// Last returns the most recent result, if any.
func (p *Pipeline) Last() (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}

// LastSuccessful returns the most recent result without an error.
func (p *Pipeline) LastSuccessful() (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastOK == nil {
		return Result{}, false
	}
	return *p.lastOK, true
}

// Start runs the pipeline on a new goroutine. The returned channel delivers
// exactly one Result and is then closed.
func (p *Pipeline) Start(ctx context.Context) <-chan Result {
	_, ch := p.Submit(ctx)
	return ch
}

// Submit is Start that also returns the run ID up front, so callers can
// track the run before it finishes.
func (p *Pipeline) Submit(ctx context.Context) (uuid.UUID, <-chan Result) {
	id := uuid.New()
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- p.run(ctx, id)
	}()
	return id, ch
}

// Run generates, renders and delivers one chart. Errors are reported in the
// Result; a panic inside a stage is recovered into an INTERNAL_PANIC error.
func (p *Pipeline) Run(ctx context.Context) Result {
	return p.run(ctx, uuid.New())
}

func (p *Pipeline) run(ctx context.Context, id uuid.UUID) (res Result) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	begin := time.Now()
	res = Result{
		ID:          id,
		Format:      p.opts.Format,
		ContentType: p.opts.Format.ContentType(),
		StartedAt:   p.opts.Clock(),
	}
	p.notify(Event{Kind: EventStarted, Result: res})
	log.Printf("[pipeline] run %s started (format=%s, days=%d)", res.ID, res.Format, p.layout.DayCount)

	defer func() {
		if r := recover(); r != nil {
			res.Err = cerrors.New(cerrors.ErrInternalPanic, cerrors.CategoryInternal, fmt.Sprintf("generation panicked: %v", r))
		}
		res.Duration = time.Since(begin)
		p.finish(res)
	}()

	res.Err = p.execute(ctx, &res)
	return res
}

func (p *Pipeline) execute(ctx context.Context, res *Result) error {
	if err := checkCanceled(ctx, "generate"); err != nil {
		return err
	}
	data, err := chart.Generate(res.StartedAt, p.layout.DayCount, p.source)
	if err != nil {
		return err
	}

	if p.opts.DryRun {
		rec := chart.NewRecorder()
		chart.NewPainter(p.layout, data).Paint(rec)
		res.Ops = len(rec.Ops)
		res.Location = "(dry run)"
		return nil
	}

	if err := checkCanceled(ctx, "render"); err != nil {
		return err
	}
	doc, err := export.Render(p.opts.Format, p.layout, data, &export.Options{Version: p.opts.Version})
	if err != nil {
		return err
	}

	if err := checkCanceled(ctx, "write"); err != nil {
		return err
	}
	loc, err := p.opts.Sink.Write(ctx, output.Artifact{
		Name:        p.opts.BaseName + p.opts.Format.Ext(),
		ContentType: res.ContentType,
		Data:        doc,
	})
	if err != nil {
		return err
	}

	res.Location = loc
	res.Size = len(doc)
	res.Data = doc
	return nil
}

func (p *Pipeline) finish(res Result) {
	if res.Err != nil {
		log.Printf("[pipeline] run %s failed after %v: %v", res.ID, res.Duration.Round(time.Millisecond), res.Err)
		p.notify(Event{Kind: EventFailed, Result: res})
	} else {
		log.Printf("[pipeline] run %s wrote %d bytes to %s in %v", res.ID, res.Size, res.Location, res.Duration.Round(time.Millisecond))
		p.notify(Event{Kind: EventCompleted, Result: res})
	}

	p.mu.Lock()
	p.last = &res
	if res.Err == nil {
		p.lastOK = &res
	}
	p.mu.Unlock()
}

func (p *Pipeline) notify(ev Event) {
	if p.opts.Notifier != nil {
		p.opts.Notifier.Notify(ev)
	}
}

func checkCanceled(ctx context.Context, stage string) error {
	select {
	case <-ctx.Done():
		return cerrors.Wrap(ctx.Err(), cerrors.ErrInternalCanceled, cerrors.CategoryInternal, "generation canceled").
			WithContext("stage", stage)
	default:
		return nil
	}
}
