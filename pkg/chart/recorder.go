package chart

// OpKind identifies a recorded drawing operation.
type OpKind string

const (
	OpRect   OpKind = "rect"
	OpLine   OpKind = "line"
	OpCircle OpKind = "circle"
	OpText   OpKind = "text"
)

// Op is one recorded drawing call.
type Op struct {
	Kind           OpKind
	X0, Y0, X1, Y1 float64
	R              float64
	Text           string
	Style          Style
	Font           Font
}

// Recorder is a Surface that keeps every call in order. It backs dry runs
// and lets tests assert on the exact sequence the painter issues.
type Recorder struct {
	Ops []Op
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Rect implements Surface.
func (r *Recorder) Rect(x0, y0, x1, y1 float64, st Style) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, X0: x0, Y0: y0, X1: x1, Y1: y1, Style: st})
}

// Line implements Surface.
func (r *Recorder) Line(x0, y0, x1, y1 float64, st Style) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Style: st})
}

// Circle implements Surface.
func (r *Recorder) Circle(cx, cy, radius float64, st Style) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, X0: cx, Y0: cy, R: radius, Style: st})
}

// Text implements Surface.
func (r *Recorder) Text(s string, x, y float64, f Font) {
	r.Ops = append(r.Ops, Op{Kind: OpText, X0: x, Y0: y, Text: s, Font: f})
}

// Count returns the number of recorded ops of the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the recorded ops of the given kind, in order.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the strings of all recorded text ops, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset discards all recorded ops.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}
