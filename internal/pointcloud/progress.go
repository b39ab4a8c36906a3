package pointcloud

// ProgressFunc receives the current phase ("bounds", "build", "chunk") and
// the overall fraction of the load in [0,1].
type ProgressFunc func(label string, fraction float64)

// DefaultProgressInterval is the number of lines between progress reports.
// Reporting per line costs more than parsing it.
const DefaultProgressInterval = 10000

const (
	PhaseBounds = "bounds"
	PhaseBuild  = "build"
	PhaseChunk  = "chunk"
)

// progressTracker maps a phase-local position onto a slice of the overall
// progress range and throttles how often fn is called.
type progressTracker struct {
	fn       ProgressFunc
	label    string
	interval int
	total    int
	base     float64
	span     float64
}

func newTracker(fn ProgressFunc, label string, interval, total int, base, span float64) *progressTracker {
	if interval < 1 {
		interval = DefaultProgressInterval
	}
	return &progressTracker{fn: fn, label: label, interval: interval, total: total, base: base, span: span}
}

// observe reports position i if it falls on the reporting cadence.
func (p *progressTracker) observe(i int) {
	if p == nil || p.fn == nil || i%p.interval != 0 {
		return
	}
	p.fn(p.label, p.base+p.span*fraction(i, p.total))
}

// fraction is i/(total-1), or 0 when total <= 1.
func fraction(i, total int) float64 {
	if total <= 1 {
		return 0
	}
	f := float64(i) / float64(total-1)
	if f > 1 {
		f = 1
	}
	return f
}
