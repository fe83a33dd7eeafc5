package subtitles

// progressReporter composes per-phase percentages into the caller's range
// and only ever reports increasing values.
type progressReporter struct {
	fn     func(int)
	offset int
	span   int
	last   int
}

func newProgressReporter(h Hooks) *progressReporter {
	span := h.ProgressSpan
	if span <= 0 {
		span = 100
	}
	return &progressReporter{fn: h.Progress, offset: max(0, h.ProgressOffset), span: span, last: -1}
}

// phase reports done/total of a phase occupying weight percent starting at base.
func (p *progressReporter) phase(base, weight, done, total int) {
	internal := base + weight
	if total > 0 {
		internal = base + weight*min(done, total)/total
	}
	p.report(internal)
}

func (p *progressReporter) finish() {
	p.report(100)
}

func (p *progressReporter) report(internal int) {
	internal = max(0, min(internal, 100))
	global := p.offset + internal*p.span/100
	if global <= p.last {
		return
	}
	p.last = global
	if p.fn != nil {
		p.fn(global)
	}
}
