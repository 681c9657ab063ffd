package regen

// Progress receives per-file progress updates. Update returns true when the
// user asked to cancel; the request is honoured only while scanning.
type Progress interface {
	Update(phase Phase, item string, fraction float64) (cancel bool)
	Done()
}

type nopProgress struct{}

func (nopProgress) Update(Phase, string, float64) bool { return false }
func (nopProgress) Done()                              {}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(phase Phase, item string, fraction float64) bool

func (f ProgressFunc) Update(phase Phase, item string, fraction float64) bool {
	return f(phase, item, fraction)
}

func (f ProgressFunc) Done() {}
