package logging

import (
	"math"
	"strings"
)

// ProgressSampler throttles progress log lines. Each phase keeps its own
// bucket, so interleaved phases do not reset each other.
type ProgressSampler struct {
	step float64
	last map[string]int
}

// NewProgressSampler returns a sampler emitting once per step of completion,
// where step is a fraction of the whole (default 0.1).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &ProgressSampler{step: step, last: make(map[string]int)}
}

// ShouldLog reports whether progress at fraction (0..1) in phase is worth a
// log line. The first update of a phase always emits; a negative fraction is
// unknown progress and emits nothing after that.
func (s *ProgressSampler) ShouldLog(phase string, fraction float64) bool {
	if s == nil {
		return true
	}
	phase = strings.TrimSpace(phase)
	last, seen := s.last[phase]
	if fraction < 0 {
		if !seen {
			s.last[phase] = -1
		}
		return !seen
	}
	bucket := int(math.Floor(math.Min(fraction, 1)/s.step + 1e-9))
	if seen && bucket <= last {
		return false
	}
	s.last[phase] = bucket
	return true
}
