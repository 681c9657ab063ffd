package logging

import "testing"

func TestNewProgressSamplerStep(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want float64
	}{
		{"zero uses default", 0, 0.1},
		{"negative uses default", -1, 0.1},
		{"above one uses default", 5, 0.1},
		{"custom", 0.25, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewProgressSampler(tt.step).step; got != tt.want {
				t.Errorf("step = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("scanning", 0.5) {
		t.Error("nil sampler should always log")
	}
}

func TestProgressSamplerSteps(t *testing.T) {
	s := NewProgressSampler(0.1)
	steps := []struct {
		phase    string
		fraction float64
		want     bool
	}{
		{"scanning", 0, true},
		{"scanning", 0.03, false},
		{"scanning", 0.099, false},
		{"scanning", 0.2, true},
		{"rewriting", 0, true},
		{"scanning", 0.25, false},
		{"scanning", 0.3, true},
		{"scanning", 1.5, true},
		{"scanning", 1, false},
		{"rewriting", 0.05, false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.phase, step.fraction); got != step.want {
			t.Fatalf("step %d (%s %.3f): ShouldLog = %v, want %v", i, step.phase, step.fraction, got, step.want)
		}
	}
}

func TestProgressSamplerUnknownFraction(t *testing.T) {
	s := NewProgressSampler(0.1)
	if !s.ShouldLog("scanning", -1) {
		t.Fatal("first update of a phase should log")
	}
	if s.ShouldLog("scanning", -1) {
		t.Fatal("repeated unknown progress should not log")
	}
	if !s.ShouldLog("scanning", 0) {
		t.Fatal("first known fraction after unknown progress should log")
	}
}
