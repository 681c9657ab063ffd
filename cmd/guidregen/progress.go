package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"guidregen/internal/regen"
)

const (
	progressScale    = 1000
	progressItemSize = 48
)

// barProgress renders one progress bar per phase on a terminal. Cancellation
// comes from the signal context, so Update never asks to cancel.
type barProgress struct {
	out   io.Writer
	phase regen.Phase
	bar   *progressbar.ProgressBar
}

func newProgress(out io.Writer, enabled bool) regen.Progress {
	if !enabled {
		return regen.ProgressFunc(func(regen.Phase, string, float64) bool { return false })
	}
	return &barProgress{out: out}
}

func (p *barProgress) Update(phase regen.Phase, item string, fraction float64) bool {
	if p.bar == nil || phase != p.phase {
		p.finish()
		p.phase = phase
		p.bar = progressbar.NewOptions(progressScale,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(phaseTitle(phase)),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetPredictTime(false),
		)
	}
	p.bar.Describe(phaseTitle(phase) + " " + shortenItem(item))
	_ = p.bar.Set(int(fraction * progressScale))
	return false
}

func (p *barProgress) Done() {
	p.finish()
}

func (p *barProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func phaseTitle(phase regen.Phase) string {
	switch phase {
	case regen.PhaseScanning:
		return "Scanning Assets folder"
	case regen.PhaseRewriting:
		return "Regenerating GUIDs"
	default:
		return string(phase)
	}
}

// shortenItem keeps the tail of long paths so the bar fits on one line.
func shortenItem(item string) string {
	runes := []rune(item)
	if len(runes) <= progressItemSize {
		return item
	}
	return "..." + string(runes[len(runes)-progressItemSize+3:])
}
