// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	width           int
	maxProgress     int
	currentProgress int
	startTime       time.Time
}

// NewManualProgressBar returns a new ManualProgressBar width
// characters wide which reaches 100% after max calls to Increment and
// is printed to out
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Fraction returns the fraction of progress completed, in [0, 1]
func (p *ManualProgressBar) Fraction() float64 {
	return float64(p.currentProgress) / float64(p.maxProgress)
}

// String returns the progress bar as a single line
func (p *ManualProgressBar) String() string {
	filled := p.currentProgress * p.width / p.maxProgress

	var bar strings.Builder
	bar.WriteString("|")
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat(" ", p.width-filled))
	fmt.Fprintf(&bar, "| [%.2f%% | %v/%v steps | elapsed: %v]",
		p.Fraction()*100, p.currentProgress, p.maxProgress,
		time.Since(p.startTime).Truncate(time.Second))

	return bar.String()
}

// Display overwrites the current terminal line with the progress bar
func (p *ManualProgressBar) Display() {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String())
}
