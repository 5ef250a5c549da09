// Package progress reports dataset processing on stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar over a batch of datasets.
// A nil *Tracker is valid and does nothing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
	mu    sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithWriter redirects the bar and its messages. Defaults to stderr.
func WithWriter(w io.Writer) Option {
	return func(t *Tracker) {
		t.out = w
	}
}

// NewSpinner creates a spinner for work with an unknown total.
func NewSpinner(label string, opts ...Option) *Tracker {
	t := newTracker(label, opts)
	t.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return t
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	t := newTracker(label, opts)
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return t
}

func newTracker(label string, opts []Option) *Tracker {
	t := &Tracker{label: label, out: os.Stderr}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tick marks one dataset done. Safe for concurrent use.
func (t *Tracker) Tick(dataset string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bar.Describe(fmt.Sprintf("%s %s", t.label, dataset))
	_ = t.bar.Add(1)
}

// Fail reports a dataset that could not be processed and still advances the bar.
func (t *Tracker) Fail(dataset string, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s failed: %v\n", dataset, err)
	_ = t.bar.Add(1)
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
