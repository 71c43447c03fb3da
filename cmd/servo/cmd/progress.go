package cmd

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/servo-mc/servo/internal/service/downloader"
)

// progressView renders one progress bar per artifact download.
type progressView struct {
	writer progress.Writer

	mu       sync.Mutex
	trackers []*progress.Tracker
}

func newProgressView(out io.Writer) *progressView {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetMessageLength(24)
	pw.SetTrackerLength(30)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Value = true

	go pw.Render()

	// Stop is a no-op until rendering has begun.
	for !pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}

	return &progressView{writer: pw}
}

// Observer adapts the view to bulk refreshes.
func (v *progressView) Observer() downloader.Observer {
	return v.Track
}

// Track returns a function that moves the bar of key.
// The bar appears on the first reported progress.
func (v *progressView) Track(key string) downloader.ProgressFunc {
	tracker := &progress.Tracker{
		Message: key,
		Units:   progress.UnitsBytes,
	}

	var (
		once  sync.Once
		total int64
	)

	return func(done, size int64) {
		once.Do(func() {
			v.mu.Lock()
			v.trackers = append(v.trackers, tracker)
			v.mu.Unlock()

			v.writer.AppendTracker(tracker)
		})

		if size > 0 && size != total {
			total = size
			tracker.UpdateTotal(size)
		}

		tracker.SetValue(done)
	}
}

// Stop finishes every bar and waits for the final render.
// Bars still open are marked as failed when err is set.
func (v *progressView) Stop(err error) {
	v.mu.Lock()
	for _, tracker := range v.trackers {
		if tracker.IsDone() {
			continue
		}

		if err != nil {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
	}
	v.mu.Unlock()

	v.writer.Stop()

	for v.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
