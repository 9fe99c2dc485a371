package cmd

import (
	"io"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressReporter draws one bar on stderr that advances as targets finish.
// A nil reporter is a no-op.
type progressReporter struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

func newProgressReporter(handle string, total int) *progressReporter {
	return newProgressReporterTo(os.Stderr, handle, total)
}

func newProgressReporterTo(w io.Writer, handle string, total int) *progressReporter {
	if total <= 0 {
		return nil
	}

	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(handle, decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
			decor.OnComplete(decor.Percentage(decor.WCSyncSpace), "done"),
		),
	)

	return &progressReporter{progress: p, bar: bar}
}

// observe advances the bar by one target. Safe for concurrent use.
func (r *progressReporter) observe() {
	if r == nil {
		return
	}
	r.bar.Increment()
}

// finish stops a bar that fell short of its planned total and waits for
// the final render, so stdout output never interleaves with it.
func (r *progressReporter) finish() {
	if r == nil {
		return
	}
	if !r.bar.Completed() {
		r.bar.Abort(false)
	}
	r.progress.Wait()
}
