package shell

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress renders download progress as a terminal progress bar. Report matches
// downloader.ProgressFunc.
type Progress struct {
	out   io.Writer
	bar   *progressbar.ProgressBar
	total int64
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

func (p *Progress) Report(written, total int64) {
	if total <= 0 {
		total = -1
	}
	if p.bar == nil {
		p.total = total
		p.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	if total > 0 && total != p.total {
		p.total = total
		p.bar.ChangeMax64(total)
	}
	_ = p.bar.Set64(written)
}

// Finish clears the current bar; the next Report starts a new one.
func (p *Progress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.total = 0
}
