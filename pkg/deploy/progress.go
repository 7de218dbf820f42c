package deploy

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// progress is a spinner showing the latest status of the stack being deployed. Without an output it does nothing.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(out io.Writer, stackName string) *progress {
	if out == nil {
		return &progress{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(stackName),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &progress{bar: bar}
}

func (p *progress) status(stackName, status string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(stackName + " " + statusColor(status).Sprint(status))
	_ = p.bar.Add(1)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func statusColor(status string) *color.Color {
	switch {
	case isFailedStatus(status):
		return color.New(color.FgRed)
	case isSuccessStatus(status):
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgYellow)
	}
}
