package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// HeartbeatOptions configures the heartbeat ticker.
type HeartbeatOptions struct {
	// Interval is how often the heartbeat updates.
	// Default: 5s
	Interval time.Duration

	// Output is where the spinner is rendered.
	// Default: os.Stderr
	Output io.Writer

	// Description is shown next to the spinner.
	// Default: "upload in progress"
	Description string
}

// Heartbeat renders an elapsed-time spinner at a fixed interval while a
// transfer blocks on network I/O. It carries no byte-level information; it
// only signals that the operation is still alive. Shutdown is driven by
// context cancellation and joined via a done channel, so no output can occur
// after Stop returns.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts the ticker goroutine. Stop must be called on every
// path once the guarded operation finishes.
func StartHeartbeat(ctx context.Context, opts HeartbeatOptions) *Heartbeat {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Description == "" {
		opts.Description = "upload in progress"
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(opts.Output),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetRenderBlankState(false),
	)
	start := time.Now()

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bar.Describe(fmt.Sprintf("%s (elapsed %s)",
					opts.Description, formatDuration(time.Since(start))))
				_ = bar.Add(1)
			}
		}
	}()

	return h
}

// Stop cancels the ticker and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	h.cancel()
	<-h.done
}
