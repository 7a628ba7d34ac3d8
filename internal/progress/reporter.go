package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ReporterOptions configures the progress reporter.
type ReporterOptions struct {
	// Interval is the minimum time between printed updates.
	// Default: 2s
	Interval time.Duration

	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer
}

// Reporter converts raw byte/time samples into throttled human-readable
// progress lines: overall percentage, instantaneous and average speed, and
// an ETA derived from the average rate. State persists across samples for
// the duration of one transfer.
type Reporter struct {
	opts ReporterOptions

	started   bool
	lastPrint time.Time
	lastBytes int64

	now func() time.Time // stubbed in tests
}

// NewReporter creates a new progress reporter.
func NewReporter(opts ReporterOptions) *Reporter {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Reporter{
		opts: opts,
		now:  time.Now,
	}
}

// OnSample consumes one progress sample. Output is produced at most once per
// Interval regardless of how often samples arrive; between prints the method
// only compares timestamps, keeping it cheap on the hot read path.
func (r *Reporter) OnSample(bytesRead, total int64, elapsed time.Duration) {
	now := r.now()
	if !r.started {
		r.started = true
		r.lastPrint = now
		return
	}

	sinceLast := now.Sub(r.lastPrint)
	if sinceLast < r.opts.Interval {
		return
	}

	var percent float64
	if total > 0 {
		percent = float64(bytesRead) / float64(total) * 100
	}

	var avgSpeed float64
	if elapsed > 0 {
		avgSpeed = float64(bytesRead) / elapsed.Seconds()
	}

	instSpeed := float64(bytesRead-r.lastBytes) / sinceLast.Seconds()

	line := fmt.Sprintf("  Progress: %.1f%% | Uploaded: %s / %s | Speed: %s/s (avg: %s/s) | Elapsed: %s",
		percent,
		FormatBytes(bytesRead),
		FormatBytes(total),
		FormatBytes(int64(instSpeed)),
		FormatBytes(int64(avgSpeed)),
		formatDuration(elapsed),
	)
	if eta := ETA(bytesRead, total, elapsed); eta > 0 {
		line += " | ETA: " + formatDuration(eta)
	}
	fmt.Fprintln(r.opts.Output, line)

	r.lastPrint = now
	r.lastBytes = bytesRead
}

// ETA estimates the remaining transfer time from the observed average rate.
// It returns 0 when no estimate is possible (nothing read yet, no time
// elapsed, or transfer already complete); it never divides by zero.
func ETA(bytesRead, total int64, elapsed time.Duration) time.Duration {
	if bytesRead <= 0 || elapsed <= 0 {
		return 0
	}
	remaining := total - bytesRead
	if remaining <= 0 {
		return 0
	}
	rate := float64(bytesRead) / elapsed.Seconds()
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// byteUnits orders suffixes largest-first so ParseBytes matches "KB"
// before the bare "B".
var byteUnits = []struct {
	suffix string
	size   int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	for _, u := range byteUnits {
		if u.size > 1 && b >= u.size {
			return fmt.Sprintf("%.2f %s", float64(b)/float64(u.size), u.suffix)
		}
	}
	return fmt.Sprintf("%d B", b)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ParseBytes parses a human-readable byte string (e.g., "500MB").
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)

	var multiplier int64 = 1
	for _, u := range byteUnits {
		if strings.HasSuffix(s, u.suffix) {
			multiplier = u.size
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %q", s)
	}

	return int64(value * float64(multiplier)), nil
}
