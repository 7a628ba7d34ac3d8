package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{256 * 1024 * 1024, "256.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1KB", 1024},
		{"1.5KB", 1536},
		{"500MB", 500 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"1TB", 1024 * 1024 * 1024 * 1024},
		{"1 GB", 1024 * 1024 * 1024},
		{" 500MB ", 500 * 1024 * 1024},
	}

	for _, tt := range tests {
		result, err := ParseBytes(tt.input)
		if err != nil {
			t.Errorf("ParseBytes(%q): %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, input := range []string{"invalid", "", "MB", "12 parsecs"} {
		if _, err := ParseBytes(input); err == nil {
			t.Errorf("ParseBytes(%q): expected error", input)
		}
	}
}

func TestETA(t *testing.T) {
	tests := []struct {
		name      string
		bytesRead int64
		total     int64
		elapsed   time.Duration
		expected  time.Duration
	}{
		{"nothing read", 0, 1000, time.Second, 0},
		{"no time elapsed", 500, 1000, 0, 0},
		{"halfway at steady rate", 500, 1000, 10 * time.Second, 10 * time.Second},
		{"quarter done", 250, 1000, 10 * time.Second, 30 * time.Second},
		{"complete", 1000, 1000, 10 * time.Second, 0},
		{"overshoot", 1100, 1000, 10 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ETA(tt.bytesRead, tt.total, tt.elapsed)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, time.Duration(0))
		})
	}
}

func TestReporterThrottles(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(ReporterOptions{
		Interval: 2 * time.Second,
		Output:   &out,
	})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	// First sample arms the throttle window, no output yet.
	r.OnSample(10, 1000, 0)
	assert.Zero(t, out.Len())

	// Many samples inside the window produce nothing.
	for i := int64(0); i < 100; i++ {
		clock = clock.Add(10 * time.Millisecond)
		r.OnSample(20+i, 1000, time.Duration(i)*10*time.Millisecond)
	}
	assert.Zero(t, out.Len())

	// Crossing the interval produces exactly one line.
	clock = clock.Add(2 * time.Second)
	r.OnSample(500, 1000, 3*time.Second)
	lines := strings.Count(out.String(), "\n")
	assert.Equal(t, 1, lines)

	// Immediately after, throttled again.
	clock = clock.Add(time.Millisecond)
	r.OnSample(510, 1000, 3*time.Second+time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestReporterOutputContent(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(ReporterOptions{
		Interval: time.Second,
		Output:   &out,
	})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	r.OnSample(0, 2048, 0)
	clock = clock.Add(2 * time.Second)
	r.OnSample(1024, 2048, 2*time.Second)

	line := out.String()
	assert.Contains(t, line, "Progress: 50.0%")
	assert.Contains(t, line, "1.00 KB / 2.00 KB")
	assert.Contains(t, line, "Elapsed: 2s")
	assert.Contains(t, line, "ETA: 2s")
}

func TestReporterZeroProgressNoETA(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(ReporterOptions{
		Interval: time.Second,
		Output:   &out,
	})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	r.OnSample(0, 1000, 0)
	clock = clock.Add(2 * time.Second)
	r.OnSample(0, 1000, 2*time.Second)

	line := out.String()
	assert.Contains(t, line, "Progress: 0.0%")
	assert.NotContains(t, line, "ETA:")
}
