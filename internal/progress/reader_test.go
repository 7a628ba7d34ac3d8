package progress

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackedReadCloser records whether Close was called.
type trackedReadCloser struct {
	io.Reader
	closed bool
}

func (t *trackedReadCloser) Close() error {
	t.closed = true
	return nil
}

func TestReaderCountsBytes(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	rc := &trackedReadCloser{Reader: bytes.NewReader(data)}

	var samples []int64
	r := NewReader(rc, int64(len(data)), func(bytesRead, total int64, elapsed time.Duration) {
		if total != int64(len(data)) {
			t.Errorf("total = %d, want %d", total, len(data))
		}
		samples = append(samples, bytesRead)
	})

	buf := make([]byte, 64)
	var got []byte
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), r.BytesRead())
	require.NotEmpty(t, samples)
	assert.Equal(t, int64(len(data)), samples[len(samples)-1])
}

func TestReaderSamplesMonotonic(t *testing.T) {
	data := bytes.Repeat([]byte("y"), 4096)
	rc := &trackedReadCloser{Reader: bytes.NewReader(data)}

	var lastBytes int64
	var lastElapsed time.Duration
	r := NewReader(rc, int64(len(data)), func(bytesRead, total int64, elapsed time.Duration) {
		if bytesRead < lastBytes {
			t.Errorf("bytesRead went backwards: %d < %d", bytesRead, lastBytes)
		}
		if elapsed < lastElapsed {
			t.Errorf("elapsed went backwards: %s < %s", elapsed, lastElapsed)
		}
		lastBytes = bytesRead
		lastElapsed = elapsed
	})

	_, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), lastBytes)
}

func TestReaderNilCallback(t *testing.T) {
	rc := &trackedReadCloser{Reader: bytes.NewReader([]byte("hello"))}
	r := NewReader(rc, 5, nil)

	n, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(5), r.BytesRead())
}

func TestReaderCloseReleasesHandle(t *testing.T) {
	rc := &trackedReadCloser{Reader: bytes.NewReader([]byte("data"))}
	r := NewReader(rc, 4, nil)

	require.NoError(t, r.Close())
	assert.True(t, rc.closed)
}
