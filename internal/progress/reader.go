package progress

import (
	"io"
	"time"
)

// Func receives a progress sample after each read chunk. It runs on the hot
// read path, so implementations must be cheap and must not block.
type Func func(bytesRead, total int64, elapsed time.Duration)

// Reader wraps an io.ReadCloser and counts bytes as they are consumed,
// invoking the callback with cumulative progress and elapsed time. The
// counters are owned by a single reader instance for one transfer; Reader
// is not safe for concurrent use.
type Reader struct {
	rc    io.ReadCloser
	total int64
	read  int64
	start time.Time
	fn    Func
}

// NewReader wraps rc. total is the expected size in bytes; fn may be nil.
// The elapsed clock starts here, not at the first Read.
func NewReader(rc io.ReadCloser, total int64, fn Func) *Reader {
	return &Reader{
		rc:    rc,
		total: total,
		start: time.Now(),
		fn:    fn,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if n > 0 {
		r.read += int64(n)
		if r.fn != nil {
			r.fn(r.read, r.total, time.Since(r.start))
		}
	}
	return n, err
}

// BytesRead returns the cumulative byte count so far.
func (r *Reader) BytesRead() int64 {
	return r.read
}

// Close releases the underlying handle. Callers hold this in a defer so the
// handle is released on every exit path.
func (r *Reader) Close() error {
	return r.rc.Close()
}
