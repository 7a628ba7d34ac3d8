package progress

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// lockedBuffer serializes writes from the heartbeat goroutine with reads
// from the test goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestHeartbeatEmitsWhileRunning(t *testing.T) {
	out := &lockedBuffer{}
	h := StartHeartbeat(context.Background(), HeartbeatOptions{
		Interval: 10 * time.Millisecond,
		Output:   out,
	})

	time.Sleep(100 * time.Millisecond)
	h.Stop()

	assert.Positive(t, out.Len(), "expected heartbeat output while running")
}

func TestHeartbeatStopsWithinGracePeriod(t *testing.T) {
	out := &lockedBuffer{}
	h := StartHeartbeat(context.Background(), HeartbeatOptions{
		Interval: 5 * time.Millisecond,
		Output:   out,
	})

	time.Sleep(30 * time.Millisecond)
	h.Stop()

	// Stop joins the goroutine, so the length must not move afterwards.
	after := out.Len()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, out.Len(), "heartbeat produced output after Stop")
}

func TestHeartbeatStopIdleProducesNothing(t *testing.T) {
	out := &lockedBuffer{}
	h := StartHeartbeat(context.Background(), HeartbeatOptions{
		Interval: time.Hour,
		Output:   out,
	})
	h.Stop()

	assert.Zero(t, out.Len())
}

func TestHeartbeatParentCancellation(t *testing.T) {
	out := &lockedBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	h := StartHeartbeat(ctx, HeartbeatOptions{
		Interval: 5 * time.Millisecond,
		Output:   out,
	})

	cancel()

	// Stop must still return promptly after the parent context is gone.
	done := make(chan struct{})
	go func() {
		h.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after parent cancellation")
	}
}
