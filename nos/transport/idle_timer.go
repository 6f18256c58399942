package transport

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/netease/nos-go-sdk/nos/types"
)

// idleTimer cancels an attempt once no byte has moved in either direction
// for timeout. It applies to pooled connections as well as new ones.
type idleTimer struct {
	timeout time.Duration
	timer   *time.Timer
	fired   atomic.Bool
}

func newIdleTimer(timeout time.Duration, cancel context.CancelFunc) *idleTimer {
	t := &idleTimer{timeout: timeout}
	t.timer = time.AfterFunc(timeout, func() {
		t.fired.Store(true)
		cancel()
	})
	return t
}

func (t *idleTimer) touch() {
	if !t.fired.Load() {
		t.timer.Reset(t.timeout)
	}
}

func (t *idleTimer) stop() {
	t.timer.Stop()
}

func (t *idleTimer) expired() bool {
	return t.fired.Load()
}

// idleReader feeds the request body and counts as activity.
type idleReader struct {
	r     io.Reader
	timer *idleTimer
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.touch()
	}
	return n, err
}

// idleReadCloser guards the response body. Closing it ends the attempt.
type idleReadCloser struct {
	rc     io.ReadCloser
	timer  *idleTimer
	cancel context.CancelFunc
}

func (r *idleReadCloser) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if n > 0 {
		r.timer.touch()
	}
	if err != nil && err != io.EOF && r.timer.expired() {
		err = &types.ConnectionError{Timeout: true, Err: err}
	}
	return n, err
}

func (r *idleReadCloser) Close() error {
	r.timer.stop()
	err := r.rc.Close()
	r.cancel()
	return err
}
