package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerAnimates(t *testing.T) {
	var w syncBuffer
	s := newSpinner(context.Background(), &w, "Bundling app")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(w.String(), "Bundling app") {
		t.Errorf("spinner output = %q", w.String())
	}
	if s.Cancelled() {
		t.Error("a stopped spinner is not cancelled")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var w syncBuffer
	s := newSpinner(ctx, &w, "Scanning")
	s.Start()

	cancel()
	time.Sleep(2 * spinnerInterval)
	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var w syncBuffer
	s := newSpinner(context.Background(), &w, "Stopping")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopMessages(t *testing.T) {
	var w syncBuffer
	var out bytes.Buffer

	s := newSpinner(context.Background(), &w, "Working")
	s.Start()
	s.StopWithSuccess(&out, "Bundled app")

	f := newSpinner(context.Background(), &w, "Working")
	f.Start()
	f.StopWithError(&out, "Bundle failed")

	got := out.String()
	if !strings.Contains(got, "Bundled app") {
		t.Errorf("success line missing: %q", got)
	}
	if !strings.Contains(got, "Bundle failed") {
		t.Errorf("error line missing: %q", got)
	}
}
