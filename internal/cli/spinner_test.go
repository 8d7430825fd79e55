package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	if s.Cancelled() != true {
		// Stop cancels the internal context; Cancelled reports that.
		t.Error("Cancelled() should be true after Stop")
	}
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "working")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() hung after context cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() should report the cancelled context")
	}
}

func TestSpinnerDoubleStopIsSafe(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	s.Stop()
	s.Stop() // must not panic or block
}
