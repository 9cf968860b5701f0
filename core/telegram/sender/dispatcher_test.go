package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	var ran atomic.Int32
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		ran.Add(1)
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
	d.Close()
	if ran.Load() != 1 {
		t.Fatalf("job ran %d times", ran.Load())
	}
}

func TestDispatcherRetriesTransientFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	defer d.Close()

	var calls atomic.Int32
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "notify", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("successful retry counted as failure")
	}
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	if err := d.Enqueue(context.Background(), "notify", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("403 forbidden")
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if got := calls.Load(); got != 1 {
		t.Fatalf("permanent error retried: %d attempts", got)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("failure not counted: %d", d.ErrorCount())
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	err := d.Enqueue(context.Background(), "send", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestSanitizeErrorRedactsToken(t *testing.T) {
	err := errors.New("Post https://api.telegram.org/bot12345:AAH-secret/sendMessage: timeout")
	got := sanitizeError(err)
	if got != "Post https://api.telegram.org/bot<redacted>/sendMessage: timeout" {
		t.Fatalf("token not redacted: %q", got)
	}
}
