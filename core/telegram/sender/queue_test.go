package sender

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestQueueRetriesTransientErrors(t *testing.T) {
	q := NewQueue(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	err := q.Enqueue(context.Background(), "send", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return syscall.ECONNRESET
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	q.Close()
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if q.ErrorCount() != 0 {
		t.Fatalf("errors = %d", q.ErrorCount())
	}
}

func TestQueueGivesUpOnPermanentErrors(t *testing.T) {
	q := NewQueue(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	_ = q.Enqueue(context.Background(), "edit", "editMessageText", func() error {
		calls.Add(1)
		return &tele.Error{Code: 400, Description: "message is not modified"}
	})
	q.Close()
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	if q.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", q.ErrorCount())
	}
}

func TestQueueRejectsWhenFullOrClosed(t *testing.T) {
	q := NewQueue(Options{Workers: 1, QueueSize: 1})
	started := make(chan struct{})
	release := make(chan struct{})
	noop := func() error { return nil }

	_ = q.Enqueue(context.Background(), "send", "", func() error {
		close(started)
		<-release
		return nil
	})
	<-started
	if err := q.Enqueue(context.Background(), "send", "", noop); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := q.Enqueue(context.Background(), "send", "", noop); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("third enqueue = %v, want full", err)
	}
	close(release)
	q.Close()
	q.Close()

	if err := q.Enqueue(context.Background(), "send", "", noop); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v", err)
	}
	if err := q.Enqueue(context.Background(), "send", "", nil); err == nil {
		t.Fatal("nil run accepted")
	}
}

func TestClassifyAndSanitize(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{&tele.Error{Code: 502}, "http_5xx"},
		{errors.New("telegram: bad request (400)"), "http_4xx"},
		{io.EOF, "unknown"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Fatalf("classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}

	msg := sanitizeErrorMessage(errors.New(`Post "https://api.telegram.org/bot123:AbC-d_e/sendMessage": EOF`))
	if msg != `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF` {
		t.Fatalf("sanitized = %q", msg)
	}
}
