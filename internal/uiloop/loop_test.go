package uiloop

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoopRunsInPostOrder(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken: %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 callbacks, got %d", len(got))
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Do(ctx, func() { ran = true }); err != nil {
		t.Fatalf("do: %v", err)
	}
	if !ran {
		t.Fatalf("loop stopped after panic")
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"panic":"boom"`) {
		t.Fatalf("panic not logged: %s", out)
	}
	if !strings.Contains(out, `"stack":`) || !strings.Contains(out, "runSafe") {
		t.Fatalf("stack missing from log: %s", out)
	}
}

func TestLoopDoAfterStop(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}
	if err := l.Do(context.Background(), func() {}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestQueueDrainIncludesNestedPosts(t *testing.T) {
	q := NewQueue()
	count := 0
	q.Post(func() {
		count++
		q.Post(func() { count++ })
	})
	if n := q.Drain(); n != 2 {
		t.Fatalf("expected 2 callbacks drained, got %d", n)
	}
	if count != 2 || q.Len() != 0 {
		t.Fatalf("count=%d len=%d", count, q.Len())
	}
}
