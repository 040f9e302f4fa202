package events

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Notification) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, Notification) {
	<-s.gate
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher")
	}
	d.Emit(context.Background(), New(LevelInfo, "test", "ignored"))
	d.Close()
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("nil dispatcher counts must be zero")
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), New(LevelSuccess, "test", "ok"))
	}
	d.Close()
	if sink.count.Load() != 10 || d.Delivered() != 10 {
		t.Fatalf("delivered %d/%d, want 10", sink.count.Load(), d.Delivered())
	}

	d.Emit(context.Background(), New(LevelSuccess, "test", "late"))
	if sink.count.Load() != 10 {
		t.Fatal("emit after close must be ignored")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), New(LevelInfo, "test", "x"))
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink")
	}
	close(sink.gate)
	d.Close()
}

func TestDispatcherBlockingHonoursContext(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), New(LevelInfo, "test", "in sink"))
	d.Emit(context.Background(), New(LevelInfo, "test", "buffered"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		d.Emit(ctx, New(LevelInfo, "test", "blocked"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit ignored context cancellation")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONWriterSink(&buf)
	n := New(LevelError, "block", "Failed to update block status")
	n.Metadata = map[string]string{"user_id": "u1"}
	s.Emit(context.Background(), n)

	line := strings.TrimSpace(buf.String())
	var got Notification
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	if got.ID == "" || got.Level != LevelError || got.Metadata["user_id"] != "u1" {
		t.Fatalf("got %+v", got)
	}
}

func TestChannelAndFuncSinks(t *testing.T) {
	ch := NewChannelSink(1)
	ch.Emit(context.Background(), New(LevelInfo, "", "hello"))
	if n := <-ch.Events(); n.Message != "hello" {
		t.Fatalf("message = %q", n.Message)
	}

	var got string
	SinkFunc(func(_ context.Context, n Notification) { got = n.Message }).Emit(context.Background(), New(LevelInfo, "", "fn"))
	if got != "fn" {
		t.Fatalf("got %q", got)
	}
}
