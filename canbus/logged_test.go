package canbus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

type recordSink struct {
	mu      sync.Mutex
	records []slog.Record
}

func (s *recordSink) Enabled(context.Context, slog.Level) bool { return true }
func (s *recordSink) Handle(_ context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r.Clone())
	return nil
}
func (s *recordSink) WithAttrs(attrs []slog.Attr) slog.Handler { return s }
func (s *recordSink) WithGroup(name string) slog.Handler       { return s }

func (s *recordSink) has(level slog.Level, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Level == level && r.Message == msg {
			return true
		}
	}
	return false
}

func (s *recordSink) attr(msg, key string) (slog.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Message != msg {
			continue
		}
		var v slog.Value
		var found bool
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				v, found = a.Value, true
				return false
			}
			return true
		})
		return v, found
	}
	return slog.Value{}, false
}

func TestLoggedBus_WriteAndReadLogging(t *testing.T) {
	lb := NewLoopbackBus()
	defer lb.Close()

	sink := &recordSink{}
	logger := slog.New(sink)

	// Wrap both endpoints to verify read and write logging independently.
	sender := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogWrite)
	receiver := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogRead)
	defer sender.Close()
	defer receiver.Close()

	ctx := context.Background()
	frame := MustFrame(0x123, []byte{1, 2, 3})
	if err := sender.Send(ctx, frame); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := receiver.Receive(ctx); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if !sink.has(slog.LevelInfo, "canbus send") {
		t.Fatalf("expected write log entry")
	}
	if !sink.has(slog.LevelInfo, "canbus receive") {
		t.Fatalf("expected read log entry")
	}
	if v, ok := sink.attr("canbus receive", "string"); !ok || v.String() != "123 [3] 01 02 03" {
		t.Fatalf("unexpected string attr: %v", v)
	}
}

func TestLoggedBus_FilterSkipsFrames(t *testing.T) {
	lb := NewLoopbackBus()
	defer lb.Close()

	sink := &recordSink{}
	sender := NewLoggedBusWithFilter(lb.Open(), slog.New(sink), slog.LevelDebug, LogAll, ByID(0x200))
	defer sender.Close()

	if err := sender.Send(context.Background(), MustFrame(0x123, nil)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sink.has(slog.LevelDebug, "canbus send") {
		t.Fatalf("filtered frame should not be logged")
	}
}

func TestLoggedBus_ErrorLogging(t *testing.T) {
	lb := NewLoopbackBus()
	// Create and immediately close a receiver to force error on Receive
	rx := lb.Open()
	_ = rx.Close()

	sink := &recordSink{}
	wrapped := NewLoggedBus(rx, slog.New(sink), slog.LevelInfo, LogAll)
	_, _ = wrapped.Receive(context.Background())
	_ = wrapped.Send(context.Background(), MustFrame(0x1, nil))

	if !sink.has(slog.LevelError, "canbus receive error") {
		t.Fatalf("expected receive error log entry")
	}
	if !sink.has(slog.LevelError, "canbus send error") {
		t.Fatalf("expected send error log entry")
	}
}
