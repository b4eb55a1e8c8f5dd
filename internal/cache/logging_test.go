package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"shopadmin.org/internal/obs"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestLoggingRecordsResults(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := obs.WithLogger(context.Background(), zap.New(core))

	c := NewLogging(NewMemory(8, time.Minute))
	_, _, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	_, _, _ = c.Get(ctx, "k")

	entries := logs.FilterMessage("employee_cache").AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	want := []string{"miss", "ok", "hit"}
	for i, e := range entries {
		if got := e.ContextMap()["cache_result"]; got != want[i] {
			t.Fatalf("entry %d: cache_result=%v, want %s", i, got, want[i])
		}
	}
}

func TestLoggingPassesErrorsThrough(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := obs.WithLogger(context.Background(), zap.New(core))

	boom := errors.New("down")
	c := NewLogging(failingStore{err: boom})
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if logs.FilterLevelExact(zap.ErrorLevel).Len() != 1 {
		t.Fatalf("expected error log")
	}
}
