package ids

import (
	"testing"
	"time"
)

func TestNewIsSortable(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := NewAt(at)
	b := NewAt(at)
	if len(a) != 26 {
		t.Fatalf("unexpected id length %d", len(a))
	}
	if !(a < b) {
		t.Fatalf("ids in the same millisecond must increase: %s >= %s", a, b)
	}
	if later := NewAt(at.Add(time.Second)); !(b < later) {
		t.Fatalf("later id must sort after: %s >= %s", b, later)
	}
}

func TestTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got, err := Time(NewAt(at))
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
	if _, err := Time("not-a-ulid"); err == nil {
		t.Fatalf("expected parse error")
	}
}
