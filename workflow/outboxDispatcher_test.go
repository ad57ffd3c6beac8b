package workflow

import (
	"testing"
	"time"
)

func TestBackoffForAttemptDoubles(t *testing.T) {
	initial := 5 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{4, 40 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffForAttempt(initial, tc.attempt); got != tc.want {
			t.Errorf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestBackoffForAttemptCapped(t *testing.T) {
	initial := 5 * time.Second
	if got := backoffForAttempt(initial, 30); got != 10*time.Minute {
		t.Errorf("expected cap at 10m, got %v", got)
	}
}

func TestDispatcherDefaults(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil)
	if d.MaxAttempts != 20 {
		t.Errorf("expected 20 max attempts, got %d", d.MaxAttempts)
	}
	if d.DispatcherID == "" {
		t.Error("dispatcher id must be set for lock ownership")
	}
	if d.LockTimeout <= 0 {
		t.Error("stale lock reclaim needs a positive lock timeout")
	}
}
