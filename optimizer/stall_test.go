package optimizer

import (
	"testing"
	"time"
)

func TestStallMonitor(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewStallMonitor(300 * time.Second)
	m.now = func() time.Time { return now }
	st := &torrentState{}

	if m.Observe(st, true) {
		t.Error("Expected no restart on the first stalled observation")
	}
	if st.stalledSince.IsZero() {
		t.Fatal("Expected stalledSince to be recorded")
	}

	now = now.Add(299 * time.Second)
	if m.Observe(st, true) {
		t.Error("Expected no restart before the threshold")
	}

	now = now.Add(1 * time.Second)
	if !m.Observe(st, true) {
		t.Error("Expected a restart exactly at the threshold")
	}

	// The clock resets on restart: the next one is a full window away.
	now = now.Add(299 * time.Second)
	if m.Observe(st, true) {
		t.Error("Expected no restart inside the second window")
	}
	now = now.Add(1 * time.Second)
	if !m.Observe(st, true) {
		t.Error("Expected a second restart after another full window")
	}
}

func TestStallMonitorClearsOnRecovery(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewStallMonitor(300 * time.Second)
	m.now = func() time.Time { return now }
	st := &torrentState{}

	m.Observe(st, true)
	now = now.Add(250 * time.Second)
	if m.Observe(st, false) {
		t.Error("Expected no restart when the torrent recovered")
	}
	if !st.stalledSince.IsZero() {
		t.Error("Expected stalledSince to be cleared on recovery")
	}

	// A new stall episode starts its own clock.
	m.Observe(st, true)
	now = now.Add(299 * time.Second)
	if m.Observe(st, true) {
		t.Error("Expected the new episode to wait a full threshold")
	}
	now = now.Add(1 * time.Second)
	if !m.Observe(st, true) {
		t.Error("Expected a restart once the new episode matured")
	}
}
