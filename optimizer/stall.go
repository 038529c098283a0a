package optimizer

import "time"

// StallMonitor tracks how long each torrent has been stalled and decides
// when a forced pause/resume cycle is due.
type StallMonitor struct {
	threshold time.Duration
	now       func() time.Time
}

func NewStallMonitor(threshold time.Duration) *StallMonitor {
	return &StallMonitor{
		threshold: threshold,
		now:       time.Now,
	}
}

// Observe feeds one tick's stalled flag through the monitor and reports
// whether a restart is due now. The stall clock resets whenever a
// restart fires, so a persistent stall is kicked once per threshold
// window, and clears as soon as the torrent leaves the stalled state.
func (m *StallMonitor) Observe(st *torrentState, stalled bool) bool {
	if !stalled {
		st.stalledSince = time.Time{}
		return false
	}
	now := m.now()
	if st.stalledSince.IsZero() {
		st.stalledSince = now
		return false
	}
	if now.Sub(st.stalledSince) >= m.threshold {
		st.stalledSince = now
		return true
	}
	return false
}
