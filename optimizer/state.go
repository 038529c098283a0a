package optimizer

import "time"

// torrentState is the engine-owned scheduling state for one torrent
// handle. It is created the first time the handle is seen and lives for
// the process run; nothing here is persisted.
type torrentState struct {
	// active is the file index the engine last promoted to high
	// priority. Valid only while hasActive is set.
	active    int
	hasActive bool

	// stalledSince is when the torrent was first observed stalled in
	// the current stall episode. Zero while not stalled.
	stalledSince time.Time

	// removed is set once a keep-files removal has been issued for the
	// handle. It guards against issuing removal twice.
	removed bool
}

type stateMap map[string]*torrentState

func (m stateMap) get(hash string) *torrentState {
	st, ok := m[hash]
	if !ok {
		st = &torrentState{}
		m[hash] = st
	}
	return st
}
