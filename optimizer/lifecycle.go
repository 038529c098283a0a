package optimizer

import "qbopt/qbt"

// allComplete reports whether every file of a torrent is fully fetched.
// An empty file list (metadata not known yet) is never complete.
func allComplete(files []qbt.File) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.Complete() {
			return false
		}
	}
	return true
}

// allSeeding reports whether every torrent is in a seeding-family state.
func allSeeding(torrents []qbt.Torrent) bool {
	for _, t := range torrents {
		if !t.State.IsSeeding() {
			return false
		}
	}
	return len(torrents) > 0
}
