package optimizer

import (
	"sort"

	"qbopt/qbt"
)

// PriorityChange is one file-priority mutation derived for a torrent.
type PriorityChange struct {
	Index    int
	Name     string
	Priority qbt.Priority
	// Promote marks the change that makes the file the torrent's
	// active one. The caller records the new active index only after
	// the change has been issued successfully.
	Promote bool
}

// nextActive returns the index of the file that should currently hold
// high priority: the first incomplete file in (season, episode) order.
// Files without an episode key are ignored; ties keep listing order.
func nextActive(files []qbt.File) (int, bool) {
	type entry struct {
		key  EpisodeKey
		file qbt.File
	}
	ordered := make([]entry, 0, len(files))
	for _, f := range files {
		if key, ok := ExtractEpisode(f.Name); ok {
			ordered = append(ordered, entry{key: key, file: f})
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].key.Season != ordered[j].key.Season {
			return ordered[i].key.Season < ordered[j].key.Season
		}
		return ordered[i].key.Episode < ordered[j].key.Episode
	})
	for _, e := range ordered {
		if !e.file.Complete() {
			return e.file.Index, true
		}
	}
	return 0, false
}

// PlanPriorities derives the priority changes for one torrent from a
// snapshot of its files. Running it again over a snapshot that already
// reflects the applied changes yields nothing.
func PlanPriorities(st *torrentState, files []qbt.File) []PriorityChange {
	next, hasNext := nextActive(files)

	changes := make([]PriorityChange, 0, 2)
	demoted := -1
	if hasNext && (!st.hasActive || st.active != next) {
		changes = append(changes, PriorityChange{
			Index:    next,
			Name:     fileName(files, next),
			Priority: qbt.PrioHigh,
			Promote:  true,
		})
		if st.hasActive {
			demoted = st.active
			changes = append(changes, PriorityChange{
				Index:    st.active,
				Name:     fileName(files, st.active),
				Priority: qbt.PrioNormal,
			})
		}
	}

	// Every other file: completed ones stop downloading, pending ones
	// keep making unprioritized background progress. Files without an
	// episode key are swept too, they just never become active.
	for _, f := range files {
		if (hasNext && f.Index == next) || f.Index == demoted {
			continue
		}
		switch {
		case f.Complete() && f.Priority != qbt.PrioSkip:
			changes = append(changes, PriorityChange{Index: f.Index, Name: f.Name, Priority: qbt.PrioSkip})
		case !f.Complete() && f.Priority != qbt.PrioNormal:
			changes = append(changes, PriorityChange{Index: f.Index, Name: f.Name, Priority: qbt.PrioNormal})
		}
	}
	return changes
}

func fileName(files []qbt.File, index int) string {
	for _, f := range files {
		if f.Index == index {
			return f.Name
		}
	}
	return ""
}
