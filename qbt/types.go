package qbt

// Priority is a per-file download priority as understood by qBittorrent.
// The optimizer only ever assigns the three levels below; other values
// reported by the client are passed through untouched.
type Priority int

const (
	PrioSkip   Priority = 0
	PrioNormal Priority = 1
	PrioHigh   Priority = 7
)

// TorrentState is the lifecycle state string reported by the Web API.
type TorrentState string

const (
	StateMetaDL       TorrentState = "metaDL"
	StateForcedMetaDL TorrentState = "forcedMetaDL"
	StateDownloading  TorrentState = "downloading"
	StateStalledDL    TorrentState = "stalledDL"
	StateCheckingDL   TorrentState = "checkingDL"
	StateAllocating   TorrentState = "allocating"
	StateForcedDL     TorrentState = "forcedDL"
	StateQueuedDL     TorrentState = "queuedDL"
	StatePausedDL     TorrentState = "pausedDL"

	StateUploading TorrentState = "uploading"
	StateStalledUP TorrentState = "stalledUP"
	StateQueuedUP  TorrentState = "queuedUP"
	StatePausedUP  TorrentState = "pausedUP"
	StateForcedUP  TorrentState = "forcedUP"

	StateError TorrentState = "error"
)

// IsActive reports whether the torrent is still fetching data (or about
// to: queued, allocating, checking).
func (s TorrentState) IsActive() bool {
	switch s {
	case StateDownloading, StateStalledDL, StateMetaDL, StateCheckingDL,
		StateAllocating, StateForcedDL, StateQueuedDL:
		return true
	}
	return false
}

// IsSeeding reports whether the torrent has nothing left to download and
// is only serving data to peers.
func (s TorrentState) IsSeeding() bool {
	switch s {
	case StateUploading, StateStalledUP, StateQueuedUP, StatePausedUP, StateForcedUP:
		return true
	}
	return false
}

func (s TorrentState) IsStalled() bool {
	return s == StateStalledDL
}

func (s TorrentState) IsFetchingMetadata() bool {
	return s == StateMetaDL || s == StateForcedMetaDL
}

type Torrent struct {
	Hash  string       `json:"hash"`
	Name  string       `json:"name"`
	State TorrentState `json:"state"`
}

type File struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Size     int64    `json:"size"`
	Progress float64  `json:"progress"`
	Priority Priority `json:"priority"`
}

// Complete reports whether the file is fully fetched.
func (f File) Complete() bool {
	return f.Progress >= 1.0
}
