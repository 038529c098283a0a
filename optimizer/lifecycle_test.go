package optimizer

import (
	"testing"

	"qbopt/qbt"
)

func TestAllComplete(t *testing.T) {
	tests := []struct {
		name  string
		files []qbt.File
		want  bool
	}{
		{"empty", nil, false},
		{"all done", []qbt.File{{Progress: 1.0}, {Progress: 1.0}}, true},
		{"one pending", []qbt.File{{Progress: 1.0}, {Progress: 0.99}}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := allComplete(test.files); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestAllSeeding(t *testing.T) {
	tests := []struct {
		name     string
		torrents []qbt.Torrent
		want     bool
	}{
		{"empty", nil, false},
		{"all seeding", []qbt.Torrent{{State: qbt.StateUploading}, {State: qbt.StateStalledUP}}, true},
		{"one downloading", []qbt.Torrent{{State: qbt.StateUploading}, {State: qbt.StateDownloading}}, false},
		{"paused upload counts", []qbt.Torrent{{State: qbt.StatePausedUP}}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := allSeeding(test.torrents); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}
