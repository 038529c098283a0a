package optimizer

import (
	"testing"

	"qbopt/qbt"
)

func showFiles() []qbt.File {
	return []qbt.File{
		{Index: 0, Name: "Show.S01E02.mkv", Progress: 0.3, Priority: qbt.PrioNormal},
		{Index: 1, Name: "Show.S01E01.mkv", Progress: 1.0, Priority: qbt.PrioNormal},
		{Index: 2, Name: "random.nfo", Progress: 1.0, Priority: qbt.PrioNormal},
	}
}

func TestNextActive(t *testing.T) {
	t.Run("first incomplete in episode order", func(t *testing.T) {
		index, ok := nextActive(showFiles())
		if !ok {
			t.Fatal("Expected an active candidate")
		}
		if index != 0 {
			t.Errorf("Expected index 0, got %d", index)
		}
	})

	t.Run("listing order breaks ties", func(t *testing.T) {
		files := []qbt.File{
			{Index: 0, Name: "Show.S01E01.x265.mkv", Progress: 0.1},
			{Index: 1, Name: "Show.S01E01.x264.mkv", Progress: 0.1},
		}
		index, ok := nextActive(files)
		if !ok || index != 0 {
			t.Errorf("Expected the first-listed duplicate (0), got %d ok=%v", index, ok)
		}
	})

	t.Run("season ordering beats episode ordering", func(t *testing.T) {
		files := []qbt.File{
			{Index: 0, Name: "Show.S02E01.mkv", Progress: 0},
			{Index: 1, Name: "Show.S01E09.mkv", Progress: 0},
		}
		index, ok := nextActive(files)
		if !ok || index != 1 {
			t.Errorf("Expected S01E09 (index 1), got %d ok=%v", index, ok)
		}
	})

	t.Run("all complete", func(t *testing.T) {
		files := []qbt.File{
			{Index: 0, Name: "Show.S01E01.mkv", Progress: 1.0},
		}
		if _, ok := nextActive(files); ok {
			t.Error("Expected no candidate when every episode is complete")
		}
	})

	t.Run("no episode keys", func(t *testing.T) {
		files := []qbt.File{
			{Index: 0, Name: "readme.txt", Progress: 0.5},
		}
		if _, ok := nextActive(files); ok {
			t.Error("Expected no candidate without episode keys")
		}
	})
}

func TestPlanPriorities(t *testing.T) {
	st := &torrentState{}
	changes := PlanPriorities(st, showFiles())

	if len(changes) != 3 {
		t.Fatalf("Expected 3 changes, got %d: %+v", len(changes), changes)
	}
	if !changes[0].Promote || changes[0].Index != 0 || changes[0].Priority != qbt.PrioHigh {
		t.Errorf("Expected promotion of index 0 to high, got %+v", changes[0])
	}
	if changes[1].Index != 1 || changes[1].Priority != qbt.PrioSkip {
		t.Errorf("Expected completed episode to be skipped, got %+v", changes[1])
	}
	if changes[2].Index != 2 || changes[2].Priority != qbt.PrioSkip {
		t.Errorf("Expected keyless complete file to be skipped, got %+v", changes[2])
	}
}

func TestPlanPrioritiesIdempotent(t *testing.T) {
	st := &torrentState{}
	files := showFiles()

	// Apply the first plan to the snapshot the way the client would.
	for _, ch := range PlanPriorities(st, files) {
		files[ch.Index].Priority = ch.Priority
		if ch.Promote {
			st.active = ch.Index
			st.hasActive = true
		}
	}

	if changes := PlanPriorities(st, files); len(changes) != 0 {
		t.Errorf("Expected no changes on an unchanged snapshot, got %+v", changes)
	}
}

func TestPlanPrioritiesHandoff(t *testing.T) {
	st := &torrentState{active: 0, hasActive: true}
	files := []qbt.File{
		{Index: 0, Name: "Show.S01E01.mkv", Progress: 1.0, Priority: qbt.PrioHigh},
		{Index: 1, Name: "Show.S01E02.mkv", Progress: 0.0, Priority: qbt.PrioNormal},
	}

	changes := PlanPriorities(st, files)
	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d: %+v", len(changes), changes)
	}
	if !changes[0].Promote || changes[0].Index != 1 || changes[0].Priority != qbt.PrioHigh {
		t.Errorf("Expected promotion of index 1, got %+v", changes[0])
	}
	if changes[1].Index != 0 || changes[1].Priority != qbt.PrioNormal {
		t.Errorf("Expected previous active demoted to normal, got %+v", changes[1])
	}
}

func TestPlanPrioritiesIncompleteBackground(t *testing.T) {
	// A not-yet-due episode stays at normal, never skip.
	st := &torrentState{active: 0, hasActive: true}
	files := []qbt.File{
		{Index: 0, Name: "Show.S01E01.mkv", Progress: 0.4, Priority: qbt.PrioHigh},
		{Index: 1, Name: "Show.S01E02.mkv", Progress: 0.0, Priority: qbt.PrioSkip},
	}

	changes := PlanPriorities(st, files)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d: %+v", len(changes), changes)
	}
	if changes[0].Index != 1 || changes[0].Priority != qbt.PrioNormal {
		t.Errorf("Expected index 1 restored to normal, got %+v", changes[0])
	}
}
