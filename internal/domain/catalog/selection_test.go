package catalog

import (
	"errors"
	"fmt"
	"testing"
)

func TestSelection_AddKeepsOrderAndDedups(t *testing.T) {
	s := NewSelection()

	for _, id := range []string{"p3", "p1", "p2", "p1"} {
		if err := s.Add(id); err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}

	got := s.IDs()
	want := []string{"p3", "p1", "p2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelection_CapAtTwenty(t *testing.T) {
	s := NewSelection()
	for i := 0; i < MaxSelection; i++ {
		if err := s.Add(fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("Add #%d error: %v", i, err)
		}
	}

	if err := s.Add("extra"); !errors.Is(err, ErrSelectionFull) {
		t.Fatalf("expected ErrSelectionFull, got %v", err)
	}

	// Re-agregar un id ya presente no debe fallar estando lleno.
	if err := s.Add("p0"); err != nil {
		t.Fatalf("re-add of existing id should be a no-op, got %v", err)
	}
	if s.Len() != MaxSelection {
		t.Fatalf("expected len %d, got %d", MaxSelection, s.Len())
	}
}

func TestSelection_RemoveAndClear(t *testing.T) {
	s := NewSelection()
	_ = s.Add("a")
	_ = s.Add("b")
	_ = s.Add("c")

	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if s.Has("b") || s.Len() != 2 {
		t.Fatalf("expected b removed, got %v", s.IDs())
	}
	if err := s.Remove("b"); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("expected ErrNotSelected, got %v", err)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty after clear")
	}
	if err := s.Add("a"); err != nil {
		t.Fatalf("Add after Clear error: %v", err)
	}
}

func TestSelection_TracksManualIDs(t *testing.T) {
	s := NewSelection()
	_ = s.Add("catalog-1")
	if err := s.AddManual("manual-1"); err != nil {
		t.Fatalf("AddManual error: %v", err)
	}
	_ = s.Add("catalog-2")
	if err := s.AddManual("manual-2"); err != nil {
		t.Fatalf("AddManual error: %v", err)
	}

	got := s.ManualIDs()
	if len(got) != 2 || got[0] != "manual-1" || got[1] != "manual-2" {
		t.Fatalf("expected manual ids [manual-1 manual-2], got %v", got)
	}
	// Los manuales siguen siendo parte de la selección normal.
	if !s.Has("manual-1") || s.Len() != 4 {
		t.Fatalf("expected manual ids selected, got %v", s.IDs())
	}

	if err := s.Remove("manual-1"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if got := s.ManualIDs(); len(got) != 1 || got[0] != "manual-2" {
		t.Fatalf("expected [manual-2] after remove, got %v", got)
	}

	s.Clear()
	if len(s.ManualIDs()) != 0 {
		t.Fatalf("expected no manual ids after clear")
	}

	// Replace viene del motor de recomendación: todo catálogo, sin manuales.
	_ = s.AddManual("manual-3")
	if err := s.Replace([]string{"x", "y"}); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if len(s.ManualIDs()) != 0 {
		t.Fatalf("expected replace to drop manual marks, got %v", s.ManualIDs())
	}
}

func TestSelection_Replace(t *testing.T) {
	s := NewSelection()
	_ = s.Add("old")

	if err := s.Replace([]string{"x", "y", "x", "z"}); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	got := s.IDs()
	if len(got) != 3 || got[0] != "x" || got[1] != "y" || got[2] != "z" {
		t.Fatalf("expected [x y z], got %v", got)
	}
	if s.Has("old") {
		t.Fatalf("expected old content dropped")
	}
}
