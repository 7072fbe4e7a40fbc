package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOccupyVacateRoundTrip(t *testing.T) {
	s := NewState()
	s.AddRack("rack-A", 10)

	if err := s.Occupy("rack-A", 3, "plate-123"); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	sl, err := s.At("rack-A", 3)
	if err != nil || !sl.Occupied || sl.PlateID != "plate-123" {
		t.Fatalf("At = %+v, %v", sl, err)
	}

	if err := s.Vacate("rack-A", 3); err != nil {
		t.Fatalf("Vacate: %v", err)
	}
	sl, _ = s.At("rack-A", 3)
	if sl.Occupied {
		t.Fatal("slot should be empty after Vacate")
	}
}

func TestOccupyOutOfRange(t *testing.T) {
	s := NewState()
	s.AddRack("rack-A", 5)
	if err := s.Occupy("rack-A", 6, "plate-x"); err == nil {
		t.Fatal("expected error for out-of-range slot")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")

	s := NewState()
	s.AddRack("rack-A", 10)
	if err := s.Occupy("rack-A", 1, "plate-007"); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sl, err := loaded.At("rack-A", 1)
	if err != nil || !sl.Occupied || sl.PlateID != "plate-007" {
		t.Fatalf("loaded slot = %+v, %v", sl, err)
	}
}

func TestSaveQuotesSlotKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")

	s := NewState()
	s.AddRack("rack-A", 10)
	if err := s.Occupy("rack-A", 1, "plate-007"); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `"1"`) {
		t.Fatalf("expected quoted slot key \"1\" in %s", string(b))
	}
}
