package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestRecording(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.mov", "b.mp4", "notes.txt"}
	for i, name := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(p, mod, mod)
	}

	latest, err := FindLatestRecording(dir)
	if err != nil {
		t.Fatalf("FindLatestRecording failed: %v", err)
	}
	if filepath.Base(latest) != "b.mp4" {
		t.Errorf("Expected b.mp4, got %s", latest)
	}

	if _, err := FindLatestRecording(t.TempDir()); err == nil {
		t.Error("Expected error for an empty directory")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	if err := WriteFileAtomic(path, []byte("one"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("Expected replaced contents, got %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Temp files left behind: %d entries", len(entries))
	}
}

func TestWorkerBudget(t *testing.T) {
	if n := WorkerBudget(2); n < 1 || n > 2 {
		t.Errorf("Expected budget in [1, 2], got %d", n)
	}
}
