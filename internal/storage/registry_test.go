package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := Open(filepath.Join(dir, "registry.db"), filepath.Join(dir, "projects"))
	if err != nil {
		t.Fatalf("Failed to open registry: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, dir
}

func TestRegistryCreateAndGet(t *testing.T) {
	r, dir := setupTestRegistry(t)
	ctx := context.Background()

	media := filepath.Join(dir, "demo.mov")
	p, err := r.Create(ctx, "demo", media)
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if p.MetadataPath != filepath.Join(dir, "demo.cursor.json") {
		t.Errorf("Unexpected metadata path %s", p.MetadataPath)
	}

	got, err := r.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if got.MediaPath != media || got.StatePath != p.StatePath {
		t.Errorf("Expected %+v, got %+v", p, got)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	r, _ := setupTestRegistry(t)

	_, err := r.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	r, dir := setupTestRegistry(t)
	ctx := context.Background()

	media := filepath.Join(dir, "talk.mp4")
	if err := os.WriteFile(media, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	first, err := r.Resolve(ctx, media)
	if err != nil {
		t.Fatalf("Failed to resolve media path: %v", err)
	}
	if first.Name != "talk" {
		t.Errorf("Expected name talk, got %s", first.Name)
	}
	second, err := r.Resolve(ctx, media)
	if err != nil || second.ID != first.ID {
		t.Errorf("Resolving twice should return the same project, got %v %v", second, err)
	}
	byID, err := r.Resolve(ctx, first.ID)
	if err != nil || byID.MediaPath != media {
		t.Errorf("Resolve by id failed: %v %v", byID, err)
	}

	if _, err := r.Resolve(ctx, filepath.Join(dir, "missing.mp4")); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound for a missing file, got %v", err)
	}
}

func TestRegistryListAndDelete(t *testing.T) {
	r, dir := setupTestRegistry(t)
	ctx := context.Background()

	a, err := r.Create(ctx, "a", filepath.Join(dir, "a.mov"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create(ctx, "b", filepath.Join(dir, "b.mov")); err != nil {
		t.Fatal(err)
	}
	if err := r.Touch(ctx, a.ID); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(list))
	}
	if list[0].ID != a.ID {
		t.Errorf("Most recently touched project should come first, got %s", list[0].Name)
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Second delete should report ErrProjectNotFound, got %v", err)
	}
}

func TestRegistryRejectsDuplicateMedia(t *testing.T) {
	r, dir := setupTestRegistry(t)
	ctx := context.Background()

	media := filepath.Join(dir, "dup.mov")
	if _, err := r.Create(ctx, "one", media); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create(ctx, "two", media); err == nil {
		t.Error("Expected a unique constraint error for the same recording")
	}
}
