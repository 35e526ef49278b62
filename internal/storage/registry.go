// Package storage keeps the registry of known projects and where their
// files live on disk.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrProjectNotFound = errors.New("project not found")

// Project is one registry row. Every path is absolute.
type Project struct {
	ID           string
	Name         string
	MediaPath    string
	MetadataPath string
	StatePath    string
	ThumbnailDir string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Registry struct {
	conn *sql.DB
	root string
}

// Open opens (or creates) the registry database at dbPath. Per-project
// state lives in subdirectories of root.
func Open(dbPath, root string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Registry{conn: conn, root: root}
	if err := r.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return r, nil
}

func (r *Registry) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		media_path TEXT NOT NULL UNIQUE,
		metadata_path TEXT NOT NULL,
		state_path TEXT NOT NULL,
		thumbnail_dir TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := r.conn.Exec(query)
	return err
}

func (r *Registry) Close() error {
	return r.conn.Close()
}

// Create registers a recording. The telemetry sidecar is expected next to
// the media file with a .cursor.json suffix, matching what the recorder
// writes.
func (r *Registry) Create(ctx context.Context, name, mediaPath string) (*Project, error) {
	absMedia, err := filepath.Abs(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media path: %w", err)
	}
	id := uuid.New().String()
	dir := filepath.Join(r.root, id)
	now := time.Now().UTC()

	p := &Project{
		ID:           id,
		Name:         name,
		MediaPath:    absMedia,
		MetadataPath: MetadataPathFor(absMedia),
		StatePath:    filepath.Join(dir, "project.json"),
		ThumbnailDir: filepath.Join(dir, "thumbnails"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO projects (id, name, media_path, metadata_path, state_path, thumbnail_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.conn.ExecContext(ctx, query,
		p.ID, p.Name, p.MediaPath, p.MetadataPath, p.StatePath, p.ThumbnailDir, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

// MetadataPathFor returns where the cursor telemetry of a recording lives.
func MetadataPathFor(mediaPath string) string {
	return mediaPath[:len(mediaPath)-len(filepath.Ext(mediaPath))] + ".cursor.json"
}

const selectProject = `
	SELECT id, name, media_path, metadata_path, state_path, thumbnail_dir, created_at, updated_at
	FROM projects`

func (r *Registry) Get(ctx context.Context, id string) (*Project, error) {
	return r.queryOne(ctx, selectProject+` WHERE id = ?`, id)
}

func (r *Registry) FindByMedia(ctx context.Context, mediaPath string) (*Project, error) {
	absMedia, err := filepath.Abs(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media path: %w", err)
	}
	return r.queryOne(ctx, selectProject+` WHERE media_path = ?`, absMedia)
}

// Resolve accepts either a project id or a path to a recording. Unknown
// recordings are registered on the fly.
func (r *Registry) Resolve(ctx context.Context, ref string) (*Project, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return r.Get(ctx, ref)
	}
	p, err := r.FindByMedia(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProjectNotFound) {
		return nil, err
	}
	if _, statErr := os.Stat(ref); statErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, ref)
	}
	base := filepath.Base(ref)
	return r.Create(ctx, base[:len(base)-len(filepath.Ext(base))], ref)
}

func (r *Registry) List(ctx context.Context) ([]Project, error) {
	rows, err := r.conn.QueryContext(ctx, selectProject+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Touch bumps the modification time of a project.
func (r *Registry) Touch(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return expectRow(res, id)
}

// Delete removes the registry row and the project's own directory. The
// recording itself is left alone.
func (r *Registry) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(r.root, id)); err != nil {
		return fmt.Errorf("failed to remove project files: %w", err)
	}
	return nil
}

func (r *Registry) queryOne(ctx context.Context, query string, arg any) (*Project, error) {
	var p Project
	err := scanProject(r.conn.QueryRowContext(ctx, query, arg), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrProjectNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner, p *Project) error {
	return s.Scan(&p.ID, &p.Name, &p.MediaPath, &p.MetadataPath, &p.StatePath, &p.ThumbnailDir, &p.CreatedAt, &p.UpdatedAt)
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return nil
}
