// Package sqlite implements simplesite.Repository on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/simple-site/pkg/simplesite"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Schema creates the content, projects and media tables
const Schema = `
CREATE TABLE IF NOT EXISTS media (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	alt TEXT,
	width INTEGER,
	height INTEGER,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_url ON media(url);

CREATE TABLE IF NOT EXISTS content (
	key TEXT PRIMARY KEY NOT NULL,
	page TEXT NOT NULL DEFAULT 'global',
	section TEXT NOT NULL DEFAULT 'default',
	type TEXT NOT NULL DEFAULT 'text',
	value TEXT NOT NULL,
	media_id INTEGER REFERENCES media(id) ON DELETE SET NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	metadata TEXT,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	details TEXT,
	image_url TEXT,
	slug TEXT UNIQUE,
	published INTEGER NOT NULL DEFAULT 1,
	is_featured INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(sort_order, created_at DESC);
`

var (
	_ simplesite.Repository     = (*Repository)(nil)
	_ simplesite.ContentBatcher = (*Repository)(nil)
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements simplesite.Repository using SQLite
type Repository struct {
	db   *sql.DB
	q    querier
	inTx bool
}

// Open opens (creating if needed) the database file at path and applies the
// schema
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer at a time; transactions hold the only connection.
	db.SetMaxOpenConns(1)

	repo, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// New wraps an open database and applies the schema
func New(db *sql.DB) (*Repository, error) {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Repository{db: db, q: db}, nil
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}

// WithTx runs fn inside a single database transaction
func (r *Repository) WithTx(ctx context.Context, fn func(simplesite.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertContentBatch applies every upsert in one transaction
func (r *Repository) UpsertContentBatch(ctx context.Context, upserts []simplesite.ContentUpsert) error {
	return r.WithTx(ctx, func(tx simplesite.Repository) error {
		for _, u := range upserts {
			if _, err := tx.UpsertContent(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

// Content operations

const contentColumns = `key, page, section, type, value, media_id, sort_order, metadata, updated_at`

func (r *Repository) ListContent(ctx context.Context) ([]*simplesite.ContentEntry, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+contentColumns+` FROM content ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	var entries []*simplesite.ContentEntry
	for rows.Next() {
		e, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return entries, nil
}

func (r *Repository) GetContent(ctx context.Context, key string) (*simplesite.ContentEntry, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE key = ?`, key)
	e, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplesite.ErrContentNotFound
	}
	return e, err
}

// UpsertContent reads the current row, merges the update and writes it back
// inside one transaction so the timestamp stays monotonic per key
func (r *Repository) UpsertContent(ctx context.Context, upsert simplesite.ContentUpsert) (*simplesite.ContentEntry, error) {
	var stored *simplesite.ContentEntry
	err := r.WithTx(ctx, func(txRepo simplesite.Repository) error {
		tx := txRepo.(*Repository)

		existing, err := tx.GetContent(ctx, upsert.Key)
		switch {
		case errors.Is(err, simplesite.ErrContentNotFound):
			existing = nil
		case err != nil:
			return err
		}

		row := upsert.Apply(existing)
		_, err = tx.q.ExecContext(ctx, `
			INSERT INTO content (`+contentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				page = excluded.page,
				section = excluded.section,
				type = excluded.type,
				value = excluded.value,
				media_id = excluded.media_id,
				sort_order = excluded.sort_order,
				metadata = excluded.metadata,
				updated_at = excluded.updated_at`,
			row.Key, row.Page, row.Section, row.Type, row.Value,
			nullInt64(row.MediaID), row.SortOrder, nullString(row.Metadata), row.UpdatedAt.UnixMicro(),
		)
		if err != nil {
			return handleSQLiteError(err)
		}
		stored = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *Repository) ClearContentMedia(ctx context.Context, mediaID *int64, url string) (int64, error) {
	now := time.Now().UTC().UnixMicro()
	res, err := r.q.ExecContext(ctx, `
		UPDATE content
		SET value = '', media_id = NULL, updated_at = MAX(?, updated_at + 1)
		WHERE (? IS NOT NULL AND media_id = ?) OR (? <> '' AND value = ?)`,
		now, nullInt64(mediaID), nullInt64(mediaID), url, url,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear content media: %w", err)
	}
	return res.RowsAffected()
}

// Project operations

const projectColumns = `id, title, description, details, image_url, slug, published, is_featured, sort_order, created_at, updated_at`

func (r *Repository) ListProjects(ctx context.Context, query simplesite.ProjectQuery) ([]*simplesite.Project, error) {
	var (
		where []string
		args  []any
	)
	if query.Featured != nil {
		where = append(where, "is_featured = ?")
		args = append(args, *query.Featured)
	}
	if query.PublishedOnly {
		where = append(where, "published = 1")
	}

	stmt := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	stmt += ` ORDER BY sort_order ASC, created_at DESC, id DESC`
	if query.Limit > 0 {
		stmt += ` LIMIT ? OFFSET ?`
		args = append(args, query.Limit, query.Offset)
	} else if query.Offset > 0 {
		stmt += ` LIMIT -1 OFFSET ?`
		args = append(args, query.Offset)
	}

	rows, err := r.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*simplesite.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*simplesite.Project, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplesite.ErrProjectNotFound
	}
	return p, err
}

func (r *Repository) CreateProject(ctx context.Context, project *simplesite.Project) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO projects (title, description, details, image_url, slug, published, is_featured, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.Title, nullString(project.Description), nullString(project.Details),
		nullString(project.ImageURL), nullString(project.Slug),
		project.Published, project.IsFeatured, project.SortOrder,
		project.CreatedAt.UnixMicro(), project.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		return handleSQLiteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	project.ID = id
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *simplesite.Project) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, description = ?, details = ?, image_url = ?, slug = ?,
			published = ?, is_featured = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`,
		project.Title, nullString(project.Description), nullString(project.Details),
		nullString(project.ImageURL), nullString(project.Slug),
		project.Published, project.IsFeatured, project.SortOrder,
		project.UpdatedAt.UnixMicro(), project.ID,
	)
	if err != nil {
		return handleSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return simplesite.ErrProjectNotFound
	}
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete project: %w", err)
	}
	return res.RowsAffected()
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, media *simplesite.Media) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO media (url, alt, width, height, created_at) VALUES (?, ?, ?, ?, ?)`,
		media.URL, nullString(media.Alt), nullInt(media.Width), nullInt(media.Height), media.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return handleSQLiteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read media id: %w", err)
	}
	media.ID = id
	return nil
}

func (r *Repository) GetMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, url, alt, width, height, created_at FROM media WHERE url = ? ORDER BY id LIMIT 1`, url)

	var (
		m             simplesite.Media
		alt           sql.NullString
		width, height sql.NullInt64
		created       int64
	)
	if err := row.Scan(&m.ID, &m.URL, &alt, &width, &height, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, simplesite.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	m.Alt = stringPtr(alt)
	m.Width = intPtr(width)
	m.Height = intPtr(height)
	m.CreatedAt = time.UnixMicro(created).UTC()
	return &m, nil
}

func (r *Repository) DeleteMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	m, err := r.GetMediaByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, m.ID); err != nil {
		return nil, fmt.Errorf("failed to delete media: %w", err)
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContent(s scanner) (*simplesite.ContentEntry, error) {
	var (
		e        simplesite.ContentEntry
		mediaID  sql.NullInt64
		metadata sql.NullString
		updated  int64
	)
	err := s.Scan(&e.Key, &e.Page, &e.Section, &e.Type, &e.Value, &mediaID, &e.SortOrder, &metadata, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	if mediaID.Valid {
		id := mediaID.Int64
		e.MediaID = &id
	}
	e.Metadata = stringPtr(metadata)
	e.UpdatedAt = time.UnixMicro(updated).UTC()
	return &e, nil
}

func scanProject(s scanner) (*simplesite.Project, error) {
	var (
		p                simplesite.Project
		description      sql.NullString
		details          sql.NullString
		image            sql.NullString
		slug             sql.NullString
		created, updated int64
	)
	err := s.Scan(&p.ID, &p.Title, &description, &details, &image, &slug,
		&p.Published, &p.IsFeatured, &p.SortOrder, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	p.Description = stringPtr(description)
	p.Details = stringPtr(details)
	p.ImageURL = stringPtr(image)
	p.Slug = stringPtr(slug)
	p.CreatedAt = time.UnixMicro(created).UTC()
	p.UpdatedAt = time.UnixMicro(updated).UTC()
	return &p, nil
}

// handleSQLiteError maps constraint violations to domain errors
func handleSQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			if strings.Contains(sqliteErr.Error(), "projects.slug") {
				return simplesite.ErrDuplicateSlug
			}
			return fmt.Errorf("unique constraint violation: %w", err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("foreign key constraint violation: %w", err)
		}
	}
	return fmt.Errorf("database error: %w", err)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
