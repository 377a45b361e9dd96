package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// Schema creates the media, content and projects tables
const Schema = `
CREATE TABLE IF NOT EXISTS media (
	id BIGSERIAL PRIMARY KEY,
	url TEXT NOT NULL,
	alt TEXT,
	width INTEGER,
	height INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_media_url ON media(url);

CREATE TABLE IF NOT EXISTS content (
	key TEXT PRIMARY KEY,
	page TEXT NOT NULL DEFAULT 'global',
	section TEXT NOT NULL DEFAULT 'default',
	type TEXT NOT NULL DEFAULT 'text',
	value TEXT NOT NULL,
	media_id BIGINT REFERENCES media(id) ON DELETE SET NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	metadata TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS projects (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	details TEXT,
	image_url TEXT,
	slug TEXT,
	published BOOLEAN NOT NULL DEFAULT TRUE,
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT projects_slug_key UNIQUE (slug)
);
CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(sort_order, created_at DESC);
`

// DBTX is an interface that allows us to use either a connection pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

var (
	_ simplesite.Repository     = (*Repository)(nil)
	_ simplesite.ContentBatcher = (*Repository)(nil)
)

// Repository implements simplesite.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return simplesite.ErrDuplicateSlug
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// WithTx runs fn inside a transaction. Nested calls use a savepoint.
func (r *Repository) WithTx(ctx context.Context, fn func(simplesite.Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin", err)
	}

	if err := fn(&Repository{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit", err)
	}
	return nil
}

// Content operations

const contentColumns = `key, page, section, type, value, media_id, sort_order, metadata, updated_at`

// upsertContentQuery leaves unset optional columns untouched on update and
// keeps updated_at strictly increasing per key
const upsertContentQuery = `
	INSERT INTO content (` + contentColumns + `)
	VALUES ($1, COALESCE($2, 'global'), COALESCE($3, 'default'), COALESCE($4, 'text'),
		$5, $6, COALESCE($7, 0), $8, $9)
	ON CONFLICT (key) DO UPDATE SET
		page = COALESCE($2, content.page),
		section = COALESCE($3, content.section),
		type = COALESCE($4, content.type),
		value = EXCLUDED.value,
		media_id = CASE
			WHEN $6::BIGINT IS NOT NULL THEN $6::BIGINT
			WHEN $10::BOOLEAN THEN NULL
			ELSE content.media_id
		END,
		sort_order = COALESCE($7, content.sort_order),
		metadata = COALESCE($8, content.metadata),
		updated_at = GREATEST(EXCLUDED.updated_at, content.updated_at + INTERVAL '1 microsecond')
	RETURNING ` + contentColumns

func upsertArgs(u simplesite.ContentUpsert) []interface{} {
	return []interface{}{
		u.Key, u.Page, u.Section, u.Type, u.Value, u.MediaID, u.SortOrder, u.Metadata,
		u.UpdatedAt.UTC().Truncate(time.Microsecond), u.DetachMedia,
	}
}

func (r *Repository) ListContent(ctx context.Context) ([]*simplesite.ContentEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contentColumns+` FROM content ORDER BY key`)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
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
		return nil, r.handlePostgresError("list content", err)
	}
	return entries, nil
}

func (r *Repository) GetContent(ctx context.Context, key string) (*simplesite.ContentEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM content WHERE key = $1`, key)
	e, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}
	return e, nil
}

func (r *Repository) UpsertContent(ctx context.Context, upsert simplesite.ContentUpsert) (*simplesite.ContentEntry, error) {
	e, err := scanContent(r.db.QueryRow(ctx, upsertContentQuery, upsertArgs(upsert)...))
	if err != nil {
		return nil, r.handlePostgresError("upsert content", err)
	}
	return e, nil
}

// UpsertContentBatch sends every upsert in one round trip inside a transaction
func (r *Repository) UpsertContentBatch(ctx context.Context, upserts []simplesite.ContentUpsert) error {
	return r.WithTx(ctx, func(txRepo simplesite.Repository) error {
		tx := txRepo.(*Repository)

		batch := &pgx.Batch{}
		for _, u := range upserts {
			batch.Queue(upsertContentQuery, upsertArgs(u)...)
		}

		br := tx.db.SendBatch(ctx, batch)
		for _, u := range upserts {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return &simplesite.ContentError{Key: u.Key, Op: "upsert", Err: r.handlePostgresError("upsert content", err)}
			}
		}
		return br.Close()
	})
}

func (r *Repository) ClearContentMedia(ctx context.Context, mediaID *int64, url string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE content
		SET value = '', media_id = NULL,
			updated_at = GREATEST(now(), updated_at + INTERVAL '1 microsecond')
		WHERE ($1::BIGINT IS NOT NULL AND media_id = $1::BIGINT)
			OR ($2::TEXT <> '' AND value = $2::TEXT)`,
		mediaID, url)
	if err != nil {
		return 0, r.handlePostgresError("clear content media", err)
	}
	return tag.RowsAffected(), nil
}

// Project operations

const projectColumns = `id, title, description, details, image_url, slug, published, is_featured, sort_order, created_at, updated_at`

func (r *Repository) ListProjects(ctx context.Context, query simplesite.ProjectQuery) ([]*simplesite.Project, error) {
	var (
		where []string
		args  []interface{}
	)
	if query.Featured != nil {
		args = append(args, *query.Featured)
		where = append(where, fmt.Sprintf("is_featured = $%d", len(args)))
	}
	if query.PublishedOnly {
		where = append(where, "published")
	}

	stmt := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	stmt += ` ORDER BY sort_order ASC, created_at DESC, id DESC`
	if query.Limit > 0 {
		args = append(args, query.Limit)
		stmt += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if query.Offset > 0 {
		args = append(args, query.Offset)
		stmt += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, r.handlePostgresError("list projects", err)
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
		return nil, r.handlePostgresError("list projects", err)
	}
	return projects, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*simplesite.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrProjectNotFound
		}
		return nil, r.handlePostgresError("get project", err)
	}
	return p, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *simplesite.Project) error {
	query := `
		INSERT INTO projects (
			title, description, details, image_url, slug,
			published, is_featured, sort_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		project.Title, project.Description, project.Details, project.ImageURL, project.Slug,
		project.Published, project.IsFeatured, project.SortOrder,
		project.CreatedAt.UTC().Truncate(time.Microsecond), project.UpdatedAt.UTC().Truncate(time.Microsecond),
	).Scan(&project.ID)
	if err != nil {
		return r.handlePostgresError("create project", err)
	}
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *simplesite.Project) error {
	query := `
		UPDATE projects SET
			title = $2, description = $3, details = $4, image_url = $5, slug = $6,
			published = $7, is_featured = $8, sort_order = $9, updated_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		project.ID, project.Title, project.Description, project.Details, project.ImageURL, project.Slug,
		project.Published, project.IsFeatured, project.SortOrder,
		project.UpdatedAt.UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		return r.handlePostgresError("update project", err)
	}
	if tag.RowsAffected() == 0 {
		return simplesite.ErrProjectNotFound
	}
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return 0, r.handlePostgresError("delete project", err)
	}
	return tag.RowsAffected(), nil
}

// Media operations

const mediaColumns = `id, url, alt, width, height, created_at`

func (r *Repository) CreateMedia(ctx context.Context, media *simplesite.Media) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO media (url, alt, width, height, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		media.URL, media.Alt, media.Width, media.Height, media.CreatedAt.UTC().Truncate(time.Microsecond),
	).Scan(&media.ID)
	if err != nil {
		return r.handlePostgresError("create media", err)
	}
	return nil
}

func (r *Repository) GetMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	row := r.db.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE url = $1 ORDER BY id LIMIT 1`, url)
	m, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrMediaNotFound
		}
		return nil, r.handlePostgresError("get media", err)
	}
	return m, nil
}

func (r *Repository) DeleteMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM media
		WHERE id = (SELECT id FROM media WHERE url = $1 ORDER BY id LIMIT 1)
		RETURNING `+mediaColumns, url)
	m, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrMediaNotFound
		}
		return nil, r.handlePostgresError("delete media", err)
	}
	return m, nil
}

func scanContent(row pgx.Row) (*simplesite.ContentEntry, error) {
	var e simplesite.ContentEntry
	err := row.Scan(&e.Key, &e.Page, &e.Section, &e.Type, &e.Value,
		&e.MediaID, &e.SortOrder, &e.Metadata, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func scanProject(row pgx.Row) (*simplesite.Project, error) {
	var p simplesite.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Details, &p.ImageURL, &p.Slug,
		&p.Published, &p.IsFeatured, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func scanMedia(row pgx.Row) (*simplesite.Media, error) {
	var m simplesite.Media
	if err := row.Scan(&m.ID, &m.URL, &m.Alt, &m.Width, &m.Height, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}
