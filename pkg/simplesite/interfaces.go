package simplesite

import (
	"context"
	"io"
)

// ImageStore defines the interface for object storage backends holding
// uploaded images
type ImageStore interface {
	// UploadWithParams writes an object
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens an object for reading
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes an object
	Delete(ctx context.Context, objectKey string) error

	// List returns metadata for every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]*ObjectMeta, error)

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for content, project and media persistence
type Repository interface {
	// Content operations
	ListContent(ctx context.Context) ([]*ContentEntry, error)
	GetContent(ctx context.Context, key string) (*ContentEntry, error)
	UpsertContent(ctx context.Context, upsert ContentUpsert) (*ContentEntry, error)
	// ClearContentMedia blanks the value and media reference of every row that
	// points at mediaID (when set) or holds url as its value
	ClearContentMedia(ctx context.Context, mediaID *int64, url string) (int64, error)

	// Project operations
	ListProjects(ctx context.Context, query ProjectQuery) ([]*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	CreateProject(ctx context.Context, project *Project) error
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, id int64) (int64, error)

	// Media operations
	CreateMedia(ctx context.Context, media *Media) error
	GetMediaByURL(ctx context.Context, url string) (*Media, error)
	DeleteMediaByURL(ctx context.Context, url string) (*Media, error)

	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ContentBatcher is implemented by repositories that can apply several
// content writes atomically
type ContentBatcher interface {
	UpsertContentBatch(ctx context.Context, upserts []ContentUpsert) error
}
