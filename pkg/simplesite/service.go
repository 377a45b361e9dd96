package simplesite

import (
	"context"
	"io"
)

// Service defines the main interface of the site content layer
type Service interface {
	// Content operations
	GetAllContent(ctx context.Context) map[string]string
	ListContentEntries(ctx context.Context) ([]*ContentEntry, error)
	UpdateContent(ctx context.Context, updates map[string]ContentFieldUpdate) []UpdateResult
	UpdateContentValues(ctx context.Context, values map[string]string) []UpdateResult
	ReorderSections(ctx context.Context, order string) ([]SectionID, error)
	SeedDefaults(ctx context.Context) (*SeedResult, error)

	// Home page
	LoadHome(ctx context.Context) *HomePage

	// Project operations
	ListProjects(ctx context.Context) ([]*Project, error)
	ListFeaturedProjects(ctx context.Context) ([]*Project, error)
	ListProjectsPage(ctx context.Context, opts ProjectListOptions) ([]*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error)
	DeleteProject(ctx context.Context, id int64) (*DeleteResult, error)

	// Image operations
	UploadImage(ctx context.Context, req UploadImageRequest) (*UploadImageResult, error)
	ListImages(ctx context.Context) ([]*StoredImage, error)
	DeleteImage(ctx context.Context, objectKey string) error
	SelectImage(ctx context.Context, key, url string) (*UploadImageResult, error)
	OpenImage(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMeta, error)
	MaxImageSize() int64
}
