package simplesite

import (
	"io"
	"time"
)

// Default classification values applied when a content row is first written
const (
	DefaultContentPage    = "global"
	DefaultContentSection = "default"
	DefaultContentType    = "text"
)

// ContentEntry is a single row of the content table
type ContentEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Page      string    `json:"page"`
	Section   string    `json:"section"`
	Type      string    `json:"type"`
	SortOrder int       `json:"sort_order"`
	MediaID   *int64    `json:"media_id,omitempty"`
	Metadata  *string   `json:"metadata,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContentFieldUpdate describes a write to one content key. Value is always
// written; nil optional fields leave the stored column unchanged on update and
// take the column default on insert.
type ContentFieldUpdate struct {
	Value     string  `json:"value"`
	Page      *string `json:"page,omitempty"`
	Section   *string `json:"section,omitempty"`
	Type      *string `json:"type,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
	MediaID   *int64  `json:"media_id,omitempty"`
	Metadata  *string `json:"metadata,omitempty"`
	// DetachMedia clears media_id. Ignored when MediaID is set.
	DetachMedia bool `json:"detach_media,omitempty"`
}

// ContentUpsert is the repository-level form of a content write
type ContentUpsert struct {
	Key string
	ContentFieldUpdate
	UpdatedAt time.Time
}

// Apply merges the upsert into existing (nil when the key is new) and returns
// the row that should be stored. UpdatedAt never moves backwards for a key:
// when the clock has not advanced past the stored timestamp the new value is
// bumped by one microsecond.
func (u ContentUpsert) Apply(existing *ContentEntry) ContentEntry {
	var row ContentEntry
	if existing != nil {
		row = *existing
	} else {
		row = ContentEntry{
			Page:    DefaultContentPage,
			Section: DefaultContentSection,
			Type:    DefaultContentType,
		}
	}

	row.Key = u.Key
	row.Value = u.Value
	if u.Page != nil {
		row.Page = *u.Page
	}
	if u.Section != nil {
		row.Section = *u.Section
	}
	if u.Type != nil {
		row.Type = *u.Type
	}
	if u.SortOrder != nil {
		row.SortOrder = *u.SortOrder
	}
	if u.Metadata != nil {
		m := *u.Metadata
		row.Metadata = &m
	}
	switch {
	case u.MediaID != nil:
		id := *u.MediaID
		row.MediaID = &id
	case u.DetachMedia:
		row.MediaID = nil
	}

	ts := u.UpdatedAt.UTC().Truncate(time.Microsecond)
	if existing != nil && !ts.After(existing.UpdatedAt) {
		ts = existing.UpdatedAt.Add(time.Microsecond)
	}
	row.UpdatedAt = ts

	return row
}

// UpdateResult reports the outcome of one key in an UpdateContent call
type UpdateResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Project is a portfolio entry shown on the projects page and, when featured,
// on the home page
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Details     *string   `json:"details,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Slug        *string   `json:"slug,omitempty"`
	Published   bool      `json:"published"`
	IsFeatured  bool      `json:"is_featured"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Media records an uploaded image that content rows may reference
type Media struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Alt       *string   `json:"alt,omitempty"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectQuery filters and pages a project listing. Zero Limit means no limit.
type ProjectQuery struct {
	Featured      *bool
	PublishedOnly bool
	Limit         int
	Offset        int
}

// ProjectListOptions is the service-level paging request. Limit defaults to 10.
type ProjectListOptions struct {
	Limit         int   `json:"limit"`
	Offset        int   `json:"offset"`
	Featured      *bool `json:"featured,omitempty"`
	PublishedOnly bool  `json:"published_only"`
}

// CreateProjectRequest contains parameters for creating a project
type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Details     *string `json:"details,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Published   *bool   `json:"published,omitempty"`
	IsFeatured  bool    `json:"is_featured"`
	SortOrder   int     `json:"sort_order"`
}

// UpdateProjectRequest contains the fields to change on a project; nil fields
// are left as they are
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Details     *string `json:"details,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Published   *bool   `json:"published,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

// DeleteResult reports the outcome of a project delete
type DeleteResult struct {
	Success      bool  `json:"success"`
	RowsAffected int64 `json:"rows_affected"`
}

// ObjectMeta contains metadata about an object in an image store
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for writing an object to an image store
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// UploadImageRequest contains an image upload from the admin panel. Key is
// the content key the image should be attached to; it may be empty when the
// image is only added to the library.
type UploadImageRequest struct {
	Key         string
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadImageResult describes a stored image and the content key it was
// attached to
type UploadImageResult struct {
	Key       string `json:"key,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	URL       string `json:"url"`
	MediaID   *int64 `json:"media_id,omitempty"`
}

// StoredImage is one entry of the image library
type StoredImage struct {
	ObjectKey   string    `json:"object_key"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SeedResult reports which default content keys were written
type SeedResult struct {
	Written []string `json:"written"`
	Message string   `json:"message"`
}
