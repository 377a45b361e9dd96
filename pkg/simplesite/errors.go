package simplesite

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error types
var (
	// ErrContentNotFound indicates a content key has no row
	ErrContentNotFound = errors.New("content not found")

	// ErrProjectNotFound indicates a project was not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrDuplicateSlug indicates another project already uses the slug
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrMediaNotFound indicates a media record was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrImageNotFound indicates an object is missing from the image store
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidImage indicates an upload is not an acceptable image
	ErrInvalidImage = errors.New("please upload a valid image")

	// ErrImageStoreNotConfigured indicates no image store was supplied
	ErrImageStoreNotConfigured = errors.New("image store not configured")
)

// ValidationError carries field-level validation messages
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message per field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ContentError represents an error related to content operations
type ContentError struct {
	Key string
	Op  string
	Err error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// ProjectError represents an error related to project operations
type ProjectError struct {
	ID  int64
	Op  string
	Err error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project operation %s failed for project %d: %v", e.Op, e.ID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// UploadError represents an error related to image storage operations. Its
// message is safe to show to the admin.
type UploadError struct {
	Key string
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("image %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("image %s failed for %s: %v", e.Op, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// InvalidImageError rejects an upload that is not an image or exceeds
// MaxSize. It matches ErrInvalidImage with errors.Is.
type InvalidImageError struct {
	MaxSize int64
}

// NewInvalidImageError creates an InvalidImageError for the given size limit
func NewInvalidImageError(maxSize int64) *InvalidImageError {
	return &InvalidImageError{MaxSize: maxSize}
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("%s (max %s)", ErrInvalidImage, formatSize(e.MaxSize))
}

func (e *InvalidImageError) Is(target error) bool {
	return target == ErrInvalidImage
}

// formatSize renders a byte count in whole MB or KB when it divides evenly
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
