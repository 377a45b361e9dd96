// Package scan cross-checks the image library against the content and
// projects that reference it.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tendant/simple-site/pkg/simplesite"
)

// Scanner audits image references through the site service.
type Scanner struct {
	svc simplesite.Service
}

// New creates a new Scanner instance.
func New(svc simplesite.Service) *Scanner {
	return &Scanner{svc: svc}
}

// Options configures the scan operation.
type Options struct {
	// RemoveOrphans deletes library images nothing references
	RemoveOrphans bool

	// DryRun reports what RemoveOrphans would delete without deleting
	DryRun bool

	// OnProgress is called after each library image is checked (optional)
	OnProgress func(processed, total int)
}

// Result contains statistics about the scan operation.
type Result struct {
	// TotalImages is the number of objects in the image library
	TotalImages int

	// Referenced is the number of library images used by content or projects
	Referenced int

	// Orphans are object keys of library images nothing references
	Orphans []string

	// Dangling maps image content keys to URLs that look like uploads but are
	// missing from the library
	Dangling map[string]string

	// Removed are orphan object keys deleted by this scan
	Removed []string

	// FailedKeys are orphan object keys that could not be deleted
	FailedKeys []string
}

// Scan lists the library, content and projects once and classifies every
// image. A failed orphan delete is recorded and the scan continues.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{Dangling: map[string]string{}}

	images, err := s.svc.ListImages(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list images: %w", err)
	}
	entries, err := s.svc.ListContentEntries(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list content: %w", err)
	}
	projects, err := s.svc.ListProjects(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list projects: %w", err)
	}

	result.TotalImages = len(images)
	library := make(map[string]bool, len(images))
	for _, img := range images {
		library[img.URL] = true
	}

	used := make(map[string]bool)
	for _, e := range entries {
		if e.Value == "" {
			continue
		}
		if library[e.Value] {
			used[e.Value] = true
			continue
		}
		if isImageEntry(e) && strings.Contains(e.Value, "/"+simplesite.ImageKeyPrefix) {
			result.Dangling[e.Key] = e.Value
		}
	}
	for _, p := range projects {
		if p.ImageURL != nil && library[*p.ImageURL] {
			used[*p.ImageURL] = true
		}
	}

	for i, img := range images {
		if used[img.URL] {
			result.Referenced++
		} else {
			result.Orphans = append(result.Orphans, img.ObjectKey)
			if opts.RemoveOrphans {
				s.removeOrphan(ctx, img.ObjectKey, opts.DryRun, result)
			}
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(images))
		}
	}

	sort.Strings(result.Orphans)
	return result, nil
}

func (s *Scanner) removeOrphan(ctx context.Context, objectKey string, dryRun bool, result *Result) {
	if dryRun {
		slog.Info("Would remove orphaned image", "object_key", objectKey)
		return
	}
	if err := s.svc.DeleteImage(ctx, objectKey); err != nil {
		slog.Error("Failed to remove orphaned image", "object_key", objectKey, "err", err)
		result.FailedKeys = append(result.FailedKeys, objectKey)
		return
	}
	result.Removed = append(result.Removed, objectKey)
}

func isImageEntry(e *simplesite.ContentEntry) bool {
	if e.Type == string(simplesite.FieldImage) {
		return true
	}
	kind, _ := simplesite.KindOf(e.Key)
	return kind == simplesite.FieldImage
}
