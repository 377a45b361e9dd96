package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/simple-site/pkg/simplesite"
)

// Backend is a filesystem implementation of the simplesite.ImageStore interface
type Backend struct {
	mu      sync.RWMutex
	baseDir string
}

var _ simplesite.ImageStore = (*Backend)(nil)

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem image store
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: filepath.Clean(config.BaseDir)}, nil
}

// pathFor maps an object key to a file under baseDir. Keys that would escape
// baseDir are reported as missing.
func (b *Backend) pathFor(objectKey string) (string, error) {
	if objectKey == "" || !filepath.IsLocal(filepath.FromSlash(objectKey)) {
		return "", simplesite.ErrImageNotFound
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(objectKey)), nil
}

// UploadWithParams writes the object to disk. The MIME type is detected again
// on read.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params simplesite.UploadParams) error {
	filePath, err := b.pathFor(params.ObjectKey)
	if err != nil {
		return fmt.Errorf("invalid object key %q", params.ObjectKey)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Download opens the object file
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.pathFor(objectKey)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, simplesite.ErrImageNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the object file and any directories it leaves empty
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.pathFor(objectKey)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(filePath); os.IsNotExist(err) {
		return simplesite.ErrImageNotFound
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// List walks baseDir and returns every object whose key starts with prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]*simplesite.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var metas []*simplesite.ObjectMeta
	err := filepath.WalkDir(b.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		meta, err := b.statObject(key, p)
		if err != nil {
			return err
		}
		metas = append(metas, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Key < metas[j].Key })
	return metas, nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simplesite.ObjectMeta, error) {
	filePath, err := b.pathFor(objectKey)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.statObject(objectKey, filePath)
}

func (b *Backend) statObject(objectKey, filePath string) (*simplesite.ObjectMeta, error) {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, simplesite.ErrImageNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if info.IsDir() {
		return nil, simplesite.ErrImageNotFound
	}

	// Detect content type
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &simplesite.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
