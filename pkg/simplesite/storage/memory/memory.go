package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-site/pkg/simplesite"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the simplesite.ImageStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

var _ simplesite.ImageStore = (*Backend)(nil)

// New creates a new in-memory image store
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
		now:     time.Now,
	}
}

// UploadWithParams stores the object, replacing any previous version
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params simplesite.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	contentType := params.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = object{
		data:        data,
		contentType: contentType,
		updatedAt:   b.now().UTC(),
	}
	return nil
}

// Download returns a reader over a copy of the object
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplesite.ErrImageNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return simplesite.ErrImageNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

// List returns the objects under prefix ordered by key
func (b *Backend) List(ctx context.Context, prefix string) ([]*simplesite.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metas := make([]*simplesite.ObjectMeta, 0, len(b.objects))
	for key, obj := range b.objects {
		if strings.HasPrefix(key, prefix) {
			metas = append(metas, metaFor(key, obj))
		}
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Key < metas[j].Key })
	return metas, nil
}

// GetObjectMeta retrieves metadata for an object
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simplesite.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplesite.ErrImageNotFound
	}
	return metaFor(objectKey, obj), nil
}

func metaFor(key string, obj object) *simplesite.ObjectMeta {
	sum := md5.Sum(obj.data)
	return &simplesite.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
		ETag:        hex.EncodeToString(sum[:]),
	}
}
