package simplesite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const maxFilenameLength = 100

// UploadImage stores an image and, when req.Key is set, points that content
// key at it. Nothing is written to the content table unless the object was
// stored successfully.
func (s *service) UploadImage(ctx context.Context, req UploadImageRequest) (*UploadImageResult, error) {
	if s.imageStore == nil {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: ErrImageStoreNotConfigured}
	}
	if req.Key != "" {
		if err := validateImageKey(req.Key); err != nil {
			return nil, &UploadError{Key: req.Key, Op: "upload", Err: err}
		}
	}
	if req.Reader == nil || req.Size > s.maxImageSize {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: NewInvalidImageError(s.maxImageSize)}
	}

	data, err := io.ReadAll(io.LimitReader(req.Reader, s.maxImageSize+1))
	if err != nil {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: fmt.Errorf("failed to read upload: %w", err)}
	}
	if len(data) == 0 || int64(len(data)) > s.maxImageSize {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: NewInvalidImageError(s.maxImageSize)}
	}

	mimeType := req.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: NewInvalidImageError(s.maxImageSize)}
	}

	objectKey := ImageKeyPrefix + uuid.NewString() + "-" + sanitizeFilename(req.Filename)
	if err := s.imageStore.UploadWithParams(ctx, bytes.NewReader(data), UploadParams{
		ObjectKey: objectKey,
		MimeType:  mimeType,
	}); err != nil {
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: err}
	}

	url := s.publicURL(objectKey)
	result := &UploadImageResult{Key: req.Key, ObjectKey: objectKey, URL: url}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		media := &Media{URL: url, CreatedAt: s.timestamp()}
		if err := tx.CreateMedia(ctx, media); err != nil {
			return fmt.Errorf("failed to record media: %w", err)
		}
		result.MediaID = &media.ID

		if req.Key == "" {
			return nil
		}
		imageType := string(FieldImage)
		_, err := tx.UpsertContent(ctx, ContentUpsert{
			Key: req.Key,
			ContentFieldUpdate: ContentFieldUpdate{
				Value:   url,
				Type:    &imageType,
				MediaID: &media.ID,
			},
			UpdatedAt: s.timestamp(),
		})
		return err
	})
	if err != nil {
		if delErr := s.imageStore.Delete(ctx, objectKey); delErr != nil {
			slog.Error("Failed to remove orphaned image", "object_key", objectKey, "err", delErr)
		}
		return nil, &UploadError{Key: req.Key, Op: "upload", Err: err}
	}

	return result, nil
}

// ListImages returns the image library, newest first
func (s *service) ListImages(ctx context.Context) ([]*StoredImage, error) {
	if s.imageStore == nil {
		return nil, &UploadError{Op: "list", Err: ErrImageStoreNotConfigured}
	}

	objects, err := s.imageStore.List(ctx, ImageKeyPrefix)
	if err != nil {
		return nil, &UploadError{Op: "list", Err: err}
	}

	images := make([]*StoredImage, 0, len(objects))
	for _, obj := range objects {
		images = append(images, &StoredImage{
			ObjectKey:   obj.Key,
			URL:         s.publicURL(obj.Key),
			Size:        obj.Size,
			ContentType: obj.ContentType,
			UpdatedAt:   obj.UpdatedAt,
		})
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].UpdatedAt.Equal(images[j].UpdatedAt) {
			return images[i].ObjectKey < images[j].ObjectKey
		}
		return images[i].UpdatedAt.After(images[j].UpdatedAt)
	})
	return images, nil
}

// DeleteImage removes an image from the store, drops its media record and
// clears every content row that referenced it
func (s *service) DeleteImage(ctx context.Context, objectKey string) error {
	if s.imageStore == nil {
		return &UploadError{Key: objectKey, Op: "delete", Err: ErrImageStoreNotConfigured}
	}
	if err := validateObjectKey(objectKey); err != nil {
		return &UploadError{Key: objectKey, Op: "delete", Err: err}
	}

	if err := s.imageStore.Delete(ctx, objectKey); err != nil && !errors.Is(err, ErrImageNotFound) {
		return &UploadError{Key: objectKey, Op: "delete", Err: err}
	}

	url := s.publicURL(objectKey)
	err := s.repository.WithTx(ctx, func(tx Repository) error {
		var mediaID *int64
		media, err := tx.GetMediaByURL(ctx, url)
		switch {
		case err == nil:
			mediaID = &media.ID
		case errors.Is(err, ErrMediaNotFound):
		default:
			return err
		}

		cleared, err := tx.ClearContentMedia(ctx, mediaID, url)
		if err != nil {
			return err
		}
		if mediaID != nil {
			if _, err := tx.DeleteMediaByURL(ctx, url); err != nil && !errors.Is(err, ErrMediaNotFound) {
				return err
			}
		}
		slog.Info("Image deleted", "object_key", objectKey, "content_cleared", cleared)
		return nil
	})
	if err != nil {
		return &UploadError{Key: objectKey, Op: "delete", Err: err}
	}
	return nil
}

// SelectImage points a content key at an image already in the library
func (s *service) SelectImage(ctx context.Context, key, url string) (*UploadImageResult, error) {
	if err := validateImageKey(key); err != nil {
		return nil, NewValidationError(key, err.Error())
	}
	if url == "" {
		return nil, NewValidationError(key, "image url is required")
	}
	if err := ValidateImageURL(url); err != nil {
		return nil, NewValidationError(key, err.Error())
	}

	imageType := string(FieldImage)
	update := ContentFieldUpdate{Value: url, Type: &imageType, DetachMedia: true}
	media, err := s.repository.GetMediaByURL(ctx, url)
	switch {
	case err == nil:
		update.MediaID = &media.ID
	case errors.Is(err, ErrMediaNotFound):
	default:
		return nil, &UploadError{Key: key, Op: "select", Err: err}
	}

	if _, err := s.repository.UpsertContent(ctx, ContentUpsert{
		Key:                key,
		ContentFieldUpdate: update,
		UpdatedAt:          s.timestamp(),
	}); err != nil {
		return nil, &UploadError{Key: key, Op: "select", Err: err}
	}

	return &UploadImageResult{Key: key, URL: url, MediaID: update.MediaID}, nil
}

// OpenImage streams an image from the store along with its metadata
func (s *service) OpenImage(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMeta, error) {
	if s.imageStore == nil {
		return nil, nil, &UploadError{Key: objectKey, Op: "open", Err: ErrImageStoreNotConfigured}
	}
	if err := validateObjectKey(objectKey); err != nil {
		return nil, nil, &UploadError{Key: objectKey, Op: "open", Err: err}
	}

	meta, err := s.imageStore.GetObjectMeta(ctx, objectKey)
	if err != nil {
		return nil, nil, &UploadError{Key: objectKey, Op: "open", Err: err}
	}
	rc, err := s.imageStore.Download(ctx, objectKey)
	if err != nil {
		return nil, nil, &UploadError{Key: objectKey, Op: "open", Err: err}
	}
	return rc, meta, nil
}

func validateImageKey(key string) error {
	if err := ValidateContentKey(key); err != nil {
		return err
	}
	if kind, known := KindOf(key); known && kind != FieldImage {
		return fmt.Errorf("%s is not an image field", key)
	}
	return nil
}

// validateObjectKey accepts only keys produced by UploadImage
func validateObjectKey(objectKey string) error {
	if !strings.HasPrefix(objectKey, ImageKeyPrefix) || len(objectKey) == len(ImageKeyPrefix) {
		return ErrImageNotFound
	}
	if path.Clean(objectKey) != objectKey || strings.Contains(objectKey, "..") {
		return ErrImageNotFound
	}
	if strings.Contains(objectKey[len(ImageKeyPrefix):], "/") {
		return ErrImageNotFound
	}
	return nil
}

// sanitizeFilename reduces a client file name to lowercase letters, digits,
// dots, dashes and underscores
func sanitizeFilename(filename string) string {
	name := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))

	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-.")
	if len(out) > maxFilenameLength {
		out = out[len(out)-maxFilenameLength:]
	}
	if out == "" {
		return "image"
	}
	return out
}
