package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "images/a.png"
	testData := "not really a png"

	t.Run("UploadWithParams", func(t *testing.T) {
		err := backend.UploadWithParams(ctx, strings.NewReader(testData), simplesite.UploadParams{
			ObjectKey: testKey,
			MimeType:  "image/png",
		})
		assert.NoError(t, err)
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
		assert.NotEmpty(t, meta.ETag)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(data))
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		err := backend.UploadWithParams(ctx, strings.NewReader("x"), simplesite.UploadParams{ObjectKey: "other/b"})
		require.NoError(t, err)

		meta, err := backend.GetObjectMeta(ctx, "other/b")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("List", func(t *testing.T) {
		err := backend.UploadWithParams(ctx, strings.NewReader("y"), simplesite.UploadParams{ObjectKey: "images/0.png"})
		require.NoError(t, err)

		metas, err := backend.List(ctx, "images/")
		require.NoError(t, err)
		require.Len(t, metas, 2)
		assert.Equal(t, "images/0.png", metas[0].Key)
		assert.Equal(t, testKey, metas[1].Key)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.GetObjectMeta(ctx, testKey)
		assert.ErrorIs(t, err, simplesite.ErrImageNotFound)

		_, err = backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, simplesite.ErrImageNotFound)

		assert.ErrorIs(t, backend.Delete(ctx, testKey), simplesite.ErrImageNotFound)
	})
}
