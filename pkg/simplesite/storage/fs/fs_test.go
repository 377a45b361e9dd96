package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// smallest valid PNG header, enough for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	key := "images/abc-photo.png"

	err = backend.UploadWithParams(ctx, bytes.NewReader(pngHeader), simplesite.UploadParams{ObjectKey: key, MimeType: "image/png"})
	require.NoError(t, err)

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, meta.Key)
	assert.Equal(t, int64(len(pngHeader)), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pngHeader, got)

	require.NoError(t, backend.UploadWithParams(ctx, bytes.NewReader([]byte("x")), simplesite.UploadParams{ObjectKey: "other/x.txt"}))

	metas, err := backend.List(ctx, "images/")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, key, metas[0].Key)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, "images"))
	assert.True(t, os.IsNotExist(err), "empty directory should be removed")

	assert.ErrorIs(t, backend.Delete(ctx, key), simplesite.ErrImageNotFound)
	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, simplesite.ErrImageNotFound)
	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, simplesite.ErrImageNotFound)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../secret", "/etc/passwd", "images/../../x"} {
		_, err := backend.Download(ctx, key)
		assert.ErrorIs(t, err, simplesite.ErrImageNotFound, key)

		err = backend.UploadWithParams(ctx, bytes.NewReader(nil), simplesite.UploadParams{ObjectKey: key})
		assert.Error(t, err, key)
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
