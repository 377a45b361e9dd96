package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(context.Background(), Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(context.Background(), Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
		assert.NotNil(t, backend.uploader)
	})
}

func TestS3Backend_ApplySSE(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantSSE   types.ServerSideEncryption
		wantKMSID string
	}{
		{name: "disabled", config: Config{SSEAlgorithm: "AES256"}},
		{name: "aes256", config: Config{EnableSSE: true, SSEAlgorithm: "AES256"}, wantSSE: types.ServerSideEncryptionAes256},
		{name: "kms", config: Config{EnableSSE: true, SSEAlgorithm: "aws:kms", SSEKMSKeyID: "key-1"}, wantSSE: types.ServerSideEncryptionAwsKms, wantKMSID: "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Backend{config: tt.config}
			input := &s3.PutObjectInput{}
			b.applySSE(input)
			assert.Equal(t, tt.wantSSE, input.ServerSideEncryption)
			if tt.wantKMSID != "" {
				require.NotNil(t, input.SSEKMSKeyId)
				assert.Equal(t, tt.wantKMSID, *input.SSEKMSKeyId)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: &types.NoSuchKey{}, want: true},
		{name: "head not found", err: &types.NotFound{}, want: true},
		{name: "generic api not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: true},
		{name: "wrapped", err: fmt.Errorf("op: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}), want: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: false},
		{name: "plain", err: io.EOF, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

// TestS3Backend_Integration runs against a real S3-compatible endpoint such as
// MinIO when S3_TEST_ENDPOINT is set
func TestS3Backend_Integration(t *testing.T) {
	endpoint := os.Getenv("S3_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_TEST_ENDPOINT not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, Config{
		Bucket:                 fmt.Sprintf("simple-site-test-%d", time.Now().UnixNano()),
		AccessKeyID:            os.Getenv("S3_TEST_ACCESS_KEY"),
		SecretAccessKey:        os.Getenv("S3_TEST_SECRET_KEY"),
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	key := "images/integration.png"
	data := []byte("png-ish")
	require.NoError(t, backend.UploadWithParams(ctx, bytes.NewReader(data), simplesite.UploadParams{ObjectKey: key, MimeType: "image/png"}))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)

	metas, err := backend.List(ctx, "images/")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, key, metas[0].Key)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))
	assert.ErrorIs(t, backend.Delete(ctx, key), simplesite.ErrImageNotFound)
	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, simplesite.ErrImageNotFound)
}
