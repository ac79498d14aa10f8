package integration

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/minwonhaeso/esc-server/internal/health"
	"github.com/minwonhaeso/esc-server/internal/service"
)

var avatarURLPattern = regexp.MustCompile(`/avatars/member-42/[0-9a-fA-F-]{36}\.png$`)

// 1x1 transparent PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func TestMinIOAvatarStorageUpload(t *testing.T) {
	env := startMinIO(t)
	ctx := context.Background()

	storage, err := service.NewMinIOAvatarStorage(env.endpoint, "minioadmin", "minioadmin", env.bucket, false, 1<<20)
	require.NoError(t, err)

	// bucket is created lazily on first upload
	probe := health.NewProbeRunner(0, 0, health.NewBucketChecker(storage, storage.BucketName()))
	ready, results := probe.Ready(ctx)
	require.True(t, ready, "a missing bucket is not a failure: %+v", results)

	url, err := storage.UploadAvatar(ctx, 42, bytes.NewReader(tinyPNG), int64(len(tinyPNG)), "application/octet-stream")
	require.NoError(t, err)
	require.Regexp(t, avatarURLPattern, url)
	require.True(t, strings.HasPrefix(url, "http://"+env.endpoint+"/"+env.bucket+"/"))

	objectKey := strings.TrimPrefix(url, "http://"+env.endpoint+"/"+env.bucket+"/")
	info, err := env.client.StatObject(ctx, env.bucket, objectKey, minio.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)
	require.EqualValues(t, len(tinyPNG), info.Size)

	exists, err := storage.BucketExists(ctx, env.bucket)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestMinIOAvatarStorageRejectsBeforeWriting(t *testing.T) {
	env := startMinIO(t)
	ctx := context.Background()

	storage, err := service.NewMinIOAvatarStorage(env.endpoint, "minioadmin", "minioadmin", env.bucket, false, 16)
	require.NoError(t, err)

	_, err = storage.UploadAvatar(ctx, 7, bytes.NewReader(tinyPNG), int64(len(tinyPNG)), "image/png")
	require.ErrorIs(t, err, service.ErrFileTooBig)

	roomy, err := service.NewMinIOAvatarStorage(env.endpoint, "minioadmin", "minioadmin", env.bucket, false, 1<<20)
	require.NoError(t, err)
	text := []byte("definitely not an image")
	_, err = roomy.UploadAvatar(ctx, 7, bytes.NewReader(text), int64(len(text)), "image/png")
	require.ErrorIs(t, err, service.ErrInvalidFileType)

	// neither rejection reached the bucket
	_, err = env.client.StatObject(ctx, env.bucket, "avatars/member-7/missing.png", minio.StatObjectOptions{})
	require.Error(t, err)
	require.True(t, isObjectNotFound(err))
}
