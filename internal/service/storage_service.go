package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const avatarPathPrefix = "avatars"

var (
	ErrFileTooBig           = errors.New("file size exceeds avatar limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")

	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// objectPutter is the slice of the MinIO client the avatar store needs.
type objectPutter interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOAvatarStorage stores member avatars in a MinIO bucket.
type MinIOAvatarStorage struct {
	client     objectPutter
	bucketName string
	publicBase string
	maxBytes   int64
	initOnce   sync.Once
	initErr    error
}

// NewMinIOAvatarStorage defers bucket creation until the first upload.
func NewMinIOAvatarStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, maxBytes int64) (*MinIOAvatarStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return newMinIOAvatarStorage(client, bucketName, fmt.Sprintf("%s://%s", scheme, endpoint), maxBytes), nil
}

func newMinIOAvatarStorage(client objectPutter, bucketName, publicBase string, maxBytes int64) *MinIOAvatarStorage {
	return &MinIOAvatarStorage{
		client:     client,
		bucketName: bucketName,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxBytes:   maxBytes,
	}
}

func (s *MinIOAvatarStorage) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
			return
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
				s.initErr = fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
			}
		}
	})
	return s.initErr
}

// UploadAvatar sniffs the content type from the bytes, ignoring the
// client-declared one, and returns the public object URL.
func (s *MinIOAvatarStorage) UploadAvatar(ctx context.Context, memberID uint, file io.Reader, size int64, _ string) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", ErrFileTooBig
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: read file for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]
	detected := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	if _, ok := allowedContentTypes[detected]; !ok {
		return "", ErrInvalidFileType
	}

	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/member-%d/%s%s", avatarPathPrefix, memberID, uuid.NewString(), contentTypeToExtension(detected))
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, io.MultiReader(bytes.NewReader(buf), file), size, minio.PutObjectOptions{
		ContentType: detected,
		UserMetadata: map[string]string{
			"Member-ID":   fmt.Sprintf("%d", memberID),
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucketName, objectKey), nil
}

// BucketExists lets the readiness probe reach MinIO without uploading.
func (s *MinIOAvatarStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return s.client.BucketExists(ctx, bucketName)
}

func (s *MinIOAvatarStorage) BucketName() string { return s.bucketName }

func contentTypeToExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
