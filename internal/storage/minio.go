package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/siahsang/socialite/internal/config"
)

// Storage persists uploaded images and hands back a public URL for them.
type Storage interface {
	UploadImage(ctx context.Context, prefix string, fileName string, file io.Reader, size int64) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

type MinIOStorage struct {
	client *minio.Client
	config config.MinIO
}

func NewMinIOStorage(cfg config.MinIO) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, xerrors.New(err)
	}

	return &MinIOStorage{
		client: client,
		config: cfg,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (m *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.config.BucketName)
	if err != nil {
		return xerrors.New(err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.config.BucketName, minio.MakeBucketOptions{}); err != nil {
			return xerrors.New(err)
		}
	}

	return nil
}

func (m *MinIOStorage) UploadImage(ctx context.Context, prefix string, fileName string, file io.Reader, size int64) (string, error) {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	contentType := mime.TypeByExtension(fileExt)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), fileExt)

	_, err := m.client.PutObject(ctx, m.config.BucketName, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
			},
		})
	if err != nil {
		return "", xerrors.New(err)
	}

	imageURL := fmt.Sprintf("%s/%s/%s", m.config.PublicURL, m.config.BucketName, objectName)

	return imageURL, nil
}

// DeleteImage removes a previously uploaded object given its public URL.
// URLs that do not point into the configured bucket are left alone.
func (m *MinIOStorage) DeleteImage(ctx context.Context, imageURL string) error {
	urlPrefix := fmt.Sprintf("%s/%s/", m.config.PublicURL, m.config.BucketName)
	objectName, found := strings.CutPrefix(imageURL, urlPrefix)
	if !found {
		return nil
	}

	err := m.client.RemoveObject(ctx, m.config.BucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return xerrors.New(err)
	}

	return nil
}
