package infra

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Vovarama1992/pdf_tools/internal/config"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type s3Client struct {
	client *minio.Client
	bucket string
	host   string
}

func NewS3Client(ctx context.Context, cfg config.S3Config) (ports.S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	// проверим, что бакет существует
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &s3Client{
		client: client,
		bucket: cfg.Bucket,
		host:   publicHost(cfg),
	}, nil
}

// PutObject загружает файл и возвращает публичный URL
func (s *s3Client) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return buildPublicURL(s.host, key), nil
}

func (s *s3Client) ListOlderThan(ctx context.Context, prefix string, before time.Time) ([]string, error) {
	// при раннем выходе minio должен остановить листинг
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if obj.LastModified.Before(before) {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

func (s *s3Client) RemoveObject(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func publicHost(cfg config.S3Config) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "https"
	if !cfg.Secure {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// buildPublicURL экранирует каждый сегмент ключа, слэши остаются
func buildPublicURL(host, key string) string {
	var segs []string
	for _, seg := range strings.Split(key, "/") {
		if seg != "" {
			segs = append(segs, url.PathEscape(seg))
		}
	}
	return host + "/" + strings.Join(segs, "/")
}
