// Package storage uploads certificate artifacts to Aliyun OSS and hands
// back their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

var ErrUpload = errors.New("certificate upload failed")

type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// Complete reports whether every field needed to reach the bucket is set.
func (c Config) Complete() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// Uploader stores one certificate PDF and returns its durable public URL.
type Uploader interface {
	Upload(ctx context.Context, attemptID uuid.UUID, pdf []byte) (string, error)
}

// Mode is decided once at startup: remote storage is either enabled with a
// concrete uploader or disabled, in which case certificates go to local
// disk. Nothing else should re-derive this from the environment.
type Mode struct {
	Uploader Uploader
}

func (m Mode) Enabled() bool { return m.Uploader != nil }

type Store struct {
	bucket     *oss.Bucket
	publicBase string
}

func New(cfg Config) (*Store, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %q: %w", cfg.Bucket, err)
	}
	return &Store{bucket: bucket, publicBase: PublicBase(cfg)}, nil
}

// PublicBase is the URL prefix of objects in a public-read bucket:
// https://{bucket}.{endpoint}.
func PublicBase(cfg Config) string {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return fmt.Sprintf("https://%s.%s", cfg.Bucket, endpoint)
}

// ObjectKey is deterministic per attempt so a re-upload overwrites the same
// object instead of accumulating duplicates.
func ObjectKey(attemptID uuid.UUID) string {
	return fmt.Sprintf("certificates/%s.pdf", attemptID)
}

func (s *Store) Upload(ctx context.Context, attemptID uuid.UUID, pdf []byte) (string, error) {
	key := ObjectKey(attemptID)
	opts := []oss.Option{
		oss.ContentType("application/pdf"),
		oss.WithContext(ctx),
	}
	if err := s.bucket.PutObject(key, bytes.NewReader(pdf), opts...); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return s.publicBase + "/" + key, nil
}
