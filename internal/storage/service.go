package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// DefaultURLTTL is how long signed asset URLs stay valid.
const DefaultURLTTL = 24 * time.Hour

// Service signs read URLs for objects in the asset bucket.
type Service struct {
	client     *storage.Client
	bucketName string
	ttl        time.Duration
	now        func() time.Time
}

// NewService creates a new storage service
func NewService(ctx context.Context, bucketName string, ttl time.Duration) (*Service, error) {
	if bucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	return &Service{
		client:     client,
		bucketName: bucketName,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// SignedURL creates a V4 signed GET URL for objectPath.
func (s *Service) SignedURL(_ context.Context, objectPath string) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: s.now().Add(s.ttl),
	}

	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

// Close closes the storage client
func (s *Service) Close() error {
	return s.client.Close()
}
