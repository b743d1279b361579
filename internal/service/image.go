package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/config"
)

const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// S3ImageStore keeps recipe images in the configured S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
	urlTTL   time.Duration
}

// NewS3ImageStore creates a store that presigns GET URLs valid for urlTTL.
func NewS3ImageStore(s3Config *config.S3Config, urlTTL time.Duration) *S3ImageStore {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &S3ImageStore{s3Config: s3Config, urlTTL: urlTTL}
}

func (s *S3ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return s.s3Config.PutObject(ctx, key, data, contentType)
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	return s.s3Config.DeleteObject(ctx, key)
}

func (s *S3ImageStore) PresignedURL(ctx context.Context, key string) (string, error) {
	url, err := s.s3Config.GeneratePresignedURL(ctx, key, s.urlTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}

// imageKey validates an upload and returns the object key to store it under.
func imageKey(recipeID uuid.UUID, data []byte, contentType string) (string, string, error) {
	if len(data) == 0 || len(data) > maxImageBytes {
		return "", "", fmt.Errorf("image must be between 1 byte and %d bytes", maxImageBytes)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return fmt.Sprintf("recipes/%s/%s.%s", recipeID, uuid.NewString(), ext), contentType, nil
}
