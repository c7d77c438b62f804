// Package storage holds binary objects (images) and hands back the URL
// documents refer to.
package storage

import (
	"context"
	"io"

	"insurance-marketplace/pkg/apperror"
)

// Upload is a local image handle waiting to be stored.
type Upload struct {
	Body        io.Reader
	ContentType string
}

type ObjectStorage interface {
	// Upload stores the object under key and returns its download URL.
	Upload(ctx context.Context, key string, u Upload) (string, error)
	Delete(ctx context.Context, key string) error
}

// Disabled rejects every call; it stands in when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, Upload) (string, error) {
	return "", apperror.New(apperror.KindUnavailable, "storage.Upload", "object storage is not configured")
}

func (Disabled) Delete(context.Context, string) error {
	return apperror.New(apperror.KindUnavailable, "storage.Delete", "object storage is not configured")
}
