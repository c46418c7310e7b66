package ports

import (
	"context"
	"io"
)

// S3Storage : для S3
type S3Storage interface {
	UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
