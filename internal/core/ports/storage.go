package ports

import (
	"context"
	"time"
)

// ObjectStorage abstracts the hosted object store used for logos and
// avatars.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) string
	// SignedURL returns a time-limited authenticated link to the object.
	SignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration) (string, error)
}
