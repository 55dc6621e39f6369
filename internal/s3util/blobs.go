package s3util

import (
	"context"
	"path"
)

// Blobs stores history image bytes in a bucket under a key prefix.
type Blobs struct {
	Client API
	Bucket string
	Prefix string
}

// Put uploads data under the prefixed key.
func (b *Blobs) Put(ctx context.Context, key, mimeType string, data []byte) error {
	return PutBytes(ctx, b.Client, b.Bucket, path.Join(b.Prefix, key), mimeType, "", data)
}

// Get downloads the prefixed key.
func (b *Blobs) Get(ctx context.Context, key string) ([]byte, error) {
	return GetBytes(ctx, b.Client, b.Bucket, path.Join(b.Prefix, key))
}
