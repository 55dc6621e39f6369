package export

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/s3util"
	"github.com/slicken/TextFx-Studio/internal/thumbnail"
)

// DefaultURLExpiry is how long a presigned download URL stays valid.
const DefaultURLExpiry = time.Hour

// S3Exporter uploads images to a bucket and returns presigned download URLs.
// A PNG preview is stored next to each export under thumbs/.
type S3Exporter struct {
	Client    s3util.API
	Presigner s3util.Presigner
	Bucket    string
	Prefix    string
	Expiry    time.Duration
	Now       func() time.Time
}

var _ Exporter = (*S3Exporter)(nil)

// NewS3Exporter creates an exporter with the default expiry.
func NewS3Exporter(client s3util.API, presigner s3util.Presigner, bucket, prefix string) *S3Exporter {
	return &S3Exporter{
		Client:    client,
		Presigner: presigner,
		Bucket:    bucket,
		Prefix:    prefix,
		Expiry:    DefaultURLExpiry,
		Now:       time.Now,
	}
}

// Export uploads the image as an attachment and returns a presigned GET URL.
func (e *S3Exporter) Export(ctx context.Context, img *history.GeneratedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrNoImage
	}

	name := FileName(e.Now(), img.Ext())
	key := path.Join(e.Prefix, sanitizeKey(img.ID), name)
	disposition := fmt.Sprintf(`attachment; filename="%s"`, name)

	if err := s3util.PutBytes(ctx, e.Client, e.Bucket, key, img.MIMEType, disposition, img.Data); err != nil {
		return "", err
	}

	if thumb, err := thumbnail.Make(img.Data, thumbnail.DefaultMaxDimension); err != nil {
		log.Warn().Err(err).Str("image", img.ID).Msg("Skipping export thumbnail")
	} else {
		thumbKey := path.Join(e.Prefix, sanitizeKey(img.ID), "thumbs", strings.TrimSuffix(name, img.Ext())+".png")
		if err := s3util.PutBytes(ctx, e.Client, e.Bucket, thumbKey, thumbnail.MIMEType, "", thumb); err != nil {
			log.Warn().Err(err).Str("key", thumbKey).Msg("Failed to upload export thumbnail")
		}
	}

	url, err := s3util.GeneratePresignedURL(ctx, e.Presigner, e.Bucket, key, e.Expiry)
	if err != nil {
		return "", err
	}

	log.Info().Str("bucket", e.Bucket).Str("key", key).Str("image", img.ID).Msg("Image exported to S3")
	return url, nil
}

// sanitizeKey keeps IDs from escaping their key prefix.
func sanitizeKey(s string) string {
	s = strings.ReplaceAll(s, "..", "")
	s = strings.Trim(s, "/")
	s = strings.ReplaceAll(s, "/", "-")
	if s == "" {
		return "unknown"
	}
	return s
}
