// Package history keeps the generated images of a studio session, most recent
// first. Records are appended on success only and are never deduplicated,
// evicted, or reordered.
//
// Three backends implement Store: Memory for the CLI and tests, DynamoStore
// (metadata in DynamoDB, image bytes in a BlobStore such as S3) for Lambda,
// and PostgresStore for a self-hosted server.
package history

import (
	"context"
	"encoding/base64"
	"errors"
	"time"
)

// Backend names accepted by configuration.
const (
	BackendMemory   = "memory"
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"
)

// ErrNotFound is returned by callers that need a record to exist. Store.Get
// itself reports a missing record as (nil, nil).
var ErrNotFound = errors.New("image not found in history")

// GeneratedImage is one successful generation.
type GeneratedImage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Prompt    string    `json:"prompt"`
	MIMEType  string    `json:"mimeType"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// DataURL returns the displayable image reference.
func (g *GeneratedImage) DataURL() string {
	return "data:" + g.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(g.Data)
}

// Ext returns the file extension for the image's MIME type, ".png" when unknown.
func (g *GeneratedImage) Ext() string {
	switch g.MIMEType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// Store persists history records. Implementations are safe for concurrent use.
type Store interface {
	// Add prepends img to the history.
	Add(ctx context.Context, img *GeneratedImage) error
	// List returns all records, most recent first.
	List(ctx context.Context) ([]*GeneratedImage, error)
	// Get returns a record by ID, or nil, nil if it does not exist.
	Get(ctx context.Context, id string) (*GeneratedImage, error)
}
