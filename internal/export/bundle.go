package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/slicken/TextFx-Studio/internal/history"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

// ManifestName is the JSON index stored first in every bundle.
const ManifestName = "manifest.json"

func init() {
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)))
	})
	zip.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		d, err := zstd.NewReader(r)
		if err != nil {
			return io.NopCloser(errReader{err})
		}
		return d.IOReadCloser()
	})
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

// ManifestEntry describes one image in a bundle.
type ManifestEntry struct {
	File      string    `json:"file"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bundle writes images, in the order given, into a zstd-compressed ZIP with a
// manifest. Entries are named after each image's creation time.
func Bundle(w io.Writer, images []*history.GeneratedImage) error {
	zw := zip.NewWriter(w)

	manifest := make([]ManifestEntry, 0, len(images))
	names := make(map[string]int)
	for _, img := range images {
		base := FileName(img.CreatedAt, img.Ext())
		name := base
		if n := names[base]; n > 0 {
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, img.Ext()), n, img.Ext())
		}
		names[base]++
		manifest = append(manifest, ManifestEntry{
			File:      name,
			ID:        img.ID,
			Text:      img.Text,
			Prompt:    img.Prompt,
			CreatedAt: img.CreatedAt,
		})
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for i, img := range images {
		header := &zip.FileHeader{
			Name:     manifest[i].File,
			Method:   zipMethodZstd,
			Modified: img.CreatedAt,
		}
		ew, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create ZIP entry for %s: %w", header.Name, err)
		}
		if _, err := ew.Write(img.Data); err != nil {
			return fmt.Errorf("write to ZIP for %s: %w", header.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close ZIP writer: %w", err)
	}
	return nil
}
