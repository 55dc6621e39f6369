// Package export hands generated images to the user as files: named after the
// export time, written to disk or S3, bundled into a ZIP, or saved to a path
// picked in a native dialog.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/history"
)

// FilePrefix starts every exported file name.
const FilePrefix = "textfx-"

// ErrNoImage is returned when exporting a record without image bytes.
var ErrNoImage = errors.New("nothing to export")

// Exporter delivers one image and returns a reference to it: a file path or
// a download URL.
type Exporter interface {
	Export(ctx context.Context, img *history.GeneratedImage) (string, error)
}

// FileName returns textfx-<unix millis><ext> for the export time t.
func FileName(t time.Time, ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return FilePrefix + strconv.FormatInt(t.UnixMilli(), 10) + ext
}

// LocalExporter writes images into a directory.
type LocalExporter struct {
	Dir string
	Now func() time.Time
}

var _ Exporter = (*LocalExporter)(nil)

// NewLocalExporter creates an exporter for dir.
func NewLocalExporter(dir string) *LocalExporter {
	return &LocalExporter{Dir: dir, Now: time.Now}
}

// Export writes the image and returns its path. Names that already exist get
// a numeric suffix instead of being overwritten.
func (e *LocalExporter) Export(_ context.Context, img *history.GeneratedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrNoImage
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	ext := img.Ext()
	name := FileName(e.Now(), ext)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		path := filepath.Join(e.Dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			name = fmt.Sprintf("%s-%d%s", base, i, ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(img.Data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}

		log.Info().Str("path", path).Str("image", img.ID).Int("bytes", len(img.Data)).Msg("Image exported")
		return path, nil
	}
}

// WriteTo writes the image to an exact path, replacing any existing file.
func WriteTo(path string, img *history.GeneratedImage) error {
	if len(img.Data) == 0 {
		return ErrNoImage
	}
	if err := os.WriteFile(path, img.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Str("image", img.ID).Msg("Image exported")
	return nil
}
