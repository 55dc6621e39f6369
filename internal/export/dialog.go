package export

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// ErrCanceled is returned when the user dismisses the save dialog.
var ErrCanceled = errors.New("save dialog canceled")

// DialogPath asks for a save location with a native dialog, suggesting
// defaultName.
func DialogPath(defaultName string) (string, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title("Save image"),
		zenity.Filename(defaultName),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{
			{Name: "Images", Patterns: []string{"*.png", "*.jpg", "*.jpeg", "*.webp"}},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		return "", fmt.Errorf("save dialog failed: %w", err)
	}
	return path, nil
}
