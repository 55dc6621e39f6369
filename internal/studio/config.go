// Package studio holds the interactive selection state of a TextFx session:
// the text, the chosen style, effects, background, and creativity level.
//
// Every mutation returns a TextConfig snapshot. A snapshot is a deep copy, so
// the prompt compiler and anything downstream never observe later edits.
package studio

import (
	"errors"
	"strings"

	"github.com/slicken/TextFx-Studio/internal/catalog"
)

// MaxTextRunes is the input limit for the text rendered into the image.
const MaxTextRunes = 30

// Creativity bounds. Levels above ExpressiveThreshold use expressive phrasing.
const (
	MinCreativity       = 1
	MaxCreativity       = 5
	DefaultCreativity   = 3
	ExpressiveThreshold = 3
)

var (
	// ErrEmptyText is returned at submit time when the text is empty or whitespace.
	ErrEmptyText = errors.New("text is empty")
	// ErrUnknownPreset is returned when a preset key is not in the catalog.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrCreativityRange is returned for creativity levels outside [1,5].
	ErrCreativityRange = errors.New("creativity level out of range")
)

// TextConfig is an immutable snapshot of the selection state taken when a
// generation is submitted.
type TextConfig struct {
	Text             string   `json:"text"`
	Style            string   `json:"style"`
	CustomStyle      string   `json:"customStyle,omitempty"`
	Effects          []string `json:"effects"`
	CustomEffect     string   `json:"customEffect,omitempty"`
	Background       string   `json:"background"`
	CustomBackground string   `json:"customBackground,omitempty"`
	Creativity       int      `json:"creativity"`

	// Catalog is the preset catalog the keys above refer to.
	Catalog *catalog.Catalog `json:"-"`
}

// Validate performs the submit-time checks on the snapshot.
func (c TextConfig) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyText
	}
	if c.Creativity < MinCreativity || c.Creativity > MaxCreativity {
		return ErrCreativityRange
	}
	return nil
}

// Expressive reports whether the creativity level selects expressive phrasing.
func (c TextConfig) Expressive() bool {
	return c.Creativity > ExpressiveThreshold
}

func (c TextConfig) clone() TextConfig {
	out := c
	out.Effects = append([]string{}, c.Effects...)
	return out
}

// Resolve applies the custom-wins precedence shared by style and background:
// a non-blank custom value overrides the preset, otherwise the preset stands.
func Resolve(preset, custom string) string {
	if strings.TrimSpace(custom) != "" {
		return custom
	}
	return preset
}

// HasCustom reports whether a custom field counts as set.
func HasCustom(custom string) bool {
	return strings.TrimSpace(custom) != ""
}
