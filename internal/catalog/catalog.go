// Package catalog holds the preset options offered by the studio: text styles,
// effects, and background modes. Catalogs are plain data so a deployment can
// swap the built-in set for its own JSON file without touching the compiler.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Built-in catalog names accepted by Named.
const (
	NameFull    = "full"
	NameClassic = "classic"
)

// ErrUnknownCatalog is returned by Named for names that are neither built in
// nor a readable JSON file.
var ErrUnknownCatalog = errors.New("unknown catalog")

// Style is a named visual style preset.
type Style struct {
	Key         string `json:"key"`
	Value       string `json:"value"` // text used in the prompt
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Effect is a named effect preset.
type Effect struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// Background is a named background mode. Swatch is display-only; Phrase is the
// canonical prompt clause for the mode.
type Background struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Swatch string `json:"swatch"`
	Phrase string `json:"phrase"`
}

// Catalog is an ordered set of presets. Order matters: the first style and
// background are the defaults, and listings keep catalog order.
type Catalog struct {
	Name        string       `json:"name"`
	Styles      []Style      `json:"styles"`
	Effects     []Effect     `json:"effects"`
	Backgrounds []Background `json:"backgrounds"`
}

// Style looks up a style preset by key.
func (c *Catalog) Style(key string) (Style, bool) {
	for _, s := range c.Styles {
		if s.Key == key {
			return s, true
		}
	}
	return Style{}, false
}

// Effect looks up an effect preset by key.
func (c *Catalog) Effect(key string) (Effect, bool) {
	for _, e := range c.Effects {
		if e.Key == key {
			return e, true
		}
	}
	return Effect{}, false
}

// Background looks up a background mode by key.
func (c *Catalog) Background(key string) (Background, bool) {
	for _, b := range c.Backgrounds {
		if b.Key == key {
			return b, true
		}
	}
	return Background{}, false
}

// DefaultStyle returns the key of the first style, or "" for an empty catalog.
func (c *Catalog) DefaultStyle() string {
	if len(c.Styles) == 0 {
		return ""
	}
	return c.Styles[0].Key
}

// DefaultBackground returns the key of the first background mode.
func (c *Catalog) DefaultBackground() string {
	if len(c.Backgrounds) == 0 {
		return ""
	}
	return c.Backgrounds[0].Key
}

// Validate checks that the catalog is usable: at least one style and one
// background, unique non-empty keys, and a phrase for every background.
func (c *Catalog) Validate() error {
	if len(c.Styles) == 0 {
		return fmt.Errorf("catalog %q: no styles", c.Name)
	}
	if len(c.Backgrounds) == 0 {
		return fmt.Errorf("catalog %q: no backgrounds", c.Name)
	}

	seen := make(map[string]bool)
	check := func(kind, key string) error {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("catalog %q: %s with empty key", c.Name, kind)
		}
		id := kind + ":" + key
		if seen[id] {
			return fmt.Errorf("catalog %q: duplicate %s key %q", c.Name, kind, key)
		}
		seen[id] = true
		return nil
	}

	for _, s := range c.Styles {
		if err := check("style", s.Key); err != nil {
			return err
		}
		if s.Value == "" {
			return fmt.Errorf("catalog %q: style %q has no value", c.Name, s.Key)
		}
	}
	for _, e := range c.Effects {
		if err := check("effect", e.Key); err != nil {
			return err
		}
		if e.Value == "" {
			return fmt.Errorf("catalog %q: effect %q has no value", c.Name, e.Key)
		}
	}
	for _, b := range c.Backgrounds {
		if err := check("background", b.Key); err != nil {
			return err
		}
		if b.Phrase == "" {
			return fmt.Errorf("catalog %q: background %q has no phrase", c.Name, b.Key)
		}
	}
	return nil
}

// Named resolves a catalog by built-in name or, failing that, by JSON file path.
// An empty name selects the full catalog.
func Named(name string) (*Catalog, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameFull:
		return Full(), nil
	case NameClassic:
		return Classic(), nil
	}

	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	return LoadFile(name)
}

// LoadFile reads and validates a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = path
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("styles", len(c.Styles)).
		Int("effects", len(c.Effects)).
		Int("backgrounds", len(c.Backgrounds)).
		Msg("Loaded catalog from file")

	return &c, nil
}
