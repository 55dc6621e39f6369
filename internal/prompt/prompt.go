// Package prompt compiles a studio.TextConfig snapshot into the natural-language
// prompt sent to the image model.
//
// Compile is pure: the same snapshot always yields the same string, and the
// snapshot is never modified.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slicken/TextFx-Studio/internal/studio"
)

// Creativity phrasing constants. The leading space is part of the template.
const (
	ExpressivePhrase = " highly artistic, creative, expressive, masterpiece, cinematic lighting"
	PrecisePhrase    = " clean, centered, legible, high definition, professional design"
)

// QualitySuffix closes every prompt.
const QualitySuffix = "8k resolution, detailed texture."

var (
	// ErrUnknownBackground means a background key reached the compiler that the
	// snapshot's catalog does not define. This is a programming error.
	ErrUnknownBackground = errors.New("unknown background mode")
	// ErrUnknownStyle means a style key is not in the catalog and no custom
	// style overrides it.
	ErrUnknownStyle = errors.New("unknown style")
	// ErrUnknownEffect means a selected effect key is not in the catalog.
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrNoCatalog means the snapshot was built without a catalog.
	ErrNoCatalog = errors.New("config has no catalog")
)

// Compile builds the prompt for cfg. The only failures are empty text and
// preset keys the catalog does not know. Unknown keys are never replaced by a
// default phrase.
func Compile(cfg studio.TextConfig) (string, error) {
	if strings.TrimSpace(cfg.Text) == "" {
		return "", studio.ErrEmptyText
	}
	if cfg.Catalog == nil {
		return "", ErrNoCatalog
	}

	style, err := styleClause(cfg)
	if err != nil {
		return "", err
	}
	effects, err := effectsClause(cfg)
	if err != nil {
		return "", err
	}
	background, err := backgroundClause(cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`A professional high-quality typography image of the text "`)
	b.WriteString(cfg.Text)
	b.WriteString(`". Style: `)
	b.WriteString(style)
	b.WriteString(effects)
	b.WriteString(". ")
	b.WriteString(background)
	b.WriteString(". The text should be the main focus, ")
	b.WriteString(creativityClause(cfg))
	b.WriteString(". ")
	b.WriteString(QualitySuffix)
	return b.String(), nil
}

// MustCompile is like Compile but panics on error. It is meant for callers
// that have already validated the snapshot.
func MustCompile(cfg studio.TextConfig) string {
	p, err := Compile(cfg)
	if err != nil {
		panic(fmt.Sprintf("prompt: %v", err))
	}
	return p
}

func styleClause(cfg studio.TextConfig) (string, error) {
	var preset string
	if !studio.HasCustom(cfg.CustomStyle) {
		s, ok := cfg.Catalog.Style(cfg.Style)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownStyle, cfg.Style)
		}
		preset = s.Value
	}
	return studio.Resolve(preset, cfg.CustomStyle), nil
}

// effectsClause lists preset effects in selection order followed by the custom
// effect. With nothing selected the clause is omitted entirely.
func effectsClause(cfg studio.TextConfig) (string, error) {
	labels := make([]string, 0, len(cfg.Effects)+1)
	for _, key := range cfg.Effects {
		e, ok := cfg.Catalog.Effect(key)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownEffect, key)
		}
		labels = append(labels, e.Value)
	}
	if studio.HasCustom(cfg.CustomEffect) {
		labels = append(labels, cfg.CustomEffect)
	}
	if len(labels) == 0 {
		return "", nil
	}
	return " with effects: " + strings.Join(labels, ", "), nil
}

func backgroundClause(cfg studio.TextConfig) (string, error) {
	if studio.HasCustom(cfg.CustomBackground) {
		return "on a " + cfg.CustomBackground, nil
	}
	bg, ok := cfg.Catalog.Background(cfg.Background)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBackground, cfg.Background)
	}
	return bg.Phrase, nil
}

func creativityClause(cfg studio.TextConfig) string {
	if cfg.Expressive() {
		return ExpressivePhrase
	}
	return PrecisePhrase
}
