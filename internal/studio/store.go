package studio

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/slicken/TextFx-Studio/internal/catalog"
)

// Rand is the random source used by Randomize.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Store is the configuration store of a single studio session. It is guarded
// by a mutex so an HTTP session can be shared between handlers, but it models
// one logical writer: the interactive user.
type Store struct {
	mu   sync.Mutex
	cfg  TextConfig
	rand Rand
}

// Option configures a Store.
type Option func(*Store)

// WithRand sets the random source used by Randomize.
func WithRand(r Rand) Option {
	return func(s *Store) { s.rand = r }
}

// NewStore creates a store initialised to the catalog defaults.
func NewStore(c *catalog.Catalog, opts ...Option) *Store {
	s := &Store{rand: globalRand{}}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = defaults(c)
	return s
}

func defaults(c *catalog.Catalog) TextConfig {
	return TextConfig{
		Style:      c.DefaultStyle(),
		Effects:    []string{},
		Background: c.DefaultBackground(),
		Creativity: DefaultCreativity,
		Catalog:    c,
	}
}

// Catalog returns the catalog the store resolves presets against.
func (s *Store) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Catalog
}

// Snapshot returns a deep copy of the current selection state.
func (s *Store) Snapshot() TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.clone()
}

// SetText stores the text, normalised to NFC and cut to MaxTextRunes runes.
// Emptiness is not checked here; see TextConfig.Validate.
func (s *Store) SetText(text string) TextConfig {
	text = norm.NFC.String(text)
	if r := []rune(text); len(r) > MaxTextRunes {
		text = string(r[:MaxTextRunes])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Text = text
	return s.cfg.clone()
}

// SelectStyle picks a style preset. Picking a preset leaves custom-style mode,
// so the custom style text is cleared.
func (s *Store) SelectStyle(key string) (TextConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cfg.Catalog.Style(key); !ok {
		return s.cfg.clone(), fmt.Errorf("%w: style %q", ErrUnknownPreset, key)
	}
	s.cfg.Style = key
	s.cfg.CustomStyle = ""
	return s.cfg.clone(), nil
}

// SetCustomStyle sets the free-text style. When non-blank it overrides the
// preset for prompt purposes while the preset stays selected.
func (s *Store) SetCustomStyle(text string) TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.CustomStyle = text
	return s.cfg.clone()
}

// ToggleEffect adds the effect if absent and removes it if present.
func (s *Store) ToggleEffect(key string) (TextConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cfg.Catalog.Effect(key); !ok {
		return s.cfg.clone(), fmt.Errorf("%w: effect %q", ErrUnknownPreset, key)
	}
	if i := slices.Index(s.cfg.Effects, key); i >= 0 {
		s.cfg.Effects = slices.Delete(s.cfg.Effects, i, i+1)
	} else {
		s.cfg.Effects = append(s.cfg.Effects, key)
	}
	return s.cfg.clone(), nil
}

// SetCustomEffect sets the free-text effect appended after the presets.
func (s *Store) SetCustomEffect(text string) TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.CustomEffect = text
	return s.cfg.clone()
}

// ClearCustomEffect removes the free-text effect.
func (s *Store) ClearCustomEffect() TextConfig {
	return s.SetCustomEffect("")
}

// SelectBackground picks a background mode and leaves custom-background mode.
func (s *Store) SelectBackground(key string) (TextConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cfg.Catalog.Background(key); !ok {
		return s.cfg.clone(), fmt.Errorf("%w: background %q", ErrUnknownPreset, key)
	}
	s.cfg.Background = key
	s.cfg.CustomBackground = ""
	return s.cfg.clone(), nil
}

// SetCustomBackground sets the free-text background description.
func (s *Store) SetCustomBackground(text string) TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.CustomBackground = text
	return s.cfg.clone()
}

// SetCreativity sets the creativity level. Values outside [1,5] are rejected
// and leave the current level untouched.
func (s *Store) SetCreativity(level int) (TextConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < MinCreativity || level > MaxCreativity {
		return s.cfg.clone(), fmt.Errorf("%w: %d", ErrCreativityRange, level)
	}
	s.cfg.Creativity = level
	return s.cfg.clone(), nil
}

// Randomize picks a random style preset, a random background preset, and up to
// two distinct random effects. All custom fields are cleared, otherwise stale
// custom text would override the random presets.
func (s *Store) Randomize() TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cfg.Catalog
	s.cfg.Style = c.Styles[s.rand.IntN(len(c.Styles))].Key
	s.cfg.Background = c.Backgrounds[s.rand.IntN(len(c.Backgrounds))].Key

	n := min(s.rand.IntN(3), len(c.Effects))
	pool := make([]string, len(c.Effects))
	for i, e := range c.Effects {
		pool[i] = e.Key
	}
	effects := make([]string, 0, n)
	for i := 0; i < n; i++ {
		j := i + s.rand.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		effects = append(effects, pool[i])
	}
	s.cfg.Effects = effects

	s.cfg.CustomStyle = ""
	s.cfg.CustomEffect = ""
	s.cfg.CustomBackground = ""

	log.Debug().
		Str("style", s.cfg.Style).
		Str("background", s.cfg.Background).
		Strs("effects", effects).
		Msg("Randomized studio selection")

	return s.cfg.clone()
}

// Reset restores the catalog defaults, keeping the current text.
func (s *Store) Reset() TextConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.cfg.Text
	s.cfg = defaults(s.cfg.Catalog)
	s.cfg.Text = text
	return s.cfg.clone()
}

// Selection is a complete selection given in one go, as the CLI and MCP
// tools receive it. Empty keys and a zero creativity keep the defaults.
type Selection struct {
	Text             string
	Style            string
	CustomStyle      string
	Effects          []string
	CustomEffect     string
	Background       string
	CustomBackground string
	Creativity       int
}

// Apply resets the store to the catalog defaults and applies sel. Repeated
// effect keys are applied once. On error the store keeps whatever was applied
// before the failing field.
func (s *Store) Apply(sel Selection) (TextConfig, error) {
	s.Reset()
	s.SetText(sel.Text)
	if sel.Style != "" {
		if _, err := s.SelectStyle(sel.Style); err != nil {
			return TextConfig{}, err
		}
	}
	s.SetCustomStyle(sel.CustomStyle)

	seen := make(map[string]bool, len(sel.Effects))
	for _, key := range sel.Effects {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := s.ToggleEffect(key); err != nil {
			return TextConfig{}, err
		}
	}
	s.SetCustomEffect(sel.CustomEffect)

	if sel.Background != "" {
		if _, err := s.SelectBackground(sel.Background); err != nil {
			return TextConfig{}, err
		}
	}
	s.SetCustomBackground(sel.CustomBackground)

	if sel.Creativity != 0 {
		if _, err := s.SetCreativity(sel.Creativity); err != nil {
			return TextConfig{}, err
		}
	}
	return s.Snapshot(), nil
}
