// Package generator talks to the Gemini image model. Two backends share the
// Generator interface: GenAI uses the google.golang.org/genai SDK and REST
// calls the generateContent endpoint directly.
package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"unicode/utf8"
)

// DefaultModel is the image model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image"

// AspectSquare is the only aspect ratio the studio requests.
const AspectSquare = "1:1"

// Backend names accepted by New.
const (
	BackendSDK  = "sdk"
	BackendREST = "rest"
)

// ErrNoImage is returned when the model answers successfully but the response
// carries no inline image part.
var ErrNoImage = errors.New("no image returned in response")

// ErrUnknownBackend is returned by New for unrecognised backend names.
var ErrUnknownBackend = errors.New("unknown generator backend")

// Request is a single image generation call.
type Request struct {
	Prompt      string
	AspectRatio string
}

// Image is the first inline image returned by the model.
type Image struct {
	Data     []byte
	MIMEType string
	// Text is any commentary the model returned alongside the image.
	Text string
}

// DataURL encodes the image as a data: URL.
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Generator produces one image per request. Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Image, error)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req Request) (*Image, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (*Image, error) {
	return f(ctx, req)
}

// New builds the named backend.
func New(ctx context.Context, backend, apiKey, model string) (Generator, error) {
	switch backend {
	case "", BackendSDK:
		return NewGenAI(ctx, apiKey, model)
	case BackendREST:
		return NewREST(apiKey, WithModel(model)), nil
	default:
		return nil, ErrUnknownBackend
	}
}

func orDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

func aspectOrSquare(ratio string) string {
	if ratio == "" {
		return AspectSquare
	}
	return ratio
}

// truncateString cuts s to at most maxLen bytes on a rune boundary,
// appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
