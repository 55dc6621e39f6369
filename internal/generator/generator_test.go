package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"google.golang.org/genai"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func imageResponse(mime string, data []byte, text string) string {
	parts := []map[string]any{}
	if text != "" {
		parts = append(parts, map[string]any{"text": text})
	}
	if data != nil {
		parts = append(parts, map[string]any{"inlineData": map[string]any{
			"mimeType": mime,
			"data":     base64.StdEncoding.EncodeToString(data),
		}})
	}
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{"content": map[string]any{"role": "model", "parts": parts}}},
	})
	return string(b)
}

func TestRESTGenerate(t *testing.T) {
	var got geminiRequest
	var path, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		io.WriteString(w, imageResponse("image/png", pngBytes, "here you go"))
	}))
	defer srv.Close()

	g := NewREST("secret", WithBaseURL(srv.URL))
	img, err := g.Generate(context.Background(), Request{Prompt: "draw HELLO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/models/"+DefaultModel+":generateContent" {
		t.Errorf("unexpected path %q", path)
	}
	if key != "secret" {
		t.Errorf("API key not sent, got %q", key)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "draw HELLO" {
		t.Errorf("unexpected request contents: %+v", got.Contents)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.ImageConfig == nil ||
		got.GenerationConfig.ImageConfig.AspectRatio != AspectSquare {
		t.Errorf("expected 1:1 aspect ratio, got %+v", got.GenerationConfig)
	}
	if string(img.Data) != string(pngBytes) || img.MIMEType != "image/png" || img.Text != "here you go" {
		t.Errorf("unexpected image: %+v", img)
	}
	if !strings.HasPrefix(img.DataURL(), "data:image/png;base64,") {
		t.Errorf("unexpected data URL %q", img.DataURL())
	}
}

func TestRESTNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, imageResponse("", nil, "I cannot draw that"))
	}))
	defer srv.Close()

	_, err := NewREST("k", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
}

func TestRESTStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota"}}`)
	}))
	defer srv.Close()

	_, err := NewREST("k", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected APIError 429, got %v", err)
	}
}

func TestRESTModelOverride(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, imageResponse("image/jpeg", pngBytes, ""))
	}))
	defer srv.Close()

	g := NewREST("k", WithBaseURL(srv.URL), WithModel("gemini-3-pro-image-preview"))
	img, err := g.Generate(context.Background(), Request{Prompt: "x", AspectRatio: "16:9"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(path, "gemini-3-pro-image-preview") {
		t.Errorf("model override ignored: %q", path)
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", img.MIMEType)
	}
}

func TestGenAIGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, imageResponse("image/png", pngBytes, ""))
	}))
	defer srv.Close()

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "k",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatal(err)
	}

	img, err := NewGenAIFromClient(client, "").Generate(context.Background(), Request{Prompt: "draw HELLO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img.Data) != string(pngBytes) {
		t.Errorf("unexpected image bytes %v", img.Data)
	}
	cfg, _ := body["generationConfig"].(map[string]any)
	imageCfg, _ := cfg["imageConfig"].(map[string]any)
	if imageCfg["aspectRatio"] != AspectSquare {
		t.Errorf("expected aspect ratio in request, got %v", body["generationConfig"])
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), "carrier-pigeon", "k", ""); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	var g Generator = Func(func(ctx context.Context, req Request) (*Image, error) {
		return &Image{Data: []byte(req.Prompt), MIMEType: "image/png"}, nil
	})
	img, _ := g.Generate(context.Background(), Request{Prompt: "hi"})
	if string(img.Data) != "hi" {
		t.Errorf("unexpected data %q", img.Data)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"café", 4, "caf..."},
		{"日本語", 4, "日..."},
		{"日本語", 2, "..."},
	}
	for _, tt := range tests {
		got := truncateString(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateString(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}
