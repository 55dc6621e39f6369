package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/catalog"
	"github.com/slicken/TextFx-Studio/internal/config"
	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func connect(t *testing.T, gen generator.Generator) (*mcp.ClientSession, *Server) {
	t.Helper()
	cfg := config.Config{
		Generator:        generator.BackendREST,
		ImageModel:       generator.DefaultModel,
		Catalog:          "full",
		OutputDir:        t.TempDir(),
		History:          history.BackendMemory,
		MetricsNamespace: metrics.DefaultNamespace,
	}
	a, err := app.New(context.Background(), cfg, "", app.WithGenerator(gen))
	if err != nil {
		t.Fatal(err)
	}
	srv := New(a, "test")

	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()
	if _, err := srv.MCP().Connect(ctx, serverT, nil); err != nil {
		t.Fatal(err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs, srv
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t, nil)
	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_catalog", "compile_prompt", "generate_text_image"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestCompilePromptTool(t *testing.T) {
	cs, _ := connect(t, nil)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "compile_prompt",
		Arguments: map[string]any{
			"text":       "HELLO",
			"style":      "gothic",
			"effects":    []string{"glow", "glow"},
			"background": "space",
			"creativity": 5,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %v", res.Content)
	}
	var out promptOutput
	data, _ := json.Marshal(res.StructuredContent)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	text := out.Prompt
	for _, want := range []string{`"HELLO"`, "with effects: Radiant Glow.", "deep space", "masterpiece"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %s", want, text)
		}
	}
}

func TestCompilePromptToolErrors(t *testing.T) {
	cs, _ := connect(t, nil)
	for _, args := range []map[string]any{
		{"text": "   "},
		{"text": "HI", "style": "nope"},
		{"text": "HI", "creativity": 9},
	} {
		res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "compile_prompt", Arguments: args})
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
}

func TestGenerateTool(t *testing.T) {
	var gotPrompt string
	gen := generator.Func(func(_ context.Context, req generator.Request) (*generator.Image, error) {
		gotPrompt = req.Prompt
		return &generator.Image{Data: []byte("img"), MIMEType: "image/png"}, nil
	})
	cs, srv := connect(t, gen)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "generate_text_image",
		Arguments: map[string]any{"text": "HELLO", "save": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %v", res.Content)
	}
	img, ok := res.Content[0].(*mcp.ImageContent)
	if !ok || string(img.Data) != "img" || img.MIMEType != "image/png" {
		t.Errorf("unexpected image content %#v", res.Content[0])
	}
	if !strings.Contains(gotPrompt, `"HELLO"`) {
		t.Errorf("prompt = %q", gotPrompt)
	}

	list, _ := srv.session.History().List(context.Background())
	if len(list) != 1 {
		t.Errorf("history has %d images", len(list))
	}
}

func TestGenerateToolFailure(t *testing.T) {
	gen := generator.Func(func(context.Context, generator.Request) (*generator.Image, error) {
		return nil, errors.New("quota")
	})
	cs, _ := connect(t, gen)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "generate_text_image",
		Arguments: map[string]any{"text": "HELLO"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

func TestListCatalogTool(t *testing.T) {
	cs, _ := connect(t, nil)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "list_catalog", Arguments: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	var out catalogOutput
	data, _ := json.Marshal(res.StructuredContent)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	full := catalog.Full()
	if out.Name != full.Name || len(out.Styles) != len(full.Styles) || len(out.Backgrounds) != len(full.Backgrounds) {
		t.Errorf("unexpected catalog: %s with %d styles, %d backgrounds", out.Name, len(out.Styles), len(out.Backgrounds))
	}
}
