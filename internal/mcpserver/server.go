// Package mcpserver exposes the studio as Model Context Protocol tools so an
// agent can browse presets, preview prompts, and generate images.
package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/catalog"
	"github.com/slicken/TextFx-Studio/internal/prompt"
	"github.com/slicken/TextFx-Studio/internal/session"
	"github.com/slicken/TextFx-Studio/internal/studio"
)

// Owner is the history owner of images generated over MCP.
const Owner = "mcp"

// Server holds one studio session shared by all tool calls. Generation calls
// are serialized on it.
type Server struct {
	app     *app.App
	server  *mcp.Server
	mu      sync.Mutex
	session *session.Session
}

// New registers the studio tools on a new MCP server.
func New(a *app.App, version string) *Server {
	s := &Server{
		app:     a,
		server:  mcp.NewServer(&mcp.Implementation{Name: "textfx-studio", Version: version}, nil),
		session: a.NewSession(Owner),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_catalog",
		Description: "List the available style, effect, and background presets.",
	}, s.listCatalog)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compile_prompt",
		Description: "Build the image prompt for a text and preset selection without generating.",
	}, s.compilePrompt)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_text_image",
		Description: "Generate a square typography image of the given text.",
	}, s.generate)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *mcp.Server { return s.server }

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Selection is the tool input describing what to render.
type Selection struct {
	Text             string   `json:"text" jsonschema:"the text to render, at most 30 characters"`
	Style            string   `json:"style,omitempty" jsonschema:"style preset key"`
	CustomStyle      string   `json:"customStyle,omitempty" jsonschema:"free-text style, overrides the preset"`
	Effects          []string `json:"effects,omitempty" jsonschema:"effect preset keys in order"`
	CustomEffect     string   `json:"customEffect,omitempty" jsonschema:"free-text effect appended after the presets"`
	Background       string   `json:"background,omitempty" jsonschema:"background preset key"`
	CustomBackground string   `json:"customBackground,omitempty" jsonschema:"free-text background, overrides the preset"`
	Creativity       int      `json:"creativity,omitempty" jsonschema:"1 (precise) to 5 (expressive), default 3"`
}

func (sel Selection) toStudio() studio.Selection {
	return studio.Selection{
		Text:             sel.Text,
		Style:            sel.Style,
		CustomStyle:      sel.CustomStyle,
		Effects:          sel.Effects,
		CustomEffect:     sel.CustomEffect,
		Background:       sel.Background,
		CustomBackground: sel.CustomBackground,
		Creativity:       sel.Creativity,
	}
}

type catalogOutput struct {
	Name        string               `json:"name"`
	Styles      []catalog.Style      `json:"styles"`
	Effects     []catalog.Effect     `json:"effects"`
	Backgrounds []catalog.Background `json:"backgrounds"`
}

func (s *Server) listCatalog(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, catalogOutput, error) {
	c := s.app.Catalog
	return nil, catalogOutput{
		Name:        c.Name,
		Styles:      c.Styles,
		Effects:     c.Effects,
		Backgrounds: c.Backgrounds,
	}, nil
}

type promptOutput struct {
	Prompt string `json:"prompt"`
}

func (s *Server) compilePrompt(_ context.Context, _ *mcp.CallToolRequest, sel Selection) (*mcp.CallToolResult, promptOutput, error) {
	cfg, err := studio.NewStore(s.app.Catalog).Apply(sel.toStudio())
	if err != nil {
		return nil, promptOutput{}, err
	}
	p, err := prompt.Compile(cfg)
	if err != nil {
		return nil, promptOutput{}, err
	}
	return nil, promptOutput{Prompt: p}, nil
}

type generateInput struct {
	Selection
	Save bool `json:"save,omitempty" jsonschema:"also export the image and return its location"`
}

type generateOutput struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	MIMEType string `json:"mimeType"`
	Bytes    int    `json:"bytes"`
	Location string `json:"location,omitempty"`
}

func (s *Server) generate(ctx context.Context, _ *mcp.CallToolRequest, in generateInput) (*mcp.CallToolResult, generateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.session.Store().Apply(in.Selection.toStudio()); err != nil {
		return nil, generateOutput{}, err
	}
	img, err := s.session.Generate(ctx)
	if err != nil {
		return nil, generateOutput{}, err
	}

	out := generateOutput{
		ID:       img.ID,
		Prompt:   img.Prompt,
		MIMEType: img.MIMEType,
		Bytes:    len(img.Data),
	}
	if in.Save {
		if out.Location, err = s.app.Exporter.Export(ctx, img); err != nil {
			return nil, generateOutput{}, fmt.Errorf("image generated but export failed: %w", err)
		}
	}

	res := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: img.Data, MIMEType: img.MIMEType},
			&mcp.TextContent{Text: img.Prompt},
		},
	}
	return res, out, nil
}
