package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/config"
	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/metrics"
	"github.com/slicken/TextFx-Studio/internal/session"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testApp(t *testing.T, gen generator.Generator) *app.App {
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
	return a
}

func runREPL(t *testing.T, gen generator.Generator, script string) string {
	t.Helper()
	a := testApp(t, gen)
	var out bytes.Buffer
	if err := repl(context.Background(), a, a.NewSession("test"), strings.NewReader(script), &out); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestREPLGenerateAndExport(t *testing.T) {
	gen := generator.Func(func(context.Context, generator.Request) (*generator.Image, error) {
		return &generator.Image{Data: []byte("img"), MIMEType: "image/png"}, nil
	})
	out := runREPL(t, gen, "text HELLO\nstyle gothic\neffect glow\ngenerate\nhistory\nexport\nq\n")

	for _, want := range []string{`text: "HELLO"`, "effects: [glow]", "generated ", `"HELLO"`, "textfx-"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestREPLMessages(t *testing.T) {
	gen := generator.Func(func(context.Context, generator.Request) (*generator.Image, error) {
		return nil, generator.ErrNoImage
	})
	out := runREPL(t, gen, "generate\ntext HI\ngenerate\nstyle nope\ncreativity 9\nexport\nbogus\n")

	for _, want := range []string{
		session.MessageEmptyText,
		session.MessageFailed,
		"unknown preset",
		"out of range",
		"Nothing to export yet.",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestREPLShowPrompt(t *testing.T) {
	out := runREPL(t, nil, "text HELLO\nbg space\nshow\n")
	if !strings.Contains(out, "deep space background") {
		t.Errorf("prompt not shown:\n%s", out)
	}
}

func TestREPLKeepsFreeTextVerbatim(t *testing.T) {
	a := testApp(t, generator.Func(func(context.Context, generator.Request) (*generator.Image, error) {
		return nil, generator.ErrNoImage
	}))
	sess := a.NewSession("test")
	script := "text   HI  \ncustom-style  chalk \ncustom-effect drip  \ncustom-bg  brick wall\n  style gothic  \n"
	if err := repl(context.Background(), a, sess, strings.NewReader(script), io.Discard); err != nil {
		t.Fatal(err)
	}

	cfg := sess.Store().Snapshot()
	if cfg.Text != "  HI  " {
		t.Errorf("text = %q", cfg.Text)
	}
	if cfg.CustomStyle != " chalk " || cfg.CustomEffect != "drip  " || cfg.CustomBackground != " brick wall" {
		t.Errorf("custom fields not verbatim: %+v", cfg)
	}
	if cfg.Style != "gothic" {
		t.Errorf("style = %q", cfg.Style)
	}
}
