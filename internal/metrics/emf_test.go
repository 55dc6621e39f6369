package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })
	functionName = ""
	return &buf
}

func TestNewAddsFunctionName(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "textfx-api"
	defer func() { functionName = "" }()

	r := New("Studio")
	if r.dimensions["FunctionName"] != "textfx-api" {
		t.Errorf("expected FunctionName dimension, got %v", r.dimensions)
	}
}

func TestNewDefaultNamespace(t *testing.T) {
	if r := New(""); r.namespace != DefaultNamespace {
		t.Errorf("expected %s, got %s", DefaultNamespace, r.namespace)
	}
}

func TestFlushOutput(t *testing.T) {
	buf := capture(t)

	New("TextFxStudio").
		Dimension("Result", "success").
		Metric("GenerationMs", 1234.5, UnitMilliseconds).
		Count("GenerationResult").
		Property("model", "gemini-2.5-flash-image").
		Flush()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected a single line, got %q", buf.String())
	}

	aws, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive")
	}
	if _, ok := aws["Timestamp"]; !ok {
		t.Error("missing Timestamp")
	}
	cw := aws["CloudWatchMetrics"].([]any)[0].(map[string]any)
	if cw["Namespace"] != "TextFxStudio" {
		t.Errorf("unexpected namespace %v", cw["Namespace"])
	}

	if doc["Result"] != "success" {
		t.Errorf("expected Result=success, got %v", doc["Result"])
	}
	if doc["GenerationMs"] != 1234.5 {
		t.Errorf("expected GenerationMs=1234.5, got %v", doc["GenerationMs"])
	}
	if doc["GenerationResult"] != float64(1) {
		t.Errorf("expected GenerationResult=1, got %v", doc["GenerationResult"])
	}
	if doc["model"] != "gemini-2.5-flash-image" {
		t.Errorf("expected model property, got %v", doc["model"])
	}
}

func TestFlushEmpty(t *testing.T) {
	buf := capture(t)
	New("Test").Dimension("Result", "x").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %s", buf.String())
	}
}

func TestRecordGeneration(t *testing.T) {
	tests := []struct {
		name      string
		result    string
		bytes     int
		wantBytes bool
	}{
		{"success", ResultSuccess, 2048, true},
		{"no image", ResultNoImage, 0, false},
		{"error", ResultError, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			RecordGeneration("", "m", tt.result, 1500*time.Millisecond, tt.bytes)

			var doc map[string]any
			if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
				t.Fatal(err)
			}
			if doc["Result"] != tt.result {
				t.Errorf("Result = %v, want %s", doc["Result"], tt.result)
			}
			if doc["GenerationMs"] != float64(1500) {
				t.Errorf("GenerationMs = %v", doc["GenerationMs"])
			}
			if _, ok := doc["ImageBytes"]; ok != tt.wantBytes {
				t.Errorf("ImageBytes present = %v, want %v", ok, tt.wantBytes)
			}
		})
	}
}
