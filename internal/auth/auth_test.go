package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range KeyEnvVars {
		t.Setenv(name, "")
	}
}

func TestGetAPIKeyFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "primary-key")
	t.Setenv("API_KEY", "fallback-key")

	key, err := GetAPIKey()
	if err != nil || key != "primary-key" {
		t.Errorf("GetAPIKey() = %q, %v; want primary-key", key, err)
	}
}

func TestGetAPIKeyFallbackEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("API_KEY", "  fallback-key  ")

	key, err := GetAPIKey()
	if err != nil || key != "fallback-key" {
		t.Errorf("GetAPIKey() = %q, %v; want fallback-key", key, err)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())

	if _, err := GetAPIKey(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGetAPIKeyFromGPG(t *testing.T) {
	clearKeyEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, credentialDir)
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, credentialFile), []byte("encrypted"), 0600)
	os.WriteFile(filepath.Join(dir, passphraseFile), []byte("secret"), 0600)

	var gotArgs []string
	orig := runGPG
	defer func() { runGPG = orig }()
	runGPG = func(args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("gpg-key\n"), nil
	}

	key, err := GetAPIKey()
	if err != nil || key != "gpg-key" {
		t.Fatalf("GetAPIKey() = %q, %v", key, err)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "--passphrase-file") {
		t.Errorf("passphrase file not used: %v", gotArgs)
	}
}

func TestInsecurePassphraseIgnored(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, credentialDir)
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, passphraseFile), []byte("secret"), 0644)

	if _, ok := passphrasePath(); ok {
		t.Error("world-readable passphrase file should be ignored")
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".textfx", "credentials.gpg"); path != want {
		t.Errorf("expected %q, got %q", want, path)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ValidationErrorType
	}{
		{&genai.APIError{Code: 403}, ErrTypeInvalidKey},
		{&genai.APIError{Code: 400}, ErrTypeInvalidKey},
		{&genai.APIError{Code: 429}, ErrTypeQuotaExceeded},
		{&genai.APIError{Code: 503}, ErrTypeNetworkError},
		{&genai.APIError{Code: 418, Message: "teapot"}, ErrTypeUnknown},
		{errors.New("API key not valid. Please pass a valid API key."), ErrTypeInvalidKey},
		{errors.New("Resource exhausted"), ErrTypeQuotaExceeded},
		{errors.New("dial tcp: no such host"), ErrTypeNetworkError},
		{errors.New("something odd"), ErrTypeUnknown},
	}
	for _, tt := range tests {
		got := Classify(tt.err)
		if got.Type != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got.Type, tt.want)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("Classify(%v) does not wrap the cause", tt.err)
		}
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}
