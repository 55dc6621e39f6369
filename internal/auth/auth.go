// Package auth locates the Gemini API key and checks it against the API.
// The key itself is never logged or inspected beyond emptiness.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".textfx"
	credentialFile = "credentials.gpg"
	passphraseFile = ".gpg-passphrase"
)

// KeyEnvVars are checked in order before the GPG file.
var KeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// ErrNoAPIKey is returned when no source yields a key.
var ErrNoAPIKey = errors.New("API key not found")

// runGPG executes gpg with args and returns stdout.
var runGPG = func(args ...string) ([]byte, error) {
	return exec.Command("gpg", args...).Output()
}

// GetAPIKey retrieves the Gemini API key. Priority order:
//  1. GEMINI_API_KEY, then API_KEY
//  2. GPG-encrypted file at ~/.textfx/credentials.gpg
func GetAPIKey() (string, error) {
	for _, name := range KeyEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			log.Debug().Str("source", name).Msg("Using API key from environment variable")
			return key, nil
		}
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No API key in environment or GPG file")
	return "", fmt.Errorf("%w: set GEMINI_API_KEY or store it in ~/%s/%s", ErrNoAPIKey, credentialDir, credentialFile)
}

func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); err != nil {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	args := []string{"--decrypt", "--quiet"}
	if pp, ok := passphrasePath(); ok {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", pp)
	}
	args = append(args, credPath)

	output, err := runGPG(args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// passphrasePath returns the owner-only passphrase file next to the
// credentials, if there is one. Files readable by group or others are ignored.
func passphrasePath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, credentialDir, passphraseFile)
	fi, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if mode := fi.Mode().Perm(); mode&0077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return "", false
	}
	return path, true
}
