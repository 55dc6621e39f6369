package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/auth"
	"github.com/slicken/TextFx-Studio/internal/generator"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
}

var keyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the configured API key works",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		apiKey, err := auth.GetAPIKey()
		if err != nil {
			return describeKeyError(&auth.ValidationError{Type: auth.ErrTypeNoKey, Message: "no API key", Err: err})
		}
		g, err := generator.NewGenAI(ctx, apiKey, cfg.ImageModel)
		if err != nil {
			return err
		}
		if err := auth.ValidateAPIKey(ctx, g.Client(), cfg.MetricsNamespace); err != nil {
			return describeKeyError(err)
		}
		fmt.Println("API key OK")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyCheckCmd)
}

// describeKeyError prints the remedy for a validation failure.
func describeKeyError(err error) error {
	var validationErr *auth.ValidationError
	if !errors.As(err, &validationErr) {
		log.Error().Err(err).Msg("Unexpected error during API key validation")
		return err
	}
	switch validationErr.Type {
	case auth.ErrTypeNoKey:
		return userError("No API key configured. Set GEMINI_API_KEY or store it in ~/.textfx/credentials.gpg")
	case auth.ErrTypeInvalidKey:
		return userError("Invalid API key: %s", validationErr.Message)
	case auth.ErrTypeNetworkError:
		return userError("Network error. Please check your internet connection")
	case auth.ErrTypeQuotaExceeded:
		return userError("API quota exceeded. Please try again later or check your usage limits")
	default:
		return userError("API key validation failed: %v", err)
	}
}
