// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/metrics"
)

// Environment variable names.
const (
	EnvPort             = "TEXTFX_PORT"
	EnvImageModel       = "TEXTFX_IMAGE_MODEL"
	EnvGenerator        = "TEXTFX_GENERATOR"
	EnvCatalog          = "TEXTFX_CATALOG"
	EnvOutputDir        = "TEXTFX_OUTPUT_DIR"
	EnvHistory          = "TEXTFX_HISTORY"
	EnvHistoryTable     = "TEXTFX_HISTORY_TABLE"
	EnvHistoryBucket    = "TEXTFX_HISTORY_BUCKET"
	EnvHistoryTTLDays   = "TEXTFX_HISTORY_TTL_DAYS"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvExportBucket     = "TEXTFX_EXPORT_BUCKET"
	EnvExportPrefix     = "TEXTFX_EXPORT_PREFIX"
	EnvEventBus         = "TEXTFX_EVENT_BUS"
	EnvMetricsNamespace = "TEXTFX_METRICS_NAMESPACE"
	EnvReadTimeout      = "TEXTFX_READ_TIMEOUT"
	EnvWriteTimeout     = "TEXTFX_WRITE_TIMEOUT"
	EnvGenerateInterval = "TEXTFX_GENERATE_INTERVAL"
	EnvGenerateBurst    = "TEXTFX_GENERATE_BURST"
	EnvSessionIdle      = "TEXTFX_SESSION_IDLE"
)

// ErrInvalid is wrapped by every validation failure from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting the binaries read from the environment.
type Config struct {
	Port             int
	ImageModel       string
	Generator        string
	Catalog          string
	OutputDir        string
	History          string
	HistoryTable     string
	HistoryBucket    string
	HistoryTTL       time.Duration
	DatabaseURL      string
	ExportBucket     string
	ExportPrefix     string
	EventBus         string
	MetricsNamespace string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	GenerateInterval time.Duration
	GenerateBurst    int
	SessionIdle      time.Duration
}

// Load reads .env (optional) and the environment, then validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Ignoring unreadable .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var errs []error

	c := Config{
		ImageModel:       getenv(EnvImageModel, generator.DefaultModel),
		Generator:        getenv(EnvGenerator, generator.BackendSDK),
		Catalog:          getenv(EnvCatalog, "full"),
		OutputDir:        getenv(EnvOutputDir, "."),
		History:          getenv(EnvHistory, history.BackendMemory),
		HistoryTable:     os.Getenv(EnvHistoryTable),
		DatabaseURL:      os.Getenv(EnvDatabaseURL),
		ExportBucket:     os.Getenv(EnvExportBucket),
		ExportPrefix:     getenv(EnvExportPrefix, "exports"),
		EventBus:         os.Getenv(EnvEventBus),
		MetricsNamespace: getenv(EnvMetricsNamespace, metrics.DefaultNamespace),
	}
	c.HistoryBucket = getenv(EnvHistoryBucket, c.ExportBucket)

	var err error
	if c.Port, err = getenvInt(EnvPort, 8080); err != nil {
		errs = append(errs, err)
	}
	ttlDays, err := getenvInt(EnvHistoryTTLDays, 0)
	if err != nil {
		errs = append(errs, err)
	}
	c.HistoryTTL = time.Duration(ttlDays) * 24 * time.Hour
	if c.ReadTimeout, err = getenvDuration(EnvReadTimeout, 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	// Image generation routinely takes tens of seconds.
	if c.WriteTimeout, err = getenvDuration(EnvWriteTimeout, 180*time.Second); err != nil {
		errs = append(errs, err)
	}

	if c.GenerateInterval, err = getenvDuration(EnvGenerateInterval, 0); err != nil {
		errs = append(errs, err)
	}
	if c.GenerateBurst, err = getenvInt(EnvGenerateBurst, 2); err != nil {
		errs = append(errs, err)
	}
	if c.SessionIdle, err = getenvDuration(EnvSessionIdle, 2*time.Hour); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.Validate())
	if err := errors.Join(errs...); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks backend names and the settings each backend requires.
func (c Config) Validate() error {
	var errs []error
	switch c.Generator {
	case generator.BackendSDK, generator.BackendREST:
	default:
		errs = append(errs, fmt.Errorf("%w: %s must be %q or %q, got %q",
			ErrInvalid, EnvGenerator, generator.BackendSDK, generator.BackendREST, c.Generator))
	}

	switch c.History {
	case history.BackendMemory:
	case history.BackendDynamo:
		if c.HistoryTable == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required for the dynamo history", ErrInvalid, EnvHistoryTable))
		}
		if c.HistoryBucket == "" {
			errs = append(errs, fmt.Errorf("%w: %s or %s is required for the dynamo history",
				ErrInvalid, EnvHistoryBucket, EnvExportBucket))
		}
	case history.BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required for the postgres history", ErrInvalid, EnvDatabaseURL))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown %s %q", ErrInvalid, EnvHistory, c.History))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %s out of range: %d", ErrInvalid, EnvPort, c.Port))
	}
	return errors.Join(errs...)
}

// NeedsAWS reports whether any configured backend talks to AWS.
func (c Config) NeedsAWS() bool {
	return c.History == history.BackendDynamo || c.ExportBucket != "" || c.EventBus != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return d, nil
}
