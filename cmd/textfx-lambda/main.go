// Command textfx-lambda serves the studio API from AWS Lambda behind an API
// Gateway HTTP API. Sessions live as long as the warm container; history is
// kept in DynamoDB or PostgreSQL so it survives cold starts.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/config"
	"github.com/slicken/TextFx-Studio/internal/httpapi"
	"github.com/slicken/TextFx-Studio/internal/lambdaboot"
	"github.com/slicken/TextFx-Studio/internal/logging"
)

var version = "dev"

var (
	handler            http.Handler
	originVerifySecret string
)

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	clients, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AWS")
	}
	if err := lambdaboot.LoadGeminiKey(ctx, clients.SSM); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Gemini API key")
	}

	a, err := app.New(ctx, cfg, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build studio")
	}
	handler = httpapi.New(a).Handler()

	originVerifySecret = os.Getenv("ORIGIN_VERIFY_SECRET")
	if originVerifySecret == "" {
		log.Warn().Msg("ORIGIN_VERIFY_SECRET not set, origin verification disabled")
	}

	lambdaboot.StartupLog("textfx-lambda", initStart).
		Version(version).
		Config("model", cfg.ImageModel).
		Config("catalog", a.Catalog.Name).
		Config("history", cfg.History).
		DynamoTable("history", cfg.HistoryTable).
		S3Bucket("export", cfg.ExportBucket).
		SSMParam("apiKey", lambdaboot.APIKeyParam()).
		EventBus("events", cfg.EventBus).
		Feature("originVerify", originVerifySecret != "").
		Log()
}

// withOriginVerify rejects requests that did not come through CloudFront,
// which injects the x-origin-verify header.
func withOriginVerify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if originVerifySecret != "" && r.Header.Get("x-origin-verify") != originVerifySecret {
			log.Warn().Str("path", r.URL.Path).Msg("Blocked request: missing or invalid x-origin-verify header")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	adapter := httpadapter.NewV2(withOriginVerify(handler))
	lambda.Start(adapter.ProxyWithContext)
}
