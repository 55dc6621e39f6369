package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/slicken/TextFx-Studio/internal/httpapi"
	"github.com/slicken/TextFx-Studio/internal/logging"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the studio JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (default TEXTFX_PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	initStart := time.Now()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.Config.Port
	if portFlag != 0 {
		port = portFlag
	}

	api := httpapi.New(a)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      api.Handler(),
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	logging.NewStartupLogger("textfx-serve").
		Version(version).
		Config("port", fmt.Sprint(port)).
		Config("model", a.Config.ImageModel).
		Config("catalog", a.Catalog.Name).
		Config("history", a.Config.History).
		Config("session_idle", a.Config.SessionIdle.String()).
		DynamoTable("history", a.Config.HistoryTable).
		S3Bucket("export", a.Config.ExportBucket).
		EventBus("events", a.Config.EventBus).
		InitDuration(time.Since(initStart)).
		Log()
	fmt.Printf("\n  TextFx Studio API: http://localhost:%d/api\n\n", port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
