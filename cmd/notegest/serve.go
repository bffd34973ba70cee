package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/api"
	"github.com/dgallion1/notegest/internal/pipeline"
)

func newServeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction API",
		Long: `Serve accepts notebook uploads on POST /api/extract, runs them on a
bounded worker pool and serves the resulting exports. Requests under /api
need "Authorization: Bearer <server.api_key>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
}

func runServe(cmd *cobra.Command, f *flags) error {
	cfg, log, err := f.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	if cfg.Server.APIKey == "" {
		return errors.New("server.api_key is required (NOTEGEST_SERVER_API_KEY)")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.Server.WorkerCount,
		MaxQueueSize: cfg.Server.MaxQueueSize,
		JobTTL:       cfg.Server.JobTTL,
	}, rt.pipeline, rt.source, log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewServer(orch, rt.stats, cfg.Export.OutputDir, log, cfg.Server),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting notegest", zap.String("port", cfg.Server.Port), zap.String("output_dir", cfg.Export.OutputDir))
	err = httpServer.ListenAndServe()
	orch.Stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
