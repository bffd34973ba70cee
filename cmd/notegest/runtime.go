package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/export"
	"github.com/dgallion1/notegest/internal/extract"
	"github.com/dgallion1/notegest/internal/onenote"
	"github.com/dgallion1/notegest/internal/parser"
	"github.com/dgallion1/notegest/internal/pipeline"
	"github.com/dgallion1/notegest/internal/sink"
)

// runtime wires one configuration into a ready pipeline.
type runtime struct {
	pipeline *pipeline.Pipeline
	source   pipeline.Source
	stats    *onenote.CallStats
	closers  []func()
}

func newRuntime(ctx context.Context, cfg config.Config, log *zap.Logger) (*runtime, error) {
	rt := &runtime{stats: onenote.NewCallStats(time.Hour)}

	sinks, err := rt.sinks(ctx, cfg.Export, log)
	if err != nil {
		rt.Close()
		return nil, err
	}

	live := onenote.NewSource(onenote.NewPowerShell(cfg.Automation.PowerShell), log, onenote.Options{
		Timeout:    cfg.Automation.Timeout,
		MaxRetries: cfg.Automation.MaxRetries,
		Stats:      rt.stats,
	})
	rt.source = pipeline.Router{
		Live:  live,
		Files: pipeline.FileSource{Options: parser.Options{PDFFallbackPdftotext: cfg.Parser.PDFFallbackPdftotext}},
	}

	rt.pipeline = pipeline.New(export.NewExporter(cfg.Export.OutputDir, log), log, pipeline.Options{
		Chunking: cfg.ChunkerConfig(),
		Rules:    extract.Rules{AcceptUnderwritten: cfg.Validation.AcceptUnderwritten},
		Sinks:    sinks,
	})
	return rt, nil
}

// sinks opens the sinks whose settings are present.
func (rt *runtime) sinks(ctx context.Context, cfg config.ExportConfig, log *zap.Logger) ([]sink.Sink, error) {
	var sinks []sink.Sink
	if cfg.S3Bucket != "" {
		s, err := sink.NewS3FromEnv(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		log.Info("s3 sink enabled", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
		sinks = append(sinks, s)
	}
	if cfg.PostgresDSN != "" {
		pg, err := sink.NewPostgres(ctx, cfg.PostgresDSN, cfg.PostgresTable)
		if err != nil {
			return nil, fmt.Errorf("postgres sink: %w", err)
		}
		rt.closers = append(rt.closers, pg.Close)
		log.Info("postgres sink enabled", zap.String("table", cfg.PostgresTable))
		sinks = append(sinks, pg)
	}
	return sinks, nil
}

func (rt *runtime) Close() {
	for _, c := range rt.closers {
		c()
	}
}
