package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Worker processes a single uploaded file.
type Worker struct {
	pipeline *Pipeline
	source   Source
	log      *zap.Logger
}

func NewWorker(p *Pipeline, src Source, log *zap.Logger) *Worker {
	return &Worker{pipeline: p, source: src, log: log}
}

// Process stages the upload on disk and runs it through the pipeline.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With(zap.String("job_id", job.ID), zap.String("filename", job.Filename))

	dir, err := os.MkdirTemp("", "notegest-job-*")
	if err != nil {
		log.Error("stage upload failed", zap.Error(err))
		job.AddError(fmt.Sprintf("stage upload: %s", err))
		job.SetStatus(StatusFailed, "staging")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, safeName(job.Filename))
	if err := os.WriteFile(path, job.FileData(), 0o600); err != nil {
		log.Error("stage upload failed", zap.Error(err))
		job.AddError(fmt.Sprintf("stage upload: %s", err))
		job.SetStatus(StatusFailed, "staging")
		return
	}
	job.releaseFileData()

	report, err := w.pipeline.RunObserved(ctx, w.source, path, func(stage Stage, r Report) {
		job.Observe(&r)
		job.SetStatus(stageStatus(stage), string(stage))
	})
	if report != nil {
		job.Observe(report)
		for _, f := range report.PageFailures {
			job.AddError(f)
		}
		for _, s := range report.SinkErrors {
			job.AddError(s)
		}
	}

	switch {
	case errors.Is(err, ErrNoEntries):
		log.Info("no valid entries")
		job.SetStatus(StatusNoEntries, "done")
	case err != nil:
		log.Error("job failed", zap.Error(err))
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "failed")
	case len(report.PageFailures) > 0 || len(report.SinkErrors) > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		log.Info("job complete", zap.Int("entries", len(report.Entries)))
		job.SetStatus(StatusCompleted, "done")
	}
}

func stageStatus(s Stage) JobStatus {
	switch s {
	case StageExtracting:
		return StatusExtracting
	case StageChunking:
		return StatusChunking
	case StageExporting:
		return StatusExporting
	case StagePublishing:
		return StatusPublishing
	}
	return StatusQueued
}

// safeName strips directories from a client-supplied file name.
func safeName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "upload"
	}
	return base
}
