// Package pipeline runs a notebook through extraction, chunking,
// validation, field extraction and export, and hosts the job machinery the
// HTTP server uses.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/chunker"
	"github.com/dgallion1/notegest/internal/export"
	"github.com/dgallion1/notegest/internal/extract"
	"github.com/dgallion1/notegest/internal/metrics"
	"github.com/dgallion1/notegest/internal/notebook"
	"github.com/dgallion1/notegest/internal/sink"
)

var (
	// ErrNoContent means no page with text could be read.
	ErrNoContent = errors.New("no content extracted")
	// ErrNoEntries means pages were read but no chunk passed validation.
	ErrNoEntries = errors.New("no valid entries found")
)

// Source yields the pages of one input.
type Source interface {
	Extract(ctx context.Context, path string) (notebook.Extraction, error)
}

// Stage names a step of a run, reported to observers.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageChunking   Stage = "chunking"
	StageExporting  Stage = "exporting"
	StagePublishing Stage = "publishing"
)

// Observer is told when a run enters a stage, with the counts so far.
type Observer func(stage Stage, r Report)

// Report summarizes one run.
type Report struct {
	Input        string          `json:"input"`
	Pages        int             `json:"pages"`
	PageFailures []string        `json:"page_failures"`
	Chunks       int             `json:"chunks"`
	Accepted     int             `json:"accepted"`
	Rejected     int             `json:"rejected"`
	Entries      []extract.Entry `json:"-"`
	Files        *export.Files   `json:"files,omitempty"`
	SinkErrors   []string        `json:"sink_errors,omitempty"`
}

// Options tunes chunking, validation and publication.
type Options struct {
	Chunking chunker.Config
	Rules    extract.Rules
	Sinks    []sink.Sink
}

// DefaultOptions mirrors the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Chunking: chunker.DefaultConfig(),
		Rules:    extract.DefaultRules(),
	}
}

// Pipeline turns inputs into exports.
type Pipeline struct {
	exporter *export.Exporter
	log      *zap.Logger
	opts     Options
	metrics  *metrics.Metrics
}

func New(exporter *export.Exporter, log *zap.Logger, opts Options) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		exporter: exporter,
		log:      log,
		opts:     opts,
		metrics:  metrics.Get(),
	}
}

// Run processes path through src and writes the export.
func (p *Pipeline) Run(ctx context.Context, src Source, path string) (*Report, error) {
	return p.RunObserved(ctx, src, path, nil)
}

// RunObserved is Run with stage notifications.
func (p *Pipeline) RunObserved(ctx context.Context, src Source, path string, observe Observer) (*Report, error) {
	if observe == nil {
		observe = func(Stage, Report) {}
	}
	log := p.log.With(zap.String("input", path))
	report := &Report{Input: path, PageFailures: []string{}}

	observe(StageExtracting, *report)
	ext, err := src.Extract(ctx, path)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		p.metrics.RunsTotal.WithLabelValues("no_content").Inc()
		return report, fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	for _, f := range ext.Failures {
		report.PageFailures = append(report.PageFailures, f.Error())
	}
	report.Pages = len(ext.Pages)
	if report.Pages == 0 {
		log.Warn("no pages with text", zap.Int("page_failures", len(ext.Failures)))
		p.metrics.RunsTotal.WithLabelValues("no_content").Inc()
		return report, ErrNoContent
	}
	log.Info("pages extracted", zap.Int("pages", report.Pages), zap.Int("page_failures", len(ext.Failures)))

	observe(StageChunking, *report)
	report.Entries = p.Entries(ext.Pages, report)
	log.Info("chunks classified",
		zap.Int("chunks", report.Chunks),
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected),
	)
	if len(report.Entries) == 0 {
		p.metrics.RunsTotal.WithLabelValues("no_entries").Inc()
		return report, ErrNoEntries
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	observe(StageExporting, *report)
	files, err := p.exporter.Export(report.Entries)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("export: %w", err)
	}
	report.Files = &files
	p.metrics.EntriesTotal.Add(float64(len(report.Entries)))

	if len(p.opts.Sinks) > 0 {
		observe(StagePublishing, *report)
		if err := sink.PublishAll(ctx, p.opts.Sinks, files, report.Entries); err != nil {
			log.Error("publish failed", zap.Error(err))
			report.SinkErrors = append(report.SinkErrors, err.Error())
		}
	}

	p.metrics.RunsTotal.WithLabelValues("exported").Inc()
	return report, nil
}

// Entries chunks and validates every page, in page order, and returns one
// entry per accepted chunk. Counts are added to r when it is non-nil.
func (p *Pipeline) Entries(pages []notebook.PageContent, r *Report) []extract.Entry {
	if r == nil {
		r = &Report{}
	}
	var entries []extract.Entry
	for _, page := range pages {
		for _, chunk := range chunker.Split(page.Text, p.opts.Chunking) {
			r.Chunks++
			if !p.opts.Rules.Valid(chunk) {
				r.Rejected++
				p.metrics.ChunksTotal.WithLabelValues("rejected").Inc()
				continue
			}
			r.Accepted++
			p.metrics.ChunksTotal.WithLabelValues("accepted").Inc()
			entries = append(entries, extract.FromChunk(page, chunk))
		}
	}
	return entries
}
