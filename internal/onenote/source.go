package onenote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/metrics"
	"github.com/dgallion1/notegest/internal/notebook"
)

// Options configures a Source.
type Options struct {
	// Timeout bounds a whole extraction. Zero disables it.
	Timeout time.Duration
	// MaxRetries is how many times a busy automation call is retried.
	MaxRetries int
	// Stats receives one sample per automation call when non-nil.
	Stats *CallStats
}

// Source reads every page of a notebook file.
type Source struct {
	auto    Automation
	log     *zap.Logger
	opts    Options
	metrics *metrics.Metrics
	// backoff is swapped out in tests.
	backoff func(attempt int) time.Duration
}

func NewSource(auto Automation, log *zap.Logger, opts Options) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Source{
		auto:    auto,
		log:     log,
		opts:    opts,
		metrics: metrics.Get(),
		backoff: Backoff,
	}
}

// Extract opens the notebook at path and returns the text of every
// non-empty page. Pages that cannot be read are recorded as failures and
// skipped. If the timeout elapses, nothing is returned.
func (s *Source) Extract(ctx context.Context, path string) (notebook.Extraction, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return notebook.Extraction{}, fmt.Errorf("notebook path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return notebook.Extraction{}, fmt.Errorf("notebook file: %w", err)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	// OpenHierarchy fails for notebooks already open; the hierarchy read
	// below decides whether anything is reachable.
	if err := s.do(ctx, "OpenHierarchy", func(ctx context.Context) error {
		return s.auto.OpenHierarchy(ctx, path)
	}); err != nil {
		if abandoned(ctx, err) {
			return notebook.Extraction{}, s.abandon(ctx, err)
		}
		s.log.Warn("open notebook failed, reading current hierarchy", zap.String("path", path), zap.Error(err))
	}

	var raw []byte
	err = s.do(ctx, "GetHierarchy", func(ctx context.Context) error {
		var err error
		raw, err = s.auto.GetHierarchy(ctx)
		return err
	})
	if err != nil {
		if abandoned(ctx, err) {
			return notebook.Extraction{}, s.abandon(ctx, err)
		}
		return notebook.Extraction{}, fmt.Errorf("read hierarchy: %w", err)
	}

	h, err := ParseHierarchy(raw)
	if err != nil {
		return notebook.Extraction{}, err
	}
	s.log.Info("hierarchy loaded",
		zap.Int("notebooks", len(h.Notebooks)),
		zap.Int("pages", h.PageCount()),
	)

	var out notebook.Extraction
	for _, nb := range h.Notebooks {
		for _, sec := range nb.Sections {
			for _, pg := range sec.Pages {
				ref := notebook.PageContent{
					Notebook: nb.Name,
					Section:  sec.Name,
					Page:     pg.Name,
					PageID:   pg.ID,
				}

				text, err := s.pageText(ctx, pg.ID)
				if err != nil {
					if abandoned(ctx, err) {
						return notebook.Extraction{}, s.abandon(ctx, err)
					}
					s.log.Warn("page skipped",
						zap.String("notebook", nb.Name),
						zap.String("section", sec.Name),
						zap.String("page", pg.Name),
						zap.Error(err),
					)
					s.metrics.PageFailures.Inc()
					out.Fail(ref, err)
					continue
				}

				ref.Text = text
				if out.Add(ref) {
					s.metrics.PagesExtracted.Inc()
				}
			}
		}
	}
	return out, nil
}

func (s *Source) pageText(ctx context.Context, id string) (string, error) {
	var raw []byte
	err := s.do(ctx, "GetPageContent", func(ctx context.Context) error {
		var err error
		raw, err = s.auto.GetPageContent(ctx, id)
		return err
	})
	if err != nil {
		return "", err
	}
	return PageText(raw)
}

// do runs one automation call, retrying busy errors with backoff.
func (s *Source) do(ctx context.Context, op string, call func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		start := time.Now()
		err = call(ctx)
		elapsed := time.Since(start)

		if s.opts.Stats != nil {
			s.opts.Stats.Record(elapsed, err == nil)
		}
		s.metrics.AutomationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		s.metrics.AutomationCalls.WithLabelValues(op, outcome(err)).Inc()

		if err == nil || !IsRetryable(err) || attempt >= s.opts.MaxRetries {
			return err
		}

		wait := s.backoff(attempt)
		s.log.Debug("automation busy, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
		)
		s.metrics.AutomationRetries.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Source) abandon(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("extraction timed out after %s: %w", s.opts.Timeout, context.DeadlineExceeded)
	}
	return fmt.Errorf("extraction abandoned: %w", err)
}

func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrUnavailable)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
