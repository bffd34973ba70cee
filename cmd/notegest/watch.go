package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/pipeline"
	"github.com/dgallion1/notegest/internal/watch"
)

func newWatchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Extract every notebook dropped into a directory",
		Long: `Watch runs each supported file created or rewritten in DIR through the
extraction pipeline once its writes settle (watch.debounce). Files are
processed one at a time until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, f, args[0])
		},
	}
}

func runWatch(cmd *cobra.Command, f *flags, dir string) error {
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch dir: %s is not a directory", dir)
	}

	cfg, log, err := f.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	handle := func(ctx context.Context, path string) error {
		report, err := rt.pipeline.Run(ctx, rt.source, path)
		if errors.Is(err, pipeline.ErrNoEntries) {
			log.Info("no valid entries", zap.String("path", path), zap.Int("pages", report.Pages))
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("exported",
			zap.String("path", path),
			zap.Int("entries", report.Accepted),
			zap.String("xlsx", report.Files.XLSX),
		)
		return nil
	}
	return watch.New(dir, cfg.Watch.Debounce, pipeline.IsSupported, handle, log).Run(ctx)
}
