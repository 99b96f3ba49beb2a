package commands

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/batchstat/cmd/batchstat/opts"
	"github.com/walteh/batchstat/pkg/config"
	"github.com/walteh/batchstat/pkg/discover"
	"github.com/walteh/batchstat/pkg/pool"
	"github.com/walteh/batchstat/pkg/processor"
	"github.com/walteh/batchstat/pkg/progress"
	"github.com/walteh/batchstat/pkg/report"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// NewRunCmd creates the run command.
func NewRunCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		workers   int
		recursive bool
		ignore    []string
		showFiles bool
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Analyze a batch of files and directories",
		Long: `Run discovers the files under the given paths, analyzes each one on a
fixed worker pool, and streams progress to the terminal. Press Ctrl-C to
stop submitting new files; work already in flight finishes first.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := ro.LoadConfig(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("recursive") {
				cfg.Recursive = recursive
			}
			if cmd.Flags().Changed("ignore") {
				cfg.Ignore = ignore
			}
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating config: %w", err)
			}

			paths := args
			if len(paths) == 0 {
				paths = cfg.Paths
			}
			if len(paths) == 0 {
				return errors.New("no input paths: pass them as arguments or set paths in the config")
			}

			return run(ctx, cfg, paths, report.Options{ShowFiles: showFiles, Plain: plain})
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size (default: number of CPUs)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into nested directories")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "glob patterns for files to skip")
	cmd.Flags().BoolVarP(&showFiles, "verbose", "v", false, "print a line per file")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable the progress bar")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, paths []string, renderOpts report.Options) error {
	logger := zerolog.Ctx(ctx)

	workerPool := pool.New(cfg.Workers)
	defer workerPool.Shutdown()

	proc := processor.New(processor.Options{
		Pool:      workerPool,
		Store:     progress.NewStore(cfg.PersistPath),
		Discover:  discover.Options{Recursive: cfg.Recursive, Ignore: cfg.Ignore},
		PaceDelay: cfg.PaceDelay(),
	})

	logger.Debug().Int("workers", cfg.Workers).Strs("paths", paths).Msg("starting run")
	events := proc.Process(ctx, paths)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	// consumeCtx tells the signal watcher the stream has ended
	consumeCtx, consumeDone := context.WithCancel(ctx)
	defer consumeDone()

	var summary report.Summary
	g := new(errgroup.Group)
	g.Go(func() error {
		defer consumeDone()
		summary = report.Consume(ctx, events, renderOpts)
		return nil
	})
	g.Go(func() error {
		select {
		case <-sigCh:
			logger.Info().Msg("interrupt received, cancelling")
			proc.Cancel()
		case <-consumeCtx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return errors.Errorf("consuming progress: %w", err)
	}

	printSummary(summary, proc.TotalBytesProcessed())

	if summary.Failed > 0 {
		return errors.Errorf("%d of %d files failed", summary.Failed, summary.Submitted)
	}
	return nil
}

func printSummary(summary report.Summary, totalBytes uint64) {
	bold := color.New(color.Bold)
	bold.Printf("\nDone in %s\n", summary.Elapsed.Round(time.Millisecond))

	color.Green("  completed: %d/%d", summary.Completed, summary.Total)
	if summary.Failed > 0 {
		color.Red("  failed:    %d", summary.Failed)
	}
	if summary.FileErrors > 0 {
		color.Yellow("  file errors: %d", summary.FileErrors)
	}
	bold.Printf("  total bytes processed: %d\n", totalBytes)
}
