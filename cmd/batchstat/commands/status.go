package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/batchstat/cmd/batchstat/opts"
	"github.com/walteh/batchstat/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd creates the status command.
func NewStatusCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last persisted progress",
		Long: `Status reads the progress file written during a run and reports how far
the most recent batch got. Useful after an interrupted run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.LoadConfig(cmd.Context())
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			snap, err := progress.NewStore(cfg.PersistPath).Load()
			if err != nil {
				return errors.Errorf("no progress recorded at %s: %w", cfg.PersistPath, err)
			}

			if snap.Total > 0 && snap.Completed == snap.Total {
				color.Green("complete: %d/%d files submitted", snap.Completed, snap.Total)
			} else {
				color.Yellow("in progress or interrupted: %d/%d files submitted", snap.Completed, snap.Total)
			}
			return nil
		},
	}

	return cmd
}
