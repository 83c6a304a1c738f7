package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/docscan/internal/ingest"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process documents as they are dropped into a folder",
	Long: `Watch a directory and run every PDF, image or archive written into it through
the pipeline, printing one JSON line per page. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before a batch of new files is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := newLocal(ctx, cmd.OutOrStdout(), true)
	if err != nil {
		return err
	}
	defer l.Close()

	return ingest.NewWatcher(l.svc, cliClient, args[0], watchDebounce).Run(ctx)
}
