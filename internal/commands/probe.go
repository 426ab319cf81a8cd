package commands

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one refresh cycle locally and print the snapshot",
	Long: `Run a single refresh cycle against the configured fleet without
starting the API, and print the resulting snapshot as JSON.`,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := eng.scheduler().RunOnce(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
