package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evalgo.org/fleetstatus/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start the metrics agent",
	Long: `Start the agent that serves normalized metrics of the local host.

Run it on every monitored host and point the host's agentUrl in the
fleet file at http://<host>:<agent.port><agent.path>.`,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().String("listen", "", "listen address, overrides agent.host and agent.port")
	agentCmd.Flags().Bool("once", false, "collect a single snapshot, print it and exit")
}

func runAgent(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	addr := cfg.Agent.Addr()
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		addr = listen
	}

	a := agent.New(agent.Config{
		Addr:            addr,
		Path:            cfg.Agent.Path,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, agent.NewGopsutilSource(logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once, _ := cmd.Flags().GetBool("once"); once {
		snap, err := a.Collect(ctx)
		if err != nil {
			return fmt.Errorf("collect metrics: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	return a.Start(ctx)
}
