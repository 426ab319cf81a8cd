package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/fleetstatus/models"
	"evalgo.org/fleetstatus/pkg/fleetstatus/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the fleet status served by a running server",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("url", "", "status server base URL (default: http://localhost:<server.port>)")
	statusCmd.Flags().Bool("json", false, "print raw JSON records")
	statusCmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	c, err := client.New(baseURL, client.WithTimeout(timeout))
	if err != nil {
		return err
	}

	records, err := c.Status(context.Background())
	if err != nil {
		return fmt.Errorf("fetch status from %s: %w", baseURL, err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	return printStatusTable(cmd.OutOrStdout(), records)
}

func printStatusTable(out io.Writer, records []models.HostStatusRecord) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tONLINE\tLOCATION\tCPU\tMEM\tDISK\tMETRICS")

	for _, r := range records {
		online := "no"
		if r.IsOnline {
			online = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, online, formatLocation(r.Location), formatMetrics(r.Metrics))
	}
	return w.Flush()
}

func formatLocation(g *models.GeoInfo) string {
	if g == nil {
		return "-"
	}
	if g.Flag != "" {
		return fmt.Sprintf("%s %s, %s", g.Flag, g.City, g.CountryCode)
	}
	return fmt.Sprintf("%s, %s", g.City, g.CountryCode)
}

// formatMetrics renders the CPU, MEM, DISK and METRICS columns.
func formatMetrics(m *models.MetricsResult) string {
	switch {
	case m == nil:
		return "-\t-\t-\t-"
	case m.Snapshot != nil:
		s := m.Snapshot
		return fmt.Sprintf("%.1f%%\t%.1f%%\t%.1f%%\tok", s.CPU.UsagePercent, s.Memory.UsagePercent, s.Disk.UsagePercent)
	case m.Error != "":
		return "-\t-\t-\t" + m.Error
	default:
		return "-\t-\t-\t" + m.Info
	}
}
