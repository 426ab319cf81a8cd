package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().StringP("output", "o", "config.yaml", "file to write")
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

const defaultConfigFile = `# fleetstatus configuration
# Every key can be overridden with an FS_ environment variable,
# e.g. FS_FLEET_REFRESH_INTERVAL=1m

server:
  host: 0.0.0.0
  port: 3000
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

fleet:
  # JSON or YAML list of hosts: {"servers": [{"name": "...", "ip": "...", "agentUrl": "..."}]}
  file: ./config.json
  refresh_interval: 5m
  # icmp or tcp
  probe_mode: icmp
  probe_timeout: 2s
  # dialed in tcp mode
  probe_port: 22
  # raw ICMP sockets, needs CAP_NET_RAW
  privileged: false
  agent_timeout: 5s

geoip:
  # location lookups are disabled when the database is missing
  database: ./GeoLite2-City.mmdb

agent:
  host: 0.0.0.0
  port: 9101
  path: /metrics

logging:
  level: info
  format: text

security:
  # requests per second per client, 0 disables limiting
  rate_limit: 20
  # explicit CORS origins; when empty, https://<primary_frontend_domain> is allowed
  allowed_origins: []
  primary_frontend_domain: ""
  # outside production http://localhost:5173 is allowed as well
  environment: development

frontend:
  api_url: /api/vps-status
  refresh_interval: 30s
`

func runInitConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfigFile), 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
	return nil
}
