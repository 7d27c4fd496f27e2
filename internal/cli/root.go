// Package cli implements snykctl, a command-line client that talks to the
// Snyk audit-log API directly using the same services as the dashboard.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iamsuganthi/log-sniffer/internal/adapter/snyk"
	"github.com/iamsuganthi/log-sniffer/internal/adapter/store"
	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/service"
	"github.com/iamsuganthi/log-sniffer/pkg/config"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	_ = godotenv.Load()

	rootCmd := newRootCmd(config.Load())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	token      string
	orgID      string
	groupID    string
	apiVersion string
	baseURL    string
	timeout    time.Duration
	rps        float64
	burst      int
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &globalOptions{rps: cfg.SnykRateLimitRPS, burst: cfg.SnykRateLimitBurst}

	rootCmd := &cobra.Command{
		Use:           "snykctl",
		Short:         "Snyk audit log CLI",
		Long:          "Fetch and export Snyk audit logs from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.token, "token", cfg.SnykAPIToken, "Snyk API token (env SNYK_API_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&opts.orgID, "org", cfg.SnykOrgID, "Organization ID (env SNYK_ORG_ID)")
	rootCmd.PersistentFlags().StringVar(&opts.groupID, "group", cfg.SnykGroupID, "Group ID, used when no organization is set (env SNYK_GROUP_ID)")
	rootCmd.PersistentFlags().StringVar(&opts.apiVersion, "api-version", cfg.SnykAPIVersion, "Snyk REST API version")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", cfg.SnykBaseURL, "Snyk REST API base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.SnykHTTPTimeout, "HTTP timeout per request")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPingCmd(opts))
	rootCmd.AddCommand(newFetchCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))

	return rootCmd
}

func (o *globalOptions) factory() *snyk.Factory {
	return snyk.NewFactory(o.baseURL, o.timeout, o.rps, o.burst)
}

// auditService wires an AuditService around a throwaway in-memory settings
// store seeded from the flags.
func (o *globalOptions) auditService(ctx context.Context) (*service.AuditService, error) {
	if o.token == "" {
		return nil, domain.ErrValidation("token", "Snyk API token is required (--token or SNYK_API_TOKEN)")
	}

	factory := o.factory()
	settingsStore := store.NewSettingsStore()
	err := service.NewSettingsService(settingsStore, factory).Seed(ctx, domain.ConfigurationInput{
		SnykAPIToken: o.token,
		OrgID:        o.orgID,
		GroupID:      o.groupID,
		APIVersion:   o.apiVersion,
	})
	if err != nil {
		return nil, err
	}
	return service.NewAuditService(settingsStore, factory, store.NewMemoryLogCache(0)), nil
}

// addFilterFlags binds the shared filter flags onto params.
func addFilterFlags(cmd *cobra.Command, params *domain.FilterParams) {
	cmd.Flags().StringVar(&params.From, "from", "", "Inclusive start date (e.g. 2024-05-01)")
	cmd.Flags().StringVar(&params.To, "to", "", "Exclusive end date")
	cmd.Flags().StringSliceVar(&params.Events, "event", nil, "Event name to include (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&params.ExcludeEvents, "exclude-event", nil, "Event name to exclude (repeatable or comma-separated)")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
