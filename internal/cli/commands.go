package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/export"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snykctl version %s\n", version)
			return nil
		},
	}
}

func newPingCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the Snyk API token and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.token == "" {
				return domain.ErrValidation("token", "Snyk API token is required (--token or SNYK_API_TOKEN)")
			}
			result := opts.factory().NewSource(opts.token, opts.apiVersion).TestConnectivity(cmd.Context())
			if !result.Success {
				return domain.ErrConfiguration("%s", result.Message)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
}

func newFetchCmd(opts *globalOptions) *cobra.Command {
	var params domain.FilterParams

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one page of audit logs and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			audit, err := opts.auditService(cmd.Context())
			if err != nil {
				return err
			}
			page, err := audit.FetchAuditLogs(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	addFilterFlags(cmd, &params)
	cmd.Flags().IntVar(&params.Size, "size", domain.DefaultPageSize, "Page size (1-100)")
	cmd.Flags().StringVar(&params.Cursor, "cursor", "", "Continuation cursor from a previous page")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		params domain.FilterParams
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export up to 1000 audit logs as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := export.ParseKind(format)
			if err != nil {
				return err
			}
			audit, err := opts.auditService(cmd.Context())
			if err != nil {
				return err
			}
			items, err := audit.CollectForExport(cmd.Context(), params)
			if err != nil {
				return err
			}
			body, err := export.Format(items, kind)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(items), out)
			return nil
		},
	}

	addFilterFlags(cmd, &params)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}
