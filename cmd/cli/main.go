package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/infrastructure/logger"
	"github.com/iho/bizledger/internal/infrastructure/postgres"
)

// errMismatch signals a reconciliation that found a discrepancy.
var errMismatch = errors.New("balances do not reconcile")

type options struct {
	baseURL     string
	timeout     time.Duration
	databaseURL string
	jsonOutput  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bizledger-cli",
		Short:         "BizLedger CLI tool",
		Long:          `A command line interface for inspecting client balances and operating the BizLedger database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the BizLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		balanceCmd(opts),
		historyCmd(opts),
		reconcileCmd(opts),
		migrateCmd(opts),
	)

	return rootCmd
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <client-id>",
		Short: "Show the stored balance of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if _, err := getJSON(cmd.Context(), opts, "/api/v1/clients/"+url.PathEscape(args[0])+"/balance", &resp); err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", resp.ClientID, resp.Balance.StringFixed(2))
			return nil
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	var (
		from, to string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history <client-id>",
		Short: "List the balance history of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if from != "" {
				query.Set("from", from)
			}
			if to != "" {
				query.Set("to", to)
			}
			if limit > 0 {
				query.Set("limit", fmt.Sprint(limit))
			}

			path := "/api/v1/clients/" + url.PathEscape(args[0]) + "/history"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var rows []dto.HistoryEntryResponse
			if _, err := getJSON(cmd.Context(), opts, path, &rows); err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					row.Date.Format(time.DateOnly),
					row.Type,
					row.Amount.StringFixed(2),
					row.NewBalance.StringFixed(2),
					truncate(row.Description, 40),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "End date, inclusive for YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of rows")

	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [client-id]",
		Short: "Reconcile one client, or every client when no ID is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				var result dto.ReconciliationResponse
				status, err := getJSON(cmd.Context(), opts, "/api/v1/clients/"+url.PathEscape(args[0])+"/reconciliation", &result)
				if err != nil && status != http.StatusConflict {
					return err
				}

				if opts.jsonOutput {
					if err := printJSON(out, result); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(out, "client:     %s\nstored:     %s\ncalculated: %s\nhistory:    %s\n",
						result.ClientID,
						result.StoredBalance.StringFixed(2),
						result.CalculatedBalance.StringFixed(2),
						result.HistoryBalance.StringFixed(2),
					)
				}

				if !result.IsReconciled {
					return fmt.Errorf("%w: client %s differs by %s", errMismatch, result.ClientID, result.Difference)
				}
				fmt.Fprintln(out, "Reconciliation PASSED")
				return nil
			}

			var report dto.ReconciliationReportResponse
			if _, err := getJSON(cmd.Context(), opts, "/api/v1/reconciliation", &report); err != nil {
				return err
			}

			if opts.jsonOutput {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "clients:     %d\nreconciled:  %d\nledger sums: %v\n",
					report.TotalClients, report.ReconciledClients, report.LedgerConsistent)
				for _, d := range report.Discrepancies {
					fmt.Fprintf(out, "  %s differs by %s\n", d.ClientID, d.Difference.StringFixed(2))
				}
			}

			if len(report.Discrepancies) > 0 || !report.LedgerConsistent {
				return fmt.Errorf("%w: %d client(s) affected", errMismatch, len(report.Discrepancies))
			}
			fmt.Fprintln(out, "Reconciliation PASSED")
			return nil
		},
	}
}

func migrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	log := func(cmd *cobra.Command) logger.Config {
		return logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()}
	}

	requireURL := func() error {
		if opts.databaseURL == "" {
			return errors.New("--database-url or DATABASE_URL is required")
		}
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireURL(); err != nil {
					return err
				}
				return postgres.RunMigrations(opts.databaseURL, logger.New(log(cmd)))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireURL(); err != nil {
					return err
				}
				return postgres.RunMigrationsDown(opts.databaseURL, logger.New(log(cmd)))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireURL(); err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(opts.databaseURL)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

// getJSON fetches path and decodes a JSON body into v. Non-2xx responses
// still decode into v when possible and are returned as an error together
// with the status code.
func getJSON(ctx context.Context, opts *options, path string, v any) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			_ = json.Unmarshal(body, v)
			return resp.StatusCode, fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.StatusCode, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
