// Package cli implements orcactl, which runs the ingestion pipeline and the
// metrics engine against a local spreadsheet without starting the server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"OrcaBI/internal/etl"
	"OrcaBI/internal/metrics"
	"OrcaBI/internal/report"
	"OrcaBI/internal/starschema"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// CLIApp represents the orcactl command tree.
type CLIApp struct {
	rootCmd *cobra.Command
}

func NewCLIApp(version string) *CLIApp {
	app := &CLIApp{}
	root := &cobra.Command{
		Use:           "orcactl",
		Short:         "Budget versus actual tooling for cost spreadsheets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(app.ingestCmd(), app.metricsCmd(), app.exportCmd())
	app.rootCmd = root
	return app
}

// Execute runs the CLI with os.Args.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// Run executes args with output sent to out, for embedding and tests.
func (app *CLIApp) Run(args []string, out io.Writer) error {
	app.rootCmd.SetArgs(args)
	app.rootCmd.SetOut(out)
	app.rootCmd.SetErr(out)
	return app.rootCmd.Execute()
}

func load(path string) (*starschema.Snapshot, etl.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, etl.Stats{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return etl.Ingest(filepath.Base(path), data)
}

func (app *CLIApp) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Parse a spreadsheet and print ingestion statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, stats, err := load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", green("Loaded"), bold(snap.Meta.Source))
			fmt.Fprintf(out, "  batch:    %s\n", snap.Meta.BatchID)
			fmt.Fprintf(out, "  checksum: %s\n", snap.Meta.Checksum)
			fmt.Fprintf(out, "  rows read %d, valid %d, skipped %s\n", stats.RowsRead, stats.RowsValid, skipped(stats.RowsSkipped))
			counts := snap.Counts()
			for _, table := range []string{"fato_orcamento", "fato_realizado", "d_calendario", "d_estrutura", "d_conta", "d_fornecedor"} {
				fmt.Fprintf(out, "  %-15s %d\n", table, counts[table])
			}
			return nil
		},
	}
}

func skipped(n int) string {
	if n == 0 {
		return "0"
	}
	return yellow(n)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("period", "p", "monthly", "Time bucket: daily, monthly, annual or custom")
	cmd.Flags().String("start-date", "", "Start date (YYYY-MM-DD) for custom period")
	cmd.Flags().String("end-date", "", "End date (YYYY-MM-DD) for custom period")
	cmd.Flags().StringSliceP("suppliers", "s", nil, "Supplier names to keep (comma-separated)")
	cmd.Flags().StringSliceP("accounts", "a", nil, "Account codes to keep (comma-separated)")
	cmd.Flags().StringSliceP("markets", "m", nil, "Micro market codes to keep (comma-separated)")
}

func queryFromFlags(cmd *cobra.Command) (metrics.Query, error) {
	periodFlag, _ := cmd.Flags().GetString("period")
	start, _ := cmd.Flags().GetString("start-date")
	end, _ := cmd.Flags().GetString("end-date")
	suppliers, _ := cmd.Flags().GetStringSlice("suppliers")
	accounts, _ := cmd.Flags().GetStringSlice("accounts")
	markets, _ := cmd.Flags().GetStringSlice("markets")

	period, err := metrics.ParsePeriod(periodFlag)
	if err != nil {
		return metrics.Query{}, err
	}
	return metrics.Query{
		Period:    period,
		StartDate: start,
		EndDate:   end,
		Suppliers: metrics.ParseList(strings.Join(suppliers, ",")),
		Accounts:  metrics.ParseList(strings.Join(accounts, ",")),
		Markets:   metrics.ParseList(strings.Join(markets, ",")),
	}, nil
}

func compute(cmd *cobra.Command, path string) (*metrics.Result, error) {
	query, err := queryFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	snap, _, err := load(path)
	if err != nil {
		return nil, err
	}
	return metrics.Compute(snap, query)
}

func (app *CLIApp) metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics <file>",
		Short: "Compute dashboard metrics for a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := compute(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printSummary(out, res)
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
	return cmd
}

func printSummary(out io.Writer, res *metrics.Result) {
	k := res.KPIs
	fmt.Fprintln(out, cyan("Indicadores"))
	fmt.Fprintf(out, "  Total orçado:    %15.2f\n", k.TotalBudgeted)
	fmt.Fprintf(out, "  Total realizado: %15.2f\n", k.TotalRealized)
	fmt.Fprintf(out, "  Aderência:       %14.2f%%\n", k.Adherence)
	fmt.Fprintf(out, "  Fornecedores %d, contas %d, micro mercados %d\n", k.TotalSuppliers, k.TotalAccounts, k.TotalMarkets)

	if len(res.Temporal) > 0 {
		fmt.Fprintln(out, cyan("Evolução"))
		for _, p := range res.Temporal {
			fmt.Fprintf(out, "  %-10s %15.2f %15.2f\n", p.Period, p.Budgeted, p.Realized)
		}
	}
	if len(res.TopSuppliers) > 0 {
		fmt.Fprintln(out, cyan("Principais fornecedores"))
		for i, s := range res.TopSuppliers {
			fmt.Fprintf(out, "  %2d. %-40s %15.2f\n", i+1, s.Supplier, s.Amount)
		}
	}
	if len(res.DRE) > 0 {
		fmt.Fprintln(out, cyan("DRE"))
		for _, d := range res.DRE {
			fmt.Fprintf(out, "  %-12s %15.2f %15.2f %s\n", d.Account, d.Budgeted, d.Realized, variance(d.Variance))
		}
	}
}

// variance colours overspending red and savings green.
func variance(v float64) string {
	s := fmt.Sprintf("%8.2f%%", v)
	switch {
	case v > 0.01:
		return red(s)
	case v < -0.01:
		return green(s)
	}
	return s
}

func (app *CLIApp) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the metrics report as xlsx or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("unsupported report format %q, use xlsx or pdf", format)
			}
			res, err := compute(cmd, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("orcado_x_realizado.%s", format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("error creating report file: %w", err)
			}
			defer f.Close()

			if format == "pdf" {
				err = report.WritePDF(f, res, time.Now())
			} else {
				err = report.WriteXLSX(f, res)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("Report written to"), output)
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().StringP("format", "f", "xlsx", "Report format: xlsx or pdf")
	cmd.Flags().StringP("output", "o", "", "Output file (default orcado_x_realizado.<format>)")
	return cmd
}
