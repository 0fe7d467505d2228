package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-shift/internal/dns/compare"
	"github.com/haukened/rr-shift/internal/dns/config"
	"github.com/haukened/rr-shift/internal/dns/domain"
	"github.com/haukened/rr-shift/internal/dns/migrate"
	"github.com/haukened/rr-shift/internal/dns/repos/history"
)

// NewCompareCommand creates the compare subcommand.
func NewCompareCommand() *cobra.Command {
	var queriesFlag string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare responses from the source and target resolvers",
		Long: `Run the same queries against both resolvers and report the differences
with a migration-readiness confidence score. Without --queries the standard
probe set is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadApp()
			if err != nil {
				return err
			}
			source, target, err := buildClients(cfg)
			if err != nil {
				return err
			}
			engine, err := buildComparer(cfg, source, target)
			if err != nil {
				return err
			}

			queries := migrate.DefaultValidationQueries()
			if queriesFlag != "" {
				queries, err = compare.LoadQueryFile(queriesFlag)
				if err != nil {
					return err
				}
			}
			applyTimeout(queries, cfg.QueryTimeout)

			result := engine.CompareBulk(cmd.Context(), queries)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Compared %d queries: %d matched, %d mismatched (confidence %.2f)\n",
				result.QueriesTested, result.Matches, result.Mismatches, result.ConfidenceScore)
			return writeJSON(out, result)
		},
	}

	cmd.Flags().StringVarP(&queriesFlag, "queries", "q", "", "Query file, one 'name [type]' per line")
	return cmd
}

// NewShadowCommand creates the shadow subcommand.
func NewShadowCommand() *cobra.Command {
	var (
		queriesFlag  string
		durationFlag time.Duration
	)

	cmd := &cobra.Command{
		Use:   "shadow",
		Short: "Shadow live traffic against both resolvers and report mismatches",
		Long: `Run a shadow session: sample queries from the query file, send each to
both resolvers, and accumulate a mismatch report. The session ends when the
query list is exhausted, the duration elapses, or the command is interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadApp()
			if err != nil {
				return err
			}
			source, target, err := buildClients(cfg)
			if err != nil {
				return err
			}
			engine, err := buildComparer(cfg, source, target)
			if err != nil {
				return err
			}

			queries, err := compare.LoadQueryFile(queriesFlag)
			if err != nil {
				return err
			}
			applyTimeout(queries, cfg.QueryTimeout)

			shadowCfg := domain.NewShadowConfig(
				domain.ResolverType(cfg.SourceType), domain.ResolverType(cfg.TargetType))
			shadowCfg.SampleRate = cfg.SampleRate
			shadowCfg.AlertThreshold = cfg.AlertThreshold
			shadowCfg.AlertCooldown = cfg.AlertCooldown
			shadowCfg.Duration = durationFlag

			session, err := compare.NewShadow(engine, shadowCfg, time.Now())
			if err != nil {
				return err
			}

			in := make(chan domain.DNSQuery)
			go func() {
				defer close(in)
				for _, q := range queries {
					select {
					case in <- q:
					case <-cmd.Context().Done():
						return
					}
				}
			}()

			out := cmd.OutOrStdout()
			for diff := range session.Run(cmd.Context(), in) {
				fmt.Fprintf(out, "mismatch: %s %s (source %s, target %s)\n",
					diff.Query.Name, diff.Query.Type,
					diff.SourceResponse.RCode, diff.TargetResponse.RCode)
			}

			report := session.Report()
			saveReport(cfg.HistoryDB, report)
			fmt.Fprintf(out, "Processed %d queries, mismatch rate %.4f\n",
				report.QueriesProcessed, report.MismatchRate)
			return writeJSON(out, report)
		},
	}

	cmd.Flags().StringVarP(&queriesFlag, "queries", "q", "", "Query file, one 'name [type]' per line")
	cmd.Flags().DurationVarP(&durationFlag, "duration", "d", 0, "Maximum session duration (0 = until queries end)")
	_ = cmd.MarkFlagRequired("queries")
	return cmd
}

// NewHistoryCommand creates the history subcommand.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List or show stored migration statuses and shadow reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadApp()
			if err != nil {
				return err
			}
			store, err := history.New(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if status, err := store.GetStatus(args[0]); err == nil {
					return writeJSON(out, status)
				}
				report, err := store.GetReport(args[0])
				if err != nil {
					return err
				}
				return writeJSON(out, report)
			}

			migrations, err := store.ListStatusIDs()
			if err != nil {
				return err
			}
			reports, err := store.ListReportIDs()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Migrations:")
			for _, id := range migrations {
				fmt.Fprintf(out, "  %s\n", id)
			}
			fmt.Fprintln(out, "Shadow reports:")
			for _, id := range reports {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
	return cmd
}

func buildComparer(cfg *config.AppConfig, source, target compare.ResolverClient) (*compare.Engine, error) {
	return compare.NewEngine(source, target, compare.EngineOptions{
		Retries:     cfg.Retries,
		MaxInFlight: cfg.MaxInFlight,
	})
}

func applyTimeout(queries []domain.DNSQuery, timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	for i := range queries {
		queries[i].Timeout = timeout
	}
}

func saveReport(historyDB string, report domain.ShadowReport) {
	store, err := history.New(historyDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening history store: %v\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveReport(history.NewID(report.StartedAt), report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving shadow report: %v\n", err)
	}
}
