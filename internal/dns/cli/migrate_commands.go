package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-shift/internal/dns/domain"
	"github.com/haukened/rr-shift/internal/dns/migrate"
	"github.com/haukened/rr-shift/internal/dns/repos/history"
)

// NewPlanCommand creates the plan subcommand.
func NewPlanCommand() *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a migration from the live source resolver",
		Long: `Read the source resolver's configuration, translate it, and produce an
ordered migration plan with a risk estimate. The plan is written as JSON for
review before execution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := buildMigrationEngine()
			if err != nil {
				return err
			}

			plan, err := engine.Plan(cmd.Context())
			if err != nil {
				return err
			}
			if err := migrate.SavePlan(outputFlag, plan); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migration plan: %s -> %s\n", plan.Source, plan.Target)
			fmt.Fprintf(out, "Steps: %d, estimated risk: %s\n", len(plan.Steps), plan.EstimatedRisk)
			for _, w := range plan.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, u := range plan.UnsupportedFeatures {
				fmt.Fprintf(out, "unsupported: %s\n", u)
			}
			fmt.Fprintf(out, "Plan written to %s\n", outputFlag)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "migration-plan.json", "Plan file to write")
	return cmd
}

// NewExecuteCommand creates the execute subcommand.
func NewExecuteCommand() *cobra.Command {
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Plan and execute a migration against the live resolvers",
		Long: `Plan against the live source resolver, then run the steps in order: back
up the source config, write the target config, start the target, validate by
live comparison, and cut over. --dry-run walks the plan without touching
either resolver.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, historyDB, err := buildMigrationEngine()
			if err != nil {
				return err
			}

			plan, err := engine.Plan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Executing %s -> %s (%d steps, risk %s)\n",
				plan.Source, plan.Target, len(plan.Steps), plan.EstimatedRisk)

			status, err := engine.Execute(cmd.Context(), migrate.ExecuteOptions{DryRun: dryRunFlag})
			if err != nil {
				return err
			}

			if !dryRunFlag {
				saveStatus(historyDB, status)
			}

			if err := writeJSON(out, status); err != nil {
				return err
			}
			if status.State != domain.MigrationCompleted {
				return fmt.Errorf("migration ended in state %s", status.State)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Walk the plan without touching either resolver")
	return cmd
}

// NewRollbackCommand creates the rollback subcommand.
func NewRollbackCommand() *cobra.Command {
	var backupFlag string

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore the source resolver from a migration backup",
		Long: `Restore the source resolver's configuration from a backup directory and
restart it. Without --backup the most recent backup is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadApp()
			if err != nil {
				return err
			}
			source, _, err := buildClients(cfg)
			if err != nil {
				return err
			}

			backup := backupFlag
			if backup == "" {
				backup, err = latestBackup(cfg.BackupDir)
				if err != nil {
					return err
				}
			}

			data, err := os.ReadFile(filepath.Join(backup, "source_config.txt"))
			if err != nil {
				return fmt.Errorf("reading backup: %w", err)
			}
			if err := source.ApplyConfig(cmd.Context(), string(data)); err != nil {
				return err
			}
			if result := source.Restart(cmd.Context()); !result.Success {
				return fmt.Errorf("restarting source resolver: %s", result.Message)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", cfg.SourceType, backup)
			return nil
		},
	}

	cmd.Flags().StringVar(&backupFlag, "backup", "", "Backup directory to restore from (default: most recent)")
	return cmd
}

// buildMigrationEngine assembles the full migration stack from environment
// configuration. The history DB path is returned for status persistence.
func buildMigrationEngine() (*migrate.Engine, string, error) {
	cfg, err := loadApp()
	if err != nil {
		return nil, "", err
	}
	source, target, err := buildClients(cfg)
	if err != nil {
		return nil, "", err
	}
	migrator, err := migrate.ForDirection(
		domain.ResolverType(cfg.SourceType), domain.ResolverType(cfg.TargetType))
	if err != nil {
		return nil, "", err
	}
	comparer, err := buildComparer(cfg, source, target)
	if err != nil {
		return nil, "", err
	}
	engine, err := migrate.NewEngine(source, target, migrator, migrate.EngineOptions{
		BackupDir: cfg.BackupDir,
		Comparer:  comparer,
	})
	if err != nil {
		return nil, "", err
	}
	return engine, cfg.HistoryDB, nil
}

// saveStatus records the outcome in the history store. Persistence failures
// are reported but never fail the migration itself.
func saveStatus(historyDB string, status domain.MigrationStatus) {
	store, err := history.New(historyDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening history store: %v\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	id := history.NewID(time.Now())
	if status.StartedAt != nil {
		id = history.NewID(*status.StartedAt)
	}
	if err := store.SaveStatus(id, status); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving migration status: %v\n", err)
	}
}

// latestBackup picks the newest backup_* directory under dir. Backup names
// embed a UTC timestamp, so lexical order is chronological.
func latestBackup(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading backup dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) > len("backup_") && e.Name()[:len("backup_")] == "backup_" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no backups found in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
