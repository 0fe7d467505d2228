package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-shift/internal/dns/cli"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rr-shift",
		Short: "CoreDNS / Unbound configuration migration and comparison toolkit",
		Long: `rr-shift translates resolver configurations between CoreDNS and Unbound,
plans and executes staged migrations with backups and rollback, and compares
live resolver behavior to validate a migration before and after cutover.`,
		Version: version,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.NewValidateCommand())
	rootCmd.AddCommand(cli.NewAnalyzeCommand())
	rootCmd.AddCommand(cli.NewConvertCommand())
	rootCmd.AddCommand(cli.NewPlanCommand())
	rootCmd.AddCommand(cli.NewExecuteCommand())
	rootCmd.AddCommand(cli.NewRollbackCommand())
	rootCmd.AddCommand(cli.NewCompareCommand())
	rootCmd.AddCommand(cli.NewShadowCommand())
	rootCmd.AddCommand(cli.NewHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
