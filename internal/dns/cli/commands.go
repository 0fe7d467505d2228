// Package cli defines the rr-shift subcommands. Commands that touch live
// resolvers build their dependencies from environment configuration; the
// pure translation commands work on local files only.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/conf/corefile"
	"github.com/haukened/rr-shift/internal/dns/conf/unbound"
	"github.com/haukened/rr-shift/internal/dns/config"
	"github.com/haukened/rr-shift/internal/dns/domain"
	"github.com/haukened/rr-shift/internal/dns/infra/client"
	"github.com/haukened/rr-shift/internal/dns/migrate"
)

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a CoreDNS or Unbound configuration file",
		Long: `Parse a configuration file and report structural errors and unknown
directives. Warnings do not fail validation; errors do.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rtype, err := domain.ParseResolverType(typeFlag)
			if err != nil {
				return err
			}
			text, err := readFile(args[0])
			if err != nil {
				return err
			}

			var result domain.ValidationResult
			if rtype == domain.ResolverCoreDNS {
				result = corefile.Validate(text)
			} else {
				result = unbound.Validate(text)
			}

			printIssues(cmd.OutOrStdout(), result)
			if !result.Valid {
				return fmt.Errorf("%s is not a valid %s configuration", args[0], rtype)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "coredns", "Config dialect (coredns, unbound)")
	return cmd
}

// NewAnalyzeCommand creates the analyze subcommand.
func NewAnalyzeCommand() *cobra.Command {
	var (
		fromFlag string
		toFlag   string
	)

	cmd := &cobra.Command{
		Use:   "analyze [config-file]",
		Short: "Analyze how a configuration translates to the other resolver",
		Long: `Inspect a source configuration and report which features carry over
directly, which need manual work, and which have no equivalent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := migratorFromFlags(fromFlag, toFlag)
			if err != nil {
				return err
			}
			text, err := readFile(args[0])
			if err != nil {
				return err
			}

			analysis, err := migrator.AnalyzeConfig(text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analysis: %s -> %s\n\n", migrator.SourceType(), migrator.TargetType())
			for _, m := range analysis.Mappings {
				fmt.Fprintf(out, "  %s\n", describeMapping(m))
			}
			if len(analysis.Warnings) > 0 {
				fmt.Fprintln(out, "\nWarnings:")
				for _, w := range analysis.Warnings {
					fmt.Fprintf(out, "  - %s\n", w)
				}
			}
			if len(analysis.Unsupported) > 0 {
				fmt.Fprintln(out, "\nUnsupported:")
				for _, u := range analysis.Unsupported {
					fmt.Fprintf(out, "  - %s\n", u)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "coredns", "Source dialect (coredns, unbound)")
	cmd.Flags().StringVar(&toFlag, "to", "unbound", "Target dialect (coredns, unbound)")
	return cmd
}

// NewConvertCommand creates the convert subcommand.
func NewConvertCommand() *cobra.Command {
	var (
		fromFlag   string
		toFlag     string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "convert [config-file]",
		Short: "Convert a configuration file to the other resolver's dialect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := migratorFromFlags(fromFlag, toFlag)
			if err != nil {
				return err
			}
			text, err := readFile(args[0])
			if err != nil {
				return err
			}

			converted, err := migrator.GenerateTargetConfig(text)
			if err != nil {
				return err
			}

			if outputFlag != "" {
				return os.WriteFile(outputFlag, []byte(converted), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), converted)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "coredns", "Source dialect (coredns, unbound)")
	cmd.Flags().StringVar(&toFlag, "to", "unbound", "Target dialect (coredns, unbound)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write converted config to file instead of stdout")
	return cmd
}

func migratorFromFlags(from, to string) (migrate.Migrator, error) {
	source, err := domain.ParseResolverType(from)
	if err != nil {
		return nil, err
	}
	target, err := domain.ParseResolverType(to)
	if err != nil {
		return nil, err
	}
	return migrate.ForDirection(source, target)
}

func describeMapping(m domain.FeatureMapping) string {
	source, target := m.CoreDNSPlugin, m.UnboundFeature
	if source == "" {
		source = "(none)"
	}
	if target == "" {
		target = "(none)"
	}
	status := "supported"
	switch {
	case !m.Supported:
		status = "unsupported"
	case m.RequiresManual:
		status = "manual"
	}
	return fmt.Sprintf("%-20s -> %-30s [%s]", source, target, status)
}

func printIssues(out io.Writer, result domain.ValidationResult) {
	for _, is := range result.Errors {
		fmt.Fprintf(out, "error: %s\n", formatIssue(is))
	}
	for _, is := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", formatIssue(is))
	}
}

func formatIssue(is domain.ValidationIssue) string {
	if is.Line > 0 {
		return fmt.Sprintf("line %d: %s", is.Line, is.Message)
	}
	return is.Message
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadApp loads environment configuration and configures global logging.
func loadApp() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("logging configuration error: %w", err)
	}
	return cfg, nil
}

// buildClients constructs the source and target resolver clients from the
// environment configuration.
func buildClients(cfg *config.AppConfig) (source, target *client.Client, err error) {
	source, err = buildClient(cfg.SourceType, cfg.SourceServer, cfg.SourceConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("source client: %w", err)
	}
	target, err = buildClient(cfg.TargetType, cfg.TargetServer, cfg.TargetConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("target client: %w", err)
	}
	return source, target, nil
}

func buildClient(typeName, server, configPath string) (*client.Client, error) {
	rtype, err := domain.ParseResolverType(typeName)
	if err != nil {
		return nil, err
	}
	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	return client.New(rtype, client.Options{
		Server:     host,
		Port:       port,
		ConfigPath: configPath,
	})
}
