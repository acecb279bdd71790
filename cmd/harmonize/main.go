// Package main provides the harmonize CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/harmonize/cli"
)

var (
	// Global flags
	targetModel string
	backend     string
	effort      string
	outputJSON  bool
	dbPath      string
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "harmonize",
		Short: "Migrate OpenAI API calls to local gpt-oss models",
		Long: `A CLI tool that scans codebases for OpenAI API calls and converts
them to Harmony-format code running on local gpt-oss models.

Typical workflow:
- scan: find API calls and estimate migration complexity
- analyze: estimate current monthly cost and potential savings
- convert: preview the generated Harmony code
- migrate: write generated files and a full report`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&targetModel, "model", "m", "", "Target model (gpt-oss-20b, gpt-oss-120b)")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Inference backend (ollama, vllm)")
	rootCmd.PersistentFlags().StringVarP(&effort, "effort", "e", "", "Reasoning effort (low, medium, high)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Emit JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path for stored runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backendsCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func globalOptions() cli.Options {
	return cli.Options{
		Model:        targetModel,
		Backend:      backend,
		Effort:       effort,
		OutputJSON:   outputJSON,
		DatabasePath: dbPath,
		Verbose:      verbose,
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a repository for OpenAI API calls",
		Long: `Scan a repository for OpenAI API calls.

Python files are parsed structurally; JavaScript and TypeScript files
are matched by pattern. The result includes per-call complexity and an
estimated monthly savings figure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Scan(args[0], globalOptions())
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [path]",
		Short: "Estimate API costs for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Analyze(args[0], globalOptions())
		},
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [path]",
		Short: "Preview Harmony conversions for a repository",
		Long: `Scan a repository and print the Harmony-format code each detected
call would be converted to, without writing any files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Convert(args[0], globalOptions())
		},
	}
}

func migrateCmd() *cobra.Command {
	var outputDir string
	var backup bool

	cmd := &cobra.Command{
		Use:   "migrate [path]",
		Short: "Scan, convert and write Harmony code for a repository",
		Long: `Run the full migration pipeline: scan the repository, convert every
detected call, write one generated Python file per successful
conversion, and print a migration report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := globalOptions()
			opts.OutputDir = outputDir
			opts.Backup = backup
			return cli.Migrate(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "harmonized", "Directory for generated files")
	cmd.Flags().BoolVar(&backup, "backup", false, "Back up affected source files first")

	return cmd
}

func backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Test connections to local inference backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.TestBackends(context.Background(), globalOptions())
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tools available to generated code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verbose)
		},
	}
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListRuns(globalOptions())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a stored run and its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ShowRun(args[0], globalOptions())
		},
	})

	return cmd
}
