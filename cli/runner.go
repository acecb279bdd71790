// Command execution for CLI commands.
//
// Information Hiding:
// - Pipeline assembly (scanner, converter, backends, storage) hidden
// - Output formatting hidden
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/richinex/harmonize/analyzer"
	"github.com/richinex/harmonize/config"
	"github.com/richinex/harmonize/convert"
	"github.com/richinex/harmonize/inference"
	"github.com/richinex/harmonize/model"
	"github.com/richinex/harmonize/scanner"
	"github.com/richinex/harmonize/storage"
	"github.com/richinex/harmonize/tools"
)

// Options holds CLI execution options. Zero values defer to loaded
// settings.
type Options struct {
	Model        string
	Backend      string
	Effort       string
	OutputJSON   bool
	OutputDir    string
	Backup       bool
	DatabasePath string
	Verbose      bool
}

// runContext bundles the pieces every command needs.
type runContext struct {
	settings config.Settings
	logger   *zap.Logger
}

func newRunContext(opts Options) (*runContext, error) {
	settings, err := config.New()
	if err != nil {
		return nil, err
	}
	if opts.Model != "" {
		settings.Target.Model = opts.Model
	}
	if opts.Backend != "" {
		settings.Target.Backend = opts.Backend
	}
	if opts.Effort != "" {
		settings.Target.ReasoningEffort = model.ParseReasoningEffort(opts.Effort)
	}
	if opts.DatabasePath != "" {
		settings.Storage.DatabasePath = opts.DatabasePath
	}
	if opts.Verbose {
		settings.Verbose = true
	}

	logger, err := config.NewLogger(settings.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &runContext{settings: settings, logger: logger}, nil
}

func (rc *runContext) newScanner() (*scanner.Scanner, error) {
	cfg := scanner.Config{
		ExcludePatterns: rc.settings.Scan.ExcludePatterns,
		MaxFileSize:     rc.settings.Scan.MaxFileSize,
	}
	return scanner.New(cfg, rc.logger)
}

func (rc *runContext) newConverter() *convert.Converter {
	return convert.New(convert.Options{
		Model:        rc.settings.Target.Model,
		Backend:      rc.settings.Target.Backend,
		Effort:       rc.settings.Target.ReasoningEffort,
		MaxToolTurns: rc.settings.Target.MaxToolTurns,
	}, rc.logger)
}

// Scan walks a repository for OpenAI API calls and prints the result.
// The scan is stored so later commands can reference it by run ID.
func Scan(root string, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	s, err := rc.newScanner()
	if err != nil {
		return err
	}

	fmt.Printf("Scanning %s for OpenAI API calls...\n\n", root)
	result, err := s.ScanRepository(root)
	if err != nil {
		return err
	}

	runID, err := persistScan(rc, root, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to store scan: %v\n", err)
	}

	if opts.OutputJSON {
		return printJSON(result)
	}

	printScanResult(result)
	if runID != "" {
		fmt.Printf("\nRun stored as %s\n", runID)
	}
	return nil
}

// Analyze scans a repository and prints a cost estimate for the calls
// it finds.
func Analyze(root string, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	s, err := rc.newScanner()
	if err != nil {
		return err
	}

	result, err := s.ScanRepository(root)
	if err != nil {
		return err
	}

	counter := analyzer.NewTokenCounter()
	calls := analyzer.RefineTokens(result.Calls, counter)
	rc.logger.Debug("token estimates computed", zap.Bool("exact", counter.Exact()))

	est := analyzer.Analyze(calls)
	if opts.OutputJSON {
		return printJSON(est)
	}

	fmt.Printf("Analyzed %d files, %d API calls\n\n", result.FilesScanned, result.CallsFound)
	fmt.Print(analyzer.Report(est))
	return nil
}

// Convert scans a repository and converts every detected call to
// Harmony-format code, printing each conversion.
func Convert(root string, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	s, err := rc.newScanner()
	if err != nil {
		return err
	}

	result, err := s.ScanRepository(root)
	if err != nil {
		return err
	}

	converter := rc.newConverter()
	conversions := converter.Convert(result.Calls)

	if opts.OutputJSON {
		return printJSON(conversions)
	}

	for i, conv := range conversions {
		fmt.Printf("--- %s:%d (%s) ---\n", conv.Original.File, conv.Original.Line, conv.Original.Kind)
		if !conv.Success {
			for _, e := range conv.Errors {
				fmt.Fprintf(os.Stderr, "Error: %s\n", e)
			}
			continue
		}
		for _, w := range conv.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		fmt.Printf("%s\n", conv.GeneratedCode)
		if i < len(conversions)-1 {
			fmt.Println()
		}
	}
	return nil
}

// Migrate runs the full pipeline: scan, convert, write generated files
// and print a migration report. The report is stored alongside the scan.
func Migrate(root string, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	s, err := rc.newScanner()
	if err != nil {
		return err
	}

	fmt.Printf("Migrating %s to %s on %s...\n\n", root, rc.settings.Target.Model, rc.settings.Target.Backend)

	result, err := s.ScanRepository(root)
	if err != nil {
		return err
	}

	converter := rc.newConverter()
	conversions := converter.Convert(result.Calls)

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "harmonized"
	}
	written := converter.Apply(conversions, convert.ApplyOptions{
		Root:          root,
		OutputDir:     outputDir,
		BackupSources: opts.Backup,
	})
	if rc.settings.Verbose {
		for _, path := range written {
			fmt.Printf("Wrote %s\n", path)
		}
	}

	report := convert.Summarize(result, conversions, convert.Options{
		Model:        rc.settings.Target.Model,
		Backend:      rc.settings.Target.Backend,
		Effort:       rc.settings.Target.ReasoningEffort,
		MaxToolTurns: rc.settings.Target.MaxToolTurns,
	})

	runID, err := persistScan(rc, root, result)
	if err == nil && runID != "" {
		if err := persistMigration(rc, runID, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to store report: %v\n", err)
		}
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to store scan: %v\n", err)
	}

	if opts.OutputJSON {
		return printJSON(report)
	}

	printMigrationReport(report, outputDir)
	if runID != "" {
		fmt.Printf("\nRun stored as %s\n", runID)
	}
	return nil
}

// TestBackends probes the configured local backends and reports which
// are reachable.
func TestBackends(ctx context.Context, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	cfg := inference.Config{
		OllamaHost: rc.settings.Inference.OllamaHost,
		VLLMHost:   rc.settings.Inference.VLLMHost,
		Timeout:    time.Duration(rc.settings.Inference.TimeoutSeconds) * time.Second,
		MaxRetries: rc.settings.Inference.MaxRetries,
	}

	for _, kind := range []string{inference.BackendOllama, inference.BackendVLLM} {
		backend, err := inference.New(rc.settings.Target.Model, kind, cfg)
		if err != nil {
			fmt.Printf("  %-8s error: %v\n", kind, err)
			continue
		}
		if backend.TestConnection(ctx) {
			fmt.Printf("  %-8s reachable\n", kind)
			if rc.settings.Verbose {
				if info, err := backend.ModelInfo(ctx); err == nil {
					printModelInfo(info)
				}
			}
		} else {
			fmt.Printf("  %-8s unreachable\n", kind)
		}
	}
	return nil
}

// ListTools lists the tools available to generated Harmony code.
func ListTools(verbose bool) error {
	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()
	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)
		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}

// ListRuns prints stored scan runs, newest first.
func ListRuns(opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	store, err := storage.Open(rc.settings.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  %d calls  %s  %s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04"),
			run.CallsFound, run.Complexity, run.Root)
	}
	return nil
}

// ShowRun prints a stored scan and, when present, its migration report.
func ShowRun(runID string, opts Options) error {
	rc, err := newRunContext(opts)
	if err != nil {
		return err
	}
	defer rc.logger.Sync()

	store, err := storage.Open(rc.settings.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	scan, err := store.LoadScan(runID)
	if err != nil {
		return err
	}

	if opts.OutputJSON {
		if report, err := store.LoadMigration(runID); err == nil {
			return printJSON(report)
		}
		return printJSON(scan)
	}

	printScanResult(scan)
	if report, err := store.LoadMigration(runID); err == nil {
		fmt.Println()
		printMigrationReport(report, "")
	}
	return nil
}

// Helper functions

func persistScan(rc *runContext, root string, result model.ScanResult) (string, error) {
	store, err := storage.Open(rc.settings.Storage.DatabasePath)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.SaveScan(root, result)
}

func persistMigration(rc *runContext, runID string, report model.MigrationReport) error {
	store, err := storage.Open(rc.settings.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveMigration(runID, report)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printScanResult(result model.ScanResult) {
	fmt.Printf("Files scanned:   %s\n", humanize.Comma(int64(result.FilesScanned)))
	fmt.Printf("API calls found: %s\n", humanize.Comma(int64(result.CallsFound)))
	fmt.Printf("Complexity:      %s\n", result.Complexity)
	fmt.Printf("Est. savings:    %s/month\n", result.MonthlySavings)

	if len(result.Calls) == 0 {
		return
	}
	fmt.Println()
	byKind := make(map[model.CallKind]int)
	for _, call := range result.Calls {
		byKind[call.Kind]++
	}
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-16s %d\n", kind, byKind[model.CallKind(kind)])
	}

	fmt.Println()
	for _, call := range result.Calls {
		fmt.Printf("  %s:%d  %s (%s, ~%d tokens)\n",
			call.File, call.Line, call.Kind, call.Complexity, call.EstimatedTokens)
	}
}

func printMigrationReport(report model.MigrationReport, outputDir string) {
	fmt.Printf("Conversions: %d total, %d succeeded, %d failed (%.0f%%)\n",
		report.Total, report.Succeeded, report.Failed, report.SuccessRate()*100)
	fmt.Printf("Target:      %s on %s\n", report.Model, report.Backend)
	fmt.Printf("Savings:     %s/month\n", report.Savings)
	if outputDir != "" && report.Succeeded > 0 {
		fmt.Printf("Output:      %s/\n", outputDir)
	}

	for _, conv := range report.Conversions {
		if conv.Success {
			continue
		}
		for _, e := range conv.Errors {
			fmt.Fprintf(os.Stderr, "  %s:%d: %s\n", conv.Original.File, conv.Original.Line, e)
		}
	}
}

func printModelInfo(info map[string]any) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("           %s: %v\n", k, info[k])
	}
}
