package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/richinex/harmonize/model"
)

// Config controls file selection during a scan.
type Config struct {
	// ExcludePatterns are gitignore-style globs matched against paths
	// relative to the scan root.
	ExcludePatterns []string
	// MaxFileSize is a human-readable size ceiling such as "10MB".
	// Files larger than this are skipped regardless of content.
	MaxFileSize string
}

// DefaultConfig returns the default scan configuration.
func DefaultConfig() Config {
	return Config{
		ExcludePatterns: []string{
			"*.test.py",
			"*.pyc",
			"__pycache__/*",
			"venv/*",
			"node_modules/*",
			".git/*",
			"*.egg-info/*",
		},
		MaxFileSize: "10MB",
	}
}

// Scanner walks a file tree, routes files to detectors by extension,
// and aggregates the detected calls into a repository-level result.
type Scanner struct {
	detectors map[string]Detector
	excludes  *ignore.GitIgnore
	maxBytes  uint64
	logger    *zap.Logger
}

// New creates a scanner from the given configuration.
// Returns an error if the size ceiling cannot be parsed.
func New(cfg Config, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes, err := humanize.ParseBytes(cfg.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max file size %q: %w", cfg.MaxFileSize, err)
	}
	py := NewPythonDetector(logger)
	js := NewJSDetector()
	return &Scanner{
		detectors: map[string]Detector{
			".py": py,
			".js": js,
			".ts": js,
		},
		excludes: ignore.CompileIgnoreLines(cfg.ExcludePatterns...),
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// ScanRepository scans every eligible file under root and returns the
// aggregate result. Per-file failures are logged and skipped; the scan
// itself only fails if the tree cannot be walked at all.
func (s *Scanner) ScanRepository(root string) (model.ScanResult, error) {
	files, err := s.findFiles(root)
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("scanning %s: %w", root, err)
	}

	var calls []model.CallRecord
	for _, path := range files {
		calls = append(calls, s.ScanFile(root, path)...)
	}
	return s.aggregate(calls, len(files)), nil
}

// ScanFile extracts calls from a single file. Unreadable files and
// unrecognized extensions yield no records.
func (s *Scanner) ScanFile(root, path string) []model.CallRecord {
	detector, ok := s.detectors[filepath.Ext(path)]
	if !ok {
		return nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
		return nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return detector.Detect(source, rel)
}

// findFiles enumerates the tree, applying extension routing, exclude
// patterns, and the size ceiling.
func (s *Scanner) findFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("walk error", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.detectors[filepath.Ext(path)]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if s.excludes.MatchesPath(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if uint64(info.Size()) > s.maxBytes {
			s.logger.Debug("skipping oversized file",
				zap.String("file", rel), zap.Int64("bytes", info.Size()))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) aggregate(calls []model.CallRecord, filesScanned int) model.ScanResult {
	totalTokens := 0
	for _, call := range calls {
		totalTokens += call.EstimatedTokens
	}
	return model.ScanResult{
		FilesScanned:   filesScanned,
		CallsFound:     len(calls),
		MonthlySavings: MonthlySavings(totalTokens),
		Complexity:     Classify(calls),
		Calls:          calls,
		Timestamp:      time.Now(),
	}
}

// Classify computes the repository-level migration complexity.
// It is a pure function of the call list:
// no calls, or at most 5 without tool calls, is simple; at most 20, or
// at most 10 when tool calls are present, is medium; anything more is
// complex.
func Classify(calls []model.CallRecord) model.Complexity {
	if len(calls) == 0 {
		return model.ComplexitySimple
	}
	hasFunctions := false
	for _, call := range calls {
		if call.Kind == model.CallFunction {
			hasFunctions = true
			break
		}
	}
	total := len(calls)
	switch {
	case total <= 5 && !hasFunctions:
		return model.ComplexitySimple
	case total <= 20 || (hasFunctions && total <= 10):
		return model.ComplexityMedium
	default:
		return model.ComplexityComplex
	}
}

// Savings assumptions: 100 calls a month at the gpt-3.5-turbo rate.
const (
	assumedMonthlyCalls = 100
	costPer1KTokens     = 0.002
)

// MonthlySavings projects the monthly spend the detected calls would
// incur on the hosted API, formatted as a dollar amount.
func MonthlySavings(totalTokens int) string {
	monthlyTokens := float64(totalTokens) * assumedMonthlyCalls
	return fmt.Sprintf("$%.2f", monthlyTokens/1000*costPer1KTokens)
}
