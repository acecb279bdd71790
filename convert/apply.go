package convert

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/richinex/harmonize/internal/fileutil"
	"github.com/richinex/harmonize/model"
)

// ApplyOptions controls where converted code is written.
type ApplyOptions struct {
	// Root is the scanned repository root; source paths in records are
	// relative to it.
	Root string
	// OutputDir receives one generated file per successful conversion.
	OutputDir string
	// BackupSources copies each affected source file aside before any
	// output is written, so a migration can be rolled back.
	BackupSources bool
}

// Apply writes successful conversions to disk. Failed records are
// skipped; write errors are recorded on the result rather than aborting
// the batch.
func (c *Converter) Apply(results []model.ConversionResult, opts ApplyOptions) []string {
	backedUp := map[string]bool{}
	var written []string
	for i := range results {
		r := &results[i]
		if !r.Success {
			continue
		}
		source := filepath.Join(opts.Root, r.Original.File)
		if opts.BackupSources && !backedUp[source] {
			if _, err := fileutil.Backup(source); err != nil {
				c.logger.Warn("backup failed", zap.String("file", source), zap.Error(err))
				r.Warnings = append(r.Warnings, "backup failed: "+err.Error())
			}
			backedUp[source] = true
		}
		path, err := fileutil.WriteConverted(opts.OutputDir, r.Original.File, r.Original.Line, r.GeneratedCode)
		if err != nil {
			c.logger.Warn("write failed", zap.String("file", r.Original.File), zap.Error(err))
			r.Success = false
			r.Errors = append(r.Errors, err.Error())
			continue
		}
		written = append(written, path)
	}
	return written
}
