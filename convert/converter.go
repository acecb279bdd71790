// Package convert maps detected call records into Harmony conversations
// and rewritten source text.
package convert

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richinex/harmonize/harmony"
	"github.com/richinex/harmonize/model"
)

// embeddingUnsupported is the fixed reason every embedding-kind call
// fails conversion: the Harmony format has no embedding equivalent.
const embeddingUnsupported = "embedding calls are not supported in Harmony format"

// Options configures a conversion run.
type Options struct {
	Model        string
	Backend      string
	Effort       model.ReasoningEffort
	MaxToolTurns int
}

// Converter turns call records into conversion results. Individual
// failures never abort a batch.
type Converter struct {
	builder *harmony.Builder
	codegen *harmony.Codegen
	logger  *zap.Logger
}

// New creates a converter.
func New(opts Options, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	codegen := harmony.NewCodegen(opts.Model, opts.Backend, opts.Effort)
	if opts.MaxToolTurns > 0 {
		codegen.MaxToolTurns = opts.MaxToolTurns
	}
	return &Converter{
		builder: harmony.NewBuilder(opts.Model, opts.Effort),
		codegen: codegen,
		logger:  logger,
	}
}

// Convert processes every record, collecting successes and failures
// without short-circuiting.
func (c *Converter) Convert(calls []model.CallRecord) []model.ConversionResult {
	results := make([]model.ConversionResult, 0, len(calls))
	for _, call := range calls {
		result := c.ConvertOne(call)
		if !result.Success {
			c.logger.Debug("conversion failed",
				zap.String("file", call.File),
				zap.Int("line", call.Line),
				zap.Strings("errors", result.Errors))
		}
		results = append(results, result)
	}
	return results
}

// ConvertOne converts a single call record. Unsupported kinds and
// validation failures surface as failed results, never as errors.
func (c *Converter) ConvertOne(call model.CallRecord) model.ConversionResult {
	result := model.ConversionResult{
		Original:        call,
		EstimatedTokens: call.EstimatedTokens,
	}

	switch call.Kind {
	case model.CallChatCompletion, model.CallCompletion, model.CallFunction:
	case model.CallEmbedding:
		result.Errors = append(result.Errors, embeddingUnsupported)
		return result
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported call type: %s", call.Kind))
		return result
	}

	conv := c.builder.Build(call.Params, call.Tools, call.Kind)
	if errs := harmony.Validate(conv); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result
	}

	result.GeneratedCode = c.codegen.Generate(conv, call)
	result.Conversation = conv
	result.Success = true
	if len(call.Tools) > 0 {
		result.Warnings = append(result.Warnings,
			"function calls converted to Harmony tools - manual review recommended")
	}
	return result
}

// Summarize rolls conversion results into a migration report.
func Summarize(scan model.ScanResult, results []model.ConversionResult, opts Options) model.MigrationReport {
	report := model.MigrationReport{
		Scan:        scan,
		Conversions: results,
		Total:       len(results),
		Model:       opts.Model,
		Backend:     opts.Backend,
		Savings:     scan.MonthlySavings,
		Timestamp:   time.Now(),
	}
	for _, r := range results {
		if r.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report
}
