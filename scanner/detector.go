// Package scanner locates OpenAI API call sites in source trees and
// extracts them as structured call records.
//
// Two extraction strategies exist per lexical family: a structural parse
// (precise, Python only) and a line-pattern scan (best effort, used as a
// fallback and for JavaScript/TypeScript). Detectors never fail: on an
// unrecoverable parse they fall back, and on total failure they return
// no records.
package scanner

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/richinex/harmonize/model"
)

// Detector extracts call records from a single file's source text.
type Detector interface {
	// Detect returns all recognized call sites in source. It never
	// returns an error; undetectable input yields an empty slice.
	Detect(source []byte, path string) []model.CallRecord
}

// linePattern pairs a regular expression with the call kind it proves.
type linePattern struct {
	re   *regexp.Regexp
	kind model.CallKind
}

// snippetRe captures the call text for fallback snippets. The argument
// list must open right after the dotted path so that URL hosts like
// api.openai.com never match; those lines keep the trimmed line.
var snippetRe = regexp.MustCompile(`openai\.[\w.]+\([^)]*\)`)

// scanLines is the shared pattern-based strategy. It proves call
// existence and rough location only: parameter mappings stay empty and
// the token estimate is the fixed floor.
func scanLines(source []byte, path string, patterns []linePattern) []model.CallRecord {
	var calls []model.CallRecord
	for i, line := range strings.Split(string(source), "\n") {
		for _, p := range patterns {
			if !p.re.MatchString(line) {
				continue
			}
			snippet := strings.TrimSpace(line)
			if m := snippetRe.FindString(line); m != "" {
				snippet = m
			}
			calls = append(calls, model.CallRecord{
				File:            path,
				Line:            i + 1,
				Kind:            p.kind,
				Complexity:      model.ComplexitySimple,
				EstimatedTokens: model.MinTokenEstimate,
				Snippet:         snippet,
			})
		}
	}
	return calls
}

// estimateTokens sums word counts across message contents and the prompt,
// scaled by 1.3 words-per-token, plus a fixed 50-token call overhead.
// The result never drops below model.MinTokenEstimate.
func estimateTokens(params map[string]Value) int {
	total := 0.0
	if messages, ok := seqOf(params["messages"]); ok {
		for _, msg := range messages {
			if m, ok := msg.Map(); ok {
				if content, ok := m["content"].Str(); ok {
					total += float64(len(strings.Fields(content))) * 1.3
				}
			}
		}
	}
	if prompt, ok := params["prompt"].Str(); ok {
		total += float64(len(strings.Fields(prompt))) * 1.3
	}
	total += 50
	if total < model.MinTokenEstimate {
		return model.MinTokenEstimate
	}
	return int(math.Round(total))
}

// Value is re-exported for brevity inside this package.
type Value = model.Value

func seqOf(v Value) ([]Value, bool) {
	return v.Seq()
}

// classifyCall assigns a complexity tier to a single call. Tool-bearing
// calls are always complex; otherwise the tier escalates with keyword
// argument count and the presence of a multi-turn message list.
func classifyCall(params map[string]Value, hasTools bool) model.Complexity {
	if hasTools || len(params) > 5 {
		return model.ComplexityComplex
	}
	multiTurn := false
	if messages, ok := seqOf(params["messages"]); ok && len(messages) > 1 {
		multiTurn = true
	}
	if multiTurn || len(params) > 3 {
		return model.ComplexityMedium
	}
	return model.ComplexitySimple
}

// toolSchemasFromValue interprets an extracted "functions" or "tools"
// parameter as a list of tool schemas. Entries that are not literal
// mappings (for example placeholder variables) are skipped.
func toolSchemasFromValue(v Value) []model.ToolSchema {
	items, ok := v.Seq()
	if !ok {
		return nil
	}
	var schemas []model.ToolSchema
	for _, item := range items {
		entry, ok := item.Map()
		if !ok {
			continue
		}
		// Newer tool declarations nest the schema under "function".
		if fn, ok := entry["function"].Map(); ok {
			entry = fn
		}
		schema := model.ToolSchema{}
		schema.Name, _ = entry["name"].Str()
		schema.Description, _ = entry["description"].Str()
		if schema.Name == "" {
			continue
		}
		schema.Properties = toolPropertiesFromValue(entry["parameters"])
		schemas = append(schemas, schema)
	}
	return schemas
}

func toolPropertiesFromValue(params Value) []model.ToolProperty {
	pm, ok := params.Map()
	if !ok {
		return nil
	}
	if t, _ := pm["type"].Str(); t != "object" {
		return nil
	}
	props, ok := pm["properties"].Map()
	if !ok {
		return nil
	}
	required := map[string]bool{}
	if reqs, ok := pm["required"].Seq(); ok {
		for _, r := range reqs {
			if name, ok := r.Str(); ok {
				required[name] = true
			}
		}
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	// Mapping order is not preserved by extraction; sort for stable output.
	sort.Strings(names)
	out := make([]model.ToolProperty, 0, len(names))
	for _, name := range names {
		prop := model.ToolProperty{Name: name, Type: "string", Required: required[name]}
		if def, ok := props[name].Map(); ok {
			if t, ok := def["type"].Str(); ok {
				prop.Type = t
			}
			prop.Description, _ = def["description"].Str()
		}
		out = append(out, prop)
	}
	return out
}
