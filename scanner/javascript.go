package scanner

import (
	"regexp"

	"github.com/richinex/harmonize/model"
)

// jsPatterns covers the OpenAI Node SDK surface plus direct network
// calls to the hosted API host.
var jsPatterns = []linePattern{
	{regexp.MustCompile(`openai\.createChatCompletion\s*\(`), model.CallChatCompletion},
	{regexp.MustCompile(`openai\.createCompletion\s*\(`), model.CallCompletion},
	{regexp.MustCompile(`openai\.createEmbedding\s*\(`), model.CallEmbedding},
	{regexp.MustCompile(`openai\.createFineTune\s*\(`), model.CallFineTune},
	{regexp.MustCompile(`fetch\s*\(\s*["']https://api\.openai\.com`), model.CallChatCompletion},
}

// JSDetector extracts call records from JavaScript and TypeScript
// source. No structural parser exists for this family; the pattern
// strategy is the only one.
type JSDetector struct{}

// NewJSDetector creates a JavaScript/TypeScript detector.
func NewJSDetector() *JSDetector {
	return &JSDetector{}
}

// Detect scans line by line against the fixed pattern table. fetch-based
// calls carry the full line as their snippet.
func (d *JSDetector) Detect(source []byte, path string) []model.CallRecord {
	return scanLines(source, path, jsPatterns)
}
