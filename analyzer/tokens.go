package analyzer

import (
	"math"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/richinex/harmonize/model"
)

// TokenCounter counts tokens in text. The scanner's extraction-time
// estimates use the word heuristic; the analyzer can refine them with a
// real BPE encoding when one is available.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter returns a counter backed by the cl100k_base encoding.
// If the encoding cannot be loaded (for example with no network access
// to fetch the BPE ranks) the counter silently falls back to the
// heuristic.
func NewTokenCounter() *TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &TokenCounter{}
	}
	return &TokenCounter{encoding: enc}
}

// Count returns the token count for text.
func (c *TokenCounter) Count(text string) int {
	if c == nil || c.encoding == nil {
		return HeuristicCount(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// Exact reports whether counts come from a real encoding rather than
// the word heuristic.
func (c *TokenCounter) Exact() bool {
	return c != nil && c.encoding != nil
}

// HeuristicCount approximates token count as 1.3 tokens per word.
func HeuristicCount(text string) int {
	return int(math.Round(float64(len(strings.Fields(text))) * 1.3))
}

// callOverheadTokens is the fixed per-call allowance for role markers
// and formatting, matching the extraction-time estimate.
const callOverheadTokens = 50

// RefineTokens recomputes each call's token estimate with the counter's
// encoding. Without a real encoding the extraction-time estimates
// stand and the input is returned as is.
func RefineTokens(calls []model.CallRecord, c *TokenCounter) []model.CallRecord {
	if !c.Exact() {
		return calls
	}
	out := make([]model.CallRecord, len(calls))
	for i, call := range calls {
		out[i] = call
		out[i].EstimatedTokens = callTokens(call, c.Count)
	}
	return out
}

// callTokens totals counted tokens over the call's literal message
// contents and prompt, plus the fixed overhead, floored at the minimum
// estimate. Placeholder parameters contribute nothing.
func callTokens(rec model.CallRecord, count func(string) int) int {
	total := 0
	if messages, ok := rec.Params["messages"].Seq(); ok {
		for _, msg := range messages {
			if m, ok := msg.Map(); ok {
				if content, ok := m["content"].Str(); ok {
					total += count(content)
				}
			}
		}
	}
	if prompt, ok := rec.Params["prompt"].Str(); ok {
		total += count(prompt)
	}
	total += callOverheadTokens
	if total < model.MinTokenEstimate {
		return model.MinTokenEstimate
	}
	return total
}
