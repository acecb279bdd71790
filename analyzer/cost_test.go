package analyzer

import (
	"math"
	"strings"
	"testing"

	"github.com/richinex/harmonize/model"
)

func TestCallCostKnownModel(t *testing.T) {
	rec := model.CallRecord{
		Kind:            model.CallChatCompletion,
		EstimatedTokens: 1000,
		Params: map[string]model.Value{
			"model": model.StringValue("gpt-4"),
		},
	}
	// 1000 tokens * 100 calls / 1000 * $0.03 = $3.00
	if got := CallCost(rec); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("CallCost = %v, want 3.0", got)
	}
}

func TestCallCostDefaultRate(t *testing.T) {
	rec := model.CallRecord{
		EstimatedTokens: 1000,
		Params: map[string]model.Value{
			"model": model.PlaceholderValue("model_name"),
		},
	}
	// Unknown model falls back to the default rate: 1000 * 100 / 1000 * 0.002 = $0.20
	if got := CallCost(rec); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("CallCost = %v, want 0.2", got)
	}
}

func TestAnalyze(t *testing.T) {
	calls := []model.CallRecord{
		{Kind: model.CallChatCompletion, EstimatedTokens: 1000,
			Params: map[string]model.Value{"model": model.StringValue("gpt-4")}},
		{Kind: model.CallEmbedding, EstimatedTokens: 500},
	}

	est := Analyze(calls)
	if est.CallCounts[model.CallChatCompletion] != 1 || est.CallCounts[model.CallEmbedding] != 1 {
		t.Errorf("counts = %v", est.CallCounts)
	}
	wantCost := 3.0 + 0.1
	if math.Abs(est.MonthlyCost-wantCost) > 1e-9 {
		t.Errorf("MonthlyCost = %v, want %v", est.MonthlyCost, wantCost)
	}
	if math.Abs(est.PotentialSavings-wantCost*0.8) > 1e-9 {
		t.Errorf("PotentialSavings = %v", est.PotentialSavings)
	}
}

func TestReport(t *testing.T) {
	est := Analyze([]model.CallRecord{
		{Kind: model.CallChatCompletion, EstimatedTokens: 1000},
	})
	text := Report(est)
	for _, want := range []string{"Cost Analysis", "monthly cost", "chat_completion"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestHeuristicCount(t *testing.T) {
	if got := HeuristicCount(""); got != 0 {
		t.Errorf("empty text = %d", got)
	}
	// 10 words * 1.3 = 13
	if got := HeuristicCount("a b c d e f g h i j"); got != 13 {
		t.Errorf("got %d, want 13", got)
	}
}

func TestTokenCounterFallsBack(t *testing.T) {
	var c *TokenCounter
	if got := c.Count("one two three"); got != HeuristicCount("one two three") {
		t.Errorf("nil counter should use heuristic, got %d", got)
	}
	if c.Exact() {
		t.Error("nil counter reported exact")
	}
}

func TestRefineTokensWithoutEncoding(t *testing.T) {
	calls := []model.CallRecord{
		{Kind: model.CallChatCompletion, EstimatedTokens: 310},
	}
	got := RefineTokens(calls, &TokenCounter{})
	if got[0].EstimatedTokens != 310 {
		t.Errorf("estimate changed without an encoding: %d", got[0].EstimatedTokens)
	}
}

func TestCallTokens(t *testing.T) {
	words := func(s string) int { return len(strings.Fields(s)) }

	rec := model.CallRecord{
		Params: map[string]model.Value{
			"messages": model.SequenceValue(
				model.MappingValue(map[string]model.Value{
					"role":    model.StringValue("system"),
					"content": model.StringValue("a b c"),
				}),
				model.MappingValue(map[string]model.Value{
					"role":    model.StringValue("user"),
					"content": model.StringValue(strings.Repeat("w ", 100)),
				}),
			),
		},
	}
	// 3 + 100 words + 50 overhead
	if got := callTokens(rec, words); got != 153 {
		t.Errorf("callTokens = %d, want 153", got)
	}

	prompt := model.CallRecord{
		Params: map[string]model.Value{"prompt": model.StringValue("x y")},
	}
	// 2 + 50 is below the floor
	if got := callTokens(prompt, words); got != model.MinTokenEstimate {
		t.Errorf("short prompt = %d, want floor %d", got, model.MinTokenEstimate)
	}

	placeholder := model.CallRecord{
		Params: map[string]model.Value{"messages": model.PlaceholderValue("msgs")},
	}
	if got := callTokens(placeholder, words); got != model.MinTokenEstimate {
		t.Errorf("placeholder params = %d, want floor", got)
	}
}
