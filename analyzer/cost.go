// Package analyzer estimates the hosted-API cost of detected calls and
// the savings a local migration would yield.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/richinex/harmonize/model"
)

// costPer1KTokens is the hosted-API price table in dollars per 1K tokens.
var costPer1KTokens = map[string]float64{
	"gpt-4":                  0.03,
	"gpt-4-32k":              0.06,
	"gpt-3.5-turbo":          0.0015,
	"gpt-3.5-turbo-16k":      0.003,
	"text-embedding-ada-002": 0.0001,
	"text-davinci-003":       0.02,
}

// defaultModelRate applies when a call's model is unknown or dynamic.
const defaultModelRate = 0.002

// savingsFactor assumes local inference removes this share of spend.
const savingsFactor = 0.8

// Estimate summarizes projected hosted-API costs for a set of calls.
type Estimate struct {
	MonthlyCost      float64                    `json:"monthly_cost"`
	PotentialSavings float64                    `json:"potential_savings"`
	Breakdown        map[model.CallKind]float64 `json:"breakdown"`
	CallCounts       map[model.CallKind]int     `json:"call_counts"`
}

// CallCost is a pure function producing a single call's projected
// monthly cost from its token estimate and model parameter.
func CallCost(rec model.CallRecord) float64 {
	rate := defaultModelRate
	if name, ok := rec.Params["model"].Str(); ok {
		if r, ok := costPer1KTokens[name]; ok {
			rate = r
		}
	}
	const monthlyCalls = 100
	return float64(rec.EstimatedTokens) * monthlyCalls / 1000 * rate
}

// Analyze estimates costs across a call list.
func Analyze(calls []model.CallRecord) Estimate {
	est := Estimate{
		Breakdown:  map[model.CallKind]float64{},
		CallCounts: map[model.CallKind]int{},
	}
	for _, call := range calls {
		cost := CallCost(call)
		est.MonthlyCost += cost
		est.Breakdown[call.Kind] += cost
		est.CallCounts[call.Kind]++
	}
	est.PotentialSavings = est.MonthlyCost * savingsFactor
	return est
}

// Report renders a plain-text cost report.
func Report(est Estimate) string {
	var b strings.Builder
	b.WriteString("Cost Analysis\n")
	b.WriteString("=============\n")
	fmt.Fprintf(&b, "Projected monthly cost:  $%.2f\n", est.MonthlyCost)
	fmt.Fprintf(&b, "Potential savings:       $%.2f\n\n", est.PotentialSavings)

	kinds := make([]string, 0, len(est.Breakdown))
	for kind := range est.Breakdown {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		k := model.CallKind(kind)
		fmt.Fprintf(&b, "  %-18s %3d calls  $%.2f/mo\n", kind, est.CallCounts[k], est.Breakdown[k])
	}
	return b.String()
}
