package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Knetic/govaluate"
)

// WeatherTool returns canned weather data for a location. It exists so
// migrated examples that declared a weather function have a working
// counterpart to route to.
type WeatherTool struct{}

// NewWeatherTool creates the weather tool.
func NewWeatherTool() *WeatherTool { return &WeatherTool{} }

// Metadata describes the weather tool.
func (t *WeatherTool) Metadata() Metadata {
	return Metadata{
		Name:        "weather_tool",
		Description: "Get weather information for a location",
		Parameters: []Parameter{
			{Name: "location", ParamType: "string", Description: "City or place name", Required: true},
		},
	}
}

// Execute returns stubbed weather data.
func (t *WeatherTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}
	if params.Location == "" {
		params.Location = "Unknown"
	}
	out, err := json.Marshal(map[string]string{
		"location":    params.Location,
		"temperature": "72°F",
		"condition":   "Sunny",
		"humidity":    "45%",
		"wind":        "5 mph",
	})
	if err != nil {
		return Result{}, err
	}
	return SuccessResult(string(out)), nil
}

// TimeTool reports the current time.
type TimeTool struct {
	// now is swappable for tests.
	now func() time.Time
}

// NewTimeTool creates the time tool.
func NewTimeTool() *TimeTool {
	return &TimeTool{now: time.Now}
}

// Metadata describes the time tool.
func (t *TimeTool) Metadata() Metadata {
	return Metadata{
		Name:        "time_tool",
		Description: "Get current time information",
	}
}

// Execute returns the current date and time.
func (t *TimeTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	now := t.now().UTC()
	out, err := json.Marshal(map[string]any{
		"current_time": now.Format("15:04:05"),
		"current_date": now.Format("2006-01-02"),
		"timezone":     "UTC",
		"timestamp":    now.Unix(),
	})
	if err != nil {
		return Result{}, err
	}
	return SuccessResult(string(out)), nil
}

// CalculatorTool evaluates arithmetic expressions. Expressions are
// parsed by govaluate, never executed as code.
type CalculatorTool struct{}

// NewCalculatorTool creates the calculator tool.
func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

// Metadata describes the calculator tool.
func (t *CalculatorTool) Metadata() Metadata {
	return Metadata{
		Name:        "calculator_tool",
		Description: "Perform mathematical calculations",
		Parameters: []Parameter{
			{Name: "expression", ParamType: "string", Description: "Arithmetic expression to evaluate", Required: true},
		},
	}
}

// Execute evaluates the expression and returns the numeric result.
func (t *CalculatorTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return FailureResultf("invalid arguments: %v", err), nil
	}
	if params.Expression == "" {
		return FailureResultf("missing required parameter: expression"), nil
	}

	expr, err := govaluate.NewEvaluableExpression(params.Expression)
	if err != nil {
		return FailureResultf("invalid expression %q: %v", params.Expression, err), nil
	}
	value, err := expr.Evaluate(nil)
	if err != nil {
		return FailureResultf("evaluating %q: %v", params.Expression, err), nil
	}

	out, err := json.Marshal(map[string]any{
		"expression": params.Expression,
		"result":     value,
	})
	if err != nil {
		return Result{}, err
	}
	return SuccessResult(string(out)), nil
}
