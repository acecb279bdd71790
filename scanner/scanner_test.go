package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinex/harmonize/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestScanRepository(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", `import openai
r = openai.ChatCompletion.create(model="gpt-4", messages=[{"role": "user", "content": "Hi"}])
`)
	writeFile(t, dir, "client.js", `const r = await openai.createCompletion({model: "text-davinci-003"});
`)
	writeFile(t, dir, "README.md", "no code here")

	s, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := s.ScanRepository(dir)
	if err != nil {
		t.Fatalf("ScanRepository failed: %v", err)
	}

	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
	if result.CallsFound != 2 {
		t.Errorf("CallsFound = %d, want 2", result.CallsFound)
	}
	if result.Complexity != model.ComplexitySimple {
		t.Errorf("Complexity = %q, want simple", result.Complexity)
	}
	if !strings.HasPrefix(result.MonthlySavings, "$") {
		t.Errorf("MonthlySavings = %q", result.MonthlySavings)
	}
	for _, call := range result.Calls {
		if filepath.IsAbs(call.File) {
			t.Errorf("call file should be relative, got %q", call.File)
		}
	}
}

func TestScanRepositoryEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.py", "x = 1\n")

	s, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := s.ScanRepository(dir)
	if err != nil {
		t.Fatalf("ScanRepository failed: %v", err)
	}
	if result.CallsFound != 0 {
		t.Errorf("CallsFound = %d, want 0", result.CallsFound)
	}
	if result.Complexity != model.ComplexitySimple {
		t.Errorf("zero calls must classify simple, got %q", result.Complexity)
	}
	if result.MonthlySavings != "$0.00" {
		t.Errorf("MonthlySavings = %q, want $0.00", result.MonthlySavings)
	}
}

func TestScanRespectsExcludes(t *testing.T) {
	dir := t.TempDir()
	code := `import openai
r = openai.Completion.create(prompt="hi")
`
	writeFile(t, dir, "keep.py", code)
	writeFile(t, dir, "venv/skip.py", code)
	writeFile(t, dir, "node_modules/skip.js", `openai.createCompletion({})`)

	s, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := s.ScanRepository(dir)
	if err != nil {
		t.Fatalf("ScanRepository failed: %v", err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", result.FilesScanned)
	}
	if result.CallsFound != 1 {
		t.Errorf("CallsFound = %d, want 1", result.CallsFound)
	}
}

func TestScanSkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	big := "# " + strings.Repeat("x", 2048) + "\nimport openai\nopenai.Completion.create(prompt=\"hi\")\n"
	writeFile(t, dir, "big.py", big)

	cfg := DefaultConfig()
	cfg.MaxFileSize = "1KB"
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := s.ScanRepository(dir)
	if err != nil {
		t.Fatalf("ScanRepository failed: %v", err)
	}
	if result.FilesScanned != 0 {
		t.Errorf("oversized file was scanned")
	}
}

func TestScannerRejectsBadSizeCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = "lots"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unparseable size")
	}
}

func TestClassify(t *testing.T) {
	call := func(kind model.CallKind) model.CallRecord {
		return model.CallRecord{Kind: kind}
	}
	repeat := func(rec model.CallRecord, n int) []model.CallRecord {
		out := make([]model.CallRecord, n)
		for i := range out {
			out[i] = rec
		}
		return out
	}

	tests := []struct {
		name  string
		calls []model.CallRecord
		want  model.Complexity
	}{
		{"none", nil, model.ComplexitySimple},
		{"few chat", repeat(call(model.CallChatCompletion), 5), model.ComplexitySimple},
		{"few with functions", repeat(call(model.CallFunction), 3), model.ComplexityMedium},
		{"twenty chat", repeat(call(model.CallChatCompletion), 20), model.ComplexityMedium},
		{"many", repeat(call(model.CallChatCompletion), 21), model.ComplexityComplex},
	}
	for _, tt := range tests {
		if got := Classify(tt.calls); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	calls := []model.CallRecord{
		{Kind: model.CallChatCompletion},
		{Kind: model.CallFunction},
	}
	first := Classify(calls)
	for i := 0; i < 3; i++ {
		if got := Classify(calls); got != first {
			t.Fatalf("classification changed on repeat: %q then %q", first, got)
		}
	}
}

func TestMonthlySavings(t *testing.T) {
	// 1000 tokens * 100 calls / 1000 * $0.002 = $0.20
	if got := MonthlySavings(1000); got != "$0.20" {
		t.Errorf("MonthlySavings(1000) = %q, want $0.20", got)
	}
	if got := MonthlySavings(0); got != "$0.00" {
		t.Errorf("MonthlySavings(0) = %q, want $0.00", got)
	}
}
