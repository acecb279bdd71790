package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richinex/harmonize/model"
)

func TestApplyWritesSuccessesOnly(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "harmonized")
	if err := os.WriteFile(filepath.Join(root, "app.py"), []byte("code\n"), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	c := New(testOptions(), nil)
	results := []model.ConversionResult{
		{Original: model.CallRecord{File: "app.py", Line: 10}, GeneratedCode: "print(1)\n", Success: true},
		{Original: model.CallRecord{File: "app.py", Line: 20}, Success: false},
	}

	written := c.Apply(results, ApplyOptions{Root: root, OutputDir: outDir})
	if len(written) != 1 {
		t.Fatalf("wrote %d files, want 1", len(written))
	}
	if filepath.Base(written[0]) != "app_L10_harmony.py" {
		t.Errorf("output name = %q", filepath.Base(written[0]))
	}
	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "print(1)\n" {
		t.Errorf("output content = %q", data)
	}
}

func TestApplyBacksUpSource(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "app.py")
	if err := os.WriteFile(source, []byte("original\n"), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	c := New(testOptions(), nil)
	results := []model.ConversionResult{
		{Original: model.CallRecord{File: "app.py", Line: 1}, GeneratedCode: "x\n", Success: true},
		{Original: model.CallRecord{File: "app.py", Line: 2}, GeneratedCode: "y\n", Success: true},
	}

	c.Apply(results, ApplyOptions{
		Root:          root,
		OutputDir:     filepath.Join(root, "out"),
		BackupSources: true,
	})

	backup, err := os.ReadFile(source + ".backup")
	if err != nil {
		t.Fatalf("backup not created: %v", err)
	}
	if string(backup) != "original\n" {
		t.Errorf("backup content = %q", backup)
	}
}
