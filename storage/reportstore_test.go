package storage

import (
	"errors"
	"testing"

	"github.com/richinex/harmonize/model"
)

func TestSaveAndLoadScan(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	result := model.ScanResult{
		FilesScanned:   3,
		CallsFound:     2,
		MonthlySavings: "$4.20",
		Complexity:     model.ComplexitySimple,
		Calls: []model.CallRecord{
			{File: "app.py", Line: 10, Kind: model.CallChatCompletion, EstimatedTokens: 150},
		},
	}

	runID, err := store.SaveScan("/repo", result)
	if err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	loaded, err := store.LoadScan(runID)
	if err != nil {
		t.Fatalf("LoadScan failed: %v", err)
	}
	if loaded.CallsFound != 2 || loaded.MonthlySavings != "$4.20" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Calls) != 1 || loaded.Calls[0].File != "app.py" {
		t.Errorf("calls = %+v", loaded.Calls)
	}
}

func TestLoadScanNotFound(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadScan("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSaveAndLoadMigration(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	runID, err := store.SaveScan("/repo", model.ScanResult{CallsFound: 1})
	if err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	report := model.MigrationReport{
		Total:     1,
		Succeeded: 1,
		Model:     "gpt-oss-20b",
		Backend:   "ollama",
	}
	if err := store.SaveMigration(runID, report); err != nil {
		t.Fatalf("SaveMigration failed: %v", err)
	}

	loaded, err := store.LoadMigration(runID)
	if err != nil {
		t.Fatalf("LoadMigration failed: %v", err)
	}
	if loaded.Succeeded != 1 || loaded.Model != "gpt-oss-20b" {
		t.Errorf("loaded = %+v", loaded)
	}

	if _, err := store.LoadMigration("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	id1, err := store.SaveScan("/a", model.ScanResult{CallsFound: 1, Complexity: model.ComplexitySimple})
	if err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}
	id2, err := store.SaveScan("/b", model.ScanResult{CallsFound: 7, Complexity: model.ComplexityMedium})
	if err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	runs, err = store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	seen := map[string]bool{}
	for _, run := range runs {
		seen[run.ID] = true
	}
	if !seen[id1] || !seen[id2] {
		t.Errorf("runs missing saved IDs: %v", seen)
	}
}
