package report

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/results"
)

func sampleManager() *results.Manager {
	m := results.NewManager()

	ok := model.NewTestResult("leaf1", "VerifyUptime", "Verifies uptime", []string{"software"})
	ok.Success()
	m.Add(ok)

	bad := model.NewTestResult("leaf1", "VerifyBGPPeersHealth", "Verifies BGP peers", []string{"bgp"})
	bad.Failure("peer 10.1.0.1 state is Idle, expected Established")
	m.Add(bad)

	errored := model.NewTestResult("spine1", "VerifyUptime", "Verifies uptime", []string{"software"})
	errored.Error("connection refused")
	m.Add(errored)

	skipped := model.NewTestResult("spine1", "VerifyTemperature", "Verifies temperature", []string{"hardware"})
	skipped.Skipped("not supported on platform")
	m.Add(skipped)

	return m
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleManager()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"DEVICE", "leaf1", "spine1", "VerifyBGPPeersHealth", "CATEGORY", "Total: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Results are sorted by device then test: leaf1 rows before spine1 rows.
	if strings.Index(out, "leaf1") > strings.Index(out, "spine1") {
		t.Error("device sort order is wrong")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleManager()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(records))
	}
	if records[0]["test"] != "VerifyUptime" || records[0]["result"] != "success" {
		t.Errorf("records[0] = %v", records[0])
	}
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJUnit(&buf, sampleManager()); err != nil {
		t.Fatalf("WriteJUnit: %v", err)
	}

	var suites junitTestSuites
	if err := xml.Unmarshal(buf.Bytes(), &suites); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(suites.Suites) != 2 {
		t.Fatalf("len(Suites) = %d, want 2 (one per device)", len(suites.Suites))
	}

	leaf1 := suites.Suites[0]
	if leaf1.Name != "leaf1" || leaf1.Tests != 2 || leaf1.Failures != 1 {
		t.Errorf("leaf1 suite = %+v", leaf1)
	}

	spine1 := suites.Suites[1]
	if spine1.Errors != 1 || spine1.Skipped != 1 {
		t.Errorf("spine1 suite = %+v", spine1)
	}
}

func TestWriteJUnit_UnsetIsError(t *testing.T) {
	m := results.NewManager()
	m.Add(model.NewTestResult("leaf1", "VerifyNothing", "", nil))

	var buf bytes.Buffer
	if err := WriteJUnit(&buf, m); err != nil {
		t.Fatalf("WriteJUnit: %v", err)
	}

	var suites junitTestSuites
	if err := xml.Unmarshal(buf.Bytes(), &suites); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if suites.Suites[0].Errors != 1 {
		t.Errorf("unset result should count as a suite error: %+v", suites.Suites[0])
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleManager()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"## Failures", "| leaf1 |", "connection refused", "peer 10.1.0.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHistory_SaveAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	hist, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer hist.Close()

	ctx := context.Background()
	first, err := hist.SaveRun(ctx, sampleManager())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	second, err := hist.SaveRun(ctx, sampleManager())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if second <= first {
		t.Errorf("run ids should increase: %d then %d", first, second)
	}

	runs, err := hist.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != second {
		t.Errorf("runs[0].ID = %d, want %d", runs[0].ID, second)
	}
	if runs[0].Total != 4 {
		t.Errorf("Total = %d, want 4", runs[0].Total)
	}
	if !runs[0].ErrorStatus {
		t.Error("ErrorStatus should persist as true")
	}
	if runs[0].Status != "failure" {
		t.Errorf("Status = %q, want failure", runs[0].Status)
	}
}
