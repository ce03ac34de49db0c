package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTestResult_New(t *testing.T) {
	r := NewTestResult("leaf1", "VerifyUptime", "Checks uptime", []string{"system"})

	if r.Name != "leaf1" {
		t.Errorf("Name = %q, want %q", r.Name, "leaf1")
	}
	if r.Test != "VerifyUptime" {
		t.Errorf("Test = %q, want %q", r.Test, "VerifyUptime")
	}
	if r.Result != StatusUnset {
		t.Errorf("Result = %q, want %q", r.Result, StatusUnset)
	}
	if len(r.Messages) != 0 {
		t.Errorf("Messages should start empty, got %v", r.Messages)
	}
}

func TestTestResult_Precedence(t *testing.T) {
	tests := []struct {
		name string
		ops  func(r *TestResult)
		want TestStatus
	}{
		{"success stays success", func(r *TestResult) { r.Success() }, StatusSuccess},
		{"failure overrides success", func(r *TestResult) { r.Success(); r.Failure("bad") }, StatusFailure},
		{"success does not override failure", func(r *TestResult) { r.Failure("bad"); r.Success() }, StatusFailure},
		{"success overrides skipped", func(r *TestResult) { r.Skipped(); r.Success() }, StatusSuccess},
		{"skipped does not override success", func(r *TestResult) { r.Success(); r.Skipped() }, StatusSuccess},
		{"skipped does not override failure", func(r *TestResult) { r.Failure("bad"); r.Skipped() }, StatusFailure},
		{"error overrides failure", func(r *TestResult) { r.Failure("bad"); r.Error("boom") }, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTestResult("leaf1", "T", "", nil)
			tt.ops(r)
			if r.Result != tt.want {
				t.Errorf("Result = %q, want %q", r.Result, tt.want)
			}
		})
	}
}

func TestTestResult_ErrorIsTerminal(t *testing.T) {
	r := NewTestResult("leaf1", "T", "", nil)
	r.Error("connection refused")
	r.Success("should not matter")
	r.Failure("neither should this")

	if r.Result != StatusError {
		t.Errorf("Result = %q, want %q", r.Result, StatusError)
	}
	if !r.HasError() {
		t.Error("HasError() should be true")
	}
	// Messages from later calls are still appended.
	if len(r.Messages) != 3 {
		t.Errorf("len(Messages) = %d, want 3", len(r.Messages))
	}
}

func TestTestResult_MessagesAccumulate(t *testing.T) {
	r := NewTestResult("leaf1", "T", "", nil)
	r.Failure("first")
	r.Failure("second")

	if got := strings.Join(r.Messages, ";"); got != "first;second" {
		t.Errorf("Messages = %q, want %q", got, "first;second")
	}
}

func TestTestResult_AtomicRollup(t *testing.T) {
	r := NewTestResult("leaf1", "VerifyBGPPeersHealth", "", []string{"bgp"})

	r.Atomic("10.0.0.1").Success()
	r.Atomic("10.0.0.2").Failure("session Idle")
	r.Atomic("10.0.0.3").Success()
	r.Finalize()

	if r.Result != StatusFailure {
		t.Errorf("Result = %q, want %q", r.Result, StatusFailure)
	}
	if len(r.Messages) != 1 || r.Messages[0] != "session Idle" {
		t.Errorf("Messages = %v, want [session Idle]", r.Messages)
	}
	if len(r.Atomics()) != 3 {
		t.Errorf("len(Atomics()) = %d, want 3", len(r.Atomics()))
	}
}

func TestTestResult_AtomicAllSuccess(t *testing.T) {
	r := NewTestResult("leaf1", "T", "", nil)
	r.Atomic("a").Success()
	r.Atomic("b").Success()
	r.Finalize()

	if r.Result != StatusSuccess {
		t.Errorf("Result = %q, want %q", r.Result, StatusSuccess)
	}
}

func TestTestResult_AtomicErrorPropagates(t *testing.T) {
	r := NewTestResult("leaf1", "T", "", nil)
	r.Atomic("a").Success()
	r.Atomic("b").Error("lookup failed")
	r.Finalize()

	if r.Result != StatusError {
		t.Errorf("Result = %q, want %q", r.Result, StatusError)
	}
	if !r.HasError() {
		t.Error("HasError() should be true after an atomic error")
	}
}

func TestTestResult_FinalizeWithoutAtomics(t *testing.T) {
	r := NewTestResult("leaf1", "T", "", nil)
	r.Success("all good")
	r.Finalize()

	if r.Result != StatusSuccess {
		t.Errorf("Finalize changed a result without atomics: %q", r.Result)
	}
	if len(r.Messages) != 1 {
		t.Errorf("Finalize changed messages: %v", r.Messages)
	}
}

func TestTestResult_JSONFieldNames(t *testing.T) {
	r := NewTestResult("leaf1", "VerifyUptime", "Checks uptime", []string{"system"})
	r.Success()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, field := range []string{"name", "test", "categories", "description", "custom_field", "result", "messages"} {
		if _, ok := m[field]; !ok {
			t.Errorf("JSON output missing field %q", field)
		}
	}
	if m["result"] != "success" {
		t.Errorf("result = %v, want success", m["result"])
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		a, b, want TestStatus
	}{
		{StatusUnset, StatusSkipped, StatusSkipped},
		{StatusSkipped, StatusSuccess, StatusSuccess},
		{StatusSuccess, StatusFailure, StatusFailure},
		{StatusFailure, StatusError, StatusError},
		{StatusError, StatusSuccess, StatusError},
		{StatusSuccess, StatusSuccess, StatusSuccess},
	}
	for _, tt := range tests {
		if got := Worst(tt.a, tt.b); got != tt.want {
			t.Errorf("Worst(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
