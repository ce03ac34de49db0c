package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aristanetworks/anta/pkg/model"
)

func TestTable_Basic(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "NAME", "VALUE")
	table.Row("alpha", "1")
	table.Row("beta", "2")
	table.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header, divider, 2 rows):\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "----") {
		t.Errorf("divider = %q", lines[1])
	}
}

func TestTable_EmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "NAME", "VALUE")
	table.Flush()

	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestStatus_Colors(t *testing.T) {
	// Status never drops the status text, colored or not.
	for _, s := range []model.TestStatus{
		model.StatusSuccess, model.StatusFailure,
		model.StatusError, model.StatusSkipped, model.StatusUnset,
	} {
		if got := Status(s); !strings.Contains(got, string(s)) {
			t.Errorf("Status(%q) = %q", s, got)
		}
	}
}
