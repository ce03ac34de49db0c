package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/results"
)

// WriteMarkdown writes a markdown report: summary counts, a per-result
// table, and a failures section with full messages.
func WriteMarkdown(w io.Writer, m *results.Manager) error {
	fmt.Fprintf(w, "# anta Report - %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(w, "Total: %d - success: %d, failure: %d, error: %d, skipped: %d\n\n",
		m.GetTotalResults(),
		m.GetTotalResults(model.StatusSuccess),
		m.GetTotalResults(model.StatusFailure),
		m.GetTotalResults(model.StatusError),
		m.GetTotalResults(model.StatusSkipped))

	rows, err := m.GetResults(nil, "name", "test")
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "| Device | Test | Categories | Result |")
	fmt.Fprintln(w, "|--------|------|------------|--------|")
	for _, r := range rows {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			r.Name, r.Test, strings.Join(r.Categories, ", "), r.Result)
	}

	// Failures section
	hasFailures := false
	for _, r := range rows {
		if r.Result != model.StatusFailure && r.Result != model.StatusError {
			continue
		}
		if !hasFailures {
			fmt.Fprintf(w, "\n## Failures\n\n")
			hasFailures = true
		}
		fmt.Fprintf(w, "### %s - %s (%s)\n", r.Name, r.Test, r.Result)
		for _, msg := range r.Messages {
			fmt.Fprintf(w, "- %s\n", msg)
		}
		fmt.Fprintln(w)
	}

	return nil
}
