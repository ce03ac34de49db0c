// Package report renders a run's result manager as a table, JSON, JUnit
// XML or Markdown, and can persist run history to a SQLite database.
// Reporters only use the manager's read accessors and never mutate it.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aristanetworks/anta/pkg/cli"
	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/results"
)

// WriteTable renders the per-result table followed by per-device and
// per-category summaries. Results are sorted by device then test so the
// report order is deterministic regardless of completion order.
func WriteTable(w io.Writer, m *results.Manager) error {
	rows, err := m.GetResults(nil, "name", "test")
	if err != nil {
		return err
	}

	t := cli.NewTable(w, "DEVICE", "TEST", "RESULT", "MESSAGES")
	for _, r := range rows {
		t.Row(r.Name, r.Test, cli.Status(r.Result), strings.Join(r.Messages, "; "))
	}
	t.Flush()

	fmt.Fprintln(w)
	writeDeviceSummary(w, m)
	fmt.Fprintln(w)
	writeCategorySummary(w, m)
	fmt.Fprintln(w)

	status := string(m.Status())
	if m.ErrorStatus() {
		status += " (with errors)"
	}
	fmt.Fprintf(w, "Total: %d  %s: %d  %s: %d  %s: %d  %s: %d  overall %s\n",
		m.GetTotalResults(),
		cli.Green("success"), m.GetTotalResults(model.StatusSuccess),
		cli.Red("failure"), m.GetTotalResults(model.StatusFailure),
		cli.Red("error"), m.GetTotalResults(model.StatusError),
		cli.Yellow("skipped"), m.GetTotalResults(model.StatusSkipped),
		status)
	return nil
}

func writeDeviceSummary(w io.Writer, m *results.Manager) {
	stats := m.DeviceStats()
	t := cli.NewTable(w, "DEVICE", "SUCCESS", "FAILURE", "ERROR", "SKIPPED", "CATEGORIES FAILED")
	for _, name := range sortedStatKeys(stats) {
		s := stats[name]
		t.Row(name,
			fmt.Sprint(s.Success), fmt.Sprint(s.Failure),
			fmt.Sprint(s.Error), fmt.Sprint(s.Skipped),
			strings.Join(s.CategoriesFailed(), ", "))
	}
	t.Flush()
}

func writeCategorySummary(w io.Writer, m *results.Manager) {
	stats := m.CategoryStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	t := cli.NewTable(w, "CATEGORY", "SUCCESS", "FAILURE", "ERROR", "SKIPPED")
	for _, name := range names {
		s := stats[name]
		t.Row(name,
			fmt.Sprint(s.Success), fmt.Sprint(s.Failure),
			fmt.Sprint(s.Error), fmt.Sprint(s.Skipped))
	}
	t.Flush()
}

func sortedStatKeys(stats map[string]*results.DeviceStats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
