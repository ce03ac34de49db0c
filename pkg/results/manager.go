// Package results holds the canonical result list of a run and the derived
// statistics over it.
package results

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aristanetworks/anta/pkg/model"
)

// sortFields are the field names GetResults accepts for sorting. Requesting
// any other name is a caller error.
var sortFields = map[string]bool{
	"name":         true,
	"test":         true,
	"categories":   true,
	"description":  true,
	"result":       true,
	"messages":     true,
	"custom_field": true,
}

// Manager is the single source of truth for all results produced in a run.
// Add is safe for concurrent completions; statistics are recomputed lazily
// on first access after a change.
type Manager struct {
	mu      sync.Mutex
	results []*model.TestResult

	// status is the rolled-up run status ignoring errors; errorStatus
	// remembers separately whether anything errored.
	status      model.TestStatus
	errorStatus bool

	statsDirty    bool
	deviceStats   map[string]*DeviceStats
	categoryStats map[string]*CategoryStats
	testStats     map[string]*TestStats
}

// NewManager creates an empty result manager.
func NewManager() *Manager {
	return &Manager{status: model.StatusUnset}
}

// Add appends a completed result and marks cached statistics stale. The
// rolled-up status is updated incrementally: error results flip the error
// flag instead of overwriting the status.
func (m *Manager) Add(result *model.TestResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = append(m.results, result)
	m.statsDirty = true

	if result.Result == model.StatusError {
		m.errorStatus = true
		return
	}
	m.status = model.Worst(m.status, result.Result)
}

// Status returns the rolled-up run status, ignoring errored results.
func (m *Manager) Status() model.TestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ErrorStatus reports whether any result errored.
func (m *Manager) ErrorStatus() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorStatus
}

// Len returns the total number of results.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

// Results returns a copy of the result list in append order.
func (m *Manager) Results() []*model.TestResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.TestResult, len(m.results))
	copy(out, m.results)
	return out
}

// GetResults returns a filtered and optionally sorted copy of the result
// list. A nil status set selects everything. Sorting compares the named
// fields in order; an unknown field name is an error.
func (m *Manager) GetResults(statuses []model.TestStatus, sortBy ...string) ([]*model.TestResult, error) {
	for _, field := range sortBy {
		if !sortFields[field] {
			return nil, fmt.Errorf("unknown sort field %q", field)
		}
	}

	m.mu.Lock()
	var out []*model.TestResult
	for _, r := range m.results {
		if matchStatus(r, statuses) {
			out = append(out, r)
		}
	}
	m.mu.Unlock()

	if len(sortBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, field := range sortBy {
				a, b := fieldValue(out[i], field), fieldValue(out[j], field)
				if a != b {
					return a < b
				}
			}
			return false
		})
	}
	return out, nil
}

// GetTotalResults counts results matching the status set (all when nil).
func (m *Manager) GetTotalResults(statuses ...model.TestStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(statuses) == 0 {
		return len(m.results)
	}
	count := 0
	for _, r := range m.results {
		if matchStatus(r, statuses) {
			count++
		}
	}
	return count
}

// Filter returns a new manager scoped to results with any of the given
// statuses. The new manager is independent: sorting or filtering it does
// not affect the original.
func (m *Manager) Filter(statuses ...model.TestStatus) *Manager {
	return m.filterFunc(func(r *model.TestResult) bool {
		return matchStatus(r, statuses)
	})
}

// FilterByTests returns a new manager scoped to the named tests.
func (m *Manager) FilterByTests(names ...string) *Manager {
	set := stringSet(names)
	return m.filterFunc(func(r *model.TestResult) bool {
		return set[r.Test]
	})
}

// FilterByDevices returns a new manager scoped to the named devices.
func (m *Manager) FilterByDevices(names ...string) *Manager {
	set := stringSet(names)
	return m.filterFunc(func(r *model.TestResult) bool {
		return set[r.Name]
	})
}

func (m *Manager) filterFunc(keep func(*model.TestResult) bool) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := NewManager()
	for _, r := range m.results {
		if keep(r) {
			sub.results = append(sub.results, r)
			if r.Result == model.StatusError {
				sub.errorStatus = true
			} else {
				sub.status = model.Worst(sub.status, r.Result)
			}
		}
	}
	sub.statsDirty = true
	return sub
}

// JSON serializes the result list as an array of result records. The field
// names and status strings are consumed by external reporters.
func (m *Manager) JSON() ([]byte, error) {
	results := m.Results()
	records := make([]*model.TestResult, 0, len(results))
	records = append(records, results...)
	return json.MarshalIndent(records, "", "  ")
}

func matchStatus(r *model.TestResult, statuses []model.TestStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if r.Result == s {
			return true
		}
	}
	return false
}

func fieldValue(r *model.TestResult, field string) string {
	switch field {
	case "name":
		return r.Name
	case "test":
		return r.Test
	case "categories":
		return strings.Join(r.Categories, ",")
	case "description":
		return r.Description
	case "result":
		return string(r.Result)
	case "messages":
		return strings.Join(r.Messages, ",")
	case "custom_field":
		return r.CustomField
	}
	return ""
}

func stringSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
