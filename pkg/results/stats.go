package results

import (
	"sort"

	"github.com/aristanetworks/anta/pkg/model"
)

// StatusCounts tallies results per status.
type StatusCounts struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
	Unset   int `json:"unset"`
}

func (c *StatusCounts) count(s model.TestStatus) {
	switch s {
	case model.StatusSuccess:
		c.Success++
	case model.StatusFailure:
		c.Failure++
	case model.StatusError:
		c.Error++
	case model.StatusSkipped:
		c.Skipped++
	default:
		c.Unset++
	}
}

// Total returns the number of counted results.
func (c *StatusCounts) Total() int {
	return c.Success + c.Failure + c.Error + c.Skipped + c.Unset
}

// DeviceStats aggregates per-device outcomes, including which categories
// had at least one failure or skip on that device.
type DeviceStats struct {
	StatusCounts
	categoriesFailed  map[string]bool
	categoriesSkipped map[string]bool
}

// CategoriesFailed returns the sorted categories with at least one failure.
func (s *DeviceStats) CategoriesFailed() []string {
	return sortedKeys(s.categoriesFailed)
}

// CategoriesSkipped returns the sorted categories with at least one skip.
func (s *DeviceStats) CategoriesSkipped() []string {
	return sortedKeys(s.categoriesSkipped)
}

// CategoryStats aggregates outcomes per category tag.
type CategoryStats struct {
	StatusCounts
}

// TestStats aggregates outcomes per test name.
type TestStats struct {
	StatusCounts
	DevicesFailed []string
}

// DeviceStats returns the per-device statistics table, recomputing all
// tables in one pass if any result arrived since the last access.
func (m *Manager) DeviceStats() map[string]*DeviceStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computeStats()
	return m.deviceStats
}

// CategoryStats returns the per-category statistics table.
func (m *Manager) CategoryStats() map[string]*CategoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computeStats()
	return m.categoryStats
}

// TestStats returns the per-test-name statistics table.
func (m *Manager) TestStats() map[string]*TestStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computeStats()
	return m.testStats
}

// computeStats rebuilds all three statistics tables in a single pass over
// the result list. Statistics are a pure derived view: a stale table is a
// correctness bug, so the dirty flag is the only shortcut taken.
// Callers must hold m.mu.
func (m *Manager) computeStats() {
	if !m.statsDirty && m.deviceStats != nil {
		return
	}

	devices := make(map[string]*DeviceStats)
	categories := make(map[string]*CategoryStats)
	tests := make(map[string]*TestStats)

	for _, r := range m.results {
		dev := devices[r.Name]
		if dev == nil {
			dev = &DeviceStats{
				categoriesFailed:  make(map[string]bool),
				categoriesSkipped: make(map[string]bool),
			}
			devices[r.Name] = dev
		}
		dev.count(r.Result)

		for _, cat := range r.Categories {
			cs := categories[cat]
			if cs == nil {
				cs = &CategoryStats{}
				categories[cat] = cs
			}
			cs.count(r.Result)

			switch r.Result {
			case model.StatusFailure, model.StatusError:
				dev.categoriesFailed[cat] = true
			case model.StatusSkipped:
				dev.categoriesSkipped[cat] = true
			}
		}

		ts := tests[r.Test]
		if ts == nil {
			ts = &TestStats{}
			tests[r.Test] = ts
		}
		ts.count(r.Result)
		if r.Result == model.StatusFailure {
			ts.DevicesFailed = append(ts.DevicesFailed, r.Name)
		}
	}

	m.deviceStats = devices
	m.categoryStats = categories
	m.testStats = tests
	m.statsDirty = false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
