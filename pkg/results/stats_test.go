package results

import (
	"reflect"
	"testing"

	"github.com/aristanetworks/anta/pkg/model"
)

func TestManager_DeviceStats(t *testing.T) {
	m := NewManager()
	m.Add(mkResult("leaf1", "A", model.StatusSuccess, "bgp"))
	m.Add(mkResult("leaf1", "B", model.StatusFailure, "bgp", "routing"))
	m.Add(mkResult("leaf1", "C", model.StatusSkipped, "hardware"))
	m.Add(mkResult("leaf2", "A", model.StatusSuccess, "bgp"))

	stats := m.DeviceStats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	leaf1 := stats["leaf1"]
	if leaf1.Success != 1 || leaf1.Failure != 1 || leaf1.Skipped != 1 {
		t.Errorf("leaf1 counts = %+v", leaf1.StatusCounts)
	}
	if got := leaf1.CategoriesFailed(); !reflect.DeepEqual(got, []string{"bgp", "routing"}) {
		t.Errorf("CategoriesFailed() = %v, want [bgp routing]", got)
	}
	if got := leaf1.CategoriesSkipped(); !reflect.DeepEqual(got, []string{"hardware"}) {
		t.Errorf("CategoriesSkipped() = %v, want [hardware]", got)
	}
}

func TestManager_CategoryStats(t *testing.T) {
	m := NewManager()
	m.Add(mkResult("leaf1", "A", model.StatusSuccess, "bgp"))
	m.Add(mkResult("leaf2", "A", model.StatusFailure, "bgp"))
	m.Add(mkResult("leaf1", "B", model.StatusError, "system"))

	stats := m.CategoryStats()
	bgp := stats["bgp"]
	if bgp == nil || bgp.Success != 1 || bgp.Failure != 1 {
		t.Errorf("bgp stats = %+v", bgp)
	}
	system := stats["system"]
	if system == nil || system.Error != 1 {
		t.Errorf("system stats = %+v", system)
	}
	if bgp.Total() != 2 {
		t.Errorf("bgp.Total() = %d, want 2", bgp.Total())
	}
}

func TestManager_TestStats(t *testing.T) {
	m := NewManager()
	m.Add(mkResult("leaf1", "VerifyUptime", model.StatusSuccess))
	m.Add(mkResult("leaf2", "VerifyUptime", model.StatusFailure))
	m.Add(mkResult("leaf3", "VerifyUptime", model.StatusFailure))

	stats := m.TestStats()
	ts := stats["VerifyUptime"]
	if ts == nil {
		t.Fatal("missing VerifyUptime stats")
	}
	if ts.Success != 1 || ts.Failure != 2 {
		t.Errorf("counts = %+v", ts.StatusCounts)
	}
	if !reflect.DeepEqual(ts.DevicesFailed, []string{"leaf2", "leaf3"}) {
		t.Errorf("DevicesFailed = %v, want [leaf2 leaf3]", ts.DevicesFailed)
	}
}

func TestManager_StatsRecomputeAfterAdd(t *testing.T) {
	m := NewManager()
	m.Add(mkResult("leaf1", "A", model.StatusSuccess, "bgp"))

	before := m.DeviceStats()
	if before["leaf1"].Success != 1 {
		t.Fatalf("before = %+v", before["leaf1"].StatusCounts)
	}

	// A result added after an access must show up on the next access.
	m.Add(mkResult("leaf1", "B", model.StatusFailure, "bgp"))
	after := m.DeviceStats()
	if after["leaf1"].Success != 1 || after["leaf1"].Failure != 1 {
		t.Errorf("after = %+v", after["leaf1"].StatusCounts)
	}

	// Consistency across the three views.
	if got := m.CategoryStats()["bgp"].Total(); got != 2 {
		t.Errorf("category total = %d, want 2", got)
	}
	if got := m.TestStats()["A"].Total() + m.TestStats()["B"].Total(); got != 2 {
		t.Errorf("test totals = %d, want 2", got)
	}
}
