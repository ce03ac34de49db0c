// Package runner expands the inventory/catalog cross product into scheduling units and
// drives them to completion under a global concurrency bound, streaming
// results into the result manager as they land.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/aristanetworks/anta/pkg/catalog"
	"github.com/aristanetworks/anta/pkg/device"
	"github.com/aristanetworks/anta/pkg/inventory"
	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/results"
	"github.com/aristanetworks/anta/pkg/util"
)

// DefaultLimit is the default global in-flight unit bound.
const DefaultLimit = 50

// Runner orchestrates one run.
type Runner struct {
	Inventory *inventory.Inventory
	Catalog   *catalog.Catalog
	Manager   *results.Manager

	// Limit bounds the number of units simultaneously dispatched across
	// all devices combined. It is the only concurrency knob.
	Limit int
}

// New creates a runner feeding a fresh result manager.
func New(inv *inventory.Inventory, cat *catalog.Catalog, limit int) *Runner {
	return &Runner{
		Inventory: inv,
		Catalog:   cat,
		Manager:   results.NewManager(),
		Limit:     limit,
	}
}

// Run executes every applicable (device, test) pair. Submission order is
// deterministic (inventory order, then catalog order); completion order is not.
// Only configuration errors abort the run: anything that happens after a
// unit starts is contained within that unit's result.
func (r *Runner) Run(ctx context.Context) error {
	if r.Limit <= 0 {
		return fmt.Errorf("concurrency limit must be positive, got %d: %w", r.Limit, util.ErrInvalidConfig)
	}
	if r.Inventory == nil || r.Inventory.Len() == 0 {
		return fmt.Errorf("no devices in inventory: %w", util.ErrInvalidConfig)
	}
	if r.Catalog == nil || r.Catalog.Len() == 0 {
		return fmt.Errorf("no tests in catalog: %w", util.ErrInvalidConfig)
	}

	if total, unknown := r.Inventory.MaxPotentialConnections(); unknown == 0 && total > 0 && r.Limit > total {
		util.Warnf("limit %d exceeds the inventory's recommended ceiling of %d connections", r.Limit, total)
	}

	r.precheck(ctx)

	sem := semaphore.NewWeighted(int64(r.Limit))
	var wg sync.WaitGroup

	for _, dev := range r.Inventory.Devices() {
		for _, entry := range r.Catalog.ForDevice(dev.Tags) {
			if err := sem.Acquire(ctx, 1); err != nil {
				// Host process shutdown: abandon units that never started.
				wg.Wait()
				return err
			}
			wg.Add(1)
			// Unit construction (input validation, command templating) is
			// deferred to this point, so a filtered-out device never pays
			// the instantiation cost.
			go func(dev *device.Session, entry *catalog.Entry) {
				defer wg.Done()
				defer sem.Release(1)
				r.Manager.Add(r.runUnit(ctx, dev, entry))
			}(dev, entry)
		}
	}

	wg.Wait()
	util.Infof("run complete: %d results, status %s", r.Manager.Len(), r.Manager.Status())
	return nil
}

// precheck probes every device and refreshes the platform identifier of the
// reachable ones. Unreachable devices stay scheduled: their tests surface
// as errors in the report instead of silently disappearing.
func (r *Runner) precheck(ctx context.Context) {
	for _, dev := range r.Inventory.Devices() {
		if !dev.ConnectCheck(ctx) {
			util.WithDevice(dev.Name).Warnf("unreachable at %s, tests will be reported as errors", dev.Addr())
			continue
		}
		if err := dev.Refresh(ctx); err != nil {
			util.WithDevice(dev.Name).Warnf("refresh failed: %v", err)
			continue
		}
		util.WithDevice(dev.Name).Debugf("reachable, platform %q", dev.HWModel)
	}
}

// runUnit executes one (device, test) scheduling unit through the full
// harness: instantiate, platform guard, dispatch, assess.
func (r *Runner) runUnit(ctx context.Context, dev *device.Session, entry *catalog.Entry) *model.TestResult {
	test, err := entry.Instantiate()
	if err != nil {
		res := model.NewTestResult(dev.Name, entry.Reg.Name, "", entry.Reg.Categories)
		res.Error("input validation: " + err.Error())
		return res
	}

	res := model.NewTestResult(dev.Name, test.Name(), test.Description(), test.Categories())

	if !platformSupported(test.Platforms(), dev.HWModel) {
		res.Skipped(fmt.Sprintf("%s is not supported on platform %q", test.Name(), dev.HWModel))
		return res
	}

	if cmds := test.Commands(); len(cmds) > 0 {
		if err := dev.Run(ctx, cmds...); err != nil {
			var ce *device.CommandError
			if errors.As(err, &ce) && ce.Unsupported() {
				res.Skipped(fmt.Sprintf("command %q is not supported on this platform", ce.Failed))
				return res
			}
			res.Error(err.Error())
			return res
		}
	}

	assess(test, res)
	res.Finalize()

	if res.Result == model.StatusUnset {
		// The body ran to completion without recording anything. Reported
		// as-is; an unset result in a final report is an anomaly.
		util.WithDevice(dev.Name).Warnf("test %s completed without setting a status", test.Name())
	}
	return res
}

// assess invokes the test body, converting panics into an error status. A
// body never propagates an exception out of the harness.
func assess(test model.Test, res *model.TestResult) {
	defer func() {
		if p := recover(); p != nil {
			res.Error(fmt.Sprintf("test body panicked: %v", p))
		}
	}()
	test.Assess(res)
}

// platformSupported matches the device hardware model against a test's
// supported platform prefixes. An empty list, or an unknown model (the
// device never answered a refresh), counts as supported: dispatch will
// surface the real failure.
func platformSupported(platforms []string, hwModel string) bool {
	if len(platforms) == 0 || hwModel == "" {
		return true
	}
	for _, p := range platforms {
		if strings.HasPrefix(hwModel, p) {
			return true
		}
	}
	return false
}
