package device_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aristanetworks/anta/internal/testutil"
	"github.com/aristanetworks/anta/pkg/device"
	"github.com/aristanetworks/anta/pkg/model"
)

func TestSession_Defaults(t *testing.T) {
	s := device.NewSession(device.Config{Name: "leaf1", Host: "10.0.0.1"})

	if s.Addr() != "10.0.0.1:443" {
		t.Errorf("Addr() = %q, want %q", s.Addr(), "10.0.0.1:443")
	}
	if s.URL() != "https://10.0.0.1:443/command-api" {
		t.Errorf("URL() = %q", s.URL())
	}
	if s.Established() {
		t.Error("Established() should be false before any probe")
	}
}

func TestSession_Run(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280", "4.31.1F"),
	})
	dev := srv.Session(t, "leaf1")

	cmd := model.NewCommand("show version")
	if err := dev.Run(context.Background(), cmd); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !cmd.Executed() {
		t.Error("command should be marked executed")
	}
	out, err := cmd.JSONOutput()
	if err != nil {
		t.Fatalf("JSONOutput: %v", err)
	}
	if out["version"] != "4.31.1F" {
		t.Errorf("version = %v, want 4.31.1F", out["version"])
	}
}

func TestSession_RunEmpty(t *testing.T) {
	srv := testutil.NewEAPIServer(t, nil)
	dev := srv.Session(t, "leaf1")
	if err := dev.Run(context.Background()); err == nil {
		t.Error("Run with no commands should fail")
	}
}

func TestSession_CacheHit(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280", "4.31.1F"),
	})
	dev := srv.Session(t, "leaf1")

	first := model.NewCommand("show version")
	second := model.NewCommand("show version")
	if err := dev.Run(context.Background(), first); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := dev.Run(context.Background(), second); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := srv.Commands.Load(); got != 1 {
		t.Errorf("server attempted %d commands, want 1 (second run should hit the cache)", got)
	}
	out, err := second.JSONOutput()
	if err != nil {
		t.Fatalf("JSONOutput: %v", err)
	}
	if out["modelName"] != "DCS-7280" {
		t.Errorf("modelName = %v, want DCS-7280", out["modelName"])
	}
	if dev.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", dev.CacheSize())
	}
}

func TestSession_CacheDisabledPerDevice(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280", "4.31.1F"),
	})
	dev := device.NewSession(device.Config{
		Name: "leaf1", Host: "127.0.0.1", Port: 1, Protocol: "http",
		DisableCache: true,
	})
	dev.SetURL(srv.URL)

	for i := 0; i < 2; i++ {
		if err := dev.Run(context.Background(), model.NewCommand("show version")); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if got := srv.Commands.Load(); got != 2 {
		t.Errorf("server attempted %d commands, want 2 with caching disabled", got)
	}
	if dev.CacheSize() != 0 {
		t.Errorf("CacheSize() = %d, want 0", dev.CacheSize())
	}
}

func TestSession_CacheDisabledPerCommand(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show clock": map[string]interface{}{"utcTime": 1.0},
	})
	dev := srv.Session(t, "leaf1")

	for i := 0; i < 2; i++ {
		cmd := model.NewCommand("show clock")
		cmd.UseCache = false
		if err := dev.Run(context.Background(), cmd); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if got := srv.Commands.Load(); got != 2 {
		t.Errorf("server attempted %d commands, want 2 with UseCache off", got)
	}
}

func TestSession_Batching(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280", "4.31.1F"),
		"show uptime":  map[string]interface{}{"upTime": 3600.0},
	})
	dev := srv.Session(t, "leaf1")

	a := model.NewCommand("show version")
	b := model.NewCommand("show uptime")
	if err := dev.Run(context.Background(), a, b); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := srv.Dispatched.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (same format/version should batch)", got)
	}
}

func TestSession_BatchSplitsOnFormat(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version":    testutil.ShowVersion("DCS-7280", "4.31.1F"),
		"show ntp status": "synchronised to NTP server",
	})
	dev := srv.Session(t, "leaf1")

	a := model.NewCommand("show version")
	b := model.NewTextCommand("show ntp status")
	if err := dev.Run(context.Background(), a, b); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := srv.Dispatched.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2 (mixed formats must split)", got)
	}
	text, err := b.TextOutput()
	if err != nil {
		t.Fatalf("TextOutput: %v", err)
	}
	if text != "synchronised to NTP server" {
		t.Errorf("TextOutput = %q", text)
	}
}

func TestSession_PartialFailure(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280", "4.31.1F"),
	})
	dev := srv.Session(t, "leaf1")

	good := model.NewCommand("show version")
	bad := model.NewCommand("show bogus")
	after := model.NewCommand("show never")

	err := dev.Run(context.Background(), good, bad, after)
	if err == nil {
		t.Fatal("Run should fail on a rejected command")
	}
	var ce *device.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T, want *CommandError", err)
	}

	if ce.Failed != "show bogus" {
		t.Errorf("Failed = %q, want %q", ce.Failed, "show bogus")
	}
	if len(ce.Passed) != 1 {
		t.Errorf("len(Passed) = %d, want 1", len(ce.Passed))
	}
	if len(ce.NotExec) != 1 || ce.NotExec[0] != "show never" {
		t.Errorf("NotExec = %v, want [show never]", ce.NotExec)
	}

	// The passed command still collected its output.
	if !good.Executed() {
		t.Error("passed command should be marked executed")
	}
	if bad.Err == nil {
		t.Error("failed command should carry its error")
	}
	if after.Executed() {
		t.Error("never-attempted command must not be marked executed")
	}
}

func TestSession_PartialFailureSpansBatches(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{})
	dev := srv.Session(t, "leaf1")

	bad := model.NewCommand("show bogus")
	text := model.NewTextCommand("show clock")
	after := model.NewCommand("show hostname")

	err := dev.Run(context.Background(), bad, text, after)
	var ce *device.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CommandError", err)
	}

	// The failing batch halts the whole call: commands queued in later
	// batches count as never attempted too.
	if len(ce.NotExec) != 2 || ce.NotExec[0] != "show clock" || ce.NotExec[1] != "show hostname" {
		t.Errorf("NotExec = %v, want [show clock show hostname]", ce.NotExec)
	}
	if got := srv.Dispatched.Load(); got != 1 {
		t.Errorf("Dispatched = %d, want 1", got)
	}
}

func TestSession_RunSuppress(t *testing.T) {
	srv := testutil.NewEAPIServer(t, nil)
	dev := srv.Session(t, "leaf1")

	cmd := model.NewCommand("show bogus")
	if err := dev.RunSuppress(context.Background(), cmd); err != nil {
		t.Fatalf("RunSuppress should swallow the command error, got %v", err)
	}
	if cmd.Err == nil {
		t.Error("suppressed command should keep its error marker")
	}
}

func TestSession_ConnectCheck(t *testing.T) {
	// Port 9 on localhost is almost certainly closed.
	dev := device.NewSession(device.Config{Name: "leaf1", Host: "127.0.0.1", Port: 9})
	if dev.ConnectCheck(context.Background()) {
		t.Skip("something is listening on 127.0.0.1:9")
	}
	if dev.Established() {
		t.Error("Established() should stay false after a failed probe")
	}
}

func TestSession_Refresh(t *testing.T) {
	srv := testutil.NewEAPIServer(t, map[string]interface{}{
		"show version": testutil.ShowVersion("DCS-7280CR3-32P4", "4.31.1F"),
	})
	dev := srv.Session(t, "leaf1")

	if err := dev.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if dev.HWModel != "DCS-7280CR3-32P4" {
		t.Errorf("HWModel = %q, want %q", dev.HWModel, "DCS-7280CR3-32P4")
	}
	if !dev.Established() {
		t.Error("Established() should be true after Refresh")
	}
}

func TestCommandError_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		errs []string
		want bool
	}{
		{"hardware platform", []string{"This command is not supported on this hardware platform"}, true},
		{"controller not ready", []string{"Unavailable command (controller not ready)"}, true},
		{"hardware configuration", []string{"command unavailable in this hardware configuration"}, true},
		{"syntax error", []string{"Invalid input (at token 0)"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := &device.CommandError{Device: "leaf1", Failed: "show foo", Errors: tt.errs}
			if got := ce.Unsupported(); got != tt.want {
				t.Errorf("Unsupported() = %v, want %v", got, tt.want)
			}
		})
	}
}
