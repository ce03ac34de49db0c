package model

import (
	"errors"
	"testing"
)

func TestCommand_Defaults(t *testing.T) {
	c := NewCommand("show version")

	if c.Version != VersionLatest {
		t.Errorf("Version = %q, want %q", c.Version, VersionLatest)
	}
	if c.Format != FormatJSON {
		t.Errorf("Format = %q, want %q", c.Format, FormatJSON)
	}
	if !c.UseCache {
		t.Error("UseCache should default to true")
	}
}

func TestCommand_UID(t *testing.T) {
	a := NewCommand("show version")
	b := NewCommand("show version")
	if a.UID() != b.UID() {
		t.Error("identical commands should share a UID")
	}

	text := NewTextCommand("show version")
	if a.UID() == text.UID() {
		t.Error("format must be part of the UID")
	}

	pinned := &Command{Cmd: "show version", Version: "1", Format: FormatJSON}
	if a.UID() == pinned.UID() {
		t.Error("version must be part of the UID")
	}
}

func TestCommand_OutputBeforeExecution(t *testing.T) {
	c := NewCommand("show version")
	if _, err := c.JSONOutput(); err == nil {
		t.Error("JSONOutput should fail before execution")
	}

	tc := NewTextCommand("show version")
	if _, err := tc.TextOutput(); err == nil {
		t.Error("TextOutput should fail before execution")
	}
}

func TestCommand_OutputFormatMismatch(t *testing.T) {
	c := NewCommand("show version")
	c.Output = map[string]interface{}{"version": "4.31.1F"}
	c.MarkExecuted()

	if _, err := c.TextOutput(); err == nil {
		t.Error("TextOutput should fail on a json command")
	}
	out, err := c.JSONOutput()
	if err != nil {
		t.Fatalf("JSONOutput: %v", err)
	}
	if out["version"] != "4.31.1F" {
		t.Errorf("version = %v, want 4.31.1F", out["version"])
	}
}

func TestCommandTemplate_Render(t *testing.T) {
	tmpl := NewTemplate("show ip bgp neighbors {peer} vrf {vrf}")

	cmd, err := tmpl.Render(map[string]interface{}{"peer": "10.0.0.1", "vrf": "default"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if cmd.Cmd != "show ip bgp neighbors 10.0.0.1 vrf default" {
		t.Errorf("Cmd = %q", cmd.Cmd)
	}
	if cmd.Format != FormatJSON {
		t.Errorf("Format = %q, want %q", cmd.Format, FormatJSON)
	}
}

func TestCommandTemplate_MissingPlaceholder(t *testing.T) {
	tmpl := NewTemplate("show ip bgp neighbors {peer} vrf {vrf}")

	_, err := tmpl.Render(map[string]interface{}{"peer": "10.0.0.1"})
	if err == nil {
		t.Fatal("Render should fail with a missing placeholder")
	}
	var rerr *TemplateRenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("error is %T, want *TemplateRenderError", err)
	}
	if rerr.Placeholder != "vrf" {
		t.Errorf("Placeholder = %q, want %q", rerr.Placeholder, "vrf")
	}
}

func TestCommandTemplate_NonStringParam(t *testing.T) {
	tmpl := NewTemplate("show vlan {id}")
	cmd, err := tmpl.Render(map[string]interface{}{"id": 100})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if cmd.Cmd != "show vlan 100" {
		t.Errorf("Cmd = %q, want %q", cmd.Cmd, "show vlan 100")
	}
}
