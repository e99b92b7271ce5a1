package main

import (
	"strings"
	"testing"
	"time"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
)

func TestApplyFlagsRedirectsTransport(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Address = "10.0.0.5:2000"

	applyFlags(&cfg, options{port: "/dev/ttyUSB1"})
	if cfg.Device.Port != "/dev/ttyUSB1" || cfg.Device.Address != "" {
		t.Fatalf("port flag did not displace address: %+v", cfg.Device)
	}

	applyFlags(&cfg, options{addr: "10.0.0.9:2000"})
	if cfg.Device.Address != "10.0.0.9:2000" || cfg.Device.Port != "" {
		t.Fatalf("addr flag did not displace port: %+v", cfg.Device)
	}

	applyFlags(&cfg, options{port: "/dev/ttyUSB0", addr: "10.0.0.9:2000"})
	if err := config.Validate(cfg); err == nil {
		t.Fatal("both transports set, want Validate to reject")
	}
}

func TestApplyFlagsOverridesSettings(t *testing.T) {
	cfg := config.Default()
	applyFlags(&cfg, options{baud: 57600, revision: "1801", timeout: 750 * time.Millisecond})
	if cfg.Device.Baud != 57600 {
		t.Fatalf("baud = %d, want 57600", cfg.Device.Baud)
	}
	if cfg.Device.Revision != "1801" {
		t.Fatalf("revision = %q, want 1801", cfg.Device.Revision)
	}
	if cfg.Session.ReadTimeout != 750*time.Millisecond {
		t.Fatalf("read timeout = %s, want 750ms", cfg.Session.ReadTimeout)
	}

	applyFlags(&cfg, options{})
	if cfg.Device.Baud != 57600 || cfg.Device.Revision != "1801" {
		t.Fatalf("empty flags clobbered settings: %+v", cfg.Device)
	}
}

func TestCommandUsageShowsArguments(t *testing.T) {
	if got := commandUsage(mustCommand(t, "WCFG")); got != "WCFG <address> <value>" {
		t.Fatalf("usage = %q, want WCFG <address> <value>", got)
	}
	if got := commandUsage(mustCommand(t, "SPEAKER")); got != "SPEAKER <off|on>" {
		t.Fatalf("usage = %q, want SPEAKER <off|on>", got)
	}
	if got := commandUsage(mustCommand(t, "GETVER")); got != "GETVER" {
		t.Fatalf("usage = %q, want GETVER", got)
	}
}

func TestRenderCatalogListsEveryCommand(t *testing.T) {
	out := renderCatalog(gqrfc.RFC1201)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != gqrfc.RFC1201.Len()+1 {
		t.Fatalf("rendered %d lines, want %d", len(lines), gqrfc.RFC1201.Len()+1)
	}
	if !strings.HasPrefix(lines[0], "GQ-RFC1201 (") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(out, "GETVER") || !strings.Contains(out, "14 bytes") {
		t.Fatalf("catalog table missing entries:\n%s", out)
	}
}

func mustCommand(t *testing.T, name string) protocol.Command {
	t.Helper()
	cmd, err := gqrfc.RFC1201.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return cmd
}
