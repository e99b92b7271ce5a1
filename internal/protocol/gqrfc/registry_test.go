package gqrfc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/testutil/testlog"
)

func TestLookupResolvesLabelsAndAliases(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   string
		want string
	}{
		{"GQ-RFC1201", "GQ-RFC1201"},
		{"1201", "GQ-RFC1201"},
		{"1701", "GQ-RFC1701/2.00"},
		{"1701/1.00", "GQ-RFC1701/1.00"},
		{"GQ-RFC1701/2.00", "GQ-RFC1701/2.00"},
		{"1801", "GQ-RFC1801/1.00"},
		{" 1801 ", "GQ-RFC1801/1.00"},
	}
	for _, tc := range cases {
		set, err := Lookup(tc.in)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.in, err)
		}
		if set.Label() != tc.want {
			t.Fatalf("Lookup(%q) = %s, want %s", tc.in, set.Label(), tc.want)
		}
	}
}

func TestLookupUnknownRevision(t *testing.T) {
	testlog.Start(t)
	_, err := Lookup("GQ-RFC9999")
	if !errors.Is(err, ErrUnknownRevision) {
		t.Fatalf("expected ErrUnknownRevision, got %v", err)
	}
	if !strings.Contains(err.Error(), "GQ-RFC9999") {
		t.Fatalf("error should name the requested label: %v", err)
	}
}

func TestLabelsSorted(t *testing.T) {
	testlog.Start(t)
	want := []string{"GQ-RFC1201", "GQ-RFC1701/1.00", "GQ-RFC1701/2.00", "GQ-RFC1801/1.00"}
	if got := Labels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
}

func TestForModelPrefixes(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		model string
		want  string
	}{
		{"GMC-300E Plus", "GQ-RFC1201"},
		{"GMC-320+V5", "GQ-RFC1201"},
		{"GMC-500+", "GQ-RFC1801/1.00"},
		{"GMC-600+", "GQ-RFC1801/1.00"},
		{"EMF-390", "GQ-RFC1701/2.00"},
		{"  GMC-290  ", "GQ-RFC1201"},
	}
	for _, tc := range cases {
		set, ok := ForModel(tc.model)
		if !ok {
			t.Fatalf("ForModel(%q): no catalog", tc.model)
		}
		if set.Label() != tc.want {
			t.Fatalf("ForModel(%q) = %s, want %s", tc.model, set.Label(), tc.want)
		}
	}
	if _, ok := ForModel("WGD-100"); ok {
		t.Fatalf("unknown model should not map to a catalog")
	}
}

func TestEveryRevisionKeepsTheRootTable(t *testing.T) {
	testlog.Start(t)
	for _, label := range Labels() {
		set, err := Lookup(label)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", label, err)
		}
		for _, name := range RFC1201.Names() {
			if !set.Supports(name) {
				t.Fatalf("%s dropped %s from the root table", label, name)
			}
		}
	}
}

func TestExtensionChain(t *testing.T) {
	testlog.Start(t)
	if RFC1201.Base() != nil {
		t.Fatalf("root catalog should have no base, got %v", RFC1201.Base())
	}
	if RFC1701v1.Base() != RFC1201 {
		t.Fatalf("GQ-RFC1701/1.00 should extend the root")
	}
	if RFC1701v2.Base() != RFC1701v1 {
		t.Fatalf("GQ-RFC1701/2.00 should extend 1.00")
	}
	if RFC1801.Base() != RFC1201 {
		t.Fatalf("GQ-RFC1801/1.00 should extend the root")
	}
}

func TestProbeCatalog(t *testing.T) {
	testlog.Start(t)
	if Probe.Len() != 1 {
		t.Fatalf("probe should carry only GETVER, has %d commands", Probe.Len())
	}
	cmd, err := Probe.Lookup("GETVER")
	if err != nil {
		t.Fatalf("probe GETVER: %v", err)
	}
	if _, ok := cmd.Shape().(protocol.UntilIdle); !ok {
		t.Fatalf("probe GETVER should read until idle, got %s", cmd.Shape())
	}
	v, err := cmd.Decode([]byte("GMC-500+Re 1.18"))
	if err != nil {
		t.Fatalf("probe decode: %v", err)
	}
	if v.Kind != protocol.KindText || v.Text != "GMC-500+Re 1.18" {
		t.Fatalf("probe decode = %+v", v)
	}
}

func mustLookup(t *testing.T, set *protocol.CommandSet, name string) protocol.Command {
	t.Helper()
	cmd, err := set.Lookup(name)
	if err != nil {
		t.Fatalf("%s lookup %s: %v", set.Label(), name, err)
	}
	return cmd
}
