package gqrfc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
)

var ErrUnknownRevision = errors.New("gqrfc: unknown protocol revision")

// Probe is the minimal catalog for identifying an unknown device. It runs
// before the revision is known, so its GETVER is idle-bounded: a fixed
// read against a long-answering model would leave stray bytes on the
// line.
var Probe = protocol.MustCommandSet("probe",
	protocol.MustCommand("GETVER", "hardware model and firmware revision",
		protocol.StaticRequest("<GETVER>>"),
		protocol.UntilIdle{Max: 64},
		protocol.DecodeText()),
)

var revisions = map[string]*protocol.CommandSet{
	"GQ-RFC1201":      RFC1201,
	"GQ-RFC1701/1.00": RFC1701v1,
	"GQ-RFC1701/2.00": RFC1701v2,
	"GQ-RFC1801/1.00": RFC1801,
}

// aliases accept the short forms users type; a bare 1701 means the latest
// EMF revision.
var aliases = map[string]string{
	"1201":      "GQ-RFC1201",
	"1701":      "GQ-RFC1701/2.00",
	"1701/1.00": "GQ-RFC1701/1.00",
	"1701/2.00": "GQ-RFC1701/2.00",
	"1801":      "GQ-RFC1801/1.00",
}

// modelPrefixes maps the model text a device reports to its catalog.
// Checked in order, first match wins.
var modelPrefixes = []struct {
	prefix  string
	catalog *protocol.CommandSet
}{
	{"GMC-2", RFC1201},
	{"GMC-3", RFC1201},
	{"GMC-5", RFC1801},
	{"GMC-6", RFC1801},
	{"EMF", RFC1701v2},
}

// Lookup resolves a revision label or alias to its catalog.
func Lookup(label string) (*protocol.CommandSet, error) {
	key := strings.TrimSpace(label)
	if full, ok := aliases[key]; ok {
		key = full
	}
	set, ok := revisions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRevision, label)
	}
	return set, nil
}

// Labels returns the full revision labels in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(revisions))
	for label := range revisions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// ForModel maps a reported model string to its catalog.
func ForModel(model string) (*protocol.CommandSet, bool) {
	trimmed := strings.TrimSpace(model)
	for _, entry := range modelPrefixes {
		if strings.HasPrefix(trimmed, entry.prefix) {
			return entry.catalog, true
		}
	}
	return nil, false
}
