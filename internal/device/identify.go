package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

var ErrUnknownModel = errors.New("device: no catalog for reported model")

// Identity is what a probed device reported about itself.
type Identity struct {
	// Version is the raw GETVER reply, hardware model and firmware
	// revision concatenated.
	Version string
	Catalog *protocol.CommandSet
}

// Identify asks an unknown device for its version string and maps the
// reported model to a command catalog. The transport stays open and is
// handed back inside the returned session.
func Identify(ctx context.Context, transport session.Transport, opts ...session.Option) (Identity, *session.Session, error) {
	probe := session.New(gqrfc.Probe, transport, opts...)
	v, err := probe.Run(ctx, "GETVER")
	if err != nil {
		return Identity{}, nil, fmt.Errorf("device: probe: %w", err)
	}
	version := strings.TrimSpace(v.Text)
	catalog, ok := gqrfc.ForModel(version)
	if !ok {
		return Identity{}, nil, fmt.Errorf("%w: %q", ErrUnknownModel, version)
	}
	identity := Identity{Version: version, Catalog: catalog}
	return identity, session.New(catalog, transport, opts...), nil
}
