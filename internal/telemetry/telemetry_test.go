package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/monitor"
	"github.com/cloudchamber-io/geigerctl/internal/testutil/testlog"
)

func TestClientOptionsFromConfig(t *testing.T) {
	testlog.Start(t)

	cfg := config.MQTTConfig{
		Broker:   "tcp://127.0.0.1:1883",
		Topic:    "sensors/geiger",
		ClientID: "geigermon",
		Username: "gq",
		Password: "secret",
		QoS:      1,
	}
	opts := clientOptions(cfg, testlog.Logger(t))
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Fatalf("servers = %v, want the configured broker", opts.Servers)
	}
	if opts.ClientID != "geigermon" {
		t.Fatalf("client id = %q, want geigermon", opts.ClientID)
	}
	if opts.Username != "gq" || opts.Password != "secret" {
		t.Fatal("credentials not applied")
	}
	if opts.ConnectTimeout != connectTimeout {
		t.Fatalf("connect timeout = %v, want %v", opts.ConnectTimeout, connectTimeout)
	}
	if opts.OnConnect == nil || opts.OnConnectionLost == nil {
		t.Fatal("connection handlers not wired")
	}
}

func TestClientOptionsWithoutCredentials(t *testing.T) {
	testlog.Start(t)

	opts := clientOptions(config.MQTTConfig{Broker: "tcp://broker:1883"}, testlog.Logger(t))
	if opts.Username != "" || opts.Password != "" {
		t.Fatalf("unexpected credentials %q/%q", opts.Username, opts.Password)
	}
}

func TestConnectRequiresBroker(t *testing.T) {
	testlog.Start(t)

	if _, err := Connect(config.MQTTConfig{}, testlog.Logger(t)); err == nil {
		t.Fatal("Connect accepted an empty broker")
	}
}

func TestReadingPayload(t *testing.T) {
	reading := monitor.Reading{
		Device:    "gmc",
		CPM:       300,
		DoseRate:  1.95,
		SampledAt: time.Date(2025, 8, 24, 14, 30, 5, 0, time.UTC),
	}
	payload, err := json.Marshal(reading)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"device":"gmc","cpm":300,"usv_per_hour":1.95,"sampled_at":"2025-08-24T14:30:05Z"}`
	if string(payload) != want {
		t.Fatalf("payload = %s, want %s", payload, want)
	}
}
