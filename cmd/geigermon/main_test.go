package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/testutil/testlog"
)

func TestDeviceLabelPrefersPort(t *testing.T) {
	if got := deviceLabel(config.DeviceConfig{Port: "/dev/ttyUSB0"}); got != "/dev/ttyUSB0" {
		t.Fatalf("label = %q, want /dev/ttyUSB0", got)
	}
	if got := deviceLabel(config.DeviceConfig{Address: "10.0.0.5:2000"}); got != "10.0.0.5:2000" {
		t.Fatalf("label = %q, want 10.0.0.5:2000", got)
	}
}

func TestHealthRoute(t *testing.T) {
	testlog.Start(t)

	cfg := config.Default()
	cfg.Device.Port = "/dev/ttyUSB0"
	svc := NewService(cfg, testlog.Logger(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	svc.router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["device"] != "/dev/ttyUSB0" {
		t.Fatalf("unexpected health payload: %#v", body)
	}
}

func TestMetricsRoute(t *testing.T) {
	testlog.Start(t)

	svc := NewService(config.Default(), testlog.Logger(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	svc.router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("metrics exposition missing default collectors:\n%.200s", rr.Body.String())
	}
}
