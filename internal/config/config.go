package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/cloudchamber-io/geigerctl/internal/device"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

type DeviceConfig struct {
	// Port is a local serial port path. Address is a serial-over-TCP
	// bridge endpoint. A config sets one of them, never both.
	Port    string
	Baud    int
	Address string
	// Revision pins the protocol catalog. Empty means probe the device
	// and map its model string.
	Revision string
}

type MonitorConfig struct {
	Interval time.Duration
	// TubeFactor is the tube's counts per minute per microsievert/hour.
	// The default matches the M4011 tube shipped in most GMC counters.
	TubeFactor float64
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      int
}

type HTTPConfig struct {
	Addr string
}

type Config struct {
	Device  DeviceConfig
	Session session.Config
	Monitor MonitorConfig
	MQTT    MQTTConfig
	HTTP    HTTPConfig
}

func Default() Config {
	return Config{
		Device:  DeviceConfig{Baud: device.DefaultBaud},
		Session: session.DefaultConfig(),
		Monitor: MonitorConfig{
			Interval:   30 * time.Second,
			TubeFactor: 153.8,
		},
		MQTT: MQTTConfig{
			Topic:    "sensors/geiger",
			ClientID: "geigermon",
			QoS:      1,
		},
		HTTP: HTTPConfig{Addr: ":9090"},
	}
}

type fileConfig struct {
	Device struct {
		Port     string `toml:"port"`
		Baud     int    `toml:"baud"`
		Address  string `toml:"address"`
		Revision string `toml:"revision"`
	} `toml:"device"`
	Session struct {
		ReadTimeout    string `toml:"read_timeout"`
		WriteTimeout   string `toml:"write_timeout"`
		IdleWindow     string `toml:"idle_window"`
		MaxResponseKiB int    `toml:"max_response_kib"`
	} `toml:"session"`
	Monitor struct {
		Interval   string  `toml:"interval"`
		TubeFactor float64 `toml:"tube_factor"`
	} `toml:"monitor"`
	MQTT struct {
		Broker   string `toml:"broker"`
		Topic    string `toml:"topic"`
		ClientID string `toml:"client_id"`
		Username string `toml:"username"`
		Password string `toml:"password"`
		QoS      int    `toml:"qos"`
	} `toml:"mqtt"`
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
}

// Load reads path and overlays only the keys the file defines onto the
// defaults, so a partial config never zeroes a setting.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("device", "port") {
		cfg.Device.Port = strings.TrimSpace(raw.Device.Port)
	}
	if meta.IsDefined("device", "baud") {
		cfg.Device.Baud = raw.Device.Baud
	}
	if meta.IsDefined("device", "address") {
		cfg.Device.Address = strings.TrimSpace(raw.Device.Address)
	}
	if meta.IsDefined("device", "revision") {
		cfg.Device.Revision = strings.TrimSpace(raw.Device.Revision)
	}

	if meta.IsDefined("session", "read_timeout") {
		d, err := parseDuration("session.read_timeout", raw.Session.ReadTimeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Session.ReadTimeout = d
	}
	if meta.IsDefined("session", "write_timeout") {
		d, err := parseDuration("session.write_timeout", raw.Session.WriteTimeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Session.WriteTimeout = d
	}
	if meta.IsDefined("session", "idle_window") {
		d, err := parseDuration("session.idle_window", raw.Session.IdleWindow)
		if err != nil {
			return Config{}, err
		}
		cfg.Session.IdleWindow = d
	}
	if meta.IsDefined("session", "max_response_kib") {
		cfg.Session.MaxResponseBytes = raw.Session.MaxResponseKiB * 1024
	}

	if meta.IsDefined("monitor", "interval") {
		d, err := parseDuration("monitor.interval", raw.Monitor.Interval)
		if err != nil {
			return Config{}, err
		}
		cfg.Monitor.Interval = d
	}
	if meta.IsDefined("monitor", "tube_factor") {
		cfg.Monitor.TubeFactor = raw.Monitor.TubeFactor
	}

	if meta.IsDefined("mqtt", "broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	}
	if meta.IsDefined("mqtt", "topic") {
		cfg.MQTT.Topic = strings.TrimSpace(raw.MQTT.Topic)
	}
	if meta.IsDefined("mqtt", "client_id") {
		cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTT.ClientID)
	}
	if meta.IsDefined("mqtt", "username") {
		cfg.MQTT.Username = raw.MQTT.Username
	}
	if meta.IsDefined("mqtt", "password") {
		cfg.MQTT.Password = raw.MQTT.Password
	}
	if meta.IsDefined("mqtt", "qos") {
		cfg.MQTT.QoS = raw.MQTT.QoS
	}

	if meta.IsDefined("http", "addr") {
		cfg.HTTP.Addr = strings.TrimSpace(raw.HTTP.Addr)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Device.Port != "" && cfg.Device.Address != "" {
		return fmt.Errorf("device config sets both port and address")
	}
	if cfg.Device.Baud <= 0 {
		return fmt.Errorf("device config baud must be positive")
	}
	if cfg.Device.Revision != "" {
		if _, err := gqrfc.Lookup(cfg.Device.Revision); err != nil {
			return err
		}
	}
	if cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor config interval must be positive")
	}
	if cfg.Monitor.TubeFactor <= 0 {
		return fmt.Errorf("monitor config tube_factor must be positive")
	}
	if cfg.MQTT.Broker != "" && strings.TrimSpace(cfg.MQTT.Topic) == "" {
		return fmt.Errorf("mqtt config topic required when broker is set")
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt config qos must be 0, 1 or 2")
	}
	return nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}
