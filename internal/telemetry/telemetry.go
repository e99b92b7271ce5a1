// Package telemetry publishes readings to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/monitor"
	"github.com/cloudchamber-io/geigerctl/internal/observability"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher forwards readings to one MQTT topic as JSON documents. It
// implements monitor.Sink.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    zerolog.Logger
}

// Connect dials the broker and blocks until the session is up or the
// attempt fails. The attempt is bounded by the options' connect timeout.
func Connect(cfg config.MQTTConfig, log zerolog.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("telemetry: no broker configured")
	}
	client := mqtt.NewClient(clientOptions(cfg, log))
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", cfg.Broker, token.Error())
	}
	return &Publisher{
		client: client,
		topic:  cfg.Topic,
		qos:    byte(cfg.QoS),
		log:    log,
	}, nil
}

func clientOptions(cfg config.MQTTConfig, log zerolog.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("mqtt connection lost")
	}
	return opts
}

// Publish sends one reading and waits for the broker to take it.
func (p *Publisher) Publish(ctx context.Context, r monitor.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("telemetry: encode reading: %w", err)
	}
	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
		err = token.Error()
	case <-ctx.Done():
		err = ctx.Err()
	case <-time.After(publishTimeout):
		err = fmt.Errorf("no broker ack within %s", publishTimeout)
	}
	observability.RecordPublish(p.topic, err)
	if err != nil {
		p.log.Warn().Err(err).Str("topic", p.topic).Msg("publish failed")
		return fmt.Errorf("telemetry: publish to %s: %w", p.topic, err)
	}
	p.log.Debug().Str("topic", p.topic).Int("bytes", len(payload)).Msg("published reading")
	return nil
}

// Close flushes in flight messages and drops the connection.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
