// Package notify publishes alert lifecycle events for map clients that
// subscribe instead of polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// Event names an alert lifecycle change.
type Event string

const (
	EventCreated     Event = "created"
	EventUpdated     Event = "updated"
	EventDeactivated Event = "deactivated"
)

// Message is the JSON payload published for every event.
type Message struct {
	OccurredAt time.Time        `json:"occurred_at"`
	Event      Event            `json:"event"`
	Alert      models.AlertView `json:"alert"`
}

// Publisher delivers alert events. Delivery is best-effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event, alert models.AlertView) error
	Close()
}

// mqttClient is the part of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

const (
	publishQoS      = 1
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250
)

// MQTTPublisher publishes to <prefix>/alerts/<event>.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	now    func() time.Time
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	// A random suffix lets several API replicas share one broker.
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to mqtt broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	return newMQTTPublisher(client, cfg.TopicPrefix), nil
}

func newMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, now: time.Now}
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(event Event) string {
	return fmt.Sprintf("%s/alerts/%s", p.prefix, event)
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event, alert models.AlertView) error {
	data, err := json.Marshal(Message{Event: event, Alert: alert, OccurredAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	topic := p.Topic(event)
	token := p.client.Publish(topic, publishQoS, false, data)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectQuiet)
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event, models.AlertView) error { return nil }

func (Noop) Close() {}
