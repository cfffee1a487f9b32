// Package publish forwards watch events to an MQTT broker.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hoppxi/displayconfig/internal/manager"
	log "github.com/sirupsen/logrus"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// DisplayEvent is the JSON payload published for each reconfiguration.
type DisplayEvent struct {
	DisplayID   uint32    `json:"display_id"`
	Flags       uint32    `json:"flags"`
	ModeNumber  *int32    `json:"mode_number,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	RefreshRate float64   `json:"refresh_rate"`
	Time        time.Time `json:"time"`
}

func StatusTopic(prefix string) string {
	return prefix + "/status"
}

func EventTopic(prefix string, id uint32) string {
	return fmt.Sprintf("%s/display/%d/event", prefix, id)
}

// Publisher sends display events over an MQTT client.
type Publisher struct {
	client mqtt.Client
	cfg    manager.MQTTSettings
}

// New wraps an existing client. Connect is the usual constructor.
func New(client mqtt.Client, cfg manager.MQTTSettings) *Publisher {
	return &Publisher{client: client, cfg: cfg}
}

// ClientOptions builds the paho options for cfg: a retained offline last
// will on the status topic and online published on every connect.
func ClientOptions(cfg manager.MQTTSettings) *mqtt.ClientOptions {
	status := StatusTopic(cfg.Topic)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(15 * time.Second)
	opts.SetWriteTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(2 * time.Minute)
	opts.SetWill(status, statusOffline, cfg.QoS, true)

	opts.OnConnect = func(c mqtt.Client) {
		log.WithField("broker", cfg.Broker).Info("connected to MQTT")
		token := c.Publish(status, cfg.QoS, true, statusOnline)
		if token.WaitTimeout(10*time.Second) && token.Error() != nil {
			log.WithError(token.Error()).Warn("failed to publish online status")
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("disconnected from MQTT, reconnecting")
	}
	return opts
}

// Connect dials the broker in cfg.
func Connect(cfg manager.MQTTSettings) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("no MQTT broker configured")
	}
	client := mqtt.NewClient(ClientOptions(cfg))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return New(client, cfg), nil
}

func (p *Publisher) PublishDisplayEvent(ev DisplayEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := p.client.Publish(EventTopic(p.cfg.Topic, ev.DisplayID), p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return errors.New("timed out publishing display event")
	}
	return token.Error()
}

// Close marks the client offline and disconnects.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Publish(StatusTopic(p.cfg.Topic), p.cfg.QoS, true, statusOffline).WaitTimeout(2 * time.Second)
	}
	p.client.Disconnect(250)
}
