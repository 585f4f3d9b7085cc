package dataplatform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cepro/solarfocus/telemetry"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/exp/slog"
)

const (
	qos            = 1
	connectTimeout = 10 * time.Second
)

type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// DataPlatform handles the streaming of telemetry to an MQTT broker.
// Put new readings onto the Readings channel and they are published as JSON. Write requests received on
// `<prefix>/set/<component>/<register>` are put onto the Commands channel.
type DataPlatform struct {
	Readings chan telemetry.Reading
	Commands chan telemetry.Command

	client pahomqtt.Client
	topics topics
	logger *slog.Logger
}

func New(config Config) (*DataPlatform, error) {
	d := &DataPlatform{
		Readings: make(chan telemetry.Reading, 25), // a small buffer to allow the broker to catch up
		Commands: make(chan telemetry.Command, 25),
		topics:   newTopics(config.TopicPrefix),
		logger:   slog.Default().With("broker", config.Broker),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetWill(d.topics.availability, "offline", qos, true)
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		d.logger.Info("MQTT connected, subscribing to commands")
		if err := d.subscribe(c); err != nil {
			d.logger.Error("Failed to subscribe to commands", "error", err)
		}
		c.Publish(d.topics.availability, qos, true, "online")
	})
	opts.SetConnectionLostHandler(func(c pahomqtt.Client, err error) {
		d.logger.Warn("MQTT connection lost", "error", err)
	})

	d.client = pahomqtt.NewClient(opts)
	token := d.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return d, nil
}

// Run loops until the context is done, publishing readings as they arrive.
func (d *DataPlatform) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.client.Publish(d.topics.availability, qos, true, "offline").WaitTimeout(time.Second)
			d.client.Disconnect(250)
			return
		case reading := <-d.Readings:
			err := d.publish(reading)
			if err != nil {
				d.logger.Error("Failed to publish reading", "error", err)
				continue
			}
			d.logger.Debug("Published reading", "components", len(reading.Values))
		}
	}
}

func (d *DataPlatform) publish(reading telemetry.Reading) error {
	payload, err := json.Marshal(newMQTTReading(reading))
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := d.client.Publish(d.topics.reading, qos, false, payload)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("publish to %s: timed out", d.topics.reading)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", d.topics.reading, err)
	}
	return nil
}

func (d *DataPlatform) subscribe(c pahomqtt.Client) error {
	token := c.Subscribe(d.topics.setFilter, qos, d.onCommand)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", d.topics.setFilter, err)
	}
	return nil
}

func (d *DataPlatform) onCommand(_ pahomqtt.Client, msg pahomqtt.Message) {
	cmd, err := d.topics.parseCommand(msg.Topic(), msg.Payload())
	if err != nil {
		d.logger.Warn("Ignoring command", "topic", msg.Topic(), "error", err)
		return
	}

	select {
	case d.Commands <- cmd:
		d.logger.Info("Received command", "component", cmd.Component, "register", cmd.Register, "value", cmd.Value)
	default:
		d.logger.Warn("Dropping command, queue is full", "topic", msg.Topic())
	}
}
