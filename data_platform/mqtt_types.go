package dataplatform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cepro/solarfocus/telemetry"
	"github.com/google/uuid"
)

// mqttReading holds the json encoding schema for a reading published over MQTT.
type mqttReading struct {
	ID       uuid.UUID                     `json:"id"`
	Time     time.Time                     `json:"time"`
	DeviceID uuid.UUID                     `json:"device_id"`
	Healthy  bool                          `json:"healthy"`
	Failed   []string                      `json:"failed,omitempty"`
	Values   map[string]map[string]float64 `json:"values"`
}

func newMQTTReading(r telemetry.Reading) mqttReading {
	return mqttReading{
		ID:       r.ID,
		Time:     r.Time.UTC(),
		DeviceID: r.DeviceID,
		Healthy:  r.Healthy,
		Failed:   r.Failed,
		Values:   r.Values,
	}
}

type topics struct {
	prefix       string
	reading      string
	availability string
	setFilter    string
}

func newTopics(prefix string) topics {
	prefix = strings.TrimSuffix(prefix, "/")
	return topics{
		prefix:       prefix,
		reading:      prefix + "/reading",
		availability: prefix + "/availability",
		setFilter:    prefix + "/set/+/+",
	}
}

// parseCommand turns `<prefix>/set/<component>/<register>` with a numeric payload into a command.
func (t topics) parseCommand(topic string, payload []byte) (telemetry.Command, error) {
	rest, ok := strings.CutPrefix(topic, t.prefix+"/set/")
	if !ok {
		return telemetry.Command{}, fmt.Errorf("unexpected topic")
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return telemetry.Command{}, fmt.Errorf("expected <component>/<register>, got '%s'", rest)
	}

	text := strings.TrimSpace(string(payload))
	var value float64
	switch strings.ToLower(text) {
	case "true", "on":
		value = 1
	case "false", "off":
		value = 0
	default:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return telemetry.Command{}, fmt.Errorf("parse payload '%s': %w", text, err)
		}
		value = v
	}

	return telemetry.Command{Component: parts[0], Register: parts[1], Value: value}, nil
}
