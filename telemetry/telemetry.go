package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Reading holds the values pulled from a heating controller in one update
type Reading struct {
	ID       uuid.UUID
	Time     time.Time
	DeviceID uuid.UUID

	// Healthy is false if any component failed to update, in which case Failed names them.
	Healthy bool
	Failed  []string

	// Values are keyed by component name, e.g. "heating_circuits[0]", and then register name.
	Values map[string]map[string]float64
}

func NewReading(deviceID uuid.UUID, t time.Time, values map[string]map[string]float64, failed []string) Reading {
	return Reading{
		ID:       uuid.New(),
		Time:     t,
		DeviceID: deviceID,
		Healthy:  len(failed) == 0,
		Failed:   failed,
		Values:   values,
	}
}

// Command holds a write request for a holding register, e.g. received over MQTT
type Command struct {
	Component string
	Register  string
	Value     float64
}
