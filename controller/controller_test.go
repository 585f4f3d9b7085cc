package controller

import (
	"context"
	"testing"
	"time"

	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/factory"
	"github.com/cepro/solarfocus/modbus"
	"github.com/cepro/solarfocus/solarfocus"
	"github.com/cepro/solarfocus/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, mock *modbus.Mock, readings chan telemetry.Reading) (*Controller, uuid.UUID) {
	api, err := solarfocus.New(mock, solarfocus.Config{System: device.Vampair, Version: device.V25_030, Counts: factory.DefaultCounts()})
	require.NoError(t, err)

	deviceID := uuid.New()
	return New(api, Config{
		DeviceID:      deviceID,
		PollInterval:  10 * time.Millisecond,
		UpdateTimeout: time.Second,
		Readings:      readings,
	}), deviceID
}

func receive(t *testing.T, readings <-chan telemetry.Reading) telemetry.Reading {
	select {
	case r := <-readings:
		return r
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no reading received")
	}
	return telemetry.Reading{}
}

func TestPolling(t *testing.T) {
	mock := modbus.NewMock()
	mock.SetInput(1100, 352)
	readings := make(chan telemetry.Reading)
	ctrl, deviceID := newController(t, mock, readings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	reading := receive(t, readings)
	assert.Equal(t, deviceID, reading.DeviceID)
	assert.True(t, reading.Healthy)
	assert.InDelta(t, 35.2, reading.Values["heating_circuits[0]"]["supply_temperature"], 1e-9)

	mock.FailAddress(1100, true)
	reading = receive(t, readings)
	assert.False(t, reading.Healthy)
	assert.Equal(t, []string{"heating_circuits[0]"}, reading.Failed)
}

func TestPollingReconnects(t *testing.T) {
	mock := modbus.NewMock()
	mock.FailConnect(true)
	readings := make(chan telemetry.Reading)
	ctrl, _ := newController(t, mock, readings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	select {
	case <-readings:
		require.FailNow(t, "reading emitted while disconnected")
	case <-time.After(50 * time.Millisecond):
	}

	mock.FailConnect(false)
	reading := receive(t, readings)
	assert.True(t, reading.Healthy)
}

func TestCommands(t *testing.T) {
	mock := modbus.NewMock()
	readings := make(chan telemetry.Reading, 100)
	ctrl, _ := newController(t, mock, readings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	receive(t, readings)

	ctrl.Commands <- telemetry.Command{Component: "boilers[0]", Register: "target_temperature", Value: 52}
	ctrl.Commands <- telemetry.Command{Component: "boilers[0]", Register: "temperature", Value: 10}

	assert.Eventually(t, func() bool {
		return len(mock.Writes()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint16(520), mock.Holding(32000))
}
