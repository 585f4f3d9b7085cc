package controller

import (
	"context"
	"time"

	"github.com/cepro/solarfocus/telemetry"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Device is the part of the heating controller API that the controller drives.
type Device interface {
	Connect(ctx context.Context) bool
	IsConnected() bool
	Update(ctx context.Context) bool
	Snapshot() map[string]map[string]float64
	FailedComponents() []string
	Set(ctx context.Context, component, register string, value float64) bool
}

// Controller polls a heating controller and carries out write commands.
//
// Readings are taken every `PollInterval` and sent onto the `Readings` channel. Put write commands onto the
// `Commands` channel; they are carried out between polls.
type Controller struct {
	Commands chan telemetry.Command

	device Device
	config Config
	logger *slog.Logger
}

type Config struct {
	DeviceID      uuid.UUID
	PollInterval  time.Duration
	UpdateTimeout time.Duration

	Readings chan<- telemetry.Reading
}

func New(device Device, config Config) *Controller {
	return &Controller{
		Commands: make(chan telemetry.Command, 10),
		device:   device,
		config:   config,
		logger:   slog.Default().With("device_id", config.DeviceID),
	}
}

// Run loops until the context is done, polling the device straight away and then every `PollInterval`.
func (c *Controller) Run(ctx context.Context) {
	pollTicker := time.NewTicker(c.config.PollInterval)
	defer pollTicker.Stop()

	c.poll(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-pollTicker.C:
			c.poll(ctx, t)
		case cmd := <-c.Commands:
			c.execute(ctx, cmd)
		}
	}
}

// poll (re)connects if needed, updates every component and emits a reading. Nothing is emitted while the device
// cannot be reached.
func (c *Controller) poll(ctx context.Context, t time.Time) {
	if !c.device.IsConnected() && !c.device.Connect(ctx) {
		c.logger.Warn("Skipping poll, heating controller not connected")
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, c.config.UpdateTimeout)
	defer cancel()

	start := time.Now()
	ok := c.device.Update(updateCtx)
	failed := c.device.FailedComponents()

	c.logger.Info("Polled heating controller", "healthy", ok, "failed", failed, "duration", time.Since(start))

	if c.config.Readings == nil {
		return
	}
	reading := telemetry.NewReading(c.config.DeviceID, t, c.device.Snapshot(), failed)
	select {
	case c.config.Readings <- reading:
	case <-ctx.Done():
	}
}

func (c *Controller) execute(ctx context.Context, cmd telemetry.Command) {
	writeCtx, cancel := context.WithTimeout(ctx, c.config.UpdateTimeout)
	defer cancel()

	if !c.device.Set(writeCtx, cmd.Component, cmd.Register, cmd.Value) {
		c.logger.Error("Failed to carry out command", "component", cmd.Component, "register", cmd.Register, "value", cmd.Value)
		return
	}
	c.logger.Info("Carried out command", "component", cmd.Component, "register", cmd.Register, "value", cmd.Value)
}
