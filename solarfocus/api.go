// Package solarfocus is the application facing API onto a Solarfocus eco manager-touch controller. It owns the
// components of one controller and turns their errors into booleans and a list of failed components.
package solarfocus

import (
	"context"
	"fmt"
	"sync"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/factory"
	"github.com/cepro/solarfocus/modbusaccess"
	"golang.org/x/exp/slog"
)

// Transport is the connection to the controller: the register primitives the components need plus the connection
// lifecycle.
type Transport interface {
	component.Transport
	Connect(ctx context.Context) error
	Close() error
}

// Config describes the controller.
type Config struct {
	System  device.System
	Version device.Version
	Counts  factory.Counts

	// Parallelism limits the number of components updated at the same time. Zero means no limit.
	Parallelism int

	Logger *slog.Logger
}

// API gives typed access to the values of one controller.
type API struct {
	transport Transport
	config    Config

	set        *factory.Set
	components []*component.Component // update order
	byName     map[string]*component.Component

	mu        sync.Mutex // guards connected and failed
	connected bool
	failed    []string

	logger *slog.Logger
}

// New builds every component of the described controller and binds it to the transport. Invalid counts or an invalid
// system and version combination fail with modbusaccess.ErrConfiguration.
func New(t Transport, cfg Config) (*API, error) {
	if t == nil {
		return nil, fmt.Errorf("no transport: %w", modbusaccess.ErrUsage)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", cfg.System, "api_version", cfg.Version)
	if !cfg.Version.Known() {
		logger.Warn("No register map for this API version, using the registers of the nearest older version")
	}

	f, err := factory.New(cfg.System, cfg.Version, component.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	set, err := f.Build(cfg.Counts)
	if err != nil {
		return nil, err
	}

	a := &API{
		transport: t,
		config:    cfg,
		set:       set,
		byName:    make(map[string]*component.Component),
		logger:    logger,
	}
	for _, c := range set.All() {
		if err := c.Initialize(t); err != nil {
			return nil, err
		}
		a.components = append(a.components, c)
		a.byName[c.Name()] = c
	}

	return a, nil
}

// System returns the configured system.
func (a *API) System() device.System {
	return a.config.System
}

// Version returns the configured API version.
func (a *API) Version() device.Version {
	return a.config.Version
}

// Connect opens the transport. It reports whether the connection was established.
func (a *API) Connect(ctx context.Context) bool {
	err := a.transport.Connect(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.logger.Error("Failed to connect to heating controller", "error", err)
		a.connected = false
		return false
	}
	a.connected = true
	a.logger.Info("Connected to heating controller")
	return true
}

func (a *API) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// Close closes the transport. A later Connect starts afresh.
func (a *API) Close() error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()

	return a.transport.Close()
}

// IsHealthy reports whether the last update had no failed components.
func (a *API) IsHealthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.failed) == 0
}

// FailedComponents returns the names of the components that failed during the last update, e.g.
// "heating_circuits[1]" or "heatpump".
func (a *API) FailedComponents() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.failed...)
}

// Groups returns the component groups that are read on this system, in update order.
func (a *API) Groups() []string {
	var groups []string
	for _, g := range factory.Groups {
		if a.applies(g) {
			groups = append(groups, g)
		}
	}
	return groups
}

// applies reports whether a group is read on the configured system. The heat pump only exists on a Vampair and the
// biomass boiler only on biomass systems.
func (a *API) applies(group string) bool {
	switch group {
	case factory.HeatPump:
		return a.config.System.IsHeatPump()
	case factory.BiomassBoiler:
		return a.config.System.IsBiomass()
	default:
		return true
	}
}

// Component returns the named component, e.g. "buffers[0]" or "photovoltaic".
func (a *API) Component(name string) (*component.Component, bool) {
	c, ok := a.byName[name]
	return c, ok
}

// Components returns every component in update order, including those not read on this system.
func (a *API) Components() []*component.Component {
	return append([]*component.Component(nil), a.components...)
}
