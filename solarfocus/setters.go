package solarfocus

import (
	"context"
	"strings"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/factory"
)

// write commits an engineering value to one holding register, logging any failure.
func (a *API) write(ctx context.Context, c *component.Component, register string, value float64) bool {
	return a.commit(c, register, func() error {
		return c.Commit(ctx, register, value)
	})
}

// writeRaw commits an unscaled value such as an enum or a flag.
func (a *API) writeRaw(ctx context.Context, c *component.Component, register string, raw int64) bool {
	return a.commit(c, register, func() error {
		return c.CommitRaw(ctx, register, raw)
	})
}

func (a *API) commit(c *component.Component, register string, commit func() error) bool {
	if c == nil {
		a.logger.Warn("Component does not exist", "register", register)
		return false
	}
	if !a.IsConnected() {
		a.logger.Warn("Attempted write while not connected", "component", c.Name(), "register", register)
		return false
	}
	if err := commit(); err != nil {
		a.logger.Error("Failed to write register", "component", c.Name(), "register", register, "error", err)
		return false
	}
	return true
}

func boolRaw(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Set writes an engineering value to a holding register of the named component, e.g. "boilers[0]" and
// "target_temperature". Components that are not read on the configured system are not written either.
func (a *API) Set(ctx context.Context, name, register string, value float64) bool {
	c, ok := a.byName[name]
	if !ok {
		a.logger.Warn("Unknown component", "component", name)
		return false
	}
	group, _, _ := strings.Cut(name, "[")
	if !a.applies(group) {
		a.logger.Warn("Component is not used on this system", "component", name)
		return false
	}
	return a.write(ctx, c, register, value)
}

func (a *API) heatingCircuit(i int) *component.Component {
	return at(a.set.HeatingCircuits, i).c
}

func (a *API) boiler(i int) *component.Component {
	return at(a.set.Boilers, i).c
}

// heatPump returns the heat pump if it applies to the system.
func (a *API) heatPump() *component.Component {
	if !a.applies(factory.HeatPump) {
		return nil
	}
	return a.set.HeatPump
}

func (a *API) biomassBoiler() *component.Component {
	if !a.applies(factory.BiomassBoiler) {
		return nil
	}
	return a.set.BiomassBoiler
}

func (a *API) SetHeatingCircuitTargetSupplyTemperature(ctx context.Context, i int, temperature float64) bool {
	return a.write(ctx, a.heatingCircuit(i), "target_supply_temperature", temperature)
}

func (a *API) SetHeatingCircuitTargetRoomTemperature(ctx context.Context, i int, temperature float64) bool {
	return a.write(ctx, a.heatingCircuit(i), "target_room_temperature", temperature)
}

func (a *API) SetHeatingCircuitMode(ctx context.Context, i int, mode HeatingCircuitMode) bool {
	if mode < HeatingCircuitAlwaysOn || mode > HeatingCircuitOff {
		a.logger.Warn("Invalid heating circuit mode", "mode", mode)
		return false
	}
	return a.writeRaw(ctx, a.heatingCircuit(i), "mode", int64(mode))
}

func (a *API) SetHeatingCircuitCooling(ctx context.Context, i int, cooling HeatingCircuitCooling) bool {
	if cooling != HeatingCircuitCoolingOff && cooling != HeatingCircuitCoolingOn {
		a.logger.Warn("Invalid heating circuit cooling", "cooling", cooling)
		return false
	}
	return a.writeRaw(ctx, a.heatingCircuit(i), "cooling", int64(cooling))
}

// SetHeatingCircuitHeatingMode needs API 22.090 or later.
func (a *API) SetHeatingCircuitHeatingMode(ctx context.Context, i int, mode HeatingCircuitHeatingMode) bool {
	if mode < HeatingModeHeating || mode > HeatingModeAutomatic {
		a.logger.Warn("Invalid heating circuit heating mode", "heating_mode", mode)
		return false
	}
	return a.writeRaw(ctx, a.heatingCircuit(i), "heating_mode", int64(mode))
}

// SetHeatingCircuitIndoorTemperature feeds a room temperature measured elsewhere into the controller.
func (a *API) SetHeatingCircuitIndoorTemperature(ctx context.Context, i int, temperature float64) bool {
	return a.write(ctx, a.heatingCircuit(i), "indoor_temperature_external", temperature)
}

// SetHeatingCircuitIndoorHumidity feeds a room humidity measured elsewhere into the controller.
func (a *API) SetHeatingCircuitIndoorHumidity(ctx context.Context, i int, humidity float64) bool {
	return a.write(ctx, a.heatingCircuit(i), "indoor_humidity_external", humidity)
}

func (a *API) SetDomesticHotWaterTargetTemperature(ctx context.Context, i int, temperature float64) bool {
	return a.write(ctx, a.boiler(i), "target_temperature", temperature)
}

func (a *API) SetDomesticHotWaterMode(ctx context.Context, i int, mode DomesticHotWaterMode) bool {
	if mode < DomesticHotWaterAlwaysOff || mode > DomesticHotWaterDaywise {
		a.logger.Warn("Invalid domestic hot water mode", "mode", mode)
		return false
	}
	return a.writeRaw(ctx, a.boiler(i), "holding_mode", int64(mode))
}

// SetDomesticHotWaterSingleCharge starts or stops a one off charge of the boiler.
func (a *API) SetDomesticHotWaterSingleCharge(ctx context.Context, i int, charge bool) bool {
	return a.writeRaw(ctx, a.boiler(i), "single_charge", boolRaw(charge))
}

func (a *API) SetDomesticHotWaterCirculation(ctx context.Context, i int, circulation bool) bool {
	return a.writeRaw(ctx, a.boiler(i), "circulation", boolRaw(circulation))
}

// SetBufferExternalTemperatures feeds externally measured buffer temperatures into the controller. It needs API
// 22.090 or later and stops at the first failed write.
func (a *API) SetBufferExternalTemperatures(ctx context.Context, i int, top, middle, bottom float64) bool {
	c := at(a.set.Buffers, i).c
	return a.write(ctx, c, "external_top_temperature_x44", top) &&
		a.write(ctx, c, "external_middle_temperature_x36", middle) &&
		a.write(ctx, c, "external_bottom_temperature_x35", bottom)
}

// SetHeatPumpSGReadyMode only works on a Vampair.
func (a *API) SetHeatPumpSGReadyMode(ctx context.Context, mode SGReadyMode) bool {
	if !mode.valid() {
		a.logger.Warn("Invalid smart grid ready mode", "mode", mode)
		return false
	}
	return a.writeRaw(ctx, a.heatPump(), "smart_grid", int64(mode))
}

// SetHeatPumpEVULock only works on a Vampair.
func (a *API) SetHeatPumpEVULock(ctx context.Context, lock bool) bool {
	return a.writeRaw(ctx, a.heatPump(), "evu_lock", boolRaw(lock))
}

// SetHeatPumpOutdoorTemperature feeds an externally measured outdoor temperature into the heat pump.
func (a *API) SetHeatPumpOutdoorTemperature(ctx context.Context, temperature float64) bool {
	return a.write(ctx, a.heatPump(), "outdoor_temperature_external", temperature)
}

// SetPhotovoltaicValues feeds smart meter readings in watts into the controller, stopping at the first failed write.
func (a *API) SetPhotovoltaicValues(ctx context.Context, smartMeter, photovoltaic, gridImExport float64) bool {
	c := a.set.Photovoltaic
	return a.write(ctx, c, "smart_meter", smartMeter) &&
		a.write(ctx, c, "photovoltaic", photovoltaic) &&
		a.write(ctx, c, "grid_im_export", gridImExport)
}

// SetBiomassBoilerSweepFunction starts or stops the chimney sweep function. Not available on the Ecotop.
func (a *API) SetBiomassBoilerSweepFunction(ctx context.Context, active bool) bool {
	return a.writeRaw(ctx, a.biomassBoiler(), "sweep_function_start_stop", boolRaw(active))
}

// ExtendBiomassBoilerSweepFunction extends a running chimney sweep function.
func (a *API) ExtendBiomassBoilerSweepFunction(ctx context.Context) bool {
	return a.writeRaw(ctx, a.biomassBoiler(), "sweep_function_extend", 1)
}

// ResetPelletUsage resets the pellet usage counter of the last fill. Needs API 23.010 or later.
func (a *API) ResetPelletUsage(ctx context.Context) bool {
	return a.writeRaw(ctx, a.biomassBoiler(), "pellet_usage_reset", 1)
}
