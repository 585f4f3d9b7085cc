package solarfocus

import (
	"time"

	"github.com/cepro/solarfocus/component"
)

// view is the common part of the typed component views. The zero view stands for a component that does not exist:
// every getter returns zero.
type view struct {
	c *component.Component
}

func at(components []*component.Component, i int) view {
	if i < 0 || i >= len(components) {
		return view{}
	}
	return view{c: components[i]}
}

// Exists reports whether the component exists on this controller.
func (v view) Exists() bool {
	return v.c != nil
}

func (v view) Name() string {
	if v.c == nil {
		return ""
	}
	return v.c.Name()
}

// Values returns every known scaled value keyed by register name.
func (v view) Values() map[string]float64 {
	if v.c == nil {
		return nil
	}
	return v.c.Values()
}

func (v view) LastUpdate() time.Time {
	if v.c == nil {
		return time.Time{}
	}
	return v.c.LastUpdate()
}

func (v view) value(name string) float64 {
	if v.c == nil {
		return 0
	}
	val, _ := v.c.Value(name)
	return val
}

func (v view) raw(name string) int64 {
	if v.c == nil {
		return 0
	}
	raw, _ := v.c.Raw(name)
	return raw
}

func (v view) flag(name string) bool {
	return v.raw(name) != 0
}

// HeatingCircuit returns the view of heating circuit i, counting from 0.
func (a *API) HeatingCircuit(i int) HeatingCircuit {
	return HeatingCircuit{at(a.set.HeatingCircuits, i)}
}

type HeatingCircuit struct{ view }

func (h HeatingCircuit) SupplyTemperature() float64 { return h.value("supply_temperature") }
func (h HeatingCircuit) RoomTemperature() float64   { return h.value("room_temperature") }
func (h HeatingCircuit) Humidity() float64          { return h.value("humidity") }
func (h HeatingCircuit) LimitThermostat() bool      { return h.flag("limit_thermostat") }
func (h HeatingCircuit) CirculatorPump() bool       { return h.flag("circulator_pump") }
func (h HeatingCircuit) MixerValve() int64          { return h.raw("mixer_valve") }
func (h HeatingCircuit) State() int64               { return h.raw("state") }
func (h HeatingCircuit) StateText() string          { return stateText(heatingCircuitStates, h.State()) }

func (h HeatingCircuit) TargetSupplyTemperature() float64 { return h.value("target_supply_temperature") }
func (h HeatingCircuit) TargetRoomTemperature() float64   { return h.value("target_room_temperature") }
func (h HeatingCircuit) IndoorTemperatureExternal() float64 {
	return h.value("indoor_temperature_external")
}
func (h HeatingCircuit) IndoorHumidityExternal() float64 { return h.value("indoor_humidity_external") }

func (h HeatingCircuit) Mode() HeatingCircuitMode { return HeatingCircuitMode(h.raw("mode")) }
func (h HeatingCircuit) Cooling() HeatingCircuitCooling {
	return HeatingCircuitCooling(h.raw("cooling"))
}

// HeatingMode is only available from API 22.090.
func (h HeatingCircuit) HeatingMode() HeatingCircuitHeatingMode {
	return HeatingCircuitHeatingMode(h.raw("heating_mode"))
}

// Boiler returns the view of domestic hot water boiler i, counting from 0.
func (a *API) Boiler(i int) Boiler {
	return Boiler{at(a.set.Boilers, i)}
}

type Boiler struct{ view }

func (b Boiler) Temperature() float64       { return b.value("temperature") }
func (b Boiler) State() int64               { return b.raw("state") }
func (b Boiler) StateText() string          { return stateText(boilerStates, b.State()) }
func (b Boiler) Mode() DomesticHotWaterMode { return DomesticHotWaterMode(b.raw("mode")) }
func (b Boiler) ModeText() string           { return stateText(boilerModes, b.raw("mode")) }
func (b Boiler) TargetTemperature() float64 { return b.value("target_temperature") }
func (b Boiler) SingleCharge() bool         { return b.flag("single_charge") }
func (b Boiler) Circulation() bool          { return b.flag("circulation") }

// Buffer returns the view of buffer i, counting from 0.
func (a *API) Buffer(i int) Buffer {
	return Buffer{at(a.set.Buffers, i)}
}

type Buffer struct{ view }

func (b Buffer) TopTemperature() float64    { return b.value("top_temperature") }
func (b Buffer) BottomTemperature() float64 { return b.value("bottom_temperature") }

// X35Temperature is only available on Therminator and Ecotop systems.
func (b Buffer) X35Temperature() float64 { return b.value("x35_temperature") }
func (b Buffer) Pump() int64             { return b.raw("pump") }
func (b Buffer) State() int64            { return b.raw("state") }
func (b Buffer) StateText() string       { return stateText(bufferStates, b.State()) }
func (b Buffer) Mode() int64             { return b.raw("mode") }
func (b Buffer) ModeText() string        { return stateText(bufferModes, b.Mode()) }

func (b Buffer) ExternalTopTemperature() float64 { return b.value("external_top_temperature_x44") }
func (b Buffer) ExternalMiddleTemperature() float64 {
	return b.value("external_middle_temperature_x36")
}
func (b Buffer) ExternalBottomTemperature() float64 {
	return b.value("external_bottom_temperature_x35")
}

// FreshWaterModule returns the view of fresh water module i, counting from 0.
func (a *API) FreshWaterModule(i int) FreshWaterModule {
	return FreshWaterModule{at(a.set.FreshWaterModules, i)}
}

type FreshWaterModule struct{ view }

func (f FreshWaterModule) State() int64               { return f.raw("state") }
func (f FreshWaterModule) SupplyTemperature() float64 { return f.value("supply_temperature") }
func (f FreshWaterModule) FlowRate() float64          { return f.value("flow_rate") }
func (f FreshWaterModule) TargetTemperature() float64 { return f.value("target_temperature") }
func (f FreshWaterModule) Valve() int64               { return f.raw("valve") }

// FreshWaterModuleCascade returns the view of the fresh water module cascade, which exists from API 23.040.
func (a *API) FreshWaterModuleCascade() FreshWaterModuleCascade {
	return FreshWaterModuleCascade{view{c: a.set.FreshWaterModuleCascade}}
}

type FreshWaterModuleCascade struct{ view }

func (f FreshWaterModuleCascade) State() int64               { return f.raw("state") }
func (f FreshWaterModuleCascade) TotalFlowRate() float64     { return f.value("total_flow_rate") }
func (f FreshWaterModuleCascade) TargetTemperature() float64 { return f.value("target_temperature") }

// CirculationModule returns the view of the domestic hot water circulation module, which exists from API 23.040.
func (a *API) CirculationModule() CirculationModule {
	return CirculationModule{view{c: a.set.CirculationModule}}
}

type CirculationModule struct{ view }

func (c CirculationModule) SupplyTemperature() float64 { return c.value("dhw_supply_temperature") }
func (c CirculationModule) FlowRate() float64          { return c.value("dhw_flow_rate") }

// Circulation returns the view of circulation i, counting from 0.
func (a *API) Circulation(i int) Circulation {
	return Circulation{at(a.set.Circulations, i)}
}

type Circulation struct{ view }

func (c Circulation) Temperature() float64 { return c.value("temperature") }
func (c Circulation) Pump() int64          { return c.raw("pump") }

// DifferentialModule returns the view of differential module i, counting from 0.
func (a *API) DifferentialModule(i int) DifferentialModule {
	return DifferentialModule{at(a.set.DifferentialModules, i)}
}

// DifferentialModule has two control loops, each with a relay output and two temperatures.
type DifferentialModule struct{ view }

// Relay returns the relay output of control loop 1 or 2.
func (d DifferentialModule) Relay(loop int) int64 {
	switch loop {
	case 1:
		return d.raw("relay_control_loop_o1")
	case 2:
		return d.raw("relay_control_loop_o2")
	}
	return 0
}

// Temperatures returns the two temperatures of control loop 1 or 2.
func (d DifferentialModule) Temperatures(loop int) (float64, float64) {
	switch loop {
	case 1:
		return d.value("temperature_1_control_loop_1"), d.value("temperature_2_control_loop_1")
	case 2:
		return d.value("temperature_1_control_loop_2"), d.value("temperature_2_control_loop_2")
	}
	return 0, 0
}

// Solar returns the view of solar module i, counting from 0.
func (a *API) Solar(i int) Solar {
	return Solar{at(a.set.Solar, i)}
}

type Solar struct{ view }

func (s Solar) CollectorTemperature1() float64      { return s.value("collector_temperature_1") }
func (s Solar) CollectorTemperature2() float64      { return s.value("collector_temperature_2") }
func (s Solar) CollectorSupplyTemperature() float64 { return s.value("collector_supply_temperature") }
func (s Solar) CollectorReturnTemperature() float64 { return s.value("collector_return_temperature") }
func (s Solar) FlowHeatMeter() float64              { return s.value("flow_heat_meter") }
func (s Solar) CurrentPower() float64               { return s.value("current_power") }
func (s Solar) CurrentYieldHeatMeter() float64      { return s.value("current_yield_heat_meter") }
func (s Solar) TodayYield() float64                 { return s.value("today_yield") }
func (s Solar) State() int64                        { return s.raw("state") }

// BufferSensor returns buffer sensor 1, 2 or 3 as wired to the solar module.
func (s Solar) BufferSensor(n int) float64 {
	switch n {
	case 1:
		return s.value("buffer_sensor_1")
	case 2:
		return s.value("buffer_sensor_2")
	case 3:
		return s.value("buffer_sensor_3")
	}
	return 0
}

// HeatPump returns the view of the heat pump. It only has values on a Vampair.
func (a *API) HeatPump() HeatPump {
	return HeatPump{view{c: a.set.HeatPump}}
}

type HeatPump struct{ view }

func (h HeatPump) SupplyTemperature() float64 { return h.value("supply_temperature") }
func (h HeatPump) ReturnTemperature() float64 { return h.value("return_temperature") }
func (h HeatPump) FlowRate() float64          { return h.value("flow_rate") }
func (h HeatPump) CompressorSpeed() float64   { return h.value("compressor_speed") }
func (h HeatPump) OutdoorTemperature() float64 {
	return h.value("outdoor_temperature")
}

func (h HeatPump) EVULockActive() bool { return h.flag("evu_lock_active") }
func (h HeatPump) EVULockText() string { return stateText(evuLockStates, h.raw("evu_lock_active")) }
func (h HeatPump) DefrostActive() bool { return h.flag("defrost_active") }
func (h HeatPump) DefrostText() string { return stateText(defrostStates, h.raw("defrost_active")) }
func (h HeatPump) BoilerCharge() bool  { return h.flag("boiler_charge") }
func (h HeatPump) BoilerChargeText() string {
	return stateText(boilerChargeStates, h.raw("boiler_charge"))
}
func (h HeatPump) VampairState() int64      { return h.raw("vampair_state") }
func (h HeatPump) VampairStateText() string { return stateText(vampairStates, h.VampairState()) }

func (h HeatPump) ThermalEnergyTotal() float64 { return h.value("thermal_energy_total") }
func (h HeatPump) ThermalEnergyDrinkingWater() float64 {
	return h.value("thermal_energy_drinking_water")
}
func (h HeatPump) ThermalEnergyHeating() float64 { return h.value("thermal_energy_heating") }
func (h HeatPump) ThermalEnergyCooling() float64 { return h.value("thermal_energy_cooling") }
func (h HeatPump) ElectricalEnergyTotal() float64 {
	return h.value("electrical_energy_total")
}
func (h HeatPump) ElectricalEnergyDrinkingWater() float64 {
	return h.value("electrical_energy_drinking_water")
}
func (h HeatPump) ElectricalEnergyHeating() float64 { return h.value("electrical_energy_heating") }
func (h HeatPump) ElectricalEnergyCooling() float64 { return h.value("electrical_energy_cooling") }
func (h HeatPump) ElectricalPower() float64         { return h.value("electrical_power") }
func (h HeatPump) ThermalPowerHeating() float64     { return h.value("thermal_power_heating") }
func (h HeatPump) ThermalPowerCooling() float64     { return h.value("thermal_power_cooling") }

func (h HeatPump) EVULock() bool            { return h.flag("evu_lock") }
func (h HeatPump) SGReadyMode() SGReadyMode { return SGReadyMode(h.raw("smart_grid")) }
func (h HeatPump) OutdoorTemperatureExternal() float64 {
	return h.value("outdoor_temperature_external")
}

// Photovoltaic returns the view of the photovoltaic and smart meter values.
func (a *API) Photovoltaic() Photovoltaic {
	return Photovoltaic{view{c: a.set.Photovoltaic}}
}

type Photovoltaic struct{ view }

func (p Photovoltaic) Power() float64               { return p.value("power") }
func (p Photovoltaic) HouseConsumption() float64    { return p.value("house_consumption") }
func (p Photovoltaic) HeatPumpConsumption() float64 { return p.value("heatpump_consumption") }
func (p Photovoltaic) GridImport() float64          { return p.value("grid_import") }
func (p Photovoltaic) GridExport() float64          { return p.value("grid_export") }

// OverchargePossible and OverchargeActive are available from API 21.140.
func (p Photovoltaic) OverchargePossible() bool { return p.flag("overcharge_possible") }
func (p Photovoltaic) OverchargeActive() bool   { return p.flag("overcharge_active") }

func (p Photovoltaic) SmartMeter() float64   { return p.value("smart_meter") }
func (p Photovoltaic) Photovoltaic() float64 { return p.value("photovoltaic") }
func (p Photovoltaic) GridImExport() float64 { return p.value("grid_im_export") }

// BiomassBoiler returns the view of the biomass boiler. It only has values on biomass systems.
func (a *API) BiomassBoiler() BiomassBoiler {
	return BiomassBoiler{view{c: a.set.BiomassBoiler}}
}

type BiomassBoiler struct{ view }

func (b BiomassBoiler) Temperature() float64 { return b.value("temperature") }
func (b BiomassBoiler) Status() int64        { return b.raw("status") }

// TimeOfOperationAtMaintenance is available from API 25.030.
func (b BiomassBoiler) TimeOfOperationAtMaintenance() int64 {
	return b.raw("time_of_operation_at_maintenance")
}
func (b BiomassBoiler) MessageNumber() int64        { return b.raw("message_number") }
func (b BiomassBoiler) DoorContact() int64          { return b.raw("door_contact") }
func (b BiomassBoiler) Cleaning() int64             { return b.raw("cleaning") }
func (b BiomassBoiler) AshContainer() int64         { return b.raw("ash_container") }
func (b BiomassBoiler) OutdoorTemperature() float64 { return b.value("outdoor_temperature") }
func (b BiomassBoiler) OperatingMode() int64        { return b.raw("boiler_operating_mode") }
func (b BiomassBoiler) LogWood() int64              { return b.raw("log_wood") }
func (b BiomassBoiler) OctoplusBufferTemperatureTop() float64 {
	return b.value("octoplus_buffer_temperature_top")
}
func (b BiomassBoiler) OctoplusBufferTemperatureBottom() float64 {
	return b.value("octoplus_buffer_temperature_bottom")
}

// PelletUsageLastFill, PelletUsageTotal and HeatEnergyTotal are available from API 23.010.
func (b BiomassBoiler) PelletUsageLastFill() float64 { return b.value("pellet_usage_last_fill") }
func (b BiomassBoiler) PelletUsageTotal() float64    { return b.value("pellet_usage_total") }
func (b BiomassBoiler) HeatEnergyTotal() float64     { return b.value("heat_energy_total") }

func (b BiomassBoiler) SweepFunctionActive() bool { return b.flag("sweep_function_start_stop") }
func (b BiomassBoiler) SweepFunctionExtend() bool { return b.flag("sweep_function_extend") }
