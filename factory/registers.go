package factory

import (
	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/modbusaccess"
)

// gated is a register that only exists from the given API version onwards. A zero since means every version.
type gated struct {
	modbusaccess.Register
	since device.Version
}

var (
	tenth = modbusaccess.Factor(0.1)
	milli = modbusaccess.Factor(0.001)
	ten   = modbusaccess.Factor(10)
)

const (
	input   = modbusaccess.InputSide
	holding = modbusaccess.HoldingSide
)

var (
	i16 = modbusaccess.Int16Type
	u16 = modbusaccess.Uint16Type
	i32 = modbusaccess.Int32Type
	u32 = modbusaccess.Uint32Type
)

func reg(name string, addr uint16, dataType modbusaccess.Type, scale *float64, side modbusaccess.Side) gated {
	return gated{Register: modbusaccess.Register{Name: name, Addr: addr, Type: dataType, Scale: scale, Side: side}}
}

func (g gated) from(v device.Version) gated {
	g.since = v
	return g
}

var heatingCircuitRegisters = []gated{
	reg("supply_temperature", 0, i16, tenth, input),
	reg("room_temperature", 1, i16, tenth, input),
	reg("humidity", 2, i16, tenth, input),
	reg("limit_thermostat", 3, u16, nil, input),
	reg("circulator_pump", 4, u16, nil, input),
	reg("mixer_valve", 5, u16, nil, input),
	reg("state", 6, u16, nil, input),

	reg("target_supply_temperature", 0, i16, ten, holding),
	reg("cooling", 2, i16, nil, holding),
	reg("mode", 3, i16, nil, holding),
	reg("target_room_temperature", 5, i16, ten, holding),
	reg("indoor_temperature_external", 6, i16, ten, holding),
	reg("indoor_humidity_external", 7, i16, ten, holding),
	reg("heating_mode", 8, i16, nil, holding).from(device.V22_090),
}

// therminatorHeatingCircuitAddrs moves the pump, mixer and state registers up by one on Therminator and Ecotop.
var therminatorHeatingCircuitAddrs = map[string]uint16{
	"circulator_pump": 5,
	"mixer_valve":     6,
	"state":           7,
}

var boilerRegisters = []gated{
	reg("temperature", 0, i16, tenth, input),
	reg("state", 1, u16, nil, input),
	reg("mode", 2, u16, nil, input),

	reg("target_temperature", 0, i16, ten, holding),
	reg("single_charge", 1, i16, nil, holding),
	reg("holding_mode", 2, i16, nil, holding),
	reg("circulation", 3, i16, nil, holding),
}

var bufferRegisters = []gated{
	reg("top_temperature", 0, i16, tenth, input),
	reg("bottom_temperature", 1, i16, tenth, input),
	reg("pump", 2, i16, nil, input),
	reg("state", 3, u16, nil, input),
	reg("mode", 4, u16, nil, input),

	reg("external_top_temperature_x44", 0, i16, ten, holding).from(device.V22_090),
	reg("external_middle_temperature_x36", 1, i16, ten, holding).from(device.V22_090),
	reg("external_bottom_temperature_x35", 2, i16, ten, holding).from(device.V22_090),
}

// therminatorBufferRegisters is the buffer layout of Therminator and Ecotop, which adds the x35 sensor and has no
// holding registers.
var therminatorBufferRegisters = []gated{
	reg("top_temperature", 0, i16, tenth, input),
	reg("bottom_temperature", 1, i16, tenth, input),
	reg("x35_temperature", 2, i16, tenth, input),
	reg("pump", 3, i16, nil, input),
	reg("state", 4, u16, nil, input),
	reg("mode", 5, u16, nil, input),
}

var freshWaterModuleRegisters = []gated{
	reg("state", 0, i16, nil, input),
	reg("supply_temperature", 1, i16, tenth, input).from(device.V23_040),
	reg("flow_rate", 2, i16, tenth, input).from(device.V23_040),
	reg("target_temperature", 3, i16, tenth, input).from(device.V23_040),
	reg("valve", 4, i16, nil, input).from(device.V23_040),
}

var freshWaterModuleCascadeRegisters = []gated{
	reg("state", 0, i16, nil, input),
	reg("total_flow_rate", 1, i16, tenth, input),
	reg("target_temperature", 2, i16, tenth, input),
}

var circulationModuleRegisters = []gated{
	reg("dhw_supply_temperature", 0, i16, tenth, input),
	reg("dhw_flow_rate", 1, i16, tenth, input),
}

var circulationRegisters = []gated{
	reg("temperature", 0, i16, tenth, input),
	reg("pump", 1, i16, nil, input),
}

var differentialModuleRegisters = []gated{
	reg("relay_control_loop_o1", 0, u16, nil, input),
	reg("temperature_1_control_loop_1", 1, i16, tenth, input),
	reg("temperature_2_control_loop_1", 2, i16, tenth, input),
	reg("relay_control_loop_o2", 3, u16, nil, input),
	reg("temperature_1_control_loop_2", 4, i16, tenth, input),
	reg("temperature_2_control_loop_2", 5, i16, tenth, input),
}

var solarRegisters = []gated{
	reg("collector_temperature_1", 0, i16, tenth, input),
	reg("collector_temperature_2", 1, i16, tenth, input),
	reg("collector_supply_temperature", 2, i16, tenth, input),
	reg("collector_return_temperature", 3, i16, tenth, input),
	reg("flow_heat_meter", 4, i16, tenth, input),
	reg("current_power", 5, i16, tenth, input),
	reg("current_yield_heat_meter", 6, i32, nil, input),
	reg("today_yield", 8, i32, nil, input),
	reg("buffer_sensor_1", 10, i16, tenth, input),
	reg("buffer_sensor_2", 11, i16, tenth, input),
	reg("buffer_sensor_3", 12, i16, tenth, input),
	reg("state", 13, u16, nil, input),
	reg("relay_o1", 14, u16, nil, input).from(device.V25_030),
	reg("control_out_1", 15, u16, nil, input).from(device.V25_030),
	reg("relay_o2", 16, u16, nil, input).from(device.V25_030),
	reg("control_out_2", 17, u16, nil, input).from(device.V25_030),
}

var heatPumpCommonRegisters = []gated{
	reg("supply_temperature", 0, i16, tenth, input),
	reg("return_temperature", 1, i16, tenth, input),
	reg("flow_rate", 2, i16, nil, input),
	reg("compressor_speed", 3, i16, nil, input),
	reg("evu_lock_active", 4, u16, nil, input),
	// shared with the biomass boiler
	reg("outdoor_temperature", 108, i16, tenth, input),

	reg("evu_lock", 0, i16, nil, holding),
	reg("smart_grid", 1, i16, nil, holding),
	reg("outdoor_temperature_external", 2, i16, ten, holding),
}

// heatPumpRegisters is the heat pump energy block from API 25.030 onwards.
var heatPumpRegisters = []gated{
	reg("defrost_active", 6, u16, nil, input),
	reg("boiler_charge", 7, u16, nil, input),
	reg("thermal_energy_total", 10, i32, milli, input),
	reg("thermal_energy_drinking_water", 12, i32, milli, input),
	reg("thermal_energy_heating", 14, i32, milli, input),
	reg("electrical_energy_total", 16, i32, milli, input),
	reg("electrical_energy_drinking_water", 18, i32, milli, input),
	reg("electrical_energy_heating", 20, i32, milli, input),
	reg("electrical_power", 22, i16, nil, input),
	reg("thermal_power_cooling", 23, i16, nil, input),
	reg("thermal_power_heating", 24, i16, nil, input),
	reg("thermal_energy_cooling", 26, u32, milli, input),
	reg("electrical_energy_cooling", 28, u32, milli, input),
	reg("vampair_state", 30, u16, nil, input),
}

// legacyHeatPumpRegisters is the energy block before API 25.030.
var legacyHeatPumpRegisters = []gated{
	reg("defrost_active", 5, u16, nil, input),
	reg("boiler_charge", 6, u16, nil, input),
	reg("thermal_energy_total", 7, i32, milli, input),
	reg("thermal_energy_drinking_water", 9, i32, milli, input),
	reg("thermal_energy_heating", 11, i32, milli, input),
	reg("electrical_energy_total", 13, i32, milli, input),
	reg("electrical_energy_drinking_water", 15, i32, milli, input),
	reg("electrical_energy_heating", 17, i32, milli, input),
	reg("electrical_power", 19, i16, nil, input),
	reg("thermal_power_cooling", 20, i16, nil, input),
	reg("thermal_power_heating", 21, i16, nil, input),
	reg("thermal_energy_cooling", 22, u32, milli, input),
	reg("electrical_energy_cooling", 24, u32, milli, input),
	reg("vampair_state", 26, u16, nil, input),
}

var photovoltaicRegisters = []gated{
	reg("power", 0, i32, nil, input),
	reg("house_consumption", 2, i32, nil, input),
	reg("heatpump_consumption", 4, i32, nil, input),
	reg("grid_import", 6, i32, nil, input),
	reg("grid_export", 8, i32, nil, input),
	reg("overcharge_possible", 10, i16, nil, input).from(device.V21_140),
	reg("overcharge_active", 11, i16, nil, input).from(device.V21_140),

	reg("smart_meter", 0, i16, nil, holding),
	reg("photovoltaic", 1, i16, nil, holding),
	reg("grid_im_export", 2, i16, nil, holding),
}

var biomassBoilerRegisters = []gated{
	reg("temperature", 0, i16, tenth, input),
	reg("status", 1, u16, nil, input),
	reg("time_of_operation_at_maintenance", 2, u32, nil, input).from(device.V25_030),
	reg("message_number", 4, i16, nil, input),
	reg("door_contact", 5, i16, nil, input),
	reg("cleaning", 6, i16, nil, input),
	reg("ash_container", 7, i16, nil, input),
	reg("outdoor_temperature", 8, i16, tenth, input),
	reg("boiler_operating_mode", 9, i16, nil, input),
	reg("octoplus_buffer_temperature_bottom", 10, i16, tenth, input),
	reg("octoplus_buffer_temperature_top", 11, i16, tenth, input),
	reg("log_wood", 12, u16, nil, input),
	reg("pellet_usage_last_fill", 14, i32, tenth, input).from(device.V23_010),
	reg("pellet_usage_total", 16, i32, tenth, input).from(device.V23_010),
	reg("heat_energy_total", 18, i32, tenth, input).from(device.V23_010),

	reg("pellet_usage_reset", 12, i16, nil, holding).from(device.V23_010),
}

// biomassBoilerSweepRegisters exist from API 22.090 on every biomass system except the Ecotop.
var biomassBoilerSweepRegisters = []gated{
	reg("sweep_function_start_stop", 10, i16, nil, holding).from(device.V22_090),
	reg("sweep_function_extend", 11, i16, nil, holding).from(device.V22_090),
}
