package solarfocus

import (
	"context"
	"testing"

	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/factory"
	"github.com/stretchr/testify/assert"
)

func TestHeatingCircuitSetters(t *testing.T) {
	counts := factory.DefaultCounts()
	counts.HeatingCircuits = 2
	api, mock := newConnectedAPI(t, device.Vampair, device.V25_030, counts)
	ctx := context.Background()

	assert.True(t, api.SetHeatingCircuitTargetSupplyTemperature(ctx, 1, 45.5))
	assert.Equal(t, uint16(455), mock.Holding(32650))
	assert.InDelta(t, 45.5, api.HeatingCircuit(1).TargetSupplyTemperature(), 1e-9)

	assert.True(t, api.SetHeatingCircuitMode(ctx, 0, HeatingCircuitOff))
	assert.Equal(t, uint16(3), mock.Holding(32603))
	assert.Equal(t, HeatingCircuitOff, api.HeatingCircuit(0).Mode())

	assert.True(t, api.SetHeatingCircuitCooling(ctx, 0, HeatingCircuitCoolingOn))
	assert.Equal(t, uint16(1), mock.Holding(32602))

	assert.True(t, api.SetHeatingCircuitTargetRoomTemperature(ctx, 0, 21.5))
	assert.Equal(t, uint16(215), mock.Holding(32605))

	assert.True(t, api.SetHeatingCircuitIndoorTemperature(ctx, 0, -1.5))
	assert.Equal(t, uint16(0xFFF1), mock.Holding(32606))

	assert.True(t, api.SetHeatingCircuitIndoorHumidity(ctx, 0, 48))
	assert.Equal(t, uint16(480), mock.Holding(32607))

	assert.True(t, api.SetHeatingCircuitHeatingMode(ctx, 0, HeatingModeAutomatic))
	assert.Equal(t, uint16(2), mock.Holding(32608))
}

func TestSettersRejectInvalid(t *testing.T) {
	api, mock := newConnectedAPI(t, device.Vampair, device.V21_140, factory.DefaultCounts())
	ctx := context.Background()

	assert.False(t, api.SetHeatingCircuitTargetSupplyTemperature(ctx, 1, 45))
	assert.False(t, api.SetHeatingCircuitTargetSupplyTemperature(ctx, -1, 45))
	assert.False(t, api.SetHeatingCircuitMode(ctx, 0, HeatingCircuitMode(7)))
	assert.False(t, api.SetDomesticHotWaterMode(ctx, 0, DomesticHotWaterMode(5)))
	assert.False(t, api.SetHeatPumpSGReadyMode(ctx, SGReadyMode(0)))

	// heating mode and external buffer temperatures need a newer API version
	assert.False(t, api.SetHeatingCircuitHeatingMode(ctx, 0, HeatingModeCooling))
	assert.False(t, api.SetBufferExternalTemperatures(ctx, 0, 60, 50, 40))

	// input registers are never written
	assert.False(t, api.Set(ctx, "heating_circuits[0]", "supply_temperature", 30))
	assert.False(t, api.Set(ctx, "garage[0]", "door", 1))

	assert.Empty(t, mock.Writes())
}

func TestSettersNeedConnection(t *testing.T) {
	api, mock := newAPI(t, device.Vampair, device.V25_030, factory.DefaultCounts())

	assert.False(t, api.SetDomesticHotWaterTargetTemperature(context.Background(), 0, 55))
	assert.Empty(t, mock.Requests())
}

func TestDomesticHotWaterSetters(t *testing.T) {
	api, mock := newConnectedAPI(t, device.Vampair, device.V25_030, factory.DefaultCounts())
	ctx := context.Background()

	assert.True(t, api.SetDomesticHotWaterTargetTemperature(ctx, 0, 55))
	assert.Equal(t, uint16(550), mock.Holding(32000))

	assert.True(t, api.SetDomesticHotWaterSingleCharge(ctx, 0, true))
	assert.Equal(t, uint16(1), mock.Holding(32001))
	assert.True(t, api.Boiler(0).SingleCharge())

	assert.True(t, api.SetDomesticHotWaterMode(ctx, 0, DomesticHotWaterDaywise))
	assert.Equal(t, uint16(4), mock.Holding(32002))

	assert.True(t, api.SetDomesticHotWaterCirculation(ctx, 0, true))
	assert.Equal(t, uint16(1), mock.Holding(32003))

	assert.True(t, api.Set(ctx, "boilers[0]", "target_temperature", 48))
	assert.Equal(t, uint16(480), mock.Holding(32000))
}

func TestBufferAndPhotovoltaicSetters(t *testing.T) {
	api, mock := newConnectedAPI(t, device.Vampair, device.V25_030, factory.DefaultCounts())
	ctx := context.Background()

	assert.True(t, api.SetBufferExternalTemperatures(ctx, 0, 60, 50, 40))
	assert.Equal(t, uint16(600), mock.Holding(34000))
	assert.Equal(t, uint16(500), mock.Holding(34001))
	assert.Equal(t, uint16(400), mock.Holding(34002))

	assert.True(t, api.SetPhotovoltaicValues(ctx, -1200, 3400, 800))
	assert.Equal(t, uint16(0xFB50), mock.Holding(33407))
	assert.Equal(t, uint16(3400), mock.Holding(33408))
	assert.Equal(t, uint16(800), mock.Holding(33409))

	mock.FailAddress(33408, true)
	assert.False(t, api.SetPhotovoltaicValues(ctx, 0, 0, 0))
	// stopped at the failed write
	assert.Equal(t, uint16(800), mock.Holding(33409))
}

func TestHeatPumpSetters(t *testing.T) {
	api, mock := newConnectedAPI(t, device.Vampair, device.V25_030, factory.DefaultCounts())
	ctx := context.Background()

	assert.True(t, api.SetHeatPumpEVULock(ctx, true))
	assert.Equal(t, uint16(1), mock.Holding(33404))

	assert.True(t, api.SetHeatPumpSGReadyMode(ctx, SGReadyRecommended))
	assert.Equal(t, uint16(3), mock.Holding(33405))
	assert.Equal(t, SGReadyRecommended, api.HeatPump().SGReadyMode())

	assert.True(t, api.SetHeatPumpOutdoorTemperature(ctx, -7.5))
	assert.Equal(t, uint16(0xFFB5), mock.Holding(33406))

	mock.FailWrites(true)
	assert.False(t, api.SetHeatPumpEVULock(ctx, false))
	assert.True(t, api.HeatPump().EVULock())

	biomass, biomassMock := newConnectedAPI(t, device.Therminator, device.V25_030, factory.DefaultCounts())
	assert.False(t, biomass.SetHeatPumpSGReadyMode(ctx, SGReadyNormal))
	assert.False(t, biomass.SetHeatPumpEVULock(ctx, true))
	assert.False(t, biomass.Set(ctx, "heatpump", "smart_grid", float64(SGReadyNormal)))
	assert.Empty(t, biomassMock.Writes())
}

func TestBiomassBoilerSetters(t *testing.T) {
	api, mock := newConnectedAPI(t, device.Therminator, device.V25_030, factory.DefaultCounts())
	ctx := context.Background()

	assert.True(t, api.SetBiomassBoilerSweepFunction(ctx, true))
	assert.Equal(t, uint16(1), mock.Holding(33410))
	assert.True(t, api.BiomassBoiler().SweepFunctionActive())

	assert.True(t, api.ExtendBiomassBoilerSweepFunction(ctx))
	assert.Equal(t, uint16(1), mock.Holding(33411))

	assert.True(t, api.ResetPelletUsage(ctx))
	assert.Equal(t, uint16(1), mock.Holding(33412))

	ecotop, ecotopMock := newConnectedAPI(t, device.Ecotop, device.V25_030, factory.DefaultCounts())
	assert.False(t, ecotop.SetBiomassBoilerSweepFunction(ctx, true))
	assert.True(t, ecotop.ResetPelletUsage(ctx))
	assert.Len(t, ecotopMock.Writes(), 1)

	vampair, vampairMock := newConnectedAPI(t, device.Vampair, device.V25_030, factory.DefaultCounts())
	assert.False(t, vampair.ResetPelletUsage(ctx))
	assert.False(t, vampair.Set(ctx, "biomassboiler", "pellet_usage_reset", 1))
	assert.Empty(t, vampairMock.Writes())
}
