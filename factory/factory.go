package factory

import (
	"fmt"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/modbusaccess"
)

// Component group names, used for component names, partial updates and error reports.
const (
	HeatingCircuits         = "heating_circuits"
	Boilers                 = "boilers"
	Buffers                 = "buffers"
	FreshWaterModules       = "fresh_water_modules"
	FreshWaterModuleCascade = "fresh_water_module_cascade"
	CirculationModule       = "circulation_module"
	Circulations            = "circulations"
	DifferentialModules     = "differential_modules"
	Solar                   = "solar"
	HeatPump                = "heatpump"
	Photovoltaic            = "photovoltaic"
	BiomassBoiler           = "biomassboiler"
)

// Groups lists every group in update order.
var Groups = []string{
	HeatingCircuits,
	Buffers,
	Boilers,
	FreshWaterModules,
	FreshWaterModuleCascade,
	CirculationModule,
	Circulations,
	DifferentialModules,
	HeatPump,
	Photovoltaic,
	BiomassBoiler,
	Solar,
}

// block is the address scheme of a component type: instance i starts at base + i*stride.
type block struct {
	inputBase     int
	inputStride   int
	holdingBase   int
	holdingStride int
}

func (b block) addresses(i int) (int, int) {
	in, hold := component.NoAddress, component.NoAddress
	if b.inputBase != component.NoAddress {
		in = b.inputBase + i*b.inputStride
	}
	if b.holdingBase != component.NoAddress {
		hold = b.holdingBase + i*b.holdingStride
	}
	return in, hold
}

var (
	heatingCircuitBlock     = block{inputBase: 1100, inputStride: 50, holdingBase: 32600, holdingStride: 50}
	boilerBlock             = block{inputBase: 500, inputStride: 50, holdingBase: 32000, holdingStride: 50}
	bufferBlock             = block{inputBase: 1900, inputStride: 20, holdingBase: 34000, holdingStride: 50}
	freshWaterModuleBlock   = block{inputBase: 700, inputStride: 25, holdingBase: component.NoAddress}
	freshWaterCascadeBlock  = block{inputBase: 800, holdingBase: component.NoAddress}
	circulationModuleBlock  = block{inputBase: 850, holdingBase: component.NoAddress}
	circulationBlock        = block{inputBase: 900, inputStride: 25, holdingBase: component.NoAddress}
	differentialModuleBlock = block{inputBase: 2200, inputStride: 10, holdingBase: component.NoAddress}
	solarBlock              = block{inputBase: 2100, inputStride: 20, holdingBase: component.NoAddress}
	heatPumpBlock           = block{inputBase: 2300, holdingBase: 33404}
	photovoltaicBlock       = block{inputBase: 2500, holdingBase: 33407}
	biomassBoilerBlock      = block{inputBase: 2400, holdingBase: 33400}
)

// Factory builds the components of one controller. It does no I/O.
type Factory struct {
	system  device.System
	version device.Version
	opts    []component.Option
}

// New returns a factory for the given system and API version.
func New(system device.System, version device.Version, opts ...component.Option) (*Factory, error) {
	if _, err := device.ParseSystem(string(system)); err != nil {
		return nil, fmt.Errorf("%w: %w", modbusaccess.ErrConfiguration, err)
	}
	if version.IsZero() {
		return nil, fmt.Errorf("no api version: %w", modbusaccess.ErrConfiguration)
	}
	if version.Compare(device.Versions[0]) < 0 {
		return nil, fmt.Errorf("api version %s is older than %s: %w", version, device.Versions[0], modbusaccess.ErrConfiguration)
	}

	return &Factory{system: system, version: version, opts: opts}, nil
}

func (f *Factory) System() device.System {
	return f.system
}

func (f *Factory) Version() device.Version {
	return f.version
}

// filter returns the registers available in the factory's API version, moving any register named in addrs.
func (f *Factory) filter(table []gated, addrs map[string]uint16) []modbusaccess.Register {
	regs := make([]modbusaccess.Register, 0, len(table))
	for _, g := range table {
		if !g.since.IsZero() && !f.version.AtLeast(g.since) {
			continue
		}
		r := g.Register
		if addr, ok := addrs[r.Name]; ok {
			r.Addr = addr
		}
		regs = append(regs, r)
	}
	return regs
}

func (f *Factory) build(name string, b block, i int, regs []modbusaccess.Register) (*component.Component, error) {
	in, hold := b.addresses(i)

	hasHolding := false
	for _, r := range regs {
		if r.Side == modbusaccess.HoldingSide {
			hasHolding = true
			break
		}
	}
	if !hasHolding {
		hold = component.NoAddress
	}

	c, err := component.New(name, in, hold, regs, f.opts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return c, nil
}

func (f *Factory) list(group string, count int, b block, regs []modbusaccess.Register) ([]*component.Component, error) {
	if err := f.checkCount(group, count); err != nil {
		return nil, err
	}

	components := make([]*component.Component, 0, count)
	for i := 0; i < count; i++ {
		c, err := f.build(fmt.Sprintf("%s[%d]", group, i), b, i, regs)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}

// HeatingCircuits builds count heating circuits.
func (f *Factory) HeatingCircuits(count int) ([]*component.Component, error) {
	var addrs map[string]uint16
	if f.system.UsesTherminatorLayout() {
		addrs = therminatorHeatingCircuitAddrs
	}
	return f.list(HeatingCircuits, count, heatingCircuitBlock, f.filter(heatingCircuitRegisters, addrs))
}

// Boilers builds count domestic hot water boilers.
func (f *Factory) Boilers(count int) ([]*component.Component, error) {
	return f.list(Boilers, count, boilerBlock, f.filter(boilerRegisters, nil))
}

// Buffers builds count buffers. Buffers only have holding registers from API 22.090 onwards.
func (f *Factory) Buffers(count int) ([]*component.Component, error) {
	table := bufferRegisters
	if f.system.UsesTherminatorLayout() {
		table = therminatorBufferRegisters
	}
	return f.list(Buffers, count, bufferBlock, f.filter(table, nil))
}

// FreshWaterModules builds count fresh water modules, which exist from API 23.020 onwards.
func (f *Factory) FreshWaterModules(count int) ([]*component.Component, error) {
	if !f.version.AtLeast(device.V23_020) {
		return nil, f.checkCount(FreshWaterModules, count)
	}
	return f.list(FreshWaterModules, count, freshWaterModuleBlock, f.filter(freshWaterModuleRegisters, nil))
}

// FreshWaterModuleCascade builds the fresh water module cascade, or returns nil before API 23.040.
func (f *Factory) FreshWaterModuleCascade() (*component.Component, error) {
	if !f.version.AtLeast(device.V23_040) {
		return nil, nil
	}
	return f.build(FreshWaterModuleCascade, freshWaterCascadeBlock, 0, f.filter(freshWaterModuleCascadeRegisters, nil))
}

// CirculationModule builds the domestic hot water circulation module, or returns nil before API 23.040.
func (f *Factory) CirculationModule() (*component.Component, error) {
	if !f.version.AtLeast(device.V23_040) {
		return nil, nil
	}
	return f.build(CirculationModule, circulationModuleBlock, 0, f.filter(circulationModuleRegisters, nil))
}

// Circulations builds count circulations, which exist from API 25.030 onwards.
func (f *Factory) Circulations(count int) ([]*component.Component, error) {
	if !f.version.AtLeast(device.V25_030) {
		return nil, f.checkCount(Circulations, count)
	}
	return f.list(Circulations, count, circulationBlock, f.filter(circulationRegisters, nil))
}

// DifferentialModules builds count differential modules, which exist from API 25.030 onwards.
func (f *Factory) DifferentialModules(count int) ([]*component.Component, error) {
	if !f.version.AtLeast(device.V25_030) {
		return nil, f.checkCount(DifferentialModules, count)
	}
	return f.list(DifferentialModules, count, differentialModuleBlock, f.filter(differentialModuleRegisters, nil))
}

// Solar builds count solar modules.
func (f *Factory) Solar(count int) ([]*component.Component, error) {
	return f.list(Solar, count, solarBlock, f.filter(solarRegisters, nil))
}

// HeatPump builds the heat pump. It is built for every system but only read on a Vampair.
func (f *Factory) HeatPump() (*component.Component, error) {
	energy := legacyHeatPumpRegisters
	if f.version.AtLeast(device.V25_030) {
		energy = heatPumpRegisters
	}
	regs := append(f.filter(heatPumpCommonRegisters, nil), f.filter(energy, nil)...)
	return f.build(HeatPump, heatPumpBlock, 0, regs)
}

// Photovoltaic builds the photovoltaic meter.
func (f *Factory) Photovoltaic() (*component.Component, error) {
	return f.build(Photovoltaic, photovoltaicBlock, 0, f.filter(photovoltaicRegisters, nil))
}

// BiomassBoiler builds the biomass boiler. It is built for every system but only read on biomass systems.
func (f *Factory) BiomassBoiler() (*component.Component, error) {
	regs := f.filter(biomassBoilerRegisters, nil)
	if f.system != device.Ecotop {
		regs = append(regs, f.filter(biomassBoilerSweepRegisters, nil)...)
	}
	return f.build(BiomassBoiler, biomassBoilerBlock, 0, regs)
}
