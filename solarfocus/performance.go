package solarfocus

func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// COPHeating is the current coefficient of performance while heating.
func (h HeatPump) COPHeating() float64 {
	return ratio(h.ThermalPowerHeating(), h.ElectricalPower())
}

// COPCooling is the current coefficient of performance while cooling.
func (h HeatPump) COPCooling() float64 {
	return ratio(h.ThermalPowerCooling(), h.ElectricalPower())
}

// PerformanceOverall is the seasonal performance factor over all energy counted so far.
func (h HeatPump) PerformanceOverall() float64 {
	return ratio(h.ThermalEnergyTotal(), h.ElectricalEnergyTotal())
}

func (h HeatPump) PerformanceHeating() float64 {
	return ratio(h.ThermalEnergyHeating(), h.ElectricalEnergyHeating())
}

func (h HeatPump) PerformanceDrinkingWater() float64 {
	return ratio(h.ThermalEnergyDrinkingWater(), h.ElectricalEnergyDrinkingWater())
}

func (h HeatPump) PerformanceCooling() float64 {
	return ratio(h.ThermalEnergyCooling(), h.ElectricalEnergyCooling())
}

func (a *API) COPHeating() float64 {
	return a.HeatPump().COPHeating()
}

func (a *API) COPCooling() float64 {
	return a.HeatPump().COPCooling()
}

func (a *API) PerformanceOverall() float64 {
	return a.HeatPump().PerformanceOverall()
}

func (a *API) PerformanceHeating() float64 {
	return a.HeatPump().PerformanceHeating()
}

func (a *API) PerformanceDrinkingWater() float64 {
	return a.HeatPump().PerformanceDrinkingWater()
}

func (a *API) PerformanceCooling() float64 {
	return a.HeatPump().PerformanceCooling()
}
