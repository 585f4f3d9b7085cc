package solarfocus

import "fmt"

// HeatingCircuitMode is the operating mode of a heating circuit.
type HeatingCircuitMode int

const (
	HeatingCircuitAlwaysOn         HeatingCircuitMode = 0
	HeatingCircuitReducedOperation HeatingCircuitMode = 1
	HeatingCircuitAutomatic        HeatingCircuitMode = 2
	HeatingCircuitOff              HeatingCircuitMode = 3
)

// HeatingCircuitCooling selects whether a heating circuit heats or cools.
type HeatingCircuitCooling int

const (
	HeatingCircuitCoolingOff HeatingCircuitCooling = 0
	HeatingCircuitCoolingOn  HeatingCircuitCooling = 1
)

// HeatingCircuitHeatingMode selects heating, cooling or automatic change over. Available from API 22.090.
type HeatingCircuitHeatingMode int

const (
	HeatingModeHeating   HeatingCircuitHeatingMode = 0
	HeatingModeCooling   HeatingCircuitHeatingMode = 1
	HeatingModeAutomatic HeatingCircuitHeatingMode = 2
)

// DomesticHotWaterMode is the charging schedule of a domestic hot water boiler.
type DomesticHotWaterMode int

const (
	DomesticHotWaterAlwaysOff      DomesticHotWaterMode = 0
	DomesticHotWaterAlwaysOn       DomesticHotWaterMode = 1
	DomesticHotWaterMondayToSunday DomesticHotWaterMode = 2
	DomesticHotWaterBlockwise      DomesticHotWaterMode = 3
	DomesticHotWaterDaywise        DomesticHotWaterMode = 4
)

// SGReadyMode is the smart grid ready operating state requested from the heat pump.
type SGReadyMode int

const (
	SGReadyBlocked     SGReadyMode = 1
	SGReadyNormal      SGReadyMode = 2
	SGReadyRecommended SGReadyMode = 3
	SGReadySwitchOn    SGReadyMode = 4
)

func (m SGReadyMode) valid() bool {
	return m >= SGReadyBlocked && m <= SGReadySwitchOn
}

var heatingCircuitStates = []string{
	"Heating circuit off",
	"Reduced operation",
	"Heating",
	"Holiday",
	"Screed program",
	"Frost protection",
	"Chimney sweep",
	"Heating circuit not enabled",
	"Heat dissipation",
	"Outdoor cut-off temperature (heating) reached",
	"Room target temperature (heating) reached",
	"Domestic hot water priority active",
	"Continuous heating",
	"Continuous reduced operation",
	"Outdoor sensor interrupted",
	"Minimum energy source temperature undershot",
	"Supply sensor defective",
	"Minimum energy source temperature undershot, frost protection active",
	"Pump test run active",
	"Party mode",
	"Limit thermostat open",
	"Pump overrun",
	"Defrost",
	"Cooling",
	"Cooling has priority",
	"Heating has priority",
	"Pool has priority",
	"Outdoor cut-off temperature (reduced) reached",
	"Room target temperature (reduced) reached",
	"Minimum return temperature control",
	"Outdoor cut-off temperature (cooling) reached",
	"Waiting for heat pump cooling",
}

var bufferStates = []string{
	"No status",
	"Standby",
	"Charging",
	"Frost protection",
	"Chimney sweep",
	"Heat dissipation",
	"Pump test run active",
	"Domestic hot water tank charging",
}

var bufferModes = []string{
	"Always off",
	"Always on",
	"Timer",
}

var boilerStates = []string{
	"No status",
	"Standby",
	"Charging",
	"Frost protection",
	"Chimney sweep mode",
	"Legionella protection",
	"Demand",
	"Energy source too hot",
	"Blocking protection",
	"One-time release active",
	"Sensor short circuit",
	"Sensor interrupted",
	"Holiday",
	"Defrost",
}

var boilerModes = []string{
	"Always off",
	"Always on",
	"Monday to Sunday",
	"Blockwise (Mon-Fri, Sat-Sun)",
	"Daywise",
}

var evuLockStates = []string{
	"Normal operation",
	"EVU lock active",
}

var defrostStates = []string{
	"Inactive",
	"Active",
}

var boilerChargeStates = defrostStates

var vampairStates = []string{
	"Standby",
	"Heating",
	"Heating with domestic hot water charging",
	"Cooling",
	"Manual operation",
	"EVU lock active",
	"No time release, heat pump off",
	"Outdoor temperature lock, heat pump off",
	"Electric auxiliary heater active",
	"External boiler active, heat pump off",
	"Cooling demand",
	"Manual power setting",
	"Heat pump switched off",
}

// stateText looks up a state in a text table, falling back to the number itself.
func stateText(table []string, state int64) string {
	if state >= 0 && state < int64(len(table)) {
		return table[state]
	}
	return fmt.Sprintf("Unknown state %d", state)
}
