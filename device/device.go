package device

import (
	"fmt"
	"strings"
)

// System is the Solarfocus product the eco manager-touch controller is installed in.
type System string

const (
	Vampair        System = "Vampair"
	Therminator    System = "Therminator"
	Ecotop         System = "Ecotop"
	PelletElegance System = "Pellet Elegance"
	Octoplus       System = "Octoplus"
)

// Systems lists every supported system.
var Systems = []System{Vampair, Therminator, Ecotop, PelletElegance, Octoplus}

// ParseSystem returns the system with the given name, ignoring case.
func ParseSystem(name string) (System, error) {
	for _, s := range Systems {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown system '%s'", name)
}

// IsHeatPump reports whether the system is a heat pump rather than a biomass boiler.
func (s System) IsHeatPump() bool {
	return s == Vampair
}

// IsBiomass reports whether the system burns pellets, wood chips or log wood.
func (s System) IsBiomass() bool {
	switch s {
	case Therminator, Ecotop, PelletElegance, Octoplus:
		return true
	default:
		return false
	}
}

// UsesTherminatorLayout reports whether heating circuits and buffers use the shifted Therminator register layout.
func (s System) UsesTherminatorLayout() bool {
	return s == Therminator || s == Ecotop
}

func (s *System) UnmarshalText(text []byte) error {
	parsed, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
