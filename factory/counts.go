package factory

import (
	"fmt"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/modbusaccess"
)

// Counts holds the number of instances of each list type component.
type Counts struct {
	HeatingCircuits     int `yaml:"heatingCircuits" json:"heatingCircuits"`
	Buffers             int `yaml:"buffers" json:"buffers"`
	Boilers             int `yaml:"boilers" json:"boilers"`
	FreshWaterModules   int `yaml:"freshWaterModules" json:"freshWaterModules"`
	Circulations        int `yaml:"circulations" json:"circulations"`
	DifferentialModules int `yaml:"differentialModules" json:"differentialModules"`
	Solar               int `yaml:"solar" json:"solar"`
}

// DefaultCounts is one instance of every list type component.
func DefaultCounts() Counts {
	return Counts{
		HeatingCircuits:     1,
		Buffers:             1,
		Boilers:             1,
		FreshWaterModules:   1,
		Circulations:        1,
		DifferentialModules: 1,
		Solar:               1,
	}
}

// Limit is the valid range of instances of a component type.
type Limit struct {
	Min int
	Max int
}

var limits = map[string]Limit{
	HeatingCircuits:     {0, 8},
	Buffers:             {0, 4},
	Boilers:             {0, 4},
	FreshWaterModules:   {0, 4},
	Circulations:        {0, 4},
	DifferentialModules: {0, 4},
	Solar:               {0, 4},
}

// LimitOf returns the valid instance range of a group for the factory's API version. Before API 25.030 a single
// solar module is supported.
func (f *Factory) LimitOf(group string) (Limit, bool) {
	limit, ok := limits[group]
	if ok && group == Solar && !f.version.AtLeast(device.V25_030) {
		limit.Max = 1
	}
	return limit, ok
}

func (f *Factory) checkCount(group string, count int) error {
	limit, ok := f.LimitOf(group)
	if !ok {
		return fmt.Errorf("unknown component type '%s': %w", group, modbusaccess.ErrConfiguration)
	}
	if count < limit.Min || count > limit.Max {
		return fmt.Errorf("%s count must be between %d and %d, got %d: %w", group, limit.Min, limit.Max, count, modbusaccess.ErrConfiguration)
	}
	return nil
}

// ValidateCounts checks every count against its limit.
func (f *Factory) ValidateCounts(counts Counts) error {
	checks := []struct {
		group string
		count int
	}{
		{HeatingCircuits, counts.HeatingCircuits},
		{Buffers, counts.Buffers},
		{Boilers, counts.Boilers},
		{FreshWaterModules, counts.FreshWaterModules},
		{Circulations, counts.Circulations},
		{DifferentialModules, counts.DifferentialModules},
		{Solar, counts.Solar},
	}
	for _, check := range checks {
		if err := f.checkCount(check.group, check.count); err != nil {
			return err
		}
	}
	return nil
}

// Set holds every component of one controller. Singletons are nil when the API version does not have them.
type Set struct {
	HeatingCircuits         []*component.Component
	Buffers                 []*component.Component
	Boilers                 []*component.Component
	FreshWaterModules       []*component.Component
	FreshWaterModuleCascade *component.Component
	CirculationModule       *component.Component
	Circulations            []*component.Component
	DifferentialModules     []*component.Component
	Solar                   []*component.Component
	HeatPump                *component.Component
	Photovoltaic            *component.Component
	BiomassBoiler           *component.Component
}

// Build validates the counts and builds every component.
func (f *Factory) Build(counts Counts) (*Set, error) {
	if err := f.ValidateCounts(counts); err != nil {
		return nil, err
	}

	var (
		set Set
		err error
	)
	if set.HeatingCircuits, err = f.HeatingCircuits(counts.HeatingCircuits); err != nil {
		return nil, err
	}
	if set.Buffers, err = f.Buffers(counts.Buffers); err != nil {
		return nil, err
	}
	if set.Boilers, err = f.Boilers(counts.Boilers); err != nil {
		return nil, err
	}
	if set.FreshWaterModules, err = f.FreshWaterModules(counts.FreshWaterModules); err != nil {
		return nil, err
	}
	if set.FreshWaterModuleCascade, err = f.FreshWaterModuleCascade(); err != nil {
		return nil, err
	}
	if set.CirculationModule, err = f.CirculationModule(); err != nil {
		return nil, err
	}
	if set.Circulations, err = f.Circulations(counts.Circulations); err != nil {
		return nil, err
	}
	if set.DifferentialModules, err = f.DifferentialModules(counts.DifferentialModules); err != nil {
		return nil, err
	}
	if set.Solar, err = f.Solar(counts.Solar); err != nil {
		return nil, err
	}
	if set.HeatPump, err = f.HeatPump(); err != nil {
		return nil, err
	}
	if set.Photovoltaic, err = f.Photovoltaic(); err != nil {
		return nil, err
	}
	if set.BiomassBoiler, err = f.BiomassBoiler(); err != nil {
		return nil, err
	}

	return &set, nil
}

// Group returns the components of the named group.
func (s *Set) Group(name string) ([]*component.Component, bool) {
	single := func(c *component.Component) []*component.Component {
		if c == nil {
			return nil
		}
		return []*component.Component{c}
	}

	switch name {
	case HeatingCircuits:
		return s.HeatingCircuits, true
	case Buffers:
		return s.Buffers, true
	case Boilers:
		return s.Boilers, true
	case FreshWaterModules:
		return s.FreshWaterModules, true
	case FreshWaterModuleCascade:
		return single(s.FreshWaterModuleCascade), true
	case CirculationModule:
		return single(s.CirculationModule), true
	case Circulations:
		return s.Circulations, true
	case DifferentialModules:
		return s.DifferentialModules, true
	case Solar:
		return s.Solar, true
	case HeatPump:
		return single(s.HeatPump), true
	case Photovoltaic:
		return single(s.Photovoltaic), true
	case BiomassBoiler:
		return single(s.BiomassBoiler), true
	default:
		return nil, false
	}
}

// All returns every component in group order.
func (s *Set) All() []*component.Component {
	var all []*component.Component
	for _, group := range Groups {
		components, _ := s.Group(group)
		all = append(all, components...)
	}
	return all
}
