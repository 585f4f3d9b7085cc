package solarfocus

// Snapshot returns every known scaled value of the components read on this system, keyed by component name and then
// register name. Components that have never been read are left out.
func (a *API) Snapshot() map[string]map[string]float64 {
	snapshot := make(map[string]map[string]float64)
	for _, group := range a.Groups() {
		members, _ := a.set.Group(group)
		for _, c := range members {
			values := c.Values()
			if len(values) == 0 {
				continue
			}
			snapshot[c.Name()] = values
		}
	}
	return snapshot
}
