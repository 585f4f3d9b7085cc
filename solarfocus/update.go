package solarfocus

import (
	"context"
	"strings"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/factory"
	"golang.org/x/sync/errgroup"
)

// Update reads every component that applies to the system, in parallel. It returns true only if all of them were
// read successfully.
func (a *API) Update(ctx context.Context) bool {
	return a.UpdatePartial(ctx, factory.Groups, true)
}

// UpdatePartial reads the components of the named groups. Every component is attempted even when others fail.
// Groups that do not apply to the system are skipped and count as successful. Unknown group names fail the
// whole call before anything is read.
func (a *API) UpdatePartial(ctx context.Context, groups []string, parallel bool) bool {
	if !a.IsConnected() {
		a.logger.Warn("Attempted update while not connected")
		return false
	}

	var components []*component.Component
	for _, group := range groups {
		members, ok := a.set.Group(group)
		if !ok {
			a.logger.Error("Unknown component group", "group", group)
			return false
		}
		if !a.applies(group) {
			continue
		}
		components = append(components, members...)
	}

	results := make([]error, len(components))
	if parallel {
		var g errgroup.Group
		if a.config.Parallelism > 0 {
			g.SetLimit(a.config.Parallelism)
		}
		for i, c := range components {
			i, c := i, c
			g.Go(func() error {
				results[i] = c.Update(ctx)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, c := range components {
			results[i] = c.Update(ctx)
		}
	}

	var failed []string
	for i, err := range results {
		if err != nil {
			a.logger.Error("Failed to update component", "component", components[i].Name(), "error", err)
			failed = append(failed, components[i].Name())
		}
	}

	a.mu.Lock()
	a.failed = failed
	a.mu.Unlock()

	if len(failed) > 0 {
		a.logger.Warn("Failed to update components", "failed", strings.Join(failed, ", "))
		return false
	}
	return true
}
