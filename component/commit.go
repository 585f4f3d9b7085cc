package component

import (
	"context"
	"fmt"

	"github.com/cepro/solarfocus/modbusaccess"
)

// Commit scales the given engineering value and writes it to the named holding register. The stored value only
// changes if the write succeeds. Failed writes are not retried.
func (c *Component) Commit(ctx context.Context, name string, value float64) error {
	m, err := c.writable(name)
	if err != nil {
		return err
	}

	raw, err := m.FromScaled(value)
	if err != nil {
		return fmt.Errorf("commit %s: %w", c.name, err)
	}

	return c.commit(ctx, m, raw)
}

// CommitRaw writes the given raw integer, e.g. an enum value, to the named holding register.
func (c *Component) CommitRaw(ctx context.Context, name string, raw int64) error {
	m, err := c.writable(name)
	if err != nil {
		return err
	}
	return c.commit(ctx, m, raw)
}

func (c *Component) writable(name string) (*metric, error) {
	m, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("commit %s: unknown register '%s': %w", c.name, name, modbusaccess.ErrUsage)
	}
	if m.Side != modbusaccess.HoldingSide {
		return nil, fmt.Errorf("commit %s: register '%s' is read only: %w", c.name, name, modbusaccess.ErrUsage)
	}
	return m, nil
}

func (c *Component) commit(ctx context.Context, m *metric, raw int64) error {
	words, err := m.Encode(raw)
	if err != nil {
		return fmt.Errorf("commit %s: %w", c.name, err)
	}
	// the controller accepts single register writes only
	if len(words) != 1 {
		return fmt.Errorf("commit %s: register '%s' spans %d registers: %w", c.name, m.Name, len(words), modbusaccess.ErrUsage)
	}

	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if m.writer == nil {
		return fmt.Errorf("commit %s: not initialized: %w", c.name, modbusaccess.ErrUsage)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit %s: %w: %w", c.name, modbusaccess.ErrTransport, err)
	}

	err = m.writer.WriteRegister(ctx, m.address, words[0])
	if err != nil {
		return fmt.Errorf("write register '%s' at %d: %w: %w", m.Name, m.address, modbusaccess.ErrTransport, err)
	}

	c.mu.Lock()
	m.raw = raw
	m.valid = true
	c.mu.Unlock()

	c.logger.Debug("Wrote register", "register", m.Name, "address", m.address, "raw", raw, "value", m.ToScaled(raw))

	return nil
}
