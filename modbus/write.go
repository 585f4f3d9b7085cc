package modbus

import (
	"context"
	"fmt"
)

// WriteRegister writes a single holding register using function code 16 (write multiple registers).
func (c *Client) WriteRegister(ctx context.Context, addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.reconnectIfNeccesary()
	if err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}

	err = c.subClient.WriteRegisters(addr, []uint16{value})
	if err != nil {
		c.setShouldReconnect()
		return fmt.Errorf("write register %d: %w", addr, err)
	}

	return nil
}
