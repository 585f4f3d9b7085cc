package modbus

import (
	"context"
	"fmt"

	"github.com/simonvetter/modbus"
)

// ReadInputRegisters reads quantity input registers starting at addr.
func (c *Client) ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return c.readRegisters(ctx, addr, quantity, modbus.INPUT_REGISTER)
}

// ReadHoldingRegisters reads quantity holding registers starting at addr.
func (c *Client) ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return c.readRegisters(ctx, addr, quantity, modbus.HOLDING_REGISTER)
}

func (c *Client) readRegisters(ctx context.Context, addr, quantity uint16, regType modbus.RegType) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := c.reconnectIfNeccesary()
	if err != nil {
		return nil, fmt.Errorf("reconnect: %w", err)
	}

	registerVals, err := c.subClient.ReadRegisters(addr, quantity, regType)
	if err != nil {
		c.setShouldReconnect()
		return nil, fmt.Errorf("read %d registers at %d: %w", quantity, addr, err)
	}

	return registerVals, nil
}
