package modbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	gridx "github.com/grid-x/modbus"
	"golang.org/x/exp/slog"
)

// GridXClient talks to the controller using the grid-x modbus library. It behaves like Client and is selected
// with the "gridx" driver.
type GridXClient struct {
	config ClientConfig

	mu        sync.Mutex
	handler   *gridx.TCPClientHandler
	subClient gridx.Client
	connected bool
	logger    *slog.Logger
}

func NewGridXClient(config ClientConfig) (*GridXClient, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("no modbus host configured")
	}
	config = config.withDefaults()

	return &GridXClient{
		config: config,
		logger: slog.Default().With("host", config.Address(), "driver", "gridx"),
	}, nil
}

func (c *GridXClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeHandler()
	return connectWithRetry(ctx, c.config, c.logger, c.open)
}

func (c *GridXClient) open() error {
	handler := gridx.NewTCPClientHandler(c.config.Address())
	handler.Timeout = c.config.Timeout
	handler.SlaveID = c.config.UnitID

	err := handler.Connect()
	if err != nil {
		c.connected = false
		return fmt.Errorf("connect handler: %w", err)
	}

	c.handler = handler
	c.subClient = gridx.NewClient(handler)
	c.connected = true

	c.logger.Info("Connected modbus client", "unit_id", c.config.UnitID)

	return nil
}

// closeHandler drops the current connection; the next request opens a new one.
func (c *GridXClient) closeHandler() {
	if c.handler != nil {
		c.handler.Close()
	}
	c.handler = nil
	c.subClient = nil
}

func (c *GridXClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeHandler()
	c.connected = false
	return nil
}

func (c *GridXClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ensureOpen re-opens the handler after a failed request.
func (c *GridXClient) ensureOpen() error {
	if c.subClient != nil {
		return nil
	}
	if err := c.open(); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	return nil
}

func (c *GridXClient) ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return c.read(ctx, addr, quantity, func(client gridx.Client) ([]byte, error) {
		return client.ReadInputRegisters(addr, quantity)
	})
}

func (c *GridXClient) ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return c.read(ctx, addr, quantity, func(client gridx.Client) ([]byte, error) {
		return client.ReadHoldingRegisters(addr, quantity)
	})
}

func (c *GridXClient) read(ctx context.Context, addr, quantity uint16, readFunc func(gridx.Client) ([]byte, error)) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	bytes, err := readFunc(c.subClient)
	if err != nil {
		c.closeHandler()
		return nil, fmt.Errorf("read %d registers at %d: %w", quantity, addr, err)
	}
	if len(bytes) != int(quantity)*2 {
		return nil, fmt.Errorf("read %d registers at %d: got %d bytes", quantity, addr, len(bytes))
	}

	// Each register is two big endian bytes
	registerVals := make([]uint16, quantity)
	for i := range registerVals {
		registerVals[i] = binary.BigEndian.Uint16(bytes[i*2 : i*2+2])
	}

	return registerVals, nil
}

func (c *GridXClient) WriteRegister(ctx context.Context, addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.ensureOpen(); err != nil {
		return err
	}

	bytes := make([]byte, 2)
	binary.BigEndian.PutUint16(bytes, value)

	_, err := c.subClient.WriteMultipleRegisters(addr, 1, bytes)
	if err != nil {
		c.closeHandler()
		return fmt.Errorf("write register %d: %w", addr, err)
	}

	return nil
}
