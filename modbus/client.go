package modbus

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/simonvetter/modbus"
	"golang.org/x/exp/slog"
)

const (
	DefaultPort            = 502
	DefaultUnitID          = 1
	DefaultTimeout         = 2 * time.Second
	DefaultConnectAttempts = 3
	DefaultConnectDelay    = time.Second
)

// ClientConfig holds the connection settings shared by the TCP clients.
type ClientConfig struct {
	Host            string
	Port            int
	UnitID          uint8
	Timeout         time.Duration
	ConnectAttempts int
	ConnectDelay    time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.UnitID == 0 {
		c.UnitID = DefaultUnitID
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	if c.ConnectDelay == 0 {
		c.ConnectDelay = DefaultConnectDelay
	}
	return c
}

// Address returns the host:port the client connects to.
func (c ClientConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client provides an interface onto the heating controller's Modbus TCP server.
// It hides the underlying open source modbus library and re-creates the connection after any failed request.
//
// The underlying library has no context support: the context is checked before each request and the request
// itself is bounded by the configured timeout.
type Client struct {
	config ClientConfig

	mu              sync.Mutex
	subClient       *modbus.ModbusClient // the raw client of the underlying modbus library we are using
	shouldReconnect bool                 // when true, the subClient is 'dirty' and will be re-created next time a read or write call is made
	connected       bool
	logger          *slog.Logger
}

func NewClient(config ClientConfig) (*Client, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("no modbus host configured")
	}
	config = config.withDefaults()

	client := &Client{
		config:          config,
		shouldReconnect: true,
		logger:          slog.Default().With("host", config.Address()),
	}

	return client, nil
}

// Connect opens the connection, trying up to the configured number of attempts.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shouldReconnect = true
	return connectWithRetry(ctx, c.config, c.logger, c.reconnectIfNeccesary)
}

// connectWithRetry calls connect until it succeeds, the attempts run out or the context is done.
func connectWithRetry(ctx context.Context, config ClientConfig, logger *slog.Logger, connect func() error) error {
	var err error
	for attempt := 1; attempt <= config.ConnectAttempts; attempt++ {
		err = connect()
		if err == nil {
			return nil
		}
		logger.Warn("Failed to connect modbus client", "attempt", attempt, "error", err)

		if attempt == config.ConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect: %w", ctx.Err())
		case <-time.After(config.ConnectDelay):
		}
	}
	return fmt.Errorf("connect after %d attempts: %w", config.ConnectAttempts, err)
}

// Close closes the connection. Requests made after Close re-open it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	c.shouldReconnect = true
	if c.subClient == nil {
		return nil
	}
	err := c.subClient.Close()
	c.subClient = nil
	if err != nil {
		return fmt.Errorf("close modbus client: %w", err)
	}
	return nil
}

// IsConnected reports whether the last connection attempt succeeded and the client has not been closed since.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// createSubClient creates the open-source modbus library client with sensible defaults and connects to the host.
func (c *Client) createSubClient() error {
	subClient, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s", c.config.Address()),
		Timeout: c.config.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create modbus client: %w", err)
	}

	err = subClient.SetUnitId(c.config.UnitID)
	if err != nil {
		return fmt.Errorf("set unit id: %w", err)
	}

	err = subClient.Open()
	if err != nil {
		return fmt.Errorf("open modbus client: %w", err)
	}

	c.subClient = subClient

	return nil
}

// setShouldReconnect is called when there has been an error with the modbus connection that should trigger a re-connect.
func (c *Client) setShouldReconnect() {
	c.shouldReconnect = true
}

// reconnectIfNeccesary will close the old connection and reconnect if there have been problems with the connection.
func (c *Client) reconnectIfNeccesary() error {
	if !c.shouldReconnect {
		return nil
	}

	// Ignore errors from Close() as we will continue with the reconnect anyway and start a new connection.
	if c.subClient != nil {
		c.subClient.Close()
		c.subClient = nil
	}

	err := c.createSubClient()
	if err != nil {
		c.connected = false
		return err
	}

	c.shouldReconnect = false
	c.connected = true

	c.logger.Info("Connected modbus client", "unit_id", c.config.UnitID)

	return nil
}
