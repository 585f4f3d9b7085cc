package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMockFailure is returned by the Mock for injected failures.
var ErrMockFailure = errors.New("injected failure")

// Request records a call made against the Mock.
type Request struct {
	Holding  bool
	Write    bool
	Addr     uint16
	Quantity uint16
	Value    uint16
}

// Mock is an in-memory register file standing in for the heating controller. It is safe for concurrent use and
// supports failure injection for tests and a configurable per-request delay.
type Mock struct {
	mu        sync.Mutex
	input     map[uint16]uint16
	holding   map[uint16]uint16
	connected bool
	requests  []Request

	failConnect bool
	failInput   bool
	failHolding bool
	failWrites  bool
	failAddrs   map[uint16]bool
	delay       time.Duration
	shortReads  bool

	inFlight     int
	peakInFlight int
}

func NewMock() *Mock {
	return &Mock{
		input:     make(map[uint16]uint16),
		holding:   make(map[uint16]uint16),
		failAddrs: make(map[uint16]bool),
	}
}

// SetInput stores consecutive input register values starting at addr.
func (m *Mock) SetInput(addr uint16, vals ...uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range vals {
		m.input[addr+uint16(i)] = v
	}
}

// SetHolding stores consecutive holding register values starting at addr.
func (m *Mock) SetHolding(addr uint16, vals ...uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range vals {
		m.holding[addr+uint16(i)] = v
	}
}

// Holding returns the current value of a holding register.
func (m *Mock) Holding(addr uint16) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holding[addr]
}

// Requests returns every request made so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Writes returns the write requests made so far.
func (m *Mock) Writes() []Request {
	var writes []Request
	for _, req := range m.Requests() {
		if req.Write {
			writes = append(writes, req)
		}
	}
	return writes
}

// ResetRequests forgets the recorded requests.
func (m *Mock) ResetRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// PeakInFlight returns the highest number of requests that were being served at the same time.
func (m *Mock) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakInFlight
}

func (m *Mock) FailConnect(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failConnect = fail
}

func (m *Mock) FailInputReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInput = fail
}

func (m *Mock) FailHoldingReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failHolding = fail
}

func (m *Mock) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// FailAddress makes every request starting at addr fail.
func (m *Mock) FailAddress(addr uint16, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAddrs[addr] = fail
}

// ShortReads makes reads return one register less than requested.
func (m *Mock) ShortReads(short bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortReads = short
}

// SetDelay makes every request take at least d, or until its context is done.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *Mock) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failConnect {
		m.connected = false
		return fmt.Errorf("connect: %w", ErrMockFailure)
	}
	m.connected = true
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Mock) ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return m.read(ctx, false, addr, quantity)
}

func (m *Mock) ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error) {
	return m.read(ctx, true, addr, quantity)
}

func (m *Mock) read(ctx context.Context, holding bool, addr, quantity uint16) ([]uint16, error) {
	if err := m.begin(ctx, Request{Holding: holding, Addr: addr, Quantity: quantity}); err != nil {
		return nil, err
	}
	defer m.end()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil, fmt.Errorf("read %d: not connected: %w", addr, ErrMockFailure)
	}
	if (holding && m.failHolding) || (!holding && m.failInput) || m.failAddrs[addr] {
		return nil, fmt.Errorf("read %d: %w", addr, ErrMockFailure)
	}

	registers := m.input
	if holding {
		registers = m.holding
	}
	n := int(quantity)
	if m.shortReads && n > 0 {
		n--
	}
	vals := make([]uint16, n)
	for i := range vals {
		vals[i] = registers[addr+uint16(i)]
	}
	return vals, nil
}

func (m *Mock) WriteRegister(ctx context.Context, addr, value uint16) error {
	if err := m.begin(ctx, Request{Holding: true, Write: true, Addr: addr, Quantity: 1, Value: value}); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("write %d: not connected: %w", addr, ErrMockFailure)
	}
	if m.failWrites || m.failAddrs[addr] {
		return fmt.Errorf("write %d: %w", addr, ErrMockFailure)
	}
	m.holding[addr] = value
	return nil
}

// begin records the request and waits for the configured delay.
func (m *Mock) begin(ctx context.Context, req Request) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			m.end()
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		m.end()
		return err
	}
	return nil
}

func (m *Mock) end() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}
