package component

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cepro/solarfocus/modbusaccess"
	"golang.org/x/exp/slog"
)

// NoAddress is used as a base address for a component that has no registers on that side.
const NoAddress = -1

// Transport is the connection to the controller as far as a component is concerned: one request per call,
// addressed in 16 bit registers.
type Transport interface {
	ReadInputRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error)
	ReadHoldingRegisters(ctx context.Context, addr, quantity uint16) ([]uint16, error)
	WriteRegister(ctx context.Context, addr, value uint16) error
	IsConnected() bool
}

// Writer is the part of the transport handed to holding registers. Input registers never get one.
type Writer interface {
	WriteRegister(ctx context.Context, addr, value uint16) error
}

// metric is a register together with its last known value.
type metric struct {
	modbusaccess.Register

	address uint16 // absolute address, assigned by Initialize
	raw     int64
	valid   bool
	writer  Writer
}

// layout is everything needed to read one side of a component.
type layout struct {
	base    int
	metrics []*metric // sorted by relative address
	ranges  []modbusaccess.Range
	words   int // highest relative end address over the side's registers
}

// Component is a logical sub unit of the heating system, e.g. one heating circuit, mapped onto a block of input
// registers and optionally a block of holding registers.
type Component struct {
	name    string
	metrics []*metric // declaration order
	byName  map[string]*metric
	sides   [2]layout // indexed by modbusaccess.Side

	transport Transport

	updateMu sync.Mutex   // serialises updates and writes, a second caller waits
	mu       sync.RWMutex // guards metric values and lastUpdate

	lastUpdate time.Time
	logger     *slog.Logger
}

// Option customises a component.
type Option func(*Component)

// WithLogger sets the logger the component reports to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		c.logger = logger.With("component", c.name)
	}
}

// New validates the registers and computes the read ranges of both sides.
func New(name string, inputBase, holdingBase int, regs []modbusaccess.Register, opts ...Option) (*Component, error) {
	c := &Component{
		name:    name,
		metrics: make([]*metric, 0, len(regs)),
		byName:  make(map[string]*metric, len(regs)),
		logger:  slog.Default().With("component", name),
	}
	c.sides[modbusaccess.InputSide].base = inputBase
	c.sides[modbusaccess.HoldingSide].base = holdingBase

	for _, reg := range regs {
		if err := reg.Validate(); err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		if _, exists := c.byName[reg.Name]; exists {
			return nil, fmt.Errorf("component %s: duplicate register '%s': %w", name, reg.Name, modbusaccess.ErrConfiguration)
		}
		m := &metric{Register: reg}
		c.metrics = append(c.metrics, m)
		c.byName[reg.Name] = m
		c.sides[reg.Side].metrics = append(c.sides[reg.Side].metrics, m)
	}

	for _, side := range modbusaccess.Sides {
		if err := c.sides[side].build(side); err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// build sorts the side's registers, checks the layout and coalesces the read ranges.
func (l *layout) build(side modbusaccess.Side) error {
	if len(l.metrics) == 0 {
		return nil
	}
	if l.base == NoAddress {
		return fmt.Errorf("%s registers defined without a base address: %w", side, modbusaccess.ErrConfiguration)
	}
	if l.base < 0 {
		return fmt.Errorf("invalid %s base address %d: %w", side, l.base, modbusaccess.ErrConfiguration)
	}

	sort.SliceStable(l.metrics, func(i, j int) bool {
		return l.metrics[i].Addr < l.metrics[j].Addr
	})

	regs := make([]modbusaccess.Register, len(l.metrics))
	for i, m := range l.metrics {
		if i > 0 && int(m.Addr) < l.metrics[i-1].End() {
			return fmt.Errorf("%s register '%s' overlaps '%s': %w", side, m.Name, l.metrics[i-1].Name, modbusaccess.ErrConfiguration)
		}
		regs[i] = m.Register
		if m.End() > l.words {
			l.words = m.End()
		}
	}
	if l.base+l.words > 1<<16 {
		return fmt.Errorf("%s registers exceed the address space: %w", side, modbusaccess.ErrConfiguration)
	}

	l.ranges = modbusaccess.Coalesce(regs)
	return nil
}

// Initialize assigns absolute addresses and connects the holding registers to the transport. It must be called
// exactly once before Update or Commit.
func (c *Component) Initialize(t Transport) error {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if t == nil {
		return fmt.Errorf("initialize %s: no transport: %w", c.name, modbusaccess.ErrUsage)
	}
	if c.transport != nil {
		return fmt.Errorf("initialize %s: already initialized: %w", c.name, modbusaccess.ErrUsage)
	}

	for _, m := range c.metrics {
		m.address = uint16(c.sides[m.Side].base + int(m.Addr))
		if m.Side == modbusaccess.HoldingSide {
			m.writer = t
		}
	}
	c.transport = t

	return nil
}

func (c *Component) Name() string {
	return c.name
}

// Base returns the base address of the given side, or NoAddress.
func (c *Component) Base(side modbusaccess.Side) int {
	return c.sides[side].base
}

// Ranges returns the blocks read on every update of the given side, relative to its base address.
func (c *Component) Ranges(side modbusaccess.Side) []modbusaccess.Range {
	return append([]modbusaccess.Range(nil), c.sides[side].ranges...)
}

// WordCount returns the number of registers spanned by the given side.
func (c *Component) WordCount(side modbusaccess.Side) int {
	return c.sides[side].words
}

// Registers returns the register definitions of the given side, sorted by address.
func (c *Component) Registers(side modbusaccess.Side) []modbusaccess.Register {
	regs := make([]modbusaccess.Register, len(c.sides[side].metrics))
	for i, m := range c.sides[side].metrics {
		regs[i] = m.Register
	}
	return regs
}

// Names returns the register names in declaration order.
func (c *Component) Names() []string {
	names := make([]string, len(c.metrics))
	for i, m := range c.metrics {
		names[i] = m.Name
	}
	return names
}

// Has reports whether the component defines the named register.
func (c *Component) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Register returns the definition of the named register.
func (c *Component) Register(name string) (modbusaccess.Register, bool) {
	m, ok := c.byName[name]
	if !ok {
		return modbusaccess.Register{}, false
	}
	return m.Register, true
}

// Address returns the absolute address of the named register once the component is initialized.
func (c *Component) Address(name string) (uint16, bool) {
	m, ok := c.byName[name]
	if !ok || c.transport == nil {
		return 0, false
	}
	return m.address, true
}

// Value returns the scaled value of the named register. The second result is false if the register does not exist
// or has never been read or written.
func (c *Component) Value(name string) (float64, bool) {
	m, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return m.ToScaled(m.raw), m.valid
}

// Raw returns the raw integer of the named register, after signed conversion and before scaling.
func (c *Component) Raw(name string) (int64, bool) {
	m, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return m.raw, m.valid
}

// Values returns every known scaled value keyed by register name.
func (c *Component) Values() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vals := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		if m.valid {
			vals[m.Name] = m.ToScaled(m.raw)
		}
	}
	return vals
}

// LastUpdate returns the time of the last fully successful update.
func (c *Component) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}
