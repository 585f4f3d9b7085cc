package simulator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/cepro/solarfocus/component"
	"github.com/cepro/solarfocus/modbusaccess"
	"github.com/tbrandon/mbserver"
	"golang.org/x/exp/slog"
)

// Simulator emulates the Modbus TCP server of a heating controller so the rest of the system can be run without
// hardware. Its register image is seeded from component definitions with plausible values.
type Simulator struct {
	mu     sync.Mutex // guards the register slices of server, which the server's request loop also uses
	server *mbserver.Server

	components []*component.Component
	tick       int
	logger     *slog.Logger
}

// New creates a simulator serving the registers of the given components.
func New(components []*component.Component) *Simulator {
	s := &Simulator{
		server:     mbserver.NewServer(),
		components: components,
		logger:     slog.Default().With("device", "simulator"),
	}

	s.server.RegisterFunctionHandler(3, s.locked(mbserver.ReadHoldingRegisters))
	s.server.RegisterFunctionHandler(4, s.locked(mbserver.ReadInputRegisters))
	s.server.RegisterFunctionHandler(6, s.locked(mbserver.WriteHoldingRegister))
	s.server.RegisterFunctionHandler(16, s.locked(mbserver.WriteHoldingRegisters))

	for _, c := range components {
		for _, side := range modbusaccess.Sides {
			for _, reg := range c.Registers(side) {
				s.seed(c.Base(side), reg)
			}
		}
	}

	return s
}

type handlerFunc func(*mbserver.Server, mbserver.Framer) ([]byte, *mbserver.Exception)

func (s *Simulator) locked(handler handlerFunc) handlerFunc {
	return func(srv *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return handler(srv, frame)
	}
}

// Listen starts serving on the given host:port.
func (s *Simulator) Listen(address string) error {
	err := s.server.ListenTCP(address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	s.logger.Info("Simulator listening", "address", address)
	return nil
}

func (s *Simulator) Close() {
	s.server.Close()
}

// SetInput stores consecutive input register values starting at addr.
func (s *Simulator) SetInput(addr uint16, vals ...uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.server.InputRegisters[addr:], vals)
}

// SetHolding stores consecutive holding register values starting at addr.
func (s *Simulator) SetHolding(addr uint16, vals ...uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.server.HoldingRegisters[addr:], vals)
}

// Input returns the value of an input register.
func (s *Simulator) Input(addr uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.InputRegisters[addr]
}

// Holding returns the value of a holding register.
func (s *Simulator) Holding(addr uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.HoldingRegisters[addr]
}

// Run slowly varies the temperatures until the context is done.
func (s *Simulator) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
		}
	}
}

func (s *Simulator) step() {
	s.tick++
	offset := 2 * math.Sin(float64(s.tick)/10)

	for _, c := range s.components {
		base := c.Base(modbusaccess.InputSide)
		for _, reg := range c.Registers(modbusaccess.InputSide) {
			if !strings.Contains(reg.Name, "temperature") {
				continue
			}
			s.write(base, reg, seedValue(reg)+offset)
		}
	}
}

func (s *Simulator) seed(base int, reg modbusaccess.Register) {
	s.write(base, reg, seedValue(reg))
}

// write encodes the engineering value into the register image.
func (s *Simulator) write(base int, reg modbusaccess.Register, value float64) {
	raw, err := reg.FromScaled(value)
	if err != nil {
		s.logger.Warn("Failed to scale simulated value", "register", reg.Name, "error", err)
		return
	}
	words, err := reg.Encode(raw)
	if err != nil {
		s.logger.Warn("Failed to encode simulated value", "register", reg.Name, "error", err)
		return
	}

	addr := uint16(base + int(reg.Addr))
	if reg.Side == modbusaccess.HoldingSide {
		s.SetHolding(addr, words...)
	} else {
		s.SetInput(addr, words...)
	}
}

// seedValue picks a plausible engineering value for a register from its name.
func seedValue(reg modbusaccess.Register) float64 {
	name := reg.Name
	switch {
	case strings.HasSuffix(name, "_reset"):
		return 0
	case name == "outdoor_temperature" || name == "outdoor_temperature_external":
		return 4.5
	case strings.Contains(name, "collector"):
		return 38.0
	case strings.Contains(name, "room_temperature") || strings.Contains(name, "indoor_temperature"):
		return 21.5
	case strings.HasPrefix(name, "target") || strings.Contains(name, "supply_temperature"):
		return 45.0
	case strings.Contains(name, "temperature"):
		return 52.0
	case strings.Contains(name, "humidity"):
		return 45.0
	case strings.Contains(name, "energy") || strings.Contains(name, "yield") || strings.Contains(name, "pellet_usage"):
		return 1234.5
	case name == "thermal_power_heating":
		return 7200
	case name == "electrical_power":
		return 1800
	case strings.Contains(name, "power") || strings.Contains(name, "consumption") || strings.HasPrefix(name, "grid"):
		return 850
	case strings.Contains(name, "flow"):
		return 12.5
	case strings.Contains(name, "state") || strings.Contains(name, "status") || strings.Contains(name, "mode"):
		return 1
	case name == "smart_grid":
		return 2
	default:
		return 0
	}
}
