package modbusaccess

import (
	"fmt"
	"math"
)

// Type represents the different integer encodings used in the register map.
type Type struct {
	name   string // the name of the data type
	words  uint16 // the number of 16 bit registers used to represent the data type
	signed bool   // true if the raw bits are a two's complement integer
}

// Int16Type represents the 16 bit signed integer data type on Modbus.
var Int16Type = Type{
	name:   "int16",
	words:  1,
	signed: true,
}

// Uint16Type represents the 16 bit unsigned integer data type on Modbus.
var Uint16Type = Type{
	name:   "uint16",
	words:  1,
	signed: false,
}

// Int32Type represents the 32 bit signed integer data type on Modbus, high word first.
var Int32Type = Type{
	name:   "int32",
	words:  2,
	signed: true,
}

// Uint32Type represents the 32 bit unsigned integer data type on Modbus, high word first.
var Uint32Type = Type{
	name:   "uint32",
	words:  2,
	signed: false,
}

func (t Type) String() string {
	return t.name
}

// Words returns the number of registers the type occupies.
func (t Type) Words() uint16 {
	return t.words
}

func (t Type) Signed() bool {
	return t.signed
}

func (t Type) valid() bool {
	return t.words == 1 || t.words == 2
}

func (t Type) bits() uint {
	return uint(t.words) * 16
}

// limits returns the smallest and largest raw integers representable by the type.
func (t Type) limits() (int64, int64) {
	bits := t.bits()
	if t.signed {
		return -(int64(1) << (bits - 1)), int64(1)<<(bits-1) - 1
	}
	return 0, int64(1)<<bits - 1
}

// Decode assembles the given registers (high word first) into a raw integer, applying two's complement for signed types.
func (t Type) Decode(words []uint16) (int64, error) {
	if !t.valid() {
		return 0, fmt.Errorf("decode %q: %w", t.name, ErrConfiguration)
	}
	if len(words) != int(t.words) {
		return 0, fmt.Errorf("decode %s: got %d words, want %d: %w", t.name, len(words), t.words, ErrParse)
	}

	var assembled uint64
	for _, w := range words {
		assembled = assembled<<16 | uint64(w)
	}

	raw := int64(assembled)
	bits := t.bits()
	if t.signed && assembled >= uint64(1)<<(bits-1) {
		raw -= int64(1) << bits
	}
	return raw, nil
}

// Encode is the inverse of Decode: it splits a raw integer into registers, high word first.
func (t Type) Encode(raw int64) ([]uint16, error) {
	if !t.valid() {
		return nil, fmt.Errorf("encode %q: %w", t.name, ErrConfiguration)
	}
	min, max := t.limits()
	if raw < min || raw > max {
		return nil, fmt.Errorf("encode %s: %d outside [%d, %d]: %w", t.name, raw, min, max, ErrUsage)
	}

	bits := t.bits()
	assembled := uint64(raw) & (uint64(1)<<bits - 1)
	words := make([]uint16, t.words)
	for i := len(words) - 1; i >= 0; i-- {
		words[i] = uint16(assembled)
		assembled >>= 16
	}
	return words, nil
}

// Side selects the Modbus register file a value lives in.
type Side int

const (
	InputSide   Side = iota // read only telemetry
	HoldingSide             // read/write setpoints and commands
)

func (s Side) String() string {
	switch s {
	case InputSide:
		return "input"
	case HoldingSide:
		return "holding"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Sides lists both register files in the order they are updated.
var Sides = []Side{InputSide, HoldingSide}

// Register holds a value on the modbus slave at the given address, relative to the base address of its component.
//
// Input registers are scaled by multiplying with Scale, holding registers by dividing by it. A holding register
// storing tenths of a degree therefore has Scale 10 while the equivalent input register has Scale 0.1. The device
// encodes its values this way, so the asymmetry must be preserved.
type Register struct {
	Name  string
	Addr  uint16
	Type  Type
	Scale *float64 // nil when the raw integer is the value
	Side  Side
}

// Factor returns a scale for use in register tables.
func Factor(f float64) *float64 {
	return &f
}

// Words returns the number of registers occupied by the value.
func (r Register) Words() uint16 {
	return r.Type.words
}

// End returns the relative address one past the last register of the value.
func (r Register) End() int {
	return int(r.Addr) + int(r.Type.words)
}

// Validate checks the static configuration of the register.
func (r Register) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("register at %d has no name: %w", r.Addr, ErrConfiguration)
	}
	if !r.Type.valid() {
		return fmt.Errorf("register '%s' has an invalid data type: %w", r.Name, ErrConfiguration)
	}
	if r.Side != InputSide && r.Side != HoldingSide {
		return fmt.Errorf("register '%s' has an invalid side %s: %w", r.Name, r.Side, ErrConfiguration)
	}
	if r.Scale != nil && (*r.Scale <= 0 || math.IsNaN(*r.Scale) || math.IsInf(*r.Scale, 0)) {
		return fmt.Errorf("register '%s' scale must be positive, got %v: %w", r.Name, *r.Scale, ErrConfiguration)
	}
	return nil
}

// ToScaled converts a raw integer into the engineering value.
func (r Register) ToScaled(raw int64) float64 {
	if r.Scale == nil {
		return float64(raw)
	}
	scale := *r.Scale
	if scale <= 0 {
		return 0
	}
	if r.Side == HoldingSide {
		return float64(raw) / scale
	}
	return float64(raw) * scale
}

// FromScaled converts an engineering value into the raw integer to be written, rounding to the nearest integer.
func (r Register) FromScaled(value float64) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("register '%s': %v is not a number: %w", r.Name, value, ErrUsage)
	}

	raw := value
	if r.Scale != nil {
		scale := *r.Scale
		if scale <= 0 {
			return 0, fmt.Errorf("register '%s' scale must be positive: %w", r.Name, ErrConfiguration)
		}
		if r.Side == HoldingSide {
			raw = value * scale
		} else {
			raw = value / scale
		}
	}

	raw = math.Round(raw)
	min, max := r.Type.limits()
	if raw < float64(min) || raw > float64(max) {
		return 0, fmt.Errorf("register '%s': %v is outside the %s range: %w", r.Name, value, r.Type, ErrUsage)
	}
	return int64(raw), nil
}

// Decode parses the registers belonging to this value into its raw integer.
func (r Register) Decode(words []uint16) (int64, error) {
	raw, err := r.Type.Decode(words)
	if err != nil {
		return 0, fmt.Errorf("register '%s': %w", r.Name, err)
	}
	return raw, nil
}

// Encode converts a raw integer into the registers to be written for this value.
func (r Register) Encode(raw int64) ([]uint16, error) {
	words, err := r.Type.Encode(raw)
	if err != nil {
		return nil, fmt.Errorf("register '%s': %w", r.Name, err)
	}
	return words, nil
}
