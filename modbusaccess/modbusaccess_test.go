package modbusaccess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWordOrder(t *testing.T) {
	raw, err := Uint32Type.Decode([]uint16{0x0001, 0x0000})
	require.NoError(t, err)
	assert.Equal(t, int64(65536), raw)

	raw, err = Int32Type.Decode([]uint16{0x0000, 0x0001})
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)
}

func TestDecodeSigned(t *testing.T) {

	tests := []struct {
		name     string
		dataType Type
		words    []uint16
		expected int64
	}{
		{name: "int16 minus one", dataType: Int16Type, words: []uint16{0xFFFF}, expected: -1},
		{name: "int16 min", dataType: Int16Type, words: []uint16{0x8000}, expected: -32768},
		{name: "int16 max", dataType: Int16Type, words: []uint16{0x7FFF}, expected: 32767},
		{name: "uint16 max", dataType: Uint16Type, words: []uint16{0xFFFF}, expected: 65535},
		{name: "int32 minus one", dataType: Int32Type, words: []uint16{0xFFFF, 0xFFFF}, expected: -1},
		{name: "int32 min", dataType: Int32Type, words: []uint16{0x8000, 0x0000}, expected: -2147483648},
		{name: "int32 max", dataType: Int32Type, words: []uint16{0x7FFF, 0xFFFF}, expected: 2147483647},
		{name: "uint32 max", dataType: Uint32Type, words: []uint16{0xFFFF, 0xFFFF}, expected: 4294967295},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.dataType.Decode(tt.words)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, raw)

			words, err := tt.dataType.Encode(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.words, words)
		})
	}
}

func TestDecodeWrongLength(t *testing.T) {
	_, err := Int32Type.Decode([]uint16{1})
	assert.True(t, errors.Is(err, ErrParse))

	_, err = Int16Type.Decode(nil)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Int16Type.Encode(32768)
	assert.True(t, errors.Is(err, ErrUsage))

	_, err = Uint16Type.Encode(-1)
	assert.True(t, errors.Is(err, ErrUsage))

	_, err = Uint32Type.Encode(1 << 32)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestScaling(t *testing.T) {
	input := Register{Name: "supply_temperature", Type: Int16Type, Scale: Factor(0.1), Side: InputSide}
	holding := Register{Name: "target_supply_temperature", Type: Int16Type, Scale: Factor(10), Side: HoldingSide}
	plain := Register{Name: "state", Type: Uint16Type, Side: InputSide}

	assert.InDelta(t, 25.0, input.ToScaled(250), 1e-9)
	assert.InDelta(t, 25.0, holding.ToScaled(250), 1e-9)
	assert.Equal(t, 2.0, plain.ToScaled(2))

	raw, err := holding.FromScaled(21.5)
	require.NoError(t, err)
	assert.Equal(t, int64(215), raw)

	raw, err = input.FromScaled(25)
	require.NoError(t, err)
	assert.Equal(t, int64(250), raw)
}

func TestHoldingRoundTrip(t *testing.T) {
	for _, scale := range []float64{1, 10, 100, 0.5} {
		reg := Register{Name: "setpoint", Type: Int16Type, Scale: Factor(scale), Side: HoldingSide}
		for _, value := range []float64{-20, -0.5, 0, 0.5, 21.5, 45, 60.5} {
			raw, err := reg.FromScaled(value)
			require.NoError(t, err)
			assert.InDelta(t, value, reg.ToScaled(raw), 1/scale, "scale %v value %v", scale, value)
		}
	}
}

func TestFromScaledRejects(t *testing.T) {
	reg := Register{Name: "mode", Type: Uint16Type, Side: HoldingSide}

	_, err := reg.FromScaled(-1)
	assert.True(t, errors.Is(err, ErrUsage))

	_, err = reg.FromScaled(70000)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestValidate(t *testing.T) {

	tests := []struct {
		name  string
		reg   Register
		valid bool
	}{
		{name: "plain", reg: Register{Name: "a", Type: Int16Type}, valid: true},
		{name: "scaled", reg: Register{Name: "a", Type: Int16Type, Scale: Factor(0.1)}, valid: true},
		{name: "no name", reg: Register{Type: Int16Type}, valid: false},
		{name: "zero value type", reg: Register{Name: "a"}, valid: false},
		{name: "zero scale", reg: Register{Name: "a", Type: Int16Type, Scale: Factor(0)}, valid: false},
		{name: "negative scale", reg: Register{Name: "a", Type: Int16Type, Scale: Factor(-10)}, valid: false},
		{name: "bad side", reg: Register{Name: "a", Type: Int16Type, Side: Side(7)}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrConfiguration))
			}
		})
	}
}

func TestZeroScaleDoesNotPanic(t *testing.T) {
	reg := Register{Name: "a", Type: Int16Type, Scale: Factor(0), Side: HoldingSide}
	assert.Equal(t, 0.0, reg.ToScaled(100))
}
