package component

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cepro/solarfocus/modbus"
	"github.com/cepro/solarfocus/modbusaccess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	supplyTemperature = modbusaccess.Register{Name: "supply_temperature", Addr: 0, Type: modbusaccess.Int16Type, Scale: modbusaccess.Factor(0.1)}
	state             = modbusaccess.Register{Name: "state", Addr: 6, Type: modbusaccess.Uint16Type}
	targetTemperature = modbusaccess.Register{Name: "target_temperature", Addr: 0, Type: modbusaccess.Int16Type, Scale: modbusaccess.Factor(10), Side: modbusaccess.HoldingSide}
	energy            = modbusaccess.Register{Name: "energy", Addr: 2, Type: modbusaccess.Uint32Type, Scale: modbusaccess.Factor(0.001), Side: modbusaccess.HoldingSide}
)

func newConnectedMock(t *testing.T) *modbus.Mock {
	mock := modbus.NewMock()
	require.NoError(t, mock.Connect(context.Background()))
	return mock
}

func newInitialized(t *testing.T, mock *modbus.Mock, regs ...modbusaccess.Register) *Component {
	c, err := New("test", 1100, 32600, regs)
	require.NoError(t, err)
	require.NoError(t, c.Initialize(mock))
	return c
}

func TestUpdateEndToEnd(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetInput(1100, 250, 0, 0, 0, 0, 0, 2)

	c := newInitialized(t, mock, supplyTemperature, state)
	assert.Equal(t, []modbusaccess.Range{{Start: 0, Count: 1}, {Start: 6, Count: 1}}, c.Ranges(modbusaccess.InputSide))
	assert.Equal(t, 7, c.WordCount(modbusaccess.InputSide))

	require.NoError(t, c.Update(context.Background()))

	val, ok := c.Value("supply_temperature")
	assert.True(t, ok)
	assert.InDelta(t, 25.0, val, 1e-9)

	raw, ok := c.Raw("state")
	assert.True(t, ok)
	assert.Equal(t, int64(2), raw)

	// one read per range, no holding reads as there are no holding registers
	assert.Equal(t, []modbus.Request{
		{Addr: 1100, Quantity: 1},
		{Addr: 1106, Quantity: 1},
	}, mock.Requests())
	assert.False(t, c.LastUpdate().IsZero())
}

func TestUpdateSignedAndDoubleWord(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetInput(1100, 0xFF9C) // -100
	mock.SetHolding(32600, 215, 0, 0x0001, 0x0000)

	c := newInitialized(t, mock, supplyTemperature, targetTemperature, energy)
	require.NoError(t, c.Update(context.Background()))

	val, _ := c.Value("supply_temperature")
	assert.InDelta(t, -10.0, val, 1e-9)

	val, _ = c.Value("target_temperature")
	assert.InDelta(t, 21.5, val, 1e-9)

	raw, _ := c.Raw("energy")
	assert.Equal(t, int64(65536), raw)

	// the gap at holding address 1 is read as two ranges
	assert.Equal(t, []modbusaccess.Range{{Start: 0, Count: 1}, {Start: 2, Count: 2}}, c.Ranges(modbusaccess.HoldingSide))
}

func TestUpdateSidesAreIndependent(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetInput(1100, 250)
	mock.SetHolding(32600, 215)
	mock.FailInputReads(true)

	c := newInitialized(t, mock, supplyTemperature, targetTemperature)

	err := c.Update(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, modbusaccess.ErrTransport))

	_, ok := c.Value("supply_temperature")
	assert.False(t, ok)

	val, ok := c.Value("target_temperature")
	assert.True(t, ok)
	assert.InDelta(t, 21.5, val, 1e-9)
	assert.True(t, c.LastUpdate().IsZero())
}

func TestFailedRangeKeepsPreviousValues(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetInput(1100, 250, 0, 0, 0, 0, 0, 2)

	c := newInitialized(t, mock, supplyTemperature, state)
	require.NoError(t, c.Update(context.Background()))

	// the second range fails: nothing of the side is replaced, not even the first range
	mock.SetInput(1100, 300, 0, 0, 0, 0, 0, 3)
	mock.FailAddress(1106, true)
	assert.Error(t, c.Update(context.Background()))

	val, _ := c.Value("supply_temperature")
	assert.InDelta(t, 25.0, val, 1e-9)
	raw, _ := c.Raw("state")
	assert.Equal(t, int64(2), raw)
}

func TestUpdateShortRead(t *testing.T) {
	mock := newConnectedMock(t)
	mock.ShortReads(true)

	c := newInitialized(t, mock, supplyTemperature)
	err := c.Update(context.Background())
	assert.True(t, errors.Is(err, modbusaccess.ErrParse), "%v", err)
}

func TestParseLengthMismatch(t *testing.T) {
	c, err := New("test", 1100, NoAddress, []modbusaccess.Register{supplyTemperature, state})
	require.NoError(t, err)

	err = c.parse(modbusaccess.InputSide, []uint16{1, 2, 3})
	assert.True(t, errors.Is(err, modbusaccess.ErrParse))

	_, ok := c.Value("state")
	assert.False(t, ok)
}

func TestUpdateCancelled(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetDelay(200 * time.Millisecond)

	c := newInitialized(t, mock, supplyTemperature, state)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Update(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// the second range was never requested
	assert.Len(t, mock.Requests(), 1)
	_, ok := c.Value("supply_temperature")
	assert.False(t, ok)
}

func TestConcurrentUpdatesAreSerialised(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetDelay(10 * time.Millisecond)

	c := newInitialized(t, mock, supplyTemperature, state, targetTemperature)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Update(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mock.PeakInFlight())
	assert.Len(t, mock.Requests(), 4*3)
}

func TestCommit(t *testing.T) {
	mock := newConnectedMock(t)
	c := newInitialized(t, mock, supplyTemperature, targetTemperature)

	require.NoError(t, c.Commit(context.Background(), "target_temperature", 21.5))
	assert.Equal(t, uint16(215), mock.Holding(32600))
	assert.Equal(t, []modbus.Request{{Holding: true, Write: true, Addr: 32600, Quantity: 1, Value: 215}}, mock.Writes())

	val, ok := c.Value("target_temperature")
	assert.True(t, ok)
	assert.InDelta(t, 21.5, val, 1e-9)

	require.NoError(t, c.CommitRaw(context.Background(), "target_temperature", -5))
	assert.Equal(t, uint16(0xFFFB), mock.Holding(32600))
}

func TestCommitRejected(t *testing.T) {
	mock := newConnectedMock(t)
	c := newInitialized(t, mock, supplyTemperature, targetTemperature, energy)

	err := c.Commit(context.Background(), "supply_temperature", 20)
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	err = c.Commit(context.Background(), "unknown", 20)
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	err = c.Commit(context.Background(), "energy", 1)
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	err = c.Commit(context.Background(), "target_temperature", 5000)
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	assert.Empty(t, mock.Writes())
}

func TestCommitFailureLeavesValue(t *testing.T) {
	mock := newConnectedMock(t)
	mock.SetHolding(32600, 200)
	c := newInitialized(t, mock, targetTemperature)
	require.NoError(t, c.Update(context.Background()))

	mock.FailWrites(true)
	err := c.Commit(context.Background(), "target_temperature", 25)
	assert.True(t, errors.Is(err, modbusaccess.ErrTransport))

	val, _ := c.Value("target_temperature")
	assert.InDelta(t, 20.0, val, 1e-9)
	// not retried
	assert.Len(t, mock.Writes(), 1)
}

func TestInitialize(t *testing.T) {
	c, err := New("test", 1100, 32600, []modbusaccess.Register{supplyTemperature, targetTemperature})
	require.NoError(t, err)

	err = c.Update(context.Background())
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	err = c.Commit(context.Background(), "target_temperature", 20)
	assert.True(t, errors.Is(err, modbusaccess.ErrUsage))

	_, ok := c.Address("supply_temperature")
	assert.False(t, ok)

	mock := newConnectedMock(t)
	require.NoError(t, c.Initialize(mock))
	assert.True(t, errors.Is(c.Initialize(mock), modbusaccess.ErrUsage))

	addr, ok := c.Address("target_temperature")
	assert.True(t, ok)
	assert.Equal(t, uint16(32600), addr)
}

func TestNewValidation(t *testing.T) {
	overlapping := modbusaccess.Register{Name: "overlap", Addr: 1, Type: modbusaccess.Int16Type}
	wide := modbusaccess.Register{Name: "wide", Addr: 0, Type: modbusaccess.Int32Type}

	tests := []struct {
		name        string
		inputBase   int
		holdingBase int
		regs        []modbusaccess.Register
	}{
		{name: "duplicate name", inputBase: 0, holdingBase: NoAddress, regs: []modbusaccess.Register{supplyTemperature, supplyTemperature}},
		{name: "overlap", inputBase: 0, holdingBase: NoAddress, regs: []modbusaccess.Register{wide, overlapping}},
		{name: "missing holding base", inputBase: 0, holdingBase: NoAddress, regs: []modbusaccess.Register{targetTemperature}},
		{name: "negative base", inputBase: -5, holdingBase: NoAddress, regs: []modbusaccess.Register{supplyTemperature}},
		{name: "beyond address space", inputBase: 65535, holdingBase: NoAddress, regs: []modbusaccess.Register{wide}},
		{name: "zero scale", inputBase: 0, holdingBase: NoAddress, regs: []modbusaccess.Register{{Name: "a", Type: modbusaccess.Int16Type, Scale: modbusaccess.Factor(0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.inputBase, tt.holdingBase, tt.regs)
			assert.True(t, errors.Is(err, modbusaccess.ErrConfiguration), "%v", err)
		})
	}
}

func TestUnsortedRegistersAreSorted(t *testing.T) {
	c, err := New("test", 0, NoAddress, []modbusaccess.Register{state, supplyTemperature})
	require.NoError(t, err)

	regs := c.Registers(modbusaccess.InputSide)
	require.Len(t, regs, 2)
	assert.Equal(t, "supply_temperature", regs[0].Name)
	assert.Equal(t, []string{"state", "supply_temperature"}, c.Names())
}
