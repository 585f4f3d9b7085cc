package modbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock(t *testing.T) {
	mock := NewMock()
	ctx := context.Background()

	_, err := mock.ReadInputRegisters(ctx, 0, 1)
	assert.ErrorIs(t, err, ErrMockFailure)

	require.NoError(t, mock.Connect(ctx))
	mock.SetInput(100, 1, 2, 3)

	vals, err := mock.ReadInputRegisters(ctx, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3, 0}, vals)

	require.NoError(t, mock.WriteRegister(ctx, 200, 7))
	vals, err = mock.ReadHoldingRegisters(ctx, 200, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7}, vals)

	assert.Len(t, mock.Requests(), 4)
	assert.Equal(t, []Request{{Holding: true, Write: true, Addr: 200, Quantity: 1, Value: 7}}, mock.Writes())

	mock.ResetRequests()
	assert.Empty(t, mock.Requests())
}

func TestMockFailures(t *testing.T) {
	mock := NewMock()
	ctx := context.Background()

	mock.FailConnect(true)
	assert.Error(t, mock.Connect(ctx))
	assert.False(t, mock.IsConnected())
	mock.FailConnect(false)
	require.NoError(t, mock.Connect(ctx))

	mock.FailHoldingReads(true)
	_, err := mock.ReadHoldingRegisters(ctx, 0, 1)
	assert.ErrorIs(t, err, ErrMockFailure)
	_, err = mock.ReadInputRegisters(ctx, 0, 1)
	assert.NoError(t, err)
	mock.FailHoldingReads(false)

	mock.FailAddress(5, true)
	assert.ErrorIs(t, mock.WriteRegister(ctx, 5, 1), ErrMockFailure)
	assert.NoError(t, mock.WriteRegister(ctx, 6, 1))

	mock.ShortReads(true)
	vals, err := mock.ReadInputRegisters(ctx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, vals, 2)
}

func TestMockDelayHonoursContext(t *testing.T) {
	mock := NewMock()
	require.NoError(t, mock.Connect(context.Background()))
	mock.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.ReadInputRegisters(ctx, 0, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, mock.inFlight)
}
