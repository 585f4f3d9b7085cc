package component

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cepro/solarfocus/modbusaccess"
)

// Update reads every range of both sides and parses the registers into values. A failure on one side does not stop
// the other side from being read, but the update as a whole only succeeds if both sides do. Values of a failed side
// keep their previous contents; a side's values are only replaced once all of its ranges have been read.
func (c *Component) Update(ctx context.Context) error {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if c.transport == nil {
		return fmt.Errorf("update %s: not initialized: %w", c.name, modbusaccess.ErrUsage)
	}

	var errs []error
	for _, side := range modbusaccess.Sides {
		if err := c.updateSide(ctx, side); err != nil {
			errs = append(errs, fmt.Errorf("%s registers: %w", side, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("update %s: %w", c.name, errors.Join(errs...))
	}

	c.mu.Lock()
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	return nil
}

// updateSide reads the ranges of one side into a register array aligned to relative addresses and parses it.
// Registers in the gaps between ranges are left zero.
func (c *Component) updateSide(ctx context.Context, side modbusaccess.Side) error {
	l := &c.sides[side]
	if len(l.ranges) == 0 {
		return nil
	}

	words := make([]uint16, l.words)
	for _, r := range l.ranges {
		for _, chunk := range modbusaccess.Chunk(r, modbusaccess.MaxReadQuantity) {
			addr := uint16(l.base) + chunk.Start

			// stop issuing reads once the caller has given up
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("read %d registers at %d: %w: %w", chunk.Count, addr, modbusaccess.ErrTransport, err)
			}

			vals, err := c.read(ctx, side, addr, chunk.Count)
			if err != nil {
				return fmt.Errorf("read %d registers at %d: %w: %w", chunk.Count, addr, modbusaccess.ErrTransport, err)
			}
			if len(vals) != int(chunk.Count) {
				return fmt.Errorf("read %d registers at %d: got %d: %w", chunk.Count, addr, len(vals), modbusaccess.ErrParse)
			}
			copy(words[chunk.Start:], vals)
		}
	}

	c.logger.Debug("Read registers", "side", side, "ranges", len(l.ranges), "words", l.words)

	return c.parse(side, words)
}

func (c *Component) read(ctx context.Context, side modbusaccess.Side, addr, quantity uint16) ([]uint16, error) {
	if side == modbusaccess.HoldingSide {
		return c.transport.ReadHoldingRegisters(ctx, addr, quantity)
	}
	return c.transport.ReadInputRegisters(ctx, addr, quantity)
}

// parse extracts every register of the side from words, which holds the side's registers from relative address 0.
// A register that fails to parse does not stop its siblings from being parsed.
func (c *Component) parse(side modbusaccess.Side, words []uint16) error {
	l := &c.sides[side]
	if len(words) != l.words {
		return fmt.Errorf("parse: got %d registers, want %d: %w", len(words), l.words, modbusaccess.ErrParse)
	}

	type parsed struct {
		m   *metric
		raw int64
	}
	results := make([]parsed, 0, len(l.metrics))

	var errs []error
	for _, m := range l.metrics {
		raw, err := m.Decode(words[m.Addr:m.End()])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, parsed{m: m, raw: raw})
	}

	c.mu.Lock()
	for _, res := range results {
		res.m.raw = res.raw
		res.m.valid = true
	}
	c.mu.Unlock()

	return errors.Join(errs...)
}
