package modbusaccess

// MaxReadQuantity is the largest number of registers a single Modbus read request may return.
const MaxReadQuantity = 125

// Range represents a contiguous block of modbus registers that are read in one chunk.
// Start is relative to the base address of the component the block belongs to.
type Range struct {
	Start uint16
	Count uint16
}

// End returns the relative address one past the last register of the block.
func (r Range) End() int {
	return int(r.Start) + int(r.Count)
}

// Coalesce returns the fewest contiguous blocks covering the given registers. The registers must be sorted by
// address and must not overlap. A new block is started at every gap, as the device may reject reads that
// span unmapped registers.
func Coalesce(regs []Register) []Range {
	var ranges []Range
	for _, reg := range regs {
		n := len(ranges)
		if n > 0 && ranges[n-1].End() == int(reg.Addr) {
			ranges[n-1].Count += reg.Words()
			continue
		}
		ranges = append(ranges, Range{Start: reg.Addr, Count: reg.Words()})
	}
	return ranges
}

// Chunk splits a block into consecutive blocks of at most max registers.
func Chunk(r Range, max uint16) []Range {
	if max == 0 || r.Count <= max {
		return []Range{r}
	}

	chunks := make([]Range, 0, int(r.Count)/int(max)+1)
	for start := int(r.Start); start < r.End(); start += int(max) {
		count := r.End() - start
		if count > int(max) {
			count = int(max)
		}
		chunks = append(chunks, Range{Start: uint16(start), Count: uint16(count)})
	}
	return chunks
}
