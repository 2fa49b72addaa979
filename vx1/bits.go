package vx1

import "go.einride.tech/can"

// setBits writes value into a little-endian bit field of an 8-byte payload.
// Values wider than the field are saturated, not truncated.
func setBits(data *[8]byte, startBit, bitLen int, value uint64) {
	if bitLen <= 0 || bitLen > 64 || startBit < 0 || startBit+bitLen > 64 {
		return
	}
	mask := ^uint64(0)
	if bitLen < 64 {
		mask = uint64(1)<<bitLen - 1
	}
	if value > mask {
		value = mask
	}
	d := can.Data(*data)
	d.SetUnsignedBitsLittleEndian(uint8(startBit), uint8(bitLen), value)
	*data = d
}

// getBits reads a little-endian bit field of an 8-byte payload
func getBits(data [8]byte, startBit, bitLen int) uint64 {
	if bitLen <= 0 || bitLen > 64 || startBit < 0 || startBit+bitLen > 64 {
		return 0
	}
	d := can.Data(data)
	return d.UnsignedBitsLittleEndian(uint8(startBit), uint8(bitLen))
}

// scale converts a physical value to a raw unsigned field value using
// raw = (v - offset) / factor, rounded and saturated to [0, max]
func scale(v, factor, offset float64, max uint64) uint64 {
	raw := (v - offset) / factor
	if raw != raw || raw <= 0 {
		return 0
	}
	if raw >= float64(max) {
		return max
	}
	return uint64(raw + 0.5)
}
