package vx1

import "testing"

func TestSetBits(t *testing.T) {
	var data [8]byte
	for i := range data {
		data[i] = 0xFF
	}

	setBits(&data, 4, 8, 0x5A)
	if data[0] != 0xAF || data[1] != 0xF5 {
		t.Errorf("field at bit 4 = % X, want AF F5", data[:2])
	}
	if got := getBits(data, 4, 8); got != 0x5A {
		t.Errorf("getBits = %#x, want 0x5a", got)
	}

	// wider than the field saturates
	setBits(&data, 48, 2, 7)
	if got := getBits(data, 48, 2); got != 3 {
		t.Errorf("saturated field = %d, want 3", got)
	}

	// out of range requests leave the payload alone
	before := data
	setBits(&data, 60, 8, 1)
	if data != before {
		t.Errorf("out of range write changed payload: % X", data[:])
	}
	if got := getBits(data, -1, 4); got != 0 {
		t.Errorf("out of range read = %d, want 0", got)
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		v, factor, offset float64
		max               uint64
		want              uint64
	}{
		{52.3, 0.1, 0, 0xFFFF, 523},
		{-5, 1, 0, 0xFF, 0},
		{300, 1, 0, 0xFF, 0xFF},
		{25, 1, -40, 0xFF, 65},
	}

	for _, tt := range tests {
		if got := scale(tt.v, tt.factor, tt.offset, tt.max); got != tt.want {
			t.Errorf("scale(%v, %v, %v, %d) = %d, want %d", tt.v, tt.factor, tt.offset, tt.max, got, tt.want)
		}
	}
}
