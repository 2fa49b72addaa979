package vx1

import "testing"

func TestEncodeSegment_Digits(t *testing.T) {
	expected := []byte{0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F}
	for i, want := range expected {
		ch := byte('0' + i)
		if got := EncodeSegment(ch); got != want {
			t.Errorf("EncodeSegment(%q): expected 0x%02X, got 0x%02X", ch, want, got)
		}
	}
}

func TestEncodeSegment_Collisions(t *testing.T) {
	pairs := [][2]byte{{'0', 'O'}, {'U', 'V'}, {'H', 'X'}, {'2', 'Z'}, {'5', 'S'}, {'1', 'I'}}
	for _, p := range pairs {
		if EncodeSegment(p[0]) != EncodeSegment(p[1]) {
			t.Errorf("expected %q and %q to share a mask", p[0], p[1])
		}
	}
}

func TestEncodeSegment_Symbols(t *testing.T) {
	tests := []struct {
		ch       byte
		expected byte
	}{
		{'-', 0x40},
		{'_', 0x08},
		{'=', 0x48},
		{' ', 0x00},
		{'.', 0x00},
	}
	for _, tt := range tests {
		if got := EncodeSegment(tt.ch); got != tt.expected {
			t.Errorf("EncodeSegment(%q): expected 0x%02X, got 0x%02X", tt.ch, tt.expected, got)
		}
	}
}

func TestEncodeSegment_Total(t *testing.T) {
	unmapped := map[byte]bool{'K': true, 'k': true, 'm': true, 'v': true, 'w': true, 'x': true, 'z': true, '#': true}
	for i := 0; i < 256; i++ {
		ch := byte(i)
		got := EncodeSegment(ch)
		if got&0x80 != 0 {
			t.Errorf("EncodeSegment(0x%02X) set the decimal point bit", ch)
		}
		if (ch >= 128 || unmapped[ch]) && got != SegmentBlank {
			t.Errorf("EncodeSegment(0x%02X): expected blank, got 0x%02X", ch, got)
		}
		if EncodeSegment(ch) != got {
			t.Errorf("EncodeSegment(0x%02X) is not deterministic", ch)
		}
	}
}
