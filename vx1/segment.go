package vx1

// Segment bits: A=0x01 B=0x02 C=0x04 D=0x08 E=0x10 F=0x20 G=0x40.
// The dashboard has no decimal point, so bit 7 is never set.
const SegmentBlank byte = 0x00

// segmentTable maps ASCII to segment masks. Several characters share a mask
// because the display cannot tell them apart (0/O, U/V, H/X, 2/Z, 5/S, 9/g).
var segmentTable = [128]byte{
	'0': 0x3F, '1': 0x06, '2': 0x5B, '3': 0x4F, '4': 0x66,
	'5': 0x6D, '6': 0x7D, '7': 0x07, '8': 0x7F, '9': 0x6F,

	'A': 0x77, 'B': 0x7C, 'C': 0x39, 'D': 0x5E, 'E': 0x79,
	'F': 0x71, 'G': 0x3D, 'H': 0x76, 'I': 0x06, 'J': 0x1E,
	'L': 0x38, 'M': 0x37, 'N': 0x54, 'O': 0x3F, 'P': 0x73,
	'Q': 0x67, 'R': 0x50, 'S': 0x6D, 'T': 0x78, 'U': 0x3E,
	'V': 0x3E, 'W': 0x7E, 'X': 0x76, 'Y': 0x6E, 'Z': 0x5B,

	'a': 0x5F, 'b': 0x7C, 'c': 0x58, 'd': 0x5E, 'e': 0x7B,
	'f': 0x71, 'g': 0x6F, 'h': 0x74, 'i': 0x04, 'j': 0x0E,
	'l': 0x30, 'n': 0x54, 'o': 0x5C, 'q': 0x67, 'r': 0x50,
	's': 0x6D, 't': 0x78, 'u': 0x1C, 'y': 0x6E,

	'-': 0x40,
	'_': 0x08,
	'=': 0x48,
}

// EncodeSegment converts a character to its 7-segment mask. Unknown
// characters, including space and '.', are blank.
func EncodeSegment(ch byte) byte {
	if ch >= byte(len(segmentTable)) {
		return SegmentBlank
	}
	return segmentTable[ch]
}
