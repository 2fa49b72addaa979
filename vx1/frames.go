package vx1

import "github.com/brutella/can"

// Override is the last byte of odometer and clock frames
type Override byte

const (
	OverrideClear  Override = 0x00
	OverrideNormal Override = 0x55
	OverrideForce  Override = 0xAA
)

const (
	chargerActive byte = 0x01

	// The dashboard only keeps the pack icon blinking if these are present
	telltaleBlinkByte4 byte = 0x33
	telltaleBlinkByte6 byte = 0x32
)

// Frame is an outbound CAN frame with a 29-bit identifier
type Frame struct {
	ID   uint32
	Data [8]byte
}

// CANFrame packs f as an 8-byte extended frame for the bus
func (f Frame) CANFrame() can.Frame {
	return can.Frame{
		ID:     f.ID&can.MaskIDEff | can.MaskEff,
		Length: 8,
		Data:   f.Data,
	}
}

func chargerByte(charging bool) byte {
	if charging {
		return chargerActive
	}
	return 0x00
}

// OdometerFrame encodes text for the odometer. The dashboard expects the
// rightmost character first.
func OdometerFrame(text OdometerText, charging bool, override Override, sourceAddress uint8) Frame {
	f := Frame{ID: J1939ID(DefaultPriority, PGNOdometer, sourceAddress)}
	for i := 0; i < OdometerWidth; i++ {
		f.Data[i] = EncodeSegment(text[OdometerWidth-1-i])
	}
	f.Data[6] = chargerByte(charging)
	f.Data[7] = byte(override)
	return f
}

// ClearOdometerFrame blanks every segment
func ClearOdometerFrame(sourceAddress uint8) Frame {
	return Frame{ID: J1939ID(DefaultPriority, PGNOdometer, sourceAddress)}
}

// ClockFrame encodes text for the clock, rightmost character first. Bytes 4
// and 5 are unused.
func ClockFrame(text ClockText, charging bool, override Override, sourceAddress uint8) Frame {
	f := Frame{ID: J1939ID(DefaultPriority, PGNClock, sourceAddress)}
	for i := 0; i < ClockWidth; i++ {
		f.Data[i] = EncodeSegment(text[ClockWidth-1-i])
	}
	f.Data[6] = chargerByte(charging)
	f.Data[7] = byte(override)
	return f
}

// ClearClockFrame blanks the clock
func ClearClockFrame(sourceAddress uint8) Frame {
	return Frame{ID: J1939ID(DefaultPriority, PGNClock, sourceAddress)}
}

// TelltaleFrame packs four 2-bit icon fields into byte 0
func TelltaleFrame(t Telltales) Frame {
	f := Frame{ID: TelltaleFrameID}
	for i, s := range t {
		if s > TelltaleBlinking {
			s = TelltaleOff
		}
		f.Data[0] |= byte(s) << (2 * i)
	}
	if t[TelltalePack] == TelltaleBlinking {
		f.Data[4] = telltaleBlinkByte4
		f.Data[6] = telltaleBlinkByte6
	}
	return f
}

// DecodeTelltales is the inverse of TelltaleFrame for byte 0
func DecodeTelltales(data [8]byte) Telltales {
	var t Telltales
	for i := range t {
		t[i] = TelltaleState((data[0] >> (2 * i)) & 0x03)
	}
	return t
}
