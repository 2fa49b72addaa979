package vx1

import "github.com/brutella/can"

const (
	DefaultPriority = 3

	PGNOdometer  uint32 = 0x00FEED
	PGNClock     uint32 = 0x00FEEC
	PGNTelltale  uint32 = 0x00FECA
	PGNBMSStatus uint32 = 0x00FEF2
	PGNBMSCells  uint32 = 0x00FEF3
	PGNBMSFaults uint32 = 0x00FEF4
	PGNVehicle   uint32 = 0x00FEF1

	// TelltaleFrameID is fixed by the dashboard, it is not built from the
	// default priority
	TelltaleFrameID uint32 = 0x18FECA4C

	DefaultSourceAddress uint8 = 0xF9
	BMSEmulationAddress  uint8 = 0x40
	VehicleSourceAddress uint8 = 0x05

	pgnMask = 0x3FFFF
)

// J1939ID builds a 29-bit identifier from priority, PGN and source address
func J1939ID(priority uint8, pgn uint32, sourceAddress uint8) uint32 {
	return uint32(priority&0x07)<<26 | (pgn&pgnMask)<<8 | uint32(sourceAddress)
}

// ParseJ1939ID splits a 29-bit identifier into its fields. Frame flag bits
// above bit 28 are ignored.
func ParseJ1939ID(id uint32) (priority uint8, pgn uint32, sourceAddress uint8) {
	id &= can.MaskIDEff
	return uint8(id>>26) & 0x07, (id >> 8) & pgnMask, uint8(id)
}
