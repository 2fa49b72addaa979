package vx1

import "math"

// WarningLevel is a 2-bit status field of the BMS fault frame
type WarningLevel uint8

const (
	LevelNormal       WarningLevel = 0x00
	LevelWarning1     WarningLevel = 0x01
	LevelWarning2     WarningLevel = 0x02
	LevelNotAvailable WarningLevel = 0x03
)

// CellVoltageFactor converts cell mV to the raw unit the dashboard shows
// correctly. It was fitted against a third-party display and still needs
// validation on hardware.
const CellVoltageFactor = 0.667

const notAvailable8 = 0xFF

// BMSStatus is the content of the emulated BMS status frame (PGN 0xFEF2)
type BMSStatus struct {
	SOC         float64 // %
	TempMax     float64 // °C
	TempMin     float64 // °C
	PackVoltage float64 // V
	FanDuty     float64 // %
	Run         bool
	Idle        bool
	Error       bool
	Charging    bool
	Modules     int
	Counter     uint8
}

// BMSCells is the content of the cell voltage extremes frame (PGN 0xFEF3)
type BMSCells struct {
	UMax  float64 // mV
	UMin  float64 // mV
	UAvg  float64 // mV
	Cells int
}

// BMSWarnings is the content of the warning frame (PGN 0xFEF4)
type BMSWarnings struct {
	CellOvervoltage      WarningLevel
	CellUndervoltage     WarningLevel
	OverTemperature      WarningLevel
	UnderTemperature     WarningLevel
	Imbalance            WarningLevel
	DischargeOvercurrent WarningLevel
	ChargeOvercurrent    WarningLevel
	LowSOC               WarningLevel
	Fault                WarningLevel
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// BMSStatusFrame encodes PGN 0xFEF2:
//
//	byte 0     SOC, 1 %/bit, 0xFF not available
//	byte 1     max temperature, 1 °C/bit, offset -40
//	byte 2     min temperature, 1 °C/bit, offset -40
//	bytes 3-4  pack voltage, 0.1 V/bit
//	byte 5     fan duty, 1 %/bit
//	byte 6     bit 0 run, bit 1 idle, bit 2 error, bit 3 charging,
//	           bits 4-5 reserved (11), bits 6-7 alive counter
//	byte 7     number of modules
func BMSStatusFrame(s BMSStatus) Frame {
	f := Frame{ID: J1939ID(DefaultPriority, PGNBMSStatus, BMSEmulationAddress)}

	if math.IsNaN(s.SOC) || s.SOC < 0 || s.SOC > 100 {
		setBits(&f.Data, 0, 8, notAvailable8)
	} else {
		setBits(&f.Data, 0, 8, scale(s.SOC, 1, 0, 100))
	}
	setBits(&f.Data, 8, 8, scale(s.TempMax, 1, -40, 250))
	setBits(&f.Data, 16, 8, scale(s.TempMin, 1, -40, 250))
	setBits(&f.Data, 24, 16, scale(s.PackVoltage, 0.1, 0, 0xFAFF))
	setBits(&f.Data, 40, 8, scale(s.FanDuty, 1, 0, 100))
	setBits(&f.Data, 48, 1, boolBit(s.Run))
	setBits(&f.Data, 49, 1, boolBit(s.Idle))
	setBits(&f.Data, 50, 1, boolBit(s.Error))
	setBits(&f.Data, 51, 1, boolBit(s.Charging))
	setBits(&f.Data, 52, 2, 0x03)
	setBits(&f.Data, 54, 2, uint64(s.Counter&0x03))
	setBits(&f.Data, 56, 8, scale(float64(s.Modules), 1, 0, 250))

	return f
}

// BMSCellsFrame encodes PGN 0xFEF3:
//
//	bytes 0-1  max cell voltage, bytes 2-3 min, bytes 4-5 average,
//	           each mV * CellVoltageFactor
//	byte 6     number of cells
//	byte 7     not available
func BMSCellsFrame(c BMSCells) Frame {
	f := Frame{ID: J1939ID(DefaultPriority, PGNBMSCells, BMSEmulationAddress)}

	setBits(&f.Data, 0, 16, scale(c.UMax*CellVoltageFactor, 1, 0, 0xFAFF))
	setBits(&f.Data, 16, 16, scale(c.UMin*CellVoltageFactor, 1, 0, 0xFAFF))
	setBits(&f.Data, 32, 16, scale(c.UAvg*CellVoltageFactor, 1, 0, 0xFAFF))
	setBits(&f.Data, 48, 8, scale(float64(c.Cells), 1, 0, 250))
	setBits(&f.Data, 56, 8, notAvailable8)

	return f
}

// BMSWarningsFrame encodes PGN 0xFEF4 as 2-bit pairs:
//
//	byte 0  cell OV (1:0), cell UV (3:2), over-temp (5:4), under-temp (7:6)
//	byte 1  imbalance (1:0), discharge OC (3:2), charge OC (5:4), low SOC (7:6)
//	byte 2  fault (1:0), remaining pairs not available
//	3-7     not available
func BMSWarningsFrame(w BMSWarnings) Frame {
	f := Frame{ID: J1939ID(DefaultPriority, PGNBMSFaults, BMSEmulationAddress)}
	for i := range f.Data {
		f.Data[i] = notAvailable8
	}

	pairs := []WarningLevel{
		w.CellOvervoltage, w.CellUndervoltage, w.OverTemperature, w.UnderTemperature,
		w.Imbalance, w.DischargeOvercurrent, w.ChargeOvercurrent, w.LowSOC,
		w.Fault,
	}
	for i, level := range pairs {
		setBits(&f.Data, 2*i, 2, uint64(level&0x03))
	}

	return f
}

// LevelAbove grades v against two rising thresholds
func LevelAbove(v, warn1, warn2 float64) WarningLevel {
	switch {
	case math.IsNaN(v):
		return LevelNotAvailable
	case v >= warn2:
		return LevelWarning2
	case v >= warn1:
		return LevelWarning1
	}
	return LevelNormal
}

// LevelBelow grades v against two falling thresholds
func LevelBelow(v, warn1, warn2 float64) WarningLevel {
	switch {
	case math.IsNaN(v):
		return LevelNotAvailable
	case v <= warn2:
		return LevelWarning2
	case v <= warn1:
		return LevelWarning1
	}
	return LevelNormal
}
