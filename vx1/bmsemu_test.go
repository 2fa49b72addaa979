package vx1

import (
	"math"
	"testing"
)

func TestBMSStatusFrame(t *testing.T) {
	f := BMSStatusFrame(BMSStatus{
		SOC:         72,
		TempMax:     35,
		TempMin:     -5,
		PackVoltage: 52.3,
		FanDuty:     50,
		Run:         true,
		Charging:    true,
		Modules:     2,
		Counter:     3,
	})

	if f.ID != J1939ID(DefaultPriority, PGNBMSStatus, BMSEmulationAddress) {
		t.Errorf("unexpected id 0x%08X", f.ID)
	}
	expected := [8]byte{72, 75, 35, 0x0B, 0x02, 50, 0xF9, 2}
	if f.Data != expected {
		t.Errorf("expected % X, got % X", expected, f.Data)
	}
}

func TestBMSStatusFrame_SOCNotAvailable(t *testing.T) {
	for _, soc := range []float64{-1, 101, math.NaN()} {
		f := BMSStatusFrame(BMSStatus{SOC: soc})
		if f.Data[0] != 0xFF {
			t.Errorf("SOC %v: expected 0xFF, got 0x%02X", soc, f.Data[0])
		}
	}
}

func TestBMSStatusFrame_CounterWraps(t *testing.T) {
	for counter := uint8(0); counter < 8; counter++ {
		f := BMSStatusFrame(BMSStatus{Counter: counter})
		if got := f.Data[6] >> 6; got != counter&0x03 {
			t.Errorf("counter %d: expected %d, got %d", counter, counter&0x03, got)
		}
	}
}

func TestBMSCellsFrame(t *testing.T) {
	f := BMSCellsFrame(BMSCells{UMax: 4000, UMin: 3000, UAvg: 3600, Cells: 14})
	if f.ID != J1939ID(DefaultPriority, PGNBMSCells, BMSEmulationAddress) {
		t.Errorf("unexpected id 0x%08X", f.ID)
	}
	checks := []struct {
		name     string
		got      uint64
		expected uint64
	}{
		{"umax", getBits(f.Data, 0, 16), 2668},
		{"umin", getBits(f.Data, 16, 16), 2001},
		{"uavg", getBits(f.Data, 32, 16), 2401},
		{"cells", getBits(f.Data, 48, 8), 14},
		{"reserved", getBits(f.Data, 56, 8), 0xFF},
	}
	for _, c := range checks {
		if c.got != c.expected {
			t.Errorf("%s: expected %d, got %d", c.name, c.expected, c.got)
		}
	}
}

func TestBMSWarningsFrame(t *testing.T) {
	f := BMSWarningsFrame(BMSWarnings{
		CellOvervoltage:  LevelWarning1,
		UnderTemperature: LevelWarning2,
		Imbalance:        LevelWarning1,
		LowSOC:           LevelNotAvailable,
		Fault:            LevelWarning2,
	})
	if f.ID != J1939ID(DefaultPriority, PGNBMSFaults, BMSEmulationAddress) {
		t.Errorf("unexpected id 0x%08X", f.ID)
	}
	expected := [8]byte{0x81, 0xC1, 0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if f.Data != expected {
		t.Errorf("expected % X, got % X", expected, f.Data)
	}
}

func TestWarningLevels(t *testing.T) {
	tests := []struct {
		name     string
		got      WarningLevel
		expected WarningLevel
	}{
		{"above normal", LevelAbove(10, 20, 30), LevelNormal},
		{"above warning1", LevelAbove(20, 20, 30), LevelWarning1},
		{"above warning2", LevelAbove(31, 20, 30), LevelWarning2},
		{"above nan", LevelAbove(math.NaN(), 20, 30), LevelNotAvailable},
		{"below normal", LevelBelow(50, 10, 5), LevelNormal},
		{"below warning1", LevelBelow(8, 10, 5), LevelWarning1},
		{"below warning2", LevelBelow(5, 10, 5), LevelWarning2},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.expected, tt.got)
		}
	}
}
