package vx1

import (
	"fmt"
	"math"
)

const (
	OdometerWidth = 6
	ClockWidth    = 4
)

// OdometerText is the content of the 6-character odometer line, left to right
type OdometerText [OdometerWidth]byte

// ClockText is the content of the 4-character clock, left to right
type ClockText [ClockWidth]byte

var (
	BlankOdometer = NewOdometerText("")
	BlankClock    = NewClockText("")
)

// NewOdometerText copies up to six characters and pads with spaces
func NewOdometerText(s string) OdometerText {
	var t OdometerText
	for i := range t {
		t[i] = ' '
		if i < len(s) {
			t[i] = s[i]
		}
	}
	return t
}

func (t OdometerText) String() string {
	return string(t[:])
}

// NewClockText copies up to four characters and pads with spaces
func NewClockText(s string) ClockText {
	var t ClockText
	for i := range t {
		t[i] = ' '
		if i < len(s) {
			t[i] = s[i]
		}
	}
	return t
}

func (t ClockText) String() string {
	return string(t[:])
}

// clampInt truncates v toward zero and saturates it to [lo, hi]
func clampInt(v float64, lo, hi int) int {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}

// FormatSOC renders "SOC 72", "SOC100", or "SOC---" when soc is outside 0..100
func FormatSOC(soc float64) OdometerText {
	if math.IsNaN(soc) || soc < 0 || soc > 100 {
		return NewOdometerText("SOC---")
	}
	v := int(soc)
	if v < 100 {
		return NewOdometerText(fmt.Sprintf("SOC %2d", v))
	}
	return NewOdometerText(fmt.Sprintf("SOC%3d", v))
}

// FormatSOH renders "SOH 95" or "SOH100"; values above 999 are capped
func FormatSOH(soh float64) OdometerText {
	if math.IsNaN(soh) || soh < 0 {
		return NewOdometerText("SOH---")
	}
	v := clampInt(soh, 0, 999)
	if v < 100 {
		return NewOdometerText(fmt.Sprintf("SOH %2d", v))
	}
	return NewOdometerText(fmt.Sprintf("SOH%3d", v))
}

// FormatPackVoltage renders the pack voltage in mV as "U" followed by its
// first five digits, e.g. 138864.7 -> "U13886"
func FormatPackVoltage(utotal float64) OdometerText {
	if math.IsNaN(utotal) {
		return NewOdometerText("U-----")
	}
	return NewOdometerText(fmt.Sprintf("U%d", clampInt(utotal, 0, math.MaxInt32)))
}

// FormatVoltageDelta renders the cell voltage spread in mV left aligned, "d21   "
func FormatVoltageDelta(udelta float64) OdometerText {
	if math.IsNaN(udelta) {
		return NewOdometerText("d-----")
	}
	return NewOdometerText(fmt.Sprintf("d%-5d", clampInt(udelta, 0, 99999)))
}

func formatTemp(prefix string, temp float64) OdometerText {
	if math.IsNaN(temp) {
		return NewOdometerText(prefix + "----")
	}
	v := clampInt(temp, -999, 9999)
	if v >= 0 {
		return NewOdometerText(fmt.Sprintf("%s%-4d", prefix, v))
	}
	return NewOdometerText(fmt.Sprintf("%s%4d", prefix, v))
}

// FormatTempMin renders "Lt21  " or "Lt  -5"
func FormatTempMin(temp float64) OdometerText {
	return formatTemp("Lt", temp)
}

// FormatTempMax renders "Ht35  " or "Ht  -5"
func FormatTempMax(temp float64) OdometerText {
	return formatTemp("Ht", temp)
}

// FormatTempWarning renders the over-temperature warning, "t  60 "
func FormatTempWarning(temp float64) OdometerText {
	if math.IsNaN(temp) {
		return NewOdometerText("t ---")
	}
	return NewOdometerText(fmt.Sprintf("t %3d", clampInt(temp, -99, 999)))
}

// FormatUDeltaWarning renders the cell imbalance warning, "u 160 "
func FormatUDeltaWarning(udelta float64) OdometerText {
	if math.IsNaN(udelta) {
		return NewOdometerText("u ---")
	}
	return NewOdometerText(fmt.Sprintf("u %3d", clampInt(udelta, 0, 999)))
}

// FormatError renders the node id and the fault short code, "10 COV"
// or "10CPOL" for four letter codes
func FormatError(nodeID int, code ErrorCode) OdometerText {
	if nodeID < 0 {
		nodeID = 0
	}
	if nodeID > 99 {
		nodeID = 99
	}
	short := ShortCode(code)
	if len(short) > 3 {
		return NewOdometerText(fmt.Sprintf("%2d%s", nodeID, short))
	}
	return NewOdometerText(fmt.Sprintf("%2d %s", nodeID, short))
}

// ClockStat selects the value shown on the clock
type ClockStat int

const (
	ClockStatSOC ClockStat = iota
	ClockStatUavg
	ClockStatUdelta
	ClockStatTempMax
	ClockStatPower
	ClockStatIdcAvg
	ClockStatKWhPer100km
)

// FormatClockStat renders a stat into the 4-character clock. The display has
// no decimal point, so power is shown in kW and consumption in 0.1 kWh/100km.
func FormatClockStat(stat ClockStat, value float64) ClockText {
	if math.IsNaN(value) {
		return NewClockText("----")
	}

	switch stat {
	case ClockStatSOC:
		if value < 0 || value > 100 {
			return NewClockText(" ---")
		}
		return NewClockText(fmt.Sprintf("%4d", int(value)))
	case ClockStatUavg:
		return NewClockText(fmt.Sprintf("%4d", clampInt(value, 0, 9999)))
	case ClockStatUdelta:
		return NewClockText(fmt.Sprintf("d%3d", clampInt(value, 0, 999)))
	case ClockStatTempMax:
		return NewClockText(fmt.Sprintf("t%3d", clampInt(value, -99, 999)))
	case ClockStatPower:
		return NewClockText(fmt.Sprintf("P%3d", clampInt(value/1000, -99, 999)))
	case ClockStatIdcAvg:
		return NewClockText(fmt.Sprintf("A%3d", clampInt(value, -99, 999)))
	case ClockStatKWhPer100km:
		return NewClockText(fmt.Sprintf("E%3d", clampInt(math.Round(value*10), 0, 999)))
	}

	return NewClockText("----")
}
