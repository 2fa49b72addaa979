package vx1

import "vx1-service/params"

// Clock stats modes (VX1LCDClockStats)
const (
	ClockStatsOff    = 0
	ClockStatsAlways = 1
	ClockStatsIdle   = 2
)

var clockStatParams = map[ClockStat]params.ID{
	ClockStatSOC:         params.SOC,
	ClockStatUavg:        params.Uavg,
	ClockStatUdelta:      params.Udelta,
	ClockStatTempMax:     params.TempMax,
	ClockStatPower:       params.Power,
	ClockStatIdcAvg:      params.IdcAvg,
	ClockStatKWhPer100km: params.VX1KWhPer100km,
}

// ClockStatText renders the configured stat for the clock
func (e *Engine) ClockStatText() ClockText {
	stat := ClockStat(e.params.GetInt(params.VX1LCDClockStatVal))
	id, ok := clockStatParams[stat]
	if !ok {
		return NewClockText("----")
	}
	return FormatClockStat(stat, e.params.GetFloat(id))
}

func (e *Engine) clockStatsWanted() bool {
	switch e.params.GetInt(params.VX1LCDClockStats) {
	case ClockStatsAlways:
		return true
	case ClockStatsIdle:
		return e.params.GetInt(params.OpMode) == params.OpModeIdle
	}
	return false
}

// ClockTask keeps the selected stat on the clock, or clears it once when
// stats are turned off.
func (e *Engine) ClockTask() {
	if !e.Enabled() || !e.IsMaster() {
		return
	}
	if e.clockStatsWanted() {
		e.claim(Claim{Owner: OwnerStats, Displays: DisplayClock, Clock: e.ClockStatText()})
	} else {
		e.release(OwnerStats)
	}
	e.writeClock()
}
