package vx1

import "vx1-service/params"

// Limits for the emulated warning levels
const (
	cellVoltageMargin = 50.0 // mV inside ucellmax/ucellmin
	overTempMargin    = 5.0  // °C below VX1TempWarnHiPoint
	underTempWarning1 = 0.0
	underTempWarning2 = -10.0
	currentWarning1   = 0.9 // fraction of the current limit
	lowSOCWarning1    = 10.0
	lowSOCWarning2    = 5.0
)

func (e *Engine) temperatures() (tempMin, tempMax float64) {
	if e.params.GetInt(params.TempSns) == 0 {
		mock := e.params.GetFloat(params.VX1MockTemp)
		return mock, mock
	}
	return e.params.GetFloat(params.TempMin), e.params.GetFloat(params.TempMax)
}

// BMSStatus collects the content of the emulated status frame
func (e *Engine) BMSStatus() BMSStatus {
	tempMin, tempMax := e.temperatures()
	opMode := e.params.GetInt(params.OpMode)
	return BMSStatus{
		SOC:         e.params.GetFloat(params.SOC),
		TempMax:     tempMax,
		TempMin:     tempMin,
		PackVoltage: e.params.GetFloat(params.Utotal) / 1000,
		FanDuty:     e.params.GetFloat(params.VX1FanDuty),
		Run:         opMode == params.OpModeRun,
		Idle:        opMode == params.OpModeIdle,
		Error:       opMode == params.OpModeError,
		Charging:    e.charging(),
		Modules:     e.params.GetInt(params.VX1ModuleNumber),
		Counter:     e.emuCount,
	}
}

// BMSCells collects the content of the emulated cell voltage frame
func (e *Engine) BMSCells() BMSCells {
	return BMSCells{
		UMax:  e.params.GetFloat(params.Umax),
		UMin:  e.params.GetFloat(params.Umin),
		UAvg:  e.params.GetFloat(params.Uavg),
		Cells: e.params.GetInt(params.TotalCells),
	}
}

func currentLevel(current, limit float64) WarningLevel {
	if limit <= 0 {
		return LevelNormal
	}
	return LevelAbove(current, limit*currentWarning1, limit)
}

// BMSWarnings grades the live values against the configured limits
func (e *Engine) BMSWarnings() BMSWarnings {
	p := e.params
	tempMin, tempMax := e.temperatures()
	uCellMax := p.GetFloat(params.UCellMax)
	uCellMin := p.GetFloat(params.UCellMin)
	hiPoint := p.GetFloat(params.VX1TempWarnHiPoint)
	threshold := p.GetFloat(params.VX1UDeltaWarnTresh)
	idc := p.GetFloat(params.Idc)
	dischargeLimit := p.GetFloat(params.DischargeLim)
	if dischargeLimit <= 0 {
		dischargeLimit = p.GetFloat(params.DischargeMax)
	}

	fault := LevelNormal
	if e.faults.LastActiveFault() != ErrorNone {
		fault = LevelWarning2
	}

	return BMSWarnings{
		CellOvervoltage:      LevelAbove(p.GetFloat(params.Umax), uCellMax-cellVoltageMargin, uCellMax),
		CellUndervoltage:     LevelBelow(p.GetFloat(params.Umin), uCellMin+cellVoltageMargin, uCellMin),
		OverTemperature:      LevelAbove(tempMax, hiPoint-overTempMargin, hiPoint),
		UnderTemperature:     LevelBelow(tempMin, underTempWarning1, underTempWarning2),
		Imbalance:            LevelAbove(p.GetFloat(params.Udelta), threshold, 2*threshold),
		DischargeOvercurrent: currentLevel(idc, dischargeLimit),
		ChargeOvercurrent:    currentLevel(-idc, p.GetFloat(params.ChargeLim)),
		LowSOC:               LevelBelow(p.GetFloat(params.SOC), lowSOCWarning1, lowSOCWarning2),
		Fault:                fault,
	}
}

// SendBMSEmulation sends one round of the three emulated BMS frames
func (e *Engine) SendBMSEmulation() bool {
	ok := e.send(BMSStatusFrame(e.BMSStatus()))
	ok = e.send(BMSCellsFrame(e.BMSCells())) && ok
	ok = e.send(BMSWarningsFrame(e.BMSWarnings())) && ok
	e.emuCount = (e.emuCount + 1) & 0x03
	return ok
}

// EmulationTask broadcasts the emulated BMS frames from the master node
func (e *Engine) EmulationTask() {
	if !e.Enabled() || e.params.GetInt(params.VX1EmulateBMSMsg) != 1 || !e.IsMaster() {
		return
	}
	e.SendBMSEmulation()
}
