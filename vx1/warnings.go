package vx1

import (
	"math"

	"vx1-service/params"
)

const (
	// Stored warning content is only re-rendered when the live value moved
	// by at least this much
	tempWarningStep   = 1.0 // °C
	udeltaWarningStep = 5.0 // mV
)

func faultTelltales() TelltaleRequest {
	var t TelltaleRequest
	t.Set(TelltalePack, TelltaleBlinking)
	t.Set(TelltaleWrench, TelltaleBlinking)
	return t
}

func temperatureTelltales() TelltaleRequest {
	var t TelltaleRequest
	t.Set(TelltalePack, TelltaleBlinking)
	return t
}

func voltageDeltaTelltales() TelltaleRequest {
	var t TelltaleRequest
	t.Set(TelltaleWrench, TelltaleOn)
	return t
}

// ReportError shows "<node> <code>" on the odometer and blinks the pack and
// wrench icons until ClearError is called.
func (e *Engine) ReportError(code ErrorCode, nodeID int) bool {
	if !e.Enabled() || e.params.GetInt(params.VX1ErrWarn) != 1 {
		return false
	}

	changed := !e.fault.active || e.fault.code != code || e.fault.nodeID != nodeID
	e.fault = faultState{active: true, code: code, nodeID: nodeID}
	e.claim(Claim{
		Owner:     OwnerFault,
		Displays:  DisplayOdometer,
		Odometer:  FormatError(nodeID, code),
		Telltales: faultTelltales(),
	})
	if changed {
		e.logger.Warn("Reporting error %d (%s) from node %d", code, ShortCode(code), nodeID)
		if e.onFault != nil {
			e.onFault(code, true)
		}
	}

	e.SendTelltales()
	return e.writeOdometer()
}

// ClearError gives the odometer and the fault icons back
func (e *Engine) ClearError() bool {
	if !e.fault.active {
		return true
	}
	code := e.fault.code
	e.fault = faultState{}
	e.release(OwnerFault)
	e.logger.Info("Error %d (%s) cleared", code, ShortCode(code))
	if e.onFault != nil {
		e.onFault(code, false)
	}

	if !e.Enabled() {
		return false
	}
	e.SendTelltales()
	return e.writeOdometer()
}

// ErrorTask polls the fault source once per WarningInterval
func (e *Engine) ErrorTask() {
	if !e.Enabled() {
		return
	}
	if e.params.GetInt(params.VX1ErrWarn) != 1 {
		if e.fault.active {
			e.ClearError()
		}
		return
	}

	code := e.faults.LastActiveFault()
	switch {
	case code != ErrorNone:
		nodeID := e.params.GetInt(params.ModAddr)
		if !e.fault.active || code != e.fault.code {
			e.ReportError(code, nodeID)
			return
		}
		e.SendTelltales()
		e.writeOdometer()
	case e.fault.active:
		e.ClearError()
	}
}

// ReportTemperatureWarning shows the temperature on the odometer and blinks
// the pack icon
func (e *Engine) ReportTemperatureWarning(temp float64) bool {
	if !e.Enabled() || e.params.GetInt(params.VX1TempWarn) != 1 {
		return false
	}
	return e.claimTemperature(temp)
}

func (e *Engine) claimTemperature(temp float64) bool {
	if !e.temp.active {
		e.logger.Warn("Temperature warning at %.1f°C", temp)
	}
	e.temp.active = true
	e.temp.value = temp
	e.claim(Claim{
		Owner:     OwnerTemperature,
		Displays:  DisplayOdometer,
		Odometer:  FormatTempWarning(temp),
		Telltales: temperatureTelltales(),
	})
	e.SendTelltales()
	return e.writeOdometer()
}

func (e *Engine) clearTemperature() {
	if !e.temp.active {
		return
	}
	e.temp.active = false
	e.release(OwnerTemperature)
	e.logger.Info("Temperature warning cleared")
	e.SendTelltales()
	e.writeOdometer()
}

// TemperatureTask raises the temperature warning at VX1TempWarnHiPoint and
// clears it below VX1TempWarnLoPoint. While VX1TempWarnTest is on the
// warning is forced with the live temperature.
func (e *Engine) TemperatureTask() {
	if !e.Enabled() {
		return
	}
	tempMax := e.params.GetFloat(params.TempMax)

	if e.params.GetInt(params.VX1TempWarnTest) == 1 {
		e.temp.test = true
		e.claimTemperature(tempMax)
		return
	}

	hi := e.params.GetFloat(params.VX1TempWarnHiPoint)
	lo := math.Min(e.params.GetFloat(params.VX1TempWarnLoPoint), hi)
	enabled := e.params.GetInt(params.VX1TempWarn) == 1

	if e.temp.test {
		e.temp.test = false
		if !enabled || tempMax < hi {
			e.clearTemperature()
		}
	}
	if !enabled {
		e.clearTemperature()
		e.flushTelltales()
		return
	}

	switch {
	case tempMax >= hi || (e.temp.active && tempMax >= lo):
		if !e.temp.active || math.Abs(tempMax-e.temp.value) >= tempWarningStep {
			e.claimTemperature(tempMax)
		} else {
			e.claimTemperature(e.temp.value)
		}
	default:
		e.clearTemperature()
	}
	e.flushTelltales()
}

// ReportVoltageDeltaWarning shows the cell voltage spread on the odometer and
// lights the wrench icon
func (e *Engine) ReportVoltageDeltaWarning(udelta float64) bool {
	if !e.Enabled() || e.params.GetInt(params.VX1UDeltaWarn) != 1 {
		return false
	}
	return e.claimVoltageDelta(udelta)
}

func (e *Engine) claimVoltageDelta(udelta float64) bool {
	if !e.udelta.active {
		e.logger.Warn("Voltage delta warning at %.0fmV", udelta)
	}
	e.udelta.active = true
	e.udelta.value = udelta
	e.claim(Claim{
		Owner:     OwnerVoltageDelta,
		Displays:  DisplayOdometer,
		Odometer:  FormatUDeltaWarning(udelta),
		Telltales: voltageDeltaTelltales(),
	})
	e.SendTelltales()
	return e.writeOdometer()
}

func (e *Engine) clearVoltageDelta() {
	if !e.udelta.active {
		return
	}
	e.udelta.active = false
	e.release(OwnerVoltageDelta)
	e.logger.Info("Voltage delta warning cleared")
	e.SendTelltales()
	e.writeOdometer()
}

// VoltageDeltaTask raises the voltage delta warning at VX1uDeltaWarnTresh
func (e *Engine) VoltageDeltaTask() {
	if !e.Enabled() {
		return
	}
	udelta := e.params.GetFloat(params.Udelta)

	if e.params.GetInt(params.VX1UDeltaWarnTest) == 1 {
		e.udelta.test = true
		e.claimVoltageDelta(udelta)
		return
	}

	threshold := e.params.GetFloat(params.VX1UDeltaWarnTresh)
	enabled := e.params.GetInt(params.VX1UDeltaWarn) == 1

	if e.udelta.test {
		e.udelta.test = false
		if !enabled || udelta < threshold {
			e.clearVoltageDelta()
		}
	}
	if !enabled {
		e.clearVoltageDelta()
		e.flushTelltales()
		return
	}

	if udelta >= threshold {
		if !e.udelta.active || math.Abs(udelta-e.udelta.value) >= udeltaWarningStep {
			e.claimVoltageDelta(udelta)
		} else {
			e.claimVoltageDelta(e.udelta.value)
		}
	} else {
		e.clearVoltageDelta()
	}
	e.flushTelltales()
}
