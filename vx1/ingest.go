package vx1

import (
	"time"

	"github.com/brutella/can"

	"vx1-service/params"
)

const (
	speedResolution   = 1.0 / 256 // km/h per bit
	voltageResolution = 1.0       // V per bit
	currentResolution = 0.488     // A per bit

	// VehicleFilterMask matches PGN and source address at any priority
	VehicleFilterMask uint32 = 0x03FFFFFF

	minVehicleFrameLength = 6

	minMovingSpeed     = 1.0   // km/h
	minRatioDistance   = 0.001 // km
	defaultSampleDelta = 100 * time.Millisecond
	recomputeInterval  = 1 * time.Second
	recomputeSamples   = 10
)

// VehicleFilterID is the inbound filter for the vehicle data frame, used
// together with VehicleFilterMask
var VehicleFilterID = J1939ID(0, PGNVehicle, VehicleSourceAddress)

// VehicleSample is one decoded vehicle data frame
type VehicleSample struct {
	Speed   float64 // km/h
	Voltage float64 // V
	Current float64 // A
}

// Power returns the instantaneous power in W
func (s VehicleSample) Power() float64 {
	return s.Voltage * s.Current
}

// IsVehicleFrame reports whether id carries vehicle data from the controller
func IsVehicleFrame(id uint32) bool {
	_, pgn, sa := ParseJ1939ID(id)
	return pgn == PGNVehicle && sa == VehicleSourceAddress
}

// DecodeVehicleFrame extracts speed (bytes 1-2), voltage (byte 4) and
// current (byte 5)
func DecodeVehicleFrame(data []byte) (VehicleSample, bool) {
	if len(data) < minVehicleFrameLength {
		return VehicleSample{}, false
	}
	speedRaw := uint16(data[1]) | uint16(data[2])<<8
	return VehicleSample{
		Speed:   float64(speedRaw) * speedResolution,
		Voltage: float64(data[4]) * voltageResolution,
		Current: float64(data[5]) * currentResolution,
	}, true
}

// VehicleTelemetry integrates vehicle samples into energy and distance
type VehicleTelemetry struct {
	Last       VehicleSample
	LastUpdate time.Duration
	hasSample  bool

	EnergyWh   float64
	DistanceKm float64
	// KWhPer100km is the last computed consumption, 0 until enough
	// distance was covered
	KWhPer100km float64

	samples       int
	lastRecompute time.Duration
}

// Integrate adds dt of driving at s. Regen, idle and standstill are
// skipped.
func (v *VehicleTelemetry) Integrate(s VehicleSample, dt time.Duration) {
	power := s.Power()
	if power <= 0 || s.Speed <= minMovingSpeed {
		return
	}
	hours := dt.Hours()
	v.EnergyWh += power * hours
	v.DistanceKm += s.Speed * hours
}

// Accumulate records a sample received at uptime now
func (v *VehicleTelemetry) Accumulate(s VehicleSample, now time.Duration) {
	if v.hasSample {
		dt := now - v.LastUpdate
		if dt <= 0 {
			dt = defaultSampleDelta
		}
		v.Integrate(s, dt)
	} else {
		v.lastRecompute = now
	}
	v.Last = s
	v.LastUpdate = now
	v.hasSample = true
	v.samples++
}

// RecomputeDue reports whether a second or ten samples passed since the
// last recompute
func (v *VehicleTelemetry) RecomputeDue(now time.Duration) bool {
	return v.samples >= recomputeSamples || now-v.lastRecompute >= recomputeInterval
}

// Recompute derives the consumption ratio and resets the accumulators once
// resetKm was driven. It reports whether the ratio was updated.
func (v *VehicleTelemetry) Recompute(now time.Duration, resetKm float64) bool {
	v.samples = 0
	v.lastRecompute = now

	updated := false
	if v.DistanceKm >= minRatioDistance {
		v.KWhPer100km = v.EnergyWh / v.DistanceKm * 100 / 1000
		updated = true
	}
	if v.DistanceKm > resetKm {
		v.EnergyWh = 0
		v.DistanceKm = 0
	}
	return updated
}

// Telemetry returns a copy of the vehicle telemetry
func (e *Engine) Telemetry() VehicleTelemetry {
	return e.vehicle
}

// HandleCANFrame consumes a frame as received from the bus. Only extended
// frames can carry vehicle data.
func (e *Engine) HandleCANFrame(frame can.Frame) bool {
	if frame.ID&can.MaskEff == 0 {
		return false
	}
	n := int(frame.Length)
	if n > len(frame.Data) {
		n = len(frame.Data)
	}
	return e.HandleFrame(frame.ID&can.MaskIDEff, frame.Data[:n])
}

// HandleFrame consumes an inbound frame. It returns false for frames that
// are not vehicle data or are too short.
func (e *Engine) HandleFrame(id uint32, data []byte) bool {
	if !IsVehicleFrame(id) {
		return false
	}
	s, ok := DecodeVehicleFrame(data)
	if !ok {
		e.logger.Debug("Ignoring short vehicle frame %08X (%d bytes)", id, len(data))
		return false
	}

	now := e.clock.Uptime()
	e.vehicle.Accumulate(s, now)
	e.params.SetFloat(params.VX1Speed, s.Speed)
	e.params.SetFloat(params.VX1BusVoltage, s.Voltage)
	e.params.SetFloat(params.VX1BusCurrent, s.Current)

	if e.vehicle.RecomputeDue(now) {
		resetKm := e.params.GetFloat(params.VX1KWhResetDist)
		// publish before a possible reset so the debug values show the window
		e.params.SetFloat(params.VX1DebugParam1, e.vehicle.EnergyWh)
		e.params.SetFloat(params.VX1DebugParam2, e.vehicle.DistanceKm)
		if e.vehicle.Recompute(now, resetKm) {
			e.params.SetFloat(params.VX1KWhPer100km, e.vehicle.KWhPer100km)
		}
	}
	return true
}
