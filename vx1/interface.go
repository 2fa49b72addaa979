package vx1

import (
	"time"

	"github.com/brutella/can"

	"vx1-service/params"
)

// Transport sends a single CAN frame
type Transport interface {
	Send(frame can.Frame) error
}

// ParamStore gives access to configuration and live values by numeric id
type ParamStore interface {
	GetInt(id params.ID) int
	GetFloat(id params.ID) float64
	SetFloat(id params.ID, value float64)
}

// MasterOracle reports whether this node is the elected master (first node)
type MasterOracle interface {
	IsFirstNode() bool
}

// FaultSource returns the last active fault, ErrorNone when there is none
type FaultSource interface {
	LastActiveFault() ErrorCode
}

// Clock returns the process uptime
type Clock interface {
	Uptime() time.Duration
}

// SystemClock measures uptime from its creation
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Uptime() time.Duration {
	return time.Since(c.start)
}

// ParamFaultSource reads the last error from the parameter store
type ParamFaultSource struct {
	Params ParamStore
}

func (p ParamFaultSource) LastActiveFault() ErrorCode {
	return ErrorCode(p.Params.GetInt(params.LastErr))
}

// Config contains the collaborators and addressing for an Engine
type Config struct {
	Logger    Logger
	Transport Transport
	Params    ParamStore
	// Master may be nil, in which case the module address is compared
	// against the default master address.
	Master MasterOracle
	Faults FaultSource
	Clock  Clock
	// SourceAddress is used for odometer and clock frames
	SourceAddress uint8
	// OnStatus, if set, receives a display snapshot whenever it changes.
	// It is called from the task loop and must not block.
	OnStatus func(DisplayStatus)
	// OnFault, if set, is called when the reported fault changes.
	OnFault func(code ErrorCode, active bool)
}
