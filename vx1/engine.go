package vx1

import (
	"time"

	"vx1-service/params"
)

// Task intervals
const (
	OdometerInterval  = 100 * time.Millisecond
	ClockInterval     = 100 * time.Millisecond
	TelltaleInterval  = 10 * time.Second
	WarningInterval   = 1 * time.Second
	EmulationInterval = 100 * time.Millisecond

	// TelltaleMinInterval is the shortest time between two telltale frames
	TelltaleMinInterval = 3000 * time.Millisecond
)

const (
	Bitrate250k = 250000
	Bitrate500k = 500000

	// chargingCurrent is the average current (A) below which the charger
	// indicator is lit
	chargingCurrent = -1.0
)

// Scheduler runs a function periodically on the task loop
type Scheduler interface {
	AddTask(task func(), interval time.Duration)
}

// Bitrate returns the bus bitrate for the current VX1 mode
func Bitrate(p ParamStore) int {
	if p.GetInt(params.VX1Mode) == 1 {
		return Bitrate250k
	}
	return Bitrate500k
}

type faultState struct {
	active bool
	code   ErrorCode
	nodeID int
}

type warningState struct {
	active bool
	value  float64
	test   bool
}

// Engine is the display composition context. All methods must be called
// from a single goroutine.
type Engine struct {
	logger        Logger
	transport     Transport
	params        ParamStore
	master        MasterOracle
	faults        FaultSource
	clock         Clock
	sourceAddress uint8
	onStatus      func(DisplayStatus)
	onFault       func(ErrorCode, bool)
	scheduler     Scheduler

	arbiter       Arbiter
	odometerOwner Owner
	clockOwner    Owner

	telltalesSent  bool
	telltalesDirty bool
	lastTelltale   time.Duration

	status      DisplayStatus
	statusValid bool

	boot          BootSequencer
	bootTriggered bool
	bootTaskAdded bool

	fault    faultState
	temp     warningState
	udelta   warningState
	emuCount uint8

	vehicle VehicleTelemetry
}

// NewEngine creates an engine from cfg, filling in defaults for optional
// collaborators.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		logger:        cfg.Logger,
		transport:     cfg.Transport,
		params:        cfg.Params,
		master:        cfg.Master,
		faults:        cfg.Faults,
		clock:         cfg.Clock,
		sourceAddress: cfg.SourceAddress,
		onStatus:      cfg.OnStatus,
		onFault:       cfg.OnFault,
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.clock == nil {
		e.clock = NewSystemClock()
	}
	if e.faults == nil {
		e.faults = ParamFaultSource{Params: cfg.Params}
	}
	if e.sourceAddress == 0 {
		e.sourceAddress = DefaultSourceAddress
	}
	return e
}

// Start registers the periodic tasks. The boot sequence registers its own
// task when it is started.
func (e *Engine) Start(s Scheduler) {
	e.scheduler = s
	s.AddTask(e.OdometerTask, OdometerInterval)
	s.AddTask(e.ClockTask, ClockInterval)
	s.AddTask(e.TelltaleTask, TelltaleInterval)
	s.AddTask(e.ErrorTask, WarningInterval)
	s.AddTask(e.TemperatureTask, WarningInterval)
	s.AddTask(e.VoltageDeltaTask, WarningInterval)
	s.AddTask(e.EmulationTask, EmulationInterval)
}

// Enabled reports whether VX1 mode and message emission are both on
func (e *Engine) Enabled() bool {
	return e.transport != nil &&
		e.params.GetInt(params.VX1Mode) == 1 &&
		e.params.GetInt(params.VX1EnCanMsg) == 1
}

// IsMaster reports whether this node drives the vehicle displays
func (e *Engine) IsMaster() bool {
	if e.master != nil {
		return e.master.IsFirstNode()
	}
	return e.params.GetInt(params.ModAddr) == params.DefaultMasterAddr
}

// HandleParamChange logs configuration changes that need a restart
func (e *Engine) HandleParamChange(id params.ID, value float64) {
	switch id {
	case params.VX1Mode:
		e.logger.Info("%s changed to %v, bus bitrate %d takes effect after restart",
			id, value, Bitrate(e.params))
	case params.VX1MsgInterval:
		if e.boot.Running() {
			e.logger.Info("%s changed while the boot sequence is running, keeping %v",
				id, e.boot.Interval())
		}
	default:
		e.logger.Debug("%s changed to %v", id, value)
	}
}

// Arbiter exposes the current claims, mainly for inspection
func (e *Engine) Arbiter() *Arbiter {
	return &e.arbiter
}

func (e *Engine) send(f Frame) bool {
	if e.transport == nil {
		return false
	}
	DebugCANFrame(e.logger, "TX", f.ID, f.Data)
	if err := e.transport.Send(f.CANFrame()); err != nil {
		e.logger.Warn("Failed to send frame %s: %v", FormatFrame(f.ID, f.Data), err)
		return false
	}
	return true
}

func (e *Engine) charging() bool {
	return e.params.GetFloat(params.IdcAvg) < chargingCurrent
}

func (e *Engine) claim(c Claim) {
	before := e.arbiter.Telltales()
	e.arbiter.Claim(c)
	if e.arbiter.Telltales() != before {
		e.telltalesDirty = true
	}
	e.publishStatus()
}

func (e *Engine) release(owner Owner) {
	if !e.arbiter.Active(owner) {
		return
	}
	before := e.arbiter.Telltales()
	e.arbiter.Release(owner)
	if e.arbiter.Telltales() != before {
		e.telltalesDirty = true
	}
	e.publishStatus()
}

func (e *Engine) publishStatus() {
	st := e.arbiter.Status()
	if e.statusValid && st == e.status {
		return
	}
	e.status = st
	e.statusValid = true
	if e.onStatus != nil {
		e.onStatus(st)
	}
}

// Status returns the last display snapshot
func (e *Engine) Status() DisplayStatus {
	return e.arbiter.Status()
}

// writeOdometer sends the effective owner's odometer content. A single clear
// frame is sent when the display falls back to idle.
func (e *Engine) writeOdometer() bool {
	text, owner := e.arbiter.Odometer()
	var f Frame
	switch {
	case owner == OwnerIdle:
		if e.odometerOwner == OwnerIdle {
			return true
		}
		f = ClearOdometerFrame(e.sourceAddress)
	default:
		c, _ := e.arbiter.Get(owner)
		if c.Clear {
			f = ClearOdometerFrame(e.sourceAddress)
		} else {
			f = OdometerFrame(text, e.charging(), OverrideForce, e.sourceAddress)
		}
	}
	if !e.send(f) {
		return false
	}
	e.odometerOwner = owner
	return true
}

// writeClock is writeOdometer for the clock
func (e *Engine) writeClock() bool {
	text, owner := e.arbiter.Clock()
	var f Frame
	if owner == OwnerIdle {
		if e.clockOwner == OwnerIdle {
			return true
		}
		f = ClearClockFrame(e.sourceAddress)
	} else {
		f = ClockFrame(text, e.charging(), OverrideForce, e.sourceAddress)
	}
	if !e.send(f) {
		return false
	}
	e.clockOwner = owner
	return true
}

// RefreshOdometer resends the odometer content of the effective owner
func (e *Engine) RefreshOdometer() bool {
	if !e.Enabled() {
		return false
	}
	return e.writeOdometer()
}

// SendTelltales sends the resolved telltale states. Calls within
// TelltaleMinInterval of the last frame do nothing and succeed.
func (e *Engine) SendTelltales() bool {
	if !e.Enabled() {
		return false
	}
	now := e.clock.Uptime()
	if e.telltalesSent && now-e.lastTelltale < TelltaleMinInterval {
		return true
	}
	if !e.send(TelltaleFrame(e.arbiter.Telltales())) {
		return false
	}
	e.telltalesSent = true
	e.telltalesDirty = false
	e.lastTelltale = now
	return true
}

func (e *Engine) flushTelltales() {
	if e.telltalesDirty {
		e.SendTelltales()
	}
}

// OdometerTask runs every OdometerInterval. Its first run makes the only
// attempt to start the boot sequence; afterwards it keeps the effective
// owner's content on the display.
func (e *Engine) OdometerTask() {
	if !e.bootTriggered {
		e.bootTriggered = true
		e.StartBootSequence()
	}
	if !e.Enabled() || !e.IsMaster() {
		return
	}
	// the boot task paces its own frames
	if e.arbiter.Owner(DisplayOdometer) != OwnerBoot {
		e.writeOdometer()
	}
	e.flushTelltales()
}

// TelltaleTask runs every TelltaleInterval so icons do not time out on the
// dashboard.
func (e *Engine) TelltaleTask() {
	if !e.Enabled() || !e.IsMaster() {
		return
	}
	if !e.arbiter.AnyActive() && !e.telltalesDirty {
		return
	}
	e.SendTelltales()
}
