package vx1

import (
	"time"

	"vx1-service/params"
)

// BootState is a step of the boot announcement
type BootState int

const (
	BootIdle BootState = iota
	BootWait
	BootWelcome1
	BootWelcome2
	BootPackVoltage
	BootVoltageDelta
	BootSOC
	BootSOH
	BootTempMin
	BootTempMax
	BootDone
)

func (s BootState) String() string {
	switch s {
	case BootWait:
		return "WAIT"
	case BootWelcome1:
		return "WELCOME1"
	case BootWelcome2:
		return "WELCOME2"
	case BootPackVoltage:
		return "PACK_VOLTAGE"
	case BootVoltageDelta:
		return "VOLTAGE_DELTA"
	case BootSOC:
		return "SOC"
	case BootSOH:
		return "SOH"
	case BootTempMin:
		return "TEMP_MIN"
	case BootTempMax:
		return "TEMP_MAX"
	case BootDone:
		return "DONE"
	default:
		return "IDLE"
	}
}

const (
	MinBootInterval = 50 * time.Millisecond
	MaxBootInterval = 1000 * time.Millisecond

	// bootClearFrames is the number of clear frames sent before the boot
	// sequence gives up the display
	bootClearFrames = 20
)

type bootStep struct {
	state      BootState
	durationMs int
	// optional steps only run when boot stats are enabled
	optional bool
	// refresh re-renders the content every n ticks, 0 renders once
	refresh int
	content func(p ParamStore) OdometerText
}

func staticText(s string) func(ParamStore) OdometerText {
	text := NewOdometerText(s)
	return func(ParamStore) OdometerText { return text }
}

var bootSteps = []bootStep{
	{state: BootWait, durationMs: 10000},
	{state: BootWelcome1, durationMs: 2000, content: staticText("OI FLY")},
	{state: BootWelcome2, durationMs: 2000, content: staticText(" BMMS ")},
	{state: BootPackVoltage, durationMs: 5000, optional: true, content: func(p ParamStore) OdometerText {
		return FormatPackVoltage(p.GetFloat(params.Utotal))
	}},
	{state: BootVoltageDelta, durationMs: 5000, content: func(p ParamStore) OdometerText {
		return FormatVoltageDelta(p.GetFloat(params.Udelta))
	}},
	{state: BootSOC, durationMs: 5000, refresh: 5, content: func(p ParamStore) OdometerText {
		return FormatSOC(p.GetFloat(params.SOC))
	}},
	{state: BootSOH, durationMs: 5000, content: func(p ParamStore) OdometerText {
		return FormatSOH(p.GetFloat(params.SOH))
	}},
	{state: BootTempMin, durationMs: 5000, optional: true, content: func(p ParamStore) OdometerText {
		return FormatTempMin(p.GetFloat(params.TempMin))
	}},
	{state: BootTempMax, durationMs: 5000, optional: true, content: func(p ParamStore) OdometerText {
		return FormatTempMax(p.GetFloat(params.TempMax))
	}},
}

// bootOutput tells the engine what to do with the displays after a tick
type bootOutput int

const (
	bootNothing bootOutput = iota
	bootShow
	bootClear
	bootRelease
)

// BootSequencer walks bootSteps, one Tick per interval. Step durations are
// converted to ticks so they stay constant in wall-clock time.
type BootSequencer struct {
	state    BootState
	step     int
	ticks    int
	interval time.Duration
	stats    bool
	text     OdometerText
}

// Start resets the sequencer to the first step
func (b *BootSequencer) Start(interval time.Duration) {
	if interval < MinBootInterval {
		interval = MinBootInterval
	}
	if interval > MaxBootInterval {
		interval = MaxBootInterval
	}
	b.interval = interval
	b.step = 0
	b.state = bootSteps[0].state
	b.ticks = 0
	b.stats = false
	b.text = BlankOdometer
}

func (b *BootSequencer) State() BootState {
	return b.state
}

func (b *BootSequencer) Running() bool {
	return b.state != BootIdle
}

func (b *BootSequencer) Interval() time.Duration {
	return b.interval
}

func (b *BootSequencer) durationTicks(s bootStep) int {
	n := s.durationMs / int(b.interval/time.Millisecond)
	if n < 1 {
		n = 1
	}
	return n
}

// Tick advances the sequence by one interval
func (b *BootSequencer) Tick(p ParamStore) (bootOutput, OdometerText) {
	switch b.state {
	case BootIdle:
		return bootNothing, b.text
	case BootDone:
		n := b.ticks
		b.ticks++
		if n < bootClearFrames {
			return bootClear, BlankOdometer
		}
		b.state = BootIdle
		return bootRelease, BlankOdometer
	}

	s := bootSteps[b.step]
	n := b.ticks
	b.ticks++

	out := bootNothing
	if s.content != nil {
		if n == 0 || (s.refresh > 0 && n%s.refresh == 0) {
			b.text = s.content(p)
		}
		out = bootShow
	}

	if b.ticks >= b.durationTicks(s) {
		b.advance(p)
	}
	return out, b.text
}

func (b *BootSequencer) advance(p ParamStore) {
	if bootSteps[b.step].state == BootWelcome2 {
		b.stats = p.GetInt(params.VX1EnBootStats) == 1
	}
	b.ticks = 0
	for next := b.step + 1; next < len(bootSteps); next++ {
		if bootSteps[next].optional && !b.stats {
			continue
		}
		b.step = next
		b.state = bootSteps[next].state
		return
	}
	b.state = BootDone
}

func bootTelltales() TelltaleRequest {
	var t TelltaleRequest
	t.Set(TelltalePack, TelltaleOn)
	return t
}

// StartBootSequence begins the boot announcement. Preconditions are checked
// only here; once started the sequence runs to the end.
func (e *Engine) StartBootSequence() bool {
	if e.boot.Running() {
		return true
	}
	if !e.Enabled() || e.params.GetInt(params.VX1BootLCDMsg) != 1 || !e.IsMaster() {
		return false
	}

	interval := time.Duration(e.params.GetInt(params.VX1MsgInterval)) * time.Millisecond
	e.boot.Start(interval)
	e.claim(Claim{Owner: OwnerBoot, Telltales: bootTelltales()})
	e.logger.Info("Boot sequence started, interval %v", e.boot.Interval())

	if e.scheduler != nil && !e.bootTaskAdded {
		e.scheduler.AddTask(e.BootTask, e.boot.Interval())
		e.bootTaskAdded = true
	}
	return true
}

// BootTask advances the boot sequence by one tick
func (e *Engine) BootTask() {
	if !e.boot.Running() {
		return
	}

	before := e.boot.State()
	out, text := e.boot.Tick(e.params)
	if after := e.boot.State(); after != before {
		e.logger.Debug("Boot sequence %s -> %s", before, after)
	}

	switch out {
	case bootShow:
		e.claim(Claim{Owner: OwnerBoot, Displays: DisplayOdometer, Odometer: text, Telltales: bootTelltales()})
	case bootClear:
		e.claim(Claim{Owner: OwnerBoot, Displays: DisplayOdometer, Clear: true, Telltales: bootTelltales()})
	case bootRelease:
		e.release(OwnerBoot)
		e.writeOdometer()
		e.SendTelltales()
		e.logger.Info("Boot sequence finished")
		return
	}

	if out != bootNothing && e.arbiter.Owner(DisplayOdometer) == OwnerBoot {
		e.writeOdometer()
	}
	e.SendTelltales()
}
