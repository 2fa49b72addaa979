package params

import (
	"fmt"
	"sort"
	"sync"
)

// ID is a stable numeric parameter identifier.
type ID uint16

// Configuration parameters
const (
	VX1Mode            ID = 101
	VX1EnCanMsg        ID = 140
	VX1BootLCDMsg      ID = 148
	VX1EnBootStats     ID = 149
	VX1MsgInterval     ID = 150
	VX1ParamMsgCount   ID = 151
	VX1LCDClockStats   ID = 152
	VX1LCDClockStatVal ID = 153
	VX1ErrWarn         ID = 154
	VX1TempWarn        ID = 155
	VX1TempWarnTest    ID = 157
	VX1UDeltaWarn      ID = 158
	VX1UDeltaWarnTresh ID = 159
	VX1UDeltaWarnTest  ID = 160
	VX1EmulateBMSMsg   ID = 162
	VX1KWhResetDist    ID = 163
	VX1TempWarnHiPoint ID = 164
	VX1TempWarnLoPoint ID = 165
	VX1FanDuty         ID = 166
	VX1MockTemp        ID = 167
	VX1ModuleNumber    ID = 168

	DischargeMax ID = 32
	UCellMax     ID = 29
	UCellMin     ID = 28
	TempSns      ID = 52
)

// Live values
const (
	OpMode       ID = 2000
	Uavg         ID = 2002
	Umin         ID = 2003
	Umax         ID = 2004
	Udelta       ID = 2005
	Utotal       ID = 2039
	Idc          ID = 2042
	IdcAvg       ID = 2043
	TempMin      ID = 2044
	ModAddr      ID = 2045
	SOC          ID = 2071
	ChargeLim    ID = 2072
	DischargeLim ID = 2073
	TotalCells   ID = 2074
	Power        ID = 2075
	TempMax      ID = 2077
	SOH          ID = 2086
	LastErr      ID = 2101
	Uptime       ID = 2103

	VX1Speed       ID = 2105
	VX1BusVoltage  ID = 2106
	VX1BusCurrent  ID = 2107
	VX1KWhPer100km ID = 2108
	VX1DebugParam1 ID = 2109
	VX1DebugParam2 ID = 2110
)

// Operating modes reported in OpMode, and the module address of the default master node
const (
	OpModeBoot        = 0
	OpModeRun         = 7
	OpModeIdle        = 8
	OpModeError       = 9
	DefaultMasterAddr = 10
)

// Def describes a parameter. Values (as opposed to parameters) carry no limits.
type Def struct {
	ID      ID
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Value   bool
}

var defs = []Def{
	{VX1Mode, "VX1mode", "0=Off, 1=On", 0, 1, 1, false},
	{VX1EnCanMsg, "VX1enCanMsg", "0=Off, 1=On", 0, 1, 1, false},
	{VX1BootLCDMsg, "VX1BootLCDMsg", "0=Off, 1=On", 0, 1, 1, false},
	{VX1EnBootStats, "VX1enBootstats", "0=Off, 1=On", 0, 1, 1, false},
	{VX1MsgInterval, "VX1msgInterval", "ms", 50, 1000, 100, false},
	{VX1ParamMsgCount, "VX1paramMsgCount", "times", 1, 10, 2, false},
	{VX1LCDClockStats, "VX1LCDClockStats", "0=Off, 1=Always, 2=Idle", 0, 2, 1, false},
	{VX1LCDClockStatVal, "VX1LCDClockStatVal", "0=soc, 1=uavg, 2=udelta, 3=tempmax, 4=power, 5=idcavg, 6=kWhper100km", 0, 6, 2, false},
	{VX1ErrWarn, "VX1ErrWarn", "0=Off, 1=On", 0, 1, 1, false},
	{VX1TempWarn, "VX1TempWarn", "0=Off, 1=On", 0, 1, 1, false},
	{VX1TempWarnTest, "VX1TempWarnTest", "0=Off, 1=On", 0, 1, 0, false},
	{VX1UDeltaWarn, "VX1uDeltaWarn", "0=Off, 1=On", 0, 1, 1, false},
	{VX1UDeltaWarnTresh, "VX1uDeltaWarnTresh", "mV", 2, 500, 150, false},
	{VX1UDeltaWarnTest, "VX1uDeltaWarnTest", "0=Off, 1=On", 0, 1, 0, false},
	{VX1EmulateBMSMsg, "VX1EmulateBMSmsg", "0=off, 1=on", 0, 1, 1, false},
	{VX1KWhResetDist, "VX1kWhResetDist", "km", 0.1, 20, 5, false},
	{VX1TempWarnHiPoint, "VX1TempWarnHiPoint", "°C", 40, 80, 55, false},
	{VX1TempWarnLoPoint, "VX1TempWarnLoPoint", "°C", 40, 80, 55, false},
	{VX1FanDuty, "VX1FanDuty", "%", 0, 100, 50, false},
	{VX1MockTemp, "VX1mockTemp", "°C", -20, 55, 24, false},
	{VX1ModuleNumber, "VX1ModuleNumber", "1-15", 1, 15, 1, false},
	{DischargeMax, "dischargemax", "A", 1, 2047, 200, false},
	{UCellMax, "ucellmax", "mV", 1000, 4500, 4200, false},
	{UCellMin, "ucellmin", "mV", 1000, 4500, 3300, false},
	{TempSns, "tempsns", "0=None, 1=Chan1, 2=Chan2, 3=Both", 0, 3, 0, false},

	{OpMode, "opmode", "", 0, 0, 0, true},
	{Uavg, "uavg", "mV", 0, 0, 0, true},
	{Umin, "umin", "mV", 0, 0, 0, true},
	{Umax, "umax", "mV", 0, 0, 0, true},
	{Udelta, "udelta", "mV", 0, 0, 0, true},
	{Utotal, "utotal", "mV", 0, 0, 0, true},
	{Idc, "idc", "A", 0, 0, 0, true},
	{IdcAvg, "idcavg", "A", 0, 0, 0, true},
	{TempMin, "tempmin", "°C", 0, 0, 0, true},
	{ModAddr, "modaddr", "", 0, 0, 0, true},
	{SOC, "soc", "%", 0, 0, 0, true},
	{ChargeLim, "chargelim", "A", 0, 0, 0, true},
	{DischargeLim, "dischargelim", "A", 0, 0, 0, true},
	{TotalCells, "totalcells", "", 0, 0, 0, true},
	{Power, "power", "W", 0, 0, 0, true},
	{TempMax, "tempmax", "°C", 0, 0, 0, true},
	{SOH, "soh", "%", 0, 0, 0, true},
	{LastErr, "lasterr", "", 0, 0, 0, true},
	{Uptime, "uptime", "s", 0, 0, 0, true},
	{VX1Speed, "VX1speed", "km/h", 0, 0, 0, true},
	{VX1BusVoltage, "VX1busVoltage", "V", 0, 0, 0, true},
	{VX1BusCurrent, "VX1busCurrent", "A", 0, 0, 0, true},
	{VX1KWhPer100km, "VX1kWhper100km", "kWh/100km", 0, 0, 0, true},
	{VX1DebugParam1, "VX1DebugParam1", "Wh", 0, 0, 0, true},
	{VX1DebugParam2, "VX1DebugParam2", "km", 0, 0, 0, true},
}

var (
	byID   = make(map[ID]Def, len(defs))
	byName = make(map[string]Def, len(defs))
)

func init() {
	for _, d := range defs {
		byID[d.ID] = d
		byName[d.Name] = d
	}
}

// Lookup returns the definition of a parameter by id.
func Lookup(id ID) (Def, bool) {
	d, ok := byID[id]
	return d, ok
}

// LookupName returns the definition of a parameter by its name.
func LookupName(name string) (Def, bool) {
	d, ok := byName[name]
	return d, ok
}

// Names returns all known parameter names, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (id ID) String() string {
	if d, ok := byID[id]; ok {
		return d.Name
	}
	return fmt.Sprintf("param(%d)", uint16(id))
}

// Store is an in-memory parameter store seeded with defaults. It is safe for
// concurrent use: IPC goroutines write while the task loop reads.
type Store struct {
	mu     sync.RWMutex
	values map[ID]float64
	notify func(id ID, value float64)
}

// NewStore creates a store with every known parameter set to its default.
func NewStore() *Store {
	s := &Store{values: make(map[ID]float64, len(defs))}
	for _, d := range defs {
		s.values[d.ID] = d.Default
	}
	return s
}

// OnChange registers a callback invoked after a configuration parameter changes.
// Live values do not trigger it.
func (s *Store) OnChange(fn func(id ID, value float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// GetFloat returns the value of a parameter, 0 for unknown ids.
func (s *Store) GetFloat(id ID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[id]
}

// GetInt returns the value truncated toward zero.
func (s *Store) GetInt(id ID) int {
	return int(s.GetFloat(id))
}

// SetFloat stores a value. Configuration parameters are clamped to their limits.
func (s *Store) SetFloat(id ID, value float64) {
	d, known := byID[id]
	if known && !d.Value {
		if value < d.Min {
			value = d.Min
		}
		if value > d.Max {
			value = d.Max
		}
	}

	s.mu.Lock()
	old, had := s.values[id]
	s.values[id] = value
	notify := s.notify
	s.mu.Unlock()

	if notify != nil && known && !d.Value && (!had || old != value) {
		notify(id, value)
	}
}

// Set is SetFloat for integer values.
func (s *Store) Set(id ID, value int) {
	s.SetFloat(id, float64(value))
}

// SetByName sets a parameter by name.
func (s *Store) SetByName(name string, value float64) error {
	d, ok := byName[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	s.SetFloat(d.ID, value)
	return nil
}
