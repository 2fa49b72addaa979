package vx1

// TelltaleState is the state of a single dashboard icon. The values are the
// 2-bit field codes of the telltale frame.
type TelltaleState uint8

const (
	TelltaleOff      TelltaleState = 0x00
	TelltaleOn       TelltaleState = 0x01
	TelltaleBlinking TelltaleState = 0x02
)

func (s TelltaleState) String() string {
	switch s {
	case TelltaleOn:
		return "on"
	case TelltaleBlinking:
		return "blinking"
	default:
		return "off"
	}
}

// Telltale identifies an icon; its value is the field index in byte 0
type Telltale uint8

const (
	TelltaleWrench Telltale = iota
	TelltalePack
	TelltaleTemp
	TelltaleReserved

	telltaleCount = 4
)

func (t Telltale) String() string {
	switch t {
	case TelltaleWrench:
		return "wrench"
	case TelltalePack:
		return "pack"
	case TelltaleTemp:
		return "temp"
	default:
		return "reserved"
	}
}

// Telltales holds the state of every icon
type Telltales [telltaleCount]TelltaleState

// TelltaleRequest is the subset of icons a producer wants to drive
type TelltaleRequest struct {
	mask   uint8
	states Telltales
}

// Set requests a state for one icon
func (r *TelltaleRequest) Set(t Telltale, s TelltaleState) {
	r.mask |= 1 << t
	r.states[t] = s
}

// Get returns the requested state and whether the icon is requested at all
func (r TelltaleRequest) Get(t Telltale) (TelltaleState, bool) {
	if r.mask&(1<<t) == 0 {
		return TelltaleOff, false
	}
	return r.states[t], true
}
