package vx1

// Owner is a producer that may claim the displays. Higher values win.
type Owner int

const (
	OwnerIdle Owner = iota
	OwnerStats
	OwnerBoot
	OwnerVoltageDelta
	OwnerTemperature
	OwnerFault

	ownerCount
)

func (o Owner) String() string {
	switch o {
	case OwnerStats:
		return "stats"
	case OwnerBoot:
		return "boot"
	case OwnerVoltageDelta:
		return "voltage-delta"
	case OwnerTemperature:
		return "temperature"
	case OwnerFault:
		return "fault"
	default:
		return "idle"
	}
}

// Display is a bit set of physical outputs a claim writes text to
type Display uint8

const (
	DisplayOdometer Display = 1 << iota
	DisplayClock
)

// Claim is a producer's request for the displays and telltales
type Claim struct {
	Owner    Owner
	Displays Display
	// Clear makes the owner hold the odometer blank with explicit clear
	// frames instead of text
	Clear     bool
	Odometer  OdometerText
	Clock     ClockText
	Telltales TelltaleRequest
}

// DisplayStatus is a snapshot of what the arbiter currently shows
type DisplayStatus struct {
	OdometerOwner Owner
	Odometer      string
	ClockOwner    Owner
	Clock         string
	Telltales     Telltales
}

// Arbitrate returns the highest priority owner among claims that write to
// display, or OwnerIdle when nobody does.
func Arbitrate(claims []Claim, display Display) Owner {
	owner := OwnerIdle
	for _, c := range claims {
		if c.Displays&display == 0 {
			continue
		}
		if c.Owner > owner {
			owner = c.Owner
		}
	}
	return owner
}

// Arbiter holds at most one active claim per owner
type Arbiter struct {
	claims [ownerCount]Claim
	active [ownerCount]bool
}

// Claim replaces the claim of c.Owner. Claims by OwnerIdle are ignored.
func (a *Arbiter) Claim(c Claim) {
	if c.Owner <= OwnerIdle || c.Owner >= ownerCount {
		return
	}
	a.claims[c.Owner] = c
	a.active[c.Owner] = true
}

// Release drops the claim of owner, if any
func (a *Arbiter) Release(owner Owner) {
	if owner <= OwnerIdle || owner >= ownerCount {
		return
	}
	a.claims[owner] = Claim{}
	a.active[owner] = false
}

// Get returns the claim of owner
func (a *Arbiter) Get(owner Owner) (Claim, bool) {
	if !a.Active(owner) {
		return Claim{}, false
	}
	return a.claims[owner], true
}

func (a *Arbiter) Active(owner Owner) bool {
	if owner <= OwnerIdle || owner >= ownerCount {
		return false
	}
	return a.active[owner]
}

// Claims returns the active claims
func (a *Arbiter) Claims() []Claim {
	return a.appendClaims(nil)
}

func (a *Arbiter) appendClaims(dst []Claim) []Claim {
	for o := OwnerIdle + 1; o < ownerCount; o++ {
		if a.active[o] {
			dst = append(dst, a.claims[o])
		}
	}
	return dst
}

// AnyActive reports whether any owner holds a claim
func (a *Arbiter) AnyActive() bool {
	for o := OwnerIdle + 1; o < ownerCount; o++ {
		if a.active[o] {
			return true
		}
	}
	return false
}

// Owner returns the effective owner of display. The claims are gathered in
// a fixed array so the periodic tasks do not allocate.
func (a *Arbiter) Owner(display Display) Owner {
	var buf [ownerCount]Claim
	return Arbitrate(a.appendClaims(buf[:0]), display)
}

// Odometer returns the effective odometer text and its owner
func (a *Arbiter) Odometer() (OdometerText, Owner) {
	owner := a.Owner(DisplayOdometer)
	if owner == OwnerIdle || a.claims[owner].Clear {
		return BlankOdometer, owner
	}
	return a.claims[owner].Odometer, owner
}

// Clock returns the effective clock text and its owner
func (a *Arbiter) Clock() (ClockText, Owner) {
	owner := a.Owner(DisplayClock)
	if owner == OwnerIdle {
		return BlankClock, owner
	}
	return a.claims[owner].Clock, owner
}

// Telltales resolves every icon independently: the highest priority claim
// that requests an icon decides its state, unrequested icons are off.
func (a *Arbiter) Telltales() Telltales {
	var t Telltales
	for i := range t {
		for o := ownerCount - 1; o > OwnerIdle; o-- {
			if !a.active[o] {
				continue
			}
			if s, ok := a.claims[o].Telltales.Get(Telltale(i)); ok {
				t[i] = s
				break
			}
		}
	}
	return t
}

// Status returns a snapshot of the effective display state
func (a *Arbiter) Status() DisplayStatus {
	odo, odoOwner := a.Odometer()
	clk, clkOwner := a.Clock()
	return DisplayStatus{
		OdometerOwner: odoOwner,
		Odometer:      odo.String(),
		ClockOwner:    clkOwner,
		Clock:         clk.String(),
		Telltales:     a.Telltales(),
	}
}
