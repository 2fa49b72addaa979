package vx1

import "testing"

func TestArbitrate_Priority(t *testing.T) {
	odo := func(o Owner) Claim { return Claim{Owner: o, Displays: DisplayOdometer} }
	tests := []struct {
		name     string
		claims   []Claim
		display  Display
		expected Owner
	}{
		{"nobody", nil, DisplayOdometer, OwnerIdle},
		{"boot only", []Claim{odo(OwnerBoot)}, DisplayOdometer, OwnerBoot},
		{"warning beats boot", []Claim{odo(OwnerBoot), odo(OwnerVoltageDelta)}, DisplayOdometer, OwnerVoltageDelta},
		{"temperature beats voltage delta", []Claim{odo(OwnerVoltageDelta), odo(OwnerTemperature)}, DisplayOdometer, OwnerTemperature},
		{"fault beats everything", []Claim{odo(OwnerFault), odo(OwnerTemperature), odo(OwnerBoot)}, DisplayOdometer, OwnerFault},
		{"stats only on clock", []Claim{{Owner: OwnerStats, Displays: DisplayClock}, odo(OwnerBoot)}, DisplayClock, OwnerStats},
		{"telltale only claim", []Claim{{Owner: OwnerBoot}}, DisplayOdometer, OwnerIdle},
	}
	for _, tt := range tests {
		if got := Arbitrate(tt.claims, tt.display); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, got)
		}
	}
}

func TestArbiter_ReleaseKeepsOtherClaims(t *testing.T) {
	var a Arbiter
	a.Claim(Claim{Owner: OwnerTemperature, Displays: DisplayOdometer, Odometer: FormatTempWarning(60), Telltales: temperatureTelltales()})
	a.Claim(Claim{Owner: OwnerVoltageDelta, Displays: DisplayOdometer, Odometer: FormatUDeltaWarning(200), Telltales: voltageDeltaTelltales()})

	text, owner := a.Odometer()
	if owner != OwnerTemperature || text != FormatTempWarning(60) {
		t.Fatalf("expected temperature warning on the odometer, got %s %q", owner, text)
	}

	a.Release(OwnerTemperature)
	text, owner = a.Odometer()
	if owner != OwnerVoltageDelta || text != FormatUDeltaWarning(200) {
		t.Errorf("expected voltage delta warning on the odometer, got %s %q", owner, text)
	}
	tt := a.Telltales()
	if tt[TelltaleWrench] != TelltaleOn {
		t.Errorf("expected wrench on, got %s", tt[TelltaleWrench])
	}
	if tt[TelltalePack] != TelltaleOff {
		t.Errorf("expected pack off, got %s", tt[TelltalePack])
	}

	a.Release(OwnerVoltageDelta)
	if text, owner = a.Odometer(); owner != OwnerIdle || text != BlankOdometer {
		t.Errorf("expected idle blank odometer, got %s %q", owner, text)
	}
}

func TestArbiter_TelltalesPerIcon(t *testing.T) {
	var a Arbiter
	a.Claim(Claim{Owner: OwnerBoot, Telltales: bootTelltales()})
	a.Claim(Claim{Owner: OwnerVoltageDelta, Telltales: voltageDeltaTelltales()})

	expected := Telltales{TelltaleOn, TelltaleOn, TelltaleOff, TelltaleOff}
	if got := a.Telltales(); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}

	a.Claim(Claim{Owner: OwnerTemperature, Telltales: temperatureTelltales()})
	expected = Telltales{TelltaleOn, TelltaleBlinking, TelltaleOff, TelltaleOff}
	if got := a.Telltales(); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}

	// boot ending must not turn off the pack icon the warning still wants
	a.Release(OwnerBoot)
	if got := a.Telltales(); got != expected {
		t.Errorf("expected %v after boot release, got %v", expected, got)
	}

	a.Claim(Claim{Owner: OwnerFault, Telltales: faultTelltales()})
	expected = Telltales{TelltaleBlinking, TelltaleBlinking, TelltaleOff, TelltaleOff}
	if got := a.Telltales(); got != expected {
		t.Errorf("expected %v with fault, got %v", expected, got)
	}
}

func TestArbiter_IgnoresIdleClaims(t *testing.T) {
	var a Arbiter
	a.Claim(Claim{Owner: OwnerIdle, Displays: DisplayOdometer})
	if len(a.Claims()) != 0 {
		t.Errorf("expected no claims, got %d", len(a.Claims()))
	}
	if a.Active(OwnerIdle) {
		t.Error("idle must never be active")
	}
}

func TestArbiter_ClearClaimShowsBlank(t *testing.T) {
	var a Arbiter
	a.Claim(Claim{Owner: OwnerBoot, Displays: DisplayOdometer, Clear: true})

	text, owner := a.Odometer()
	if owner != OwnerBoot {
		t.Fatalf("owner = %v, want boot", owner)
	}
	if text != BlankOdometer {
		t.Errorf("text = %q, want blank", text.String())
	}
	if got := a.Status().Odometer; got != BlankOdometer.String() {
		t.Errorf("status odometer = %q, want %q", got, BlankOdometer.String())
	}
}

func TestArbiter_OwnerDoesNotAllocate(t *testing.T) {
	var a Arbiter
	a.Claim(Claim{Owner: OwnerStats, Displays: DisplayClock})
	a.Claim(Claim{Owner: OwnerTemperature, Displays: DisplayOdometer | DisplayClock})

	allocs := testing.AllocsPerRun(100, func() {
		a.Owner(DisplayOdometer)
		a.AnyActive()
	})
	if allocs != 0 {
		t.Errorf("Owner allocated %v times per run", allocs)
	}
}

func TestArbiter_AnyActive(t *testing.T) {
	var a Arbiter
	if a.AnyActive() {
		t.Error("empty arbiter reports an active claim")
	}
	a.Claim(Claim{Owner: OwnerVoltageDelta})
	if !a.AnyActive() {
		t.Error("claim not reported")
	}
	a.Release(OwnerVoltageDelta)
	if a.AnyActive() {
		t.Error("released claim still reported")
	}
}
