package main

import (
	"bytes"
	"log"
	"testing"

	"vx1-service/params"
	"vx1-service/vx1"
)

func testLeveledLogger(buf *bytes.Buffer) *LeveledLogger {
	return NewLeveledLogger(log.New(buf, "", 0), LogLevelDebug)
}

func TestParseRedisValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"42", 42, false},
		{"-3.5", -3.5, false},
		{"on", 1, false},
		{"off", 0, false},
		{"true", 1, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := parseRedisValue(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRedisValue(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseRedisValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIPCRx_Apply(t *testing.T) {
	var buf bytes.Buffer
	store := params.NewStore()
	first := &FirstNode{}
	rx := &IPCRx{log: testLeveledLogger(&buf), params: store, firstNode: first}

	rx.applyAll(redisBMSHash, map[string]string{
		"soc":            "72",
		"first-node":     "1",
		"unrelated":      "x",
		"VX1msgInterval": "5000",
	})

	if got := store.GetInt(params.SOC); got != 72 {
		t.Errorf("soc = %d, want 72", got)
	}
	if !first.IsFirstNode() {
		t.Error("first-node flag not applied")
	}
	// configuration values are clamped by the store
	if got := store.GetInt(params.VX1MsgInterval); got != 1000 {
		t.Errorf("VX1msgInterval = %d, want 1000", got)
	}

	rx.apply(redisBMSHash, "soc", "not-a-number")
	if got := store.GetInt(params.SOC); got != 72 {
		t.Errorf("soc changed on invalid value: %d", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Invalid bms soc")) {
		t.Errorf("expected warning for invalid value, log: %s", buf.String())
	}

	rx.apply(redisBMSHash, "first-node", "off")
	if first.IsFirstNode() {
		t.Error("first-node flag not cleared")
	}
}

func TestNewRedisDisplay(t *testing.T) {
	s := vx1.DisplayStatus{
		OdometerOwner: vx1.OwnerFault,
		Odometer:      "E COV",
		ClockOwner:    vx1.OwnerIdle,
	}
	s.Telltales[vx1.TelltalePack] = vx1.TelltaleBlinking
	s.Telltales[vx1.TelltaleWrench] = vx1.TelltaleOn

	d := NewRedisDisplay(s)
	if d.OdometerOwner != "fault" || d.ClockOwner != "idle" {
		t.Errorf("owners = %s/%s, want fault/idle", d.OdometerOwner, d.ClockOwner)
	}
	if d.Odometer != "E COV" {
		t.Errorf("odometer = %q", d.Odometer)
	}
	want := map[string]string{"wrench": "on", "pack": "blinking", "temp": "off"}
	if len(d.Telltales) != len(want) {
		t.Fatalf("telltales = %v, want %v", d.Telltales, want)
	}
	for k, v := range want {
		if d.Telltales[k] != v {
			t.Errorf("telltale %s = %s, want %s", k, d.Telltales[k], v)
		}
	}
}

func TestOfferStatus_KeepsNewest(t *testing.T) {
	app := &VX1App{statusCh: make(chan vx1.DisplayStatus, 1)}

	app.offerStatus(vx1.DisplayStatus{Odometer: "first"})
	app.offerStatus(vx1.DisplayStatus{Odometer: "second"})

	s := <-app.statusCh
	if s.Odometer != "second" {
		t.Errorf("got %q, want newest snapshot", s.Odometer)
	}
	select {
	case extra := <-app.statusCh:
		t.Errorf("unexpected extra snapshot %q", extra.Odometer)
	default:
	}
}

func TestLeveledLogger_DebugCAN(t *testing.T) {
	var buf bytes.Buffer
	l := testLeveledLogger(&buf)

	l.DebugCAN("TX", 0x0CFEEDF9, []byte{0x6E, 0x38, 0x71}, 3)
	if got, want := buf.String(), "[DEBUG] CAN TX: ID=0x0CFEEDF9 Len=3 Data=[6E 38 71]\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	l.SetLevel(LogLevelInfo)
	l.DebugCAN("TX", 1, []byte{1}, 1)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output at info level: %q", buf.String())
	}
}
