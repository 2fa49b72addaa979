package canbus

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

type fakePort struct {
	io.Reader
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		frame    Frame
		expected string
	}{
		{Frame{ID: 0x123, Length: 2, Data: [8]byte{0xAB, 0xCD}}, "t1232ABCD\r"},
		{
			NewFrame(0x0CFEEDF9, [8]byte{0x6E, 0x38, 0x71, 0x00, 0x06, 0x3F, 0x00, 0xAA}),
			"T0CFEEDF986E387100063F00AA\r",
		},
		{Frame{ID: 0x18FECA4C | effFlag, Length: 0}, "T18FECA4C0\r"},
	}
	for _, tt := range tests {
		if got := EncodeFrame(tt.frame); got != tt.expected {
			t.Errorf("EncodeFrame(%+v): expected %q, got %q", tt.frame, tt.expected, got)
		}
	}
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame("T0CFEF10580014000301400000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FrameID(f) != 0x0CFEF105 || !IsExtended(f) || f.Length != 8 {
		t.Errorf("unexpected frame %+v", f)
	}
	expected := [8]byte{0x00, 0x14, 0x00, 0x03, 0x01, 0x40, 0x00, 0x00}
	if f.Data != expected {
		t.Errorf("expected % X, got % X", expected, f.Data)
	}

	f, err = DecodeFrame("t1232ABCD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FrameID(f) != 0x123 || IsExtended(f) || f.Length != 2 || f.Data[0] != 0xAB || f.Data[1] != 0xCD {
		t.Errorf("unexpected frame %+v", f)
	}
}

func TestDecodeFrame_Invalid(t *testing.T) {
	for _, line := range []string{"", "z", "t12", "t1239", "t1232AB", "T0CFEF10G", "t12X1AA", "r1230"} {
		if _, err := DecodeFrame(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	in := NewFrame(0x0CFEF2F9, [8]byte{1, 2, 3, 4, 5, 6, 7, 8})
	out, err := DecodeFrame(strings.TrimSuffix(EncodeFrame(in), "\r"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestBitrateCommand(t *testing.T) {
	if cmd, err := BitrateCommand(Bitrate250k); err != nil || cmd != "S5" {
		t.Errorf("expected S5, got %q %v", cmd, err)
	}
	if cmd, err := BitrateCommand(Bitrate500k); err != nil || cmd != "S6" {
		t.Errorf("expected S6, got %q %v", cmd, err)
	}
	if _, err := BitrateCommand(Bitrate(33333)); err == nil {
		t.Error("expected error for unsupported bitrate")
	}
}

func TestSLCANBus_SendAndRun(t *testing.T) {
	port := &fakePort{Reader: strings.NewReader("z\rT0CFEF10580014000301400000\r\aT18FECA4C10A\rt1230\r")}
	bus := newSLCANBus(port)
	bus.AddFilter(0x00FEF105, 0x03FFFFFF)

	if err := bus.Send(NewFrame(0x0CFEEDF9, [8]byte{0x6E, 0x38, 0x71, 0x00, 0x06, 0x3F, 0x00, 0xAA})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := port.written.String(); got != "T0CFEEDF986E387100063F00AA\r" {
		t.Errorf("unexpected output %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var received []Frame
	bus.OnFrame(func(f Frame) {
		received = append(received, f)
		cancel()
	})

	if err := bus.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 1 || FrameID(received[0]) != 0x0CFEF105 {
		t.Errorf("expected only the vehicle frame, got %+v", received)
	}
}

func TestDispatcher_Filters(t *testing.T) {
	var d dispatcher
	var ids []uint32
	d.OnFrame(func(f Frame) { ids = append(ids, FrameID(f)) })

	d.dispatch(Frame{ID: 0x100})
	if len(ids) != 1 {
		t.Fatalf("expected every frame without filters, got %d", len(ids))
	}

	d.AddFilter(0x00FEF105, 0x03FFFFFF)
	d.dispatch(Frame{ID: 0x100})
	d.dispatch(NewFrame(0x18FEF105, [8]byte{}))
	d.dispatch(NewFrame(0x0CFEF106, [8]byte{}))
	// an 11-bit frame never matches the 29-bit filter
	d.dispatch(Frame{ID: 0x105})
	if len(ids) != 2 || ids[1] != 0x18FEF105 {
		t.Errorf("unexpected frames %X", ids)
	}
}
