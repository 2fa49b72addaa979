package canbus

import (
	"errors"
	"testing"

	"github.com/brutella/can"
)

type fakeSocket struct {
	written []can.Frame
	closes  int
}

func (s *fakeSocket) Read(b []byte) (int, error)   { return 0, errors.New("not readable") }
func (s *fakeSocket) Write(b []byte) (int, error)  { return len(b), nil }
func (s *fakeSocket) ReadFrame(f *can.Frame) error { return errors.New("not readable") }

func (s *fakeSocket) WriteFrame(f can.Frame) error {
	s.written = append(s.written, f)
	return nil
}

func (s *fakeSocket) Close() error {
	s.closes++
	if s.closes > 1 {
		return errors.New("already closed")
	}
	return nil
}

func TestBrutellaBus_SendAndHandle(t *testing.T) {
	sock := &fakeSocket{}
	bus := newBrutellaBus(can.NewBus(sock))
	bus.AddFilter(0x00FEF105, 0x03FFFFFF)

	var got []Frame
	bus.OnFrame(func(f Frame) { got = append(got, f) })

	out := NewFrame(0x0CFEEDF9, [8]byte{0x6E})
	if err := bus.Send(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sock.written) != 1 || sock.written[0] != out {
		t.Fatalf("unexpected written frames %+v", sock.written)
	}
	if sock.written[0].ID&can.MaskEff == 0 {
		t.Error("expected the extended frame flag on the wire")
	}

	bus.Handle(NewFrame(0x18FEF105, [8]byte{1, 2}))
	bus.Handle(NewFrame(0x0CFEEDF9, [8]byte{}))
	if len(got) != 1 || FrameID(got[0]) != 0x18FEF105 {
		t.Errorf("expected only the vehicle frame, got %+v", got)
	}
}

func TestBrutellaBus_CloseOnce(t *testing.T) {
	sock := &fakeSocket{}
	bus := newBrutellaBus(can.NewBus(sock))

	for i := 0; i < 3; i++ {
		if err := bus.Close(); err != nil {
			t.Errorf("close %d: unexpected error: %v", i, err)
		}
	}
	if sock.closes != 1 {
		t.Errorf("expected the socket to be closed once, got %d", sock.closes)
	}
}
