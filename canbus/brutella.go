package canbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/brutella/can"
)

// BrutellaBus is a SocketCAN transport built on github.com/brutella/can
type BrutellaBus struct {
	dispatcher
	bus *can.Bus

	closeOnce sync.Once
	closeErr  error
}

func NewBrutellaBus(device string) (*BrutellaBus, error) {
	bus, err := can.NewBusForInterfaceWithName(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open CAN interface %s: %w", device, err)
	}
	return newBrutellaBus(bus), nil
}

func newBrutellaBus(bus *can.Bus) *BrutellaBus {
	b := &BrutellaBus{bus: bus}
	bus.Subscribe(b)
	return b
}

// Handle implements can.Handler
func (b *BrutellaBus) Handle(frame can.Frame) {
	b.dispatch(frame)
}

func (b *BrutellaBus) Send(frame Frame) error {
	return b.bus.Publish(frame)
}

func (b *BrutellaBus) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		b.Close()
	}()
	err := b.bus.ConnectAndPublish()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close disconnects the socket. Only the first call does any work.
func (b *BrutellaBus) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.bus.Disconnect()
	})
	return b.closeErr
}
