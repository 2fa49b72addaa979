package canbus

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

const einrideSendTimeout = 100 * time.Millisecond

// EinrideBus is a SocketCAN transport built on go.einride.tech/can
type EinrideBus struct {
	dispatcher
	conn net.Conn
	tx   *socketcan.Transmitter
	rx   *socketcan.Receiver
}

func NewEinrideBus(ctx context.Context, device string) (*EinrideBus, error) {
	conn, err := socketcan.DialContext(ctx, "can", device)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", device, err)
	}
	return &EinrideBus{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
		rx:   socketcan.NewReceiver(conn),
	}, nil
}

func (b *EinrideBus) Send(frame Frame) error {
	ctx, cancel := context.WithTimeout(context.Background(), einrideSendTimeout)
	defer cancel()
	return b.tx.TransmitFrame(ctx, can.Frame{
		ID:         FrameID(frame),
		Length:     frame.Length,
		Data:       can.Data(frame.Data),
		IsExtended: IsExtended(frame),
	})
}

func (b *EinrideBus) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		b.conn.Close()
	}()
	for b.rx.Receive() {
		if b.rx.HasErrorFrame() {
			continue
		}
		f := b.rx.Frame()
		id := f.ID
		if f.IsExtended {
			id |= effFlag
		}
		b.dispatch(Frame{ID: id, Length: f.Length, Data: [8]byte(f.Data)})
	}
	if ctx.Err() != nil {
		return nil
	}
	return b.rx.Err()
}

func (b *EinrideBus) Close() error {
	return b.conn.Close()
}
