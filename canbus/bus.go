// Package canbus provides CAN transports for the VX1 service: SocketCAN via
// brutella/can or go.einride.tech/can, and SLCAN adapters on a serial port.
package canbus

import (
	"context"
	"sync"

	"github.com/brutella/can"
)

// Frame is the SocketCAN frame layout used by every driver. The identifier
// carries the extended frame flag in bit 31.
type Frame = can.Frame

// Handler is called for every inbound frame that passes the filters
type Handler func(Frame)

// Bus is a CAN transport
type Bus interface {
	Send(frame Frame) error
	// AddFilter accepts inbound frames with id&mask == filterID&mask. With no
	// filters registered every frame is delivered.
	AddFilter(id, mask uint32)
	OnFrame(h Handler)
	// Run receives frames until ctx is done or the bus fails
	Run(ctx context.Context) error
	Close() error
}

// Bitrate of the bus in bit/s
type Bitrate int

const (
	Bitrate125k Bitrate = 125000
	Bitrate250k Bitrate = 250000
	Bitrate500k Bitrate = 500000
	Bitrate1M   Bitrate = 1000000
)

const effFlag uint32 = can.MaskEff

// NewFrame builds an 8-byte extended data frame
func NewFrame(id uint32, data [8]byte) Frame {
	return Frame{ID: id&can.MaskIDEff | effFlag, Length: 8, Data: data}
}

// IsExtended reports whether f has a 29-bit identifier
func IsExtended(f Frame) bool {
	return f.ID&effFlag != 0
}

// FrameID returns the identifier of f without flag bits
func FrameID(f Frame) uint32 {
	if IsExtended(f) {
		return f.ID & can.MaskIDEff
	}
	return f.ID & can.MaskIDSff
}

type filter struct {
	id   uint32
	mask uint32
}

// dispatcher holds filters and handlers shared by all drivers
type dispatcher struct {
	mu       sync.RWMutex
	filters  []filter
	handlers []Handler
}

func (d *dispatcher) AddFilter(id, mask uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = append(d.filters, filter{id: id & mask, mask: mask})
}

func (d *dispatcher) OnFrame(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *dispatcher) accepts(id uint32) bool {
	if len(d.filters) == 0 {
		return true
	}
	for _, f := range d.filters {
		if id&f.mask == f.id {
			return true
		}
	}
	return false
}

func (d *dispatcher) dispatch(f Frame) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.accepts(FrameID(f)) {
		return
	}
	for _, h := range d.handlers {
		h(f)
	}
}
