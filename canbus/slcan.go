package canbus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

const (
	slcanReadTimeout = 100 * time.Millisecond
	slcanTerminator  = '\r'
)

var slcanBitrates = map[Bitrate]string{
	Bitrate125k: "S4",
	Bitrate250k: "S5",
	Bitrate500k: "S6",
	Bitrate1M:   "S8",
}

// BitrateCommand returns the SLCAN setup command for b
func BitrateCommand(b Bitrate) (string, error) {
	cmd, ok := slcanBitrates[b]
	if !ok {
		return "", fmt.Errorf("unsupported SLCAN bitrate %d", b)
	}
	return cmd, nil
}

// EncodeFrame renders f as an SLCAN transmit command including the
// terminator, e.g. "T0CFEEDF98...\r"
func EncodeFrame(f Frame) string {
	var builder strings.Builder
	length := f.Length
	if length > 8 {
		length = 8
	}
	if IsExtended(f) {
		builder.WriteByte('T')
		builder.WriteString(fmt.Sprintf("%08X", FrameID(f)))
	} else {
		builder.WriteByte('t')
		builder.WriteString(fmt.Sprintf("%03X", FrameID(f)))
	}
	builder.WriteByte('0' + length)
	for i := uint8(0); i < length; i++ {
		builder.WriteString(fmt.Sprintf("%02X", f.Data[i]))
	}
	builder.WriteByte(slcanTerminator)
	return builder.String()
}

// DecodeFrame parses an SLCAN data frame line without the terminator
func DecodeFrame(line string) (Frame, error) {
	if line == "" {
		return Frame{}, errors.New("empty SLCAN line")
	}

	var f Frame
	var flags uint32
	idLen := 3
	switch line[0] {
	case 't':
	case 'T':
		flags = effFlag
		idLen = 8
	default:
		return Frame{}, fmt.Errorf("not an SLCAN data frame: %q", line)
	}
	if len(line) < 1+idLen+1 {
		return Frame{}, fmt.Errorf("short SLCAN frame: %q", line)
	}

	id, err := strconv.ParseUint(line[1:1+idLen], 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid SLCAN id in %q: %w", line, err)
	}
	f.ID = uint32(id) | flags

	dlc := line[1+idLen]
	if dlc < '0' || dlc > '8' {
		return Frame{}, fmt.Errorf("invalid SLCAN length in %q", line)
	}
	f.Length = dlc - '0'

	payload := line[2+idLen:]
	if len(payload) < int(f.Length)*2 {
		return Frame{}, fmt.Errorf("short SLCAN payload in %q", line)
	}
	for i := 0; i < int(f.Length); i++ {
		b, err := strconv.ParseUint(payload[2*i:2*i+2], 16, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid SLCAN data in %q: %w", line, err)
		}
		f.Data[i] = byte(b)
	}
	return f, nil
}

// SLCANBus is a serial SLCAN adapter opened with github.com/tarm/serial
type SLCANBus struct {
	dispatcher
	port    io.ReadWriteCloser
	writeMu sync.Mutex
}

// NewSLCANBus opens the adapter at device, sets the bus bitrate and opens
// the channel
func NewSLCANBus(device string, baud int, bitrate Bitrate) (*SLCANBus, error) {
	setup, err := BitrateCommand(bitrate)
	if err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: slcanReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	b := newSLCANBus(port)
	for _, cmd := range []string{"C", setup, "O"} {
		if err := b.write(cmd + string(slcanTerminator)); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to configure SLCAN adapter: %w", err)
		}
	}
	return b, nil
}

func newSLCANBus(port io.ReadWriteCloser) *SLCANBus {
	return &SLCANBus{port: port}
}

func (b *SLCANBus) write(s string) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_, err := io.WriteString(b.port, s)
	return err
}

func (b *SLCANBus) Send(frame Frame) error {
	return b.write(EncodeFrame(frame))
}

// Run reads SLCAN lines until ctx is done. Acknowledgements and error bells
// from the adapter are skipped.
func (b *SLCANBus) Run(ctx context.Context) error {
	reader := bufio.NewReader(b.port)
	var line []byte
	for {
		if ctx.Err() != nil {
			return nil
		}
		c, err := reader.ReadByte()
		if err == io.EOF {
			// read timeout
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("SLCAN read: %w", err)
		}

		switch c {
		case slcanTerminator, '\a':
			if len(line) > 0 && (line[0] == 't' || line[0] == 'T') {
				if f, err := DecodeFrame(string(line)); err == nil {
					b.dispatch(f)
				}
			}
			line = line[:0]
		default:
			line = append(line, c)
		}
	}
}

func (b *SLCANBus) Close() error {
	b.write("C" + string(slcanTerminator))
	return b.port.Close()
}
