package vx1

import "fmt"

// Logger is the leveled logger used by the engine
type Logger interface {
	Printf(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	DebugCAN(direction string, id uint32, data []byte, length uint8)
}

// nopLogger discards everything; used when no logger is configured
type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{})                          {}
func (nopLogger) Debug(format string, v ...interface{})                           {}
func (nopLogger) Info(format string, v ...interface{})                            {}
func (nopLogger) Warn(format string, v ...interface{})                            {}
func (nopLogger) Error(format string, v ...interface{})                           {}
func (nopLogger) DebugCAN(direction string, id uint32, data []byte, length uint8) {}

// DebugCANFrame formats and logs a CAN frame
func DebugCANFrame(logger Logger, direction string, id uint32, data [8]byte) {
	if logger != nil {
		logger.DebugCAN(direction, id, data[:], 8)
	}
}

// FormatFrame renders a frame as "ID#DATA" for log lines
func FormatFrame(id uint32, data [8]byte) string {
	return fmt.Sprintf("%08X#%X", id, data[:])
}
