package main

import (
	"log"

	"vx1-service/canbus"
	"vx1-service/vx1"
)

var levelTags = map[LogLevel]string{
	LogLevelError: "[ERROR] ",
	LogLevelWarn:  "[WARN] ",
	LogLevelInfo:  "[INFO] ",
	LogLevelDebug: "[DEBUG] ",
}

// LeveledLogger filters messages below the configured level
type LeveledLogger struct {
	logger   *log.Logger
	logLevel LogLevel
}

func NewLeveledLogger(logger *log.Logger, level LogLevel) *LeveledLogger {
	return &LeveledLogger{
		logger:   logger,
		logLevel: level,
	}
}

func (l *LeveledLogger) logf(level LogLevel, format string, v ...interface{}) {
	if l.logLevel >= level {
		l.logger.Printf(levelTags[level]+format, v...)
	}
}

func (l *LeveledLogger) Debug(format string, v ...interface{}) { l.logf(LogLevelDebug, format, v...) }
func (l *LeveledLogger) Info(format string, v ...interface{})  { l.logf(LogLevelInfo, format, v...) }
func (l *LeveledLogger) Warn(format string, v ...interface{})  { l.logf(LogLevelWarn, format, v...) }
func (l *LeveledLogger) Error(format string, v ...interface{}) { l.logf(LogLevelError, format, v...) }

// Printf logs at INFO level
func (l *LeveledLogger) Printf(format string, v ...interface{}) {
	l.Info(format, v...)
}

func (l *LeveledLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf("[FATAL] "+format, v...)
}

func (l *LeveledLogger) SetLevel(level LogLevel) {
	l.logLevel = level
}

func (l *LeveledLogger) GetLevel() LogLevel {
	return l.logLevel
}

// DebugCAN logs a frame with its 29-bit identifier at DEBUG level
func (l *LeveledLogger) DebugCAN(direction string, id uint32, data []byte, length uint8) {
	if l.logLevel < LogLevelDebug {
		return
	}
	n := int(length)
	if n > len(data) {
		n = len(data)
	}
	l.logger.Printf("[DEBUG] CAN %s: ID=0x%08X Len=%d Data=[% X]", direction, id, length, data[:n])
}

// DebugFrame logs an inbound bus frame
func (l *LeveledLogger) DebugFrame(direction string, f canbus.Frame) {
	l.DebugCAN(direction, canbus.FrameID(f), f.Data[:], f.Length)
}

var _ vx1.Logger = (*LeveledLogger)(nil)
