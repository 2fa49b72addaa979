package main

import "log"

type LogLevel int

const (
	LogLevelNone  LogLevel = 0
	LogLevelError LogLevel = 1
	LogLevelWarn  LogLevel = 2
	LogLevelInfo  LogLevel = 3
	LogLevelDebug LogLevel = 4
)

// CANDriver selects the CAN transport implementation
type CANDriver string

const (
	CANDriverBrutella CANDriver = "brutella"
	CANDriverEinride  CANDriver = "einride"
	CANDriverSLCAN    CANDriver = "slcan"
)

type Options struct {
	LogLevel        LogLevel
	RedisServerAddr string
	RedisServerPort uint16
	CANDevice       string
	CANDriver       CANDriver
	SerialBaud      int
	SourceAddress   uint8
	// FSMOracle makes the first-node flag published by the BMS service
	// decide mastership instead of the module address.
	FSMOracle bool
	Logger    *log.Logger
}
