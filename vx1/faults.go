package vx1

// ErrorCode is a BMS error message number
type ErrorCode uint32

const (
	ErrorNone ErrorCode = iota
	ErrorMuxShort
	ErrorBalancerFail
	ErrorCellPolarity
	ErrorCellOvervoltage
)

type FaultConfig struct {
	Code        ErrorCode
	ShortCode   string
	Description string
}

var faultConfigs = map[ErrorCode]FaultConfig{
	ErrorMuxShort:        {ErrorMuxShort, "MSH", "Multiplexer short"},
	ErrorBalancerFail:    {ErrorBalancerFail, "BAL", "Balancer failure"},
	ErrorCellPolarity:    {ErrorCellPolarity, "CPOL", "Cell polarity reversed"},
	ErrorCellOvervoltage: {ErrorCellOvervoltage, "COV", "Cell over-voltage"},
}

// GetFaultConfig returns the table entry for a known error code
func GetFaultConfig(code ErrorCode) (FaultConfig, bool) {
	config, ok := faultConfigs[code]
	return config, ok
}

// ShortCode returns the display abbreviation of an error, "ERR" when unknown
func ShortCode(code ErrorCode) string {
	if config, ok := faultConfigs[code]; ok {
		return config.ShortCode
	}
	return "ERR"
}

// Description returns a human-readable description of an error code
func Description(code ErrorCode) string {
	if code == ErrorNone {
		return "No error"
	}
	if config, ok := faultConfigs[code]; ok {
		return config.Description
	}
	return "Unknown error"
}
