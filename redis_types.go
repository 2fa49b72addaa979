package main

import (
	"strconv"

	"vx1-service/params"
	"vx1-service/vx1"
)

// Redis keys and channels
const (
	redisBMSHash      = "bms"
	redisSettingsHash = "vx1-settings"
	redisStatusHash   = "vx1"

	redisFirstNodeField = "first-node"
)

// RedisDisplay is what the dashboard currently shows, as written to the vx1 hash
type RedisDisplay struct {
	OdometerOwner string
	Odometer      string
	ClockOwner    string
	Clock         string
	Telltales     map[string]string
}

func NewRedisDisplay(s vx1.DisplayStatus) RedisDisplay {
	d := RedisDisplay{
		OdometerOwner: s.OdometerOwner.String(),
		Odometer:      s.Odometer,
		ClockOwner:    s.ClockOwner.String(),
		Clock:         s.Clock,
		Telltales:     make(map[string]string, len(s.Telltales)),
	}
	for i, state := range s.Telltales {
		t := vx1.Telltale(i)
		if t == vx1.TelltaleReserved {
			continue
		}
		d.Telltales[t.String()] = state.String()
	}
	return d
}

// RedisTelemetry holds the vehicle values decoded from the bus
type RedisTelemetry struct {
	Speed       float64
	BusVoltage  float64
	BusCurrent  float64
	KWhPer100km float64
}

func NewRedisTelemetry(p *params.Store) RedisTelemetry {
	return RedisTelemetry{
		Speed:       p.GetFloat(params.VX1Speed),
		BusVoltage:  p.GetFloat(params.VX1BusVoltage),
		BusCurrent:  p.GetFloat(params.VX1BusCurrent),
		KWhPer100km: p.GetFloat(params.VX1KWhPer100km),
	}
}

// parseRedisValue accepts plain numbers and the on/off and true/false words
// used by other services
func parseRedisValue(s string) (float64, error) {
	switch s {
	case "on", "true", "yes":
		return 1, nil
	case "off", "false", "no":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
