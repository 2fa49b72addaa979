package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// IPCTx publishes display state and vehicle telemetry to the vx1 hash
type IPCTx struct {
	log   *LeveledLogger
	redis *redis.Client
	mu    sync.Mutex
	ctx   context.Context
}

func NewIPCTx(logger *LeveledLogger, redis *redis.Client) *IPCTx {
	return &IPCTx{
		log:   logger,
		redis: redis,
		ctx:   context.Background(),
	}
}

func (tx *IPCTx) Destroy() {}

func (tx *IPCTx) SendDisplay(data RedisDisplay) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	fields := map[string]interface{}{
		"odometer:owner": data.OdometerOwner,
		"odometer":       data.Odometer,
		"clock:owner":    data.ClockOwner,
		"clock":          data.Clock,
	}
	for name, state := range data.Telltales {
		fields["telltale:"+name] = state
	}

	pipe := tx.redis.Pipeline()
	pipe.HSet(tx.ctx, redisStatusHash, fields)
	pipe.Publish(tx.ctx, redisStatusHash, "display")

	if _, err := pipe.Exec(tx.ctx); err != nil {
		return fmt.Errorf("failed to send display state: %v", err)
	}
	return nil
}

func (tx *IPCTx) SendTelemetry(data RedisTelemetry) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.redis.HSet(tx.ctx, redisStatusHash,
		"speed", formatFloat(data.Speed),
		"bus:voltage", formatFloat(data.BusVoltage),
		"bus:current", formatFloat(data.BusCurrent),
		"kwh-per-100km", formatFloat(data.KWhPer100km),
	).Err(); err != nil {
		return fmt.Errorf("failed to send telemetry: %v", err)
	}
	return nil
}
