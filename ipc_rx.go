package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-redis/redis/v8"

	"vx1-service/params"
)

// FirstNode is the master flag published by the BMS service
type FirstNode struct {
	v atomic.Bool
}

func (f *FirstNode) Set(first bool) {
	f.v.Store(first)
}

func (f *FirstNode) IsFirstNode() bool {
	return f.v.Load()
}

// paramWriter is the part of the parameter store IPCRx writes to
type paramWriter interface {
	SetByName(name string, value float64) error
}

// IPCRx mirrors the bms and vx1-settings hashes into the parameter store
type IPCRx struct {
	log       *LeveledLogger
	redis     *redis.Client
	params    paramWriter
	firstNode *FirstNode
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc

	subscriptions []*redis.PubSub
}

func NewIPCRx(logger *LeveledLogger, redis *redis.Client, store paramWriter, firstNode *FirstNode) *IPCRx {
	ctx, cancel := context.WithCancel(context.Background())

	rx := &IPCRx{
		log:       logger,
		redis:     redis,
		params:    store,
		firstNode: firstNode,
		ctx:       ctx,
		cancel:    cancel,
	}

	// read before subscribing so the first tasks already see real values
	for _, hash := range []string{redisSettingsHash, redisBMSHash} {
		rx.readHash(hash)
	}

	for _, hash := range []string{redisSettingsHash, redisBMSHash} {
		sub := rx.redis.Subscribe(rx.ctx, hash)
		rx.subscriptions = append(rx.subscriptions, sub)
		go rx.handleSubscription(hash, sub)
	}

	return rx
}

func (rx *IPCRx) handleSubscription(hash string, sub *redis.PubSub) {
	rx.log.Info("Starting %s subscription handler", hash)

	for {
		msg, err := sub.Receive(rx.ctx)
		if err != nil {
			if rx.ctx.Err() != nil {
				return
			}
			// Closed client: panic to trigger systemd restart
			if err.Error() == "redis: client is closed" {
				rx.log.Error("Redis connection lost on %s subscription - restarting service", hash)
				panic("Redis disconnected")
			}
			rx.log.Error("%s subscription error: %v", hash, err)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			rx.log.Debug("%s message received: payload=%s", hash, m.Payload)
			rx.handleMessage(hash, m.Payload)
		case *redis.Subscription:
			rx.log.Debug("%s subscription event: %s", m.Channel, m.Kind)
		}
	}
}

// handleMessage refreshes a single field when the payload names one, and
// the whole hash otherwise
func (rx *IPCRx) handleMessage(hash, field string) {
	if field == redisFirstNodeField || isParamName(field) {
		value, err := rx.redis.HGet(rx.ctx, hash, field).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			rx.log.Error("Failed to read %s %s: %v", hash, field, err)
			return
		}
		rx.apply(hash, field, value)
		return
	}
	rx.readHash(hash)
}

func (rx *IPCRx) readHash(hash string) {
	values, err := rx.redis.HGetAll(rx.ctx, hash).Result()
	if err != nil {
		rx.log.Error("Failed to read %s: %v", hash, err)
		return
	}
	rx.applyAll(hash, values)
}

func (rx *IPCRx) applyAll(hash string, values map[string]string) {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	for field, value := range values {
		rx.applyLocked(hash, field, value)
	}
}

func (rx *IPCRx) apply(hash, field, value string) {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	rx.applyLocked(hash, field, value)
}

func (rx *IPCRx) applyLocked(hash, field, value string) {
	if field == redisFirstNodeField {
		v, err := parseRedisValue(value)
		if err != nil {
			rx.log.Warn("Invalid %s %s: %q", hash, field, value)
			return
		}
		if rx.firstNode != nil {
			rx.firstNode.Set(v != 0)
		}
		return
	}

	if !isParamName(field) {
		return
	}
	v, err := parseRedisValue(value)
	if err != nil {
		rx.log.Warn("Invalid %s %s: %q", hash, field, value)
		return
	}
	if err := rx.params.SetByName(field, v); err != nil {
		rx.log.Warn("Failed to set %s: %v", field, err)
	}
}

func isParamName(name string) bool {
	_, ok := params.LookupName(name)
	return ok
}

func (rx *IPCRx) Destroy() {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	if rx.cancel != nil {
		rx.cancel()
	}

	for _, sub := range rx.subscriptions {
		sub.Close()
	}
}
