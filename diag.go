package main

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"

	"vx1-service/vx1"
)

const (
	diagGroupName           = "vx1"
	diagFaultSetKey         = "vx1:fault"
	diagEventStream         = "events:faults"
	diagEventStreamMaxLen   = 1000
	diagNotificationChannel = "vx1"
	diagQueueSize           = 16
)

type faultEvent struct {
	code    vx1.ErrorCode
	present bool
}

// Diag records fault transitions reported by the display engine. Report is
// called from the task loop and never blocks; Redis writes happen in Run.
type Diag struct {
	log         *LeveledLogger
	redis       *redis.Client
	mu          sync.Mutex
	faultStates map[vx1.ErrorCode]bool
	events      chan faultEvent
	ctx         context.Context
}

func NewDiag(logger *LeveledLogger, redis *redis.Client) *Diag {
	return &Diag{
		log:         logger,
		redis:       redis,
		faultStates: make(map[vx1.ErrorCode]bool),
		events:      make(chan faultEvent, diagQueueSize),
		ctx:         context.Background(),
	}
}

func (d *Diag) Destroy() {}

// Report queues a fault transition
func (d *Diag) Report(code vx1.ErrorCode, present bool) {
	select {
	case d.events <- faultEvent{code: code, present: present}:
	default:
		d.log.Warn("Fault queue full, dropping %s present=%v", vx1.ShortCode(code), present)
	}
}

func (d *Diag) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.SetFaultPresence(ev.code, ev.present)
		}
	}
}

func (d *Diag) SetFaultPresence(code vx1.ErrorCode, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if code == vx1.ErrorNone {
		return
	}
	if d.faultStates[code] == present {
		return
	}
	d.faultStates[code] = present

	if _, ok := vx1.GetFaultConfig(code); !ok {
		d.log.Warn("Unknown fault code: %d", code)
	}

	if present {
		d.log.Warn("Fault set: code=%d, description=%s", code, vx1.Description(code))
		d.reportFaultPresent(code)
	} else {
		d.log.Info("Fault cleared: code=%d, description=%s", code, vx1.Description(code))
		d.reportFaultAbsent(code)
	}
}

func (d *Diag) reportFaultPresent(code vx1.ErrorCode) {
	pipe := d.redis.Pipeline()

	pipe.SAdd(d.ctx, diagFaultSetKey, uint32(code))

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: map[string]interface{}{
			"group":       diagGroupName,
			"code":        uint32(code),
			"short":       vx1.ShortCode(code),
			"description": vx1.Description(code),
		},
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "fault")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report fault present: %v", err)
	}
}

func (d *Diag) reportFaultAbsent(code vx1.ErrorCode) {
	pipe := d.redis.Pipeline()

	pipe.SRem(d.ctx, diagFaultSetKey, uint32(code))

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: map[string]interface{}{
			"group": diagGroupName,
			"code":  -int64(code),
		},
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "fault")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report fault absent: %v", err)
	}
}
