package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"vx1-service/canbus"
	"vx1-service/params"
	"vx1-service/scheduler"
	"vx1-service/vx1"
)

const (
	redisHealthInterval = 30 * time.Second
	telemetryInterval   = 1 * time.Second
)

type VX1App struct {
	log       *LeveledLogger
	redis     *redis.Client
	params    *params.Store
	firstNode *FirstNode
	sched     *scheduler.Scheduler
	bus       canbus.Bus
	engine    *vx1.Engine
	ipcRx     *IPCRx
	ipcTx     *IPCTx
	diag      *Diag
	statusCh  chan vx1.DisplayStatus
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewVX1App(opts *Options) (*VX1App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), fmt.Sprintf("%s: ", ProjectName), log.LstdFlags)
	}

	app := &VX1App{
		log:       NewLeveledLogger(logger, opts.LogLevel),
		params:    params.NewStore(),
		firstNode: &FirstNode{},
		sched:     scheduler.New(),
		statusCh:  make(chan vx1.DisplayStatus, 1),
		ctx:       ctx,
		cancel:    cancel,
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.RedisServerAddr, opts.RedisServerPort),
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	app.log.Info("Connecting to Redis at %s:%d...", opts.RedisServerAddr, opts.RedisServerPort)
	if err := app.redis.Ping(connectCtx).Err(); err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	app.log.Info("Successfully connected to Redis")

	app.ipcTx = NewIPCTx(app.log, app.redis)
	app.diag = NewDiag(app.log, app.redis)

	// settings must be loaded before the bitrate is chosen
	app.ipcRx = NewIPCRx(app.log, app.redis, app.params, app.firstNode)
	app.log.Info("IPC RX component initialized")

	bitrate := vx1.Bitrate(app.params)
	bus, err := openBus(ctx, opts, bitrate)
	if err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to initialize CAN bus: %v", err)
	}
	app.bus = bus
	app.log.Info("CAN bus %s opened with driver %s at %d bit/s", opts.CANDevice, opts.CANDriver, bitrate)

	var master vx1.MasterOracle
	if opts.FSMOracle {
		master = app.firstNode
	}

	app.engine = vx1.NewEngine(vx1.Config{
		Logger:        app.log,
		Transport:     bus,
		Params:        app.params,
		Master:        master,
		Clock:         vx1.NewSystemClock(),
		SourceAddress: opts.SourceAddress,
		OnStatus:      app.offerStatus,
		OnFault:       app.diag.Report,
	})

	app.params.OnChange(func(id params.ID, value float64) {
		app.sched.Post(func() { app.engine.HandleParamChange(id, value) })
	})

	bus.AddFilter(vx1.VehicleFilterID, vx1.VehicleFilterMask)
	bus.OnFrame(app.handleFrame)

	if err := app.ipcTx.SendDisplay(NewRedisDisplay(app.engine.Status())); err != nil {
		app.log.Warn("Failed to write default display state: %v", err)
	}

	app.engine.Start(app.sched)

	go func() {
		if err := app.sched.Run(ctx); err != nil {
			app.log.Error("Task loop stopped: %v", err)
		}
	}()

	go func() {
		if err := bus.Run(ctx); err != nil {
			app.log.Error("CAN bus receive error: %v", err)
		}
	}()

	go app.diag.Run(ctx)
	go app.publishStatus()
	go app.publishTelemetry()
	go app.redisHealthCheck()

	return app, nil
}

func openBus(ctx context.Context, opts *Options, bitrate int) (canbus.Bus, error) {
	switch opts.CANDriver {
	case CANDriverEinride:
		return canbus.NewEinrideBus(ctx, opts.CANDevice)
	case CANDriverSLCAN:
		return canbus.NewSLCANBus(opts.CANDevice, opts.SerialBaud, canbus.Bitrate(bitrate))
	default:
		return canbus.NewBrutellaBus(opts.CANDevice)
	}
}

func (app *VX1App) handleFrame(f canbus.Frame) {
	app.log.DebugFrame("RX", f)

	if !app.sched.Post(func() { app.engine.HandleCANFrame(f) }) {
		app.log.Warn("Task queue full, dropping frame %08X", canbus.FrameID(f))
	}
}

// offerStatus keeps only the newest display snapshot when the publisher
// falls behind
func (app *VX1App) offerStatus(s vx1.DisplayStatus) {
	for {
		select {
		case app.statusCh <- s:
			return
		default:
		}
		select {
		case <-app.statusCh:
		default:
		}
	}
}

func (app *VX1App) publishStatus() {
	for {
		select {
		case <-app.ctx.Done():
			return
		case s := <-app.statusCh:
			if err := app.ipcTx.SendDisplay(NewRedisDisplay(s)); err != nil {
				app.log.Warn("%v", err)
			}
		}
	}
}

func (app *VX1App) publishTelemetry() {
	ticker := time.NewTicker(telemetryInterval)
	defer ticker.Stop()

	var last RedisTelemetry
	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			t := NewRedisTelemetry(app.params)
			if t == last {
				continue
			}
			if err := app.ipcTx.SendTelemetry(t); err != nil {
				app.log.Warn("%v", err)
				continue
			}
			last = t
		}
	}
}

func (app *VX1App) redisHealthCheck() {
	ticker := time.NewTicker(redisHealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(app.ctx, 2*time.Second)
			if err := app.redis.Ping(ctx).Err(); err != nil {
				app.log.Error("Redis health check failed: %v", err)
			}
			cancel()
		}
	}
}

func (app *VX1App) Destroy() {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.log.Info("Shutting down vx1 application...")

	if app.cancel != nil {
		app.cancel()
	}

	if app.ipcRx != nil {
		app.ipcRx.Destroy()
		app.log.Info("IPC RX shutdown complete")
	}

	if app.bus != nil {
		if err := app.bus.Close(); err != nil {
			app.log.Warn("Error closing CAN bus: %v", err)
		}
		app.log.Info("CAN bus closed")
	}

	if app.diag != nil {
		app.diag.Destroy()
	}

	if app.ipcTx != nil {
		app.ipcTx.Destroy()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Error("Error closing Redis connection: %v", err)
		} else {
			app.log.Info("Redis connection closed")
		}
	}

	app.log.Info("VX1 application shutdown complete")
}
