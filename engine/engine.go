package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

type Stage uint8

const (
	// Runner is in an uninitialized state
	StageUninitialized Stage = iota
	// Runner is currently initializing the lesson
	StageInitializing
	// Lesson initialization is complete
	StageInitialized
	// Runner is currently running frames
	StageRunning
	// Runner is in the process of shutting down
	StageShuttingDown
	// Runner has shut down and cannot be restarted
	StageShutdown
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageInitializing:
		return "initializing"
	case StageInitialized:
		return "initialized"
	case StageRunning:
		return "running"
	case StageShuttingDown:
		return "shutting down"
	}
	return "shut down"
}

/**
 * @brief Drives a lesson: pumps window events, acquires a command buffer
 * and swapchain texture each frame, calls the lesson and submits.
 */
type Runner struct {
	stage   Stage
	lesson  Lesson
	ctx     *Context
	events  *core.EventQueue
	clock   *core.Clock
	metrics *core.Metrics

	stopping  atomic.Bool
	suspended bool
	frames    int
	lastLog   float64
}

// NewRunner prepares lesson to run on device and window. Events pushed to
// events by the window, or by Stop, are handled at the start of each frame.
func NewRunner(lesson Lesson, config AppConfig, device gpu.RenderDevice, window Window, loader gpu.ImageLoader, events *core.EventQueue) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ctx, err := newContext(device, window, loader, config)
	if err != nil {
		return nil, err
	}
	return &Runner{
		stage:   StageUninitialized,
		lesson:  lesson,
		ctx:     ctx,
		events:  events,
		clock:   core.NewClock(),
		metrics: core.NewMetrics(),
	}, nil
}

func (r *Runner) Context() *Context {
	return r.ctx
}

func (r *Runner) Stage() Stage {
	return r.stage
}

// Frames is the number of frames submitted so far.
func (r *Runner) Frames() int {
	return r.frames
}

// Initialize creates the depth texture if the lesson wants one, then runs
// the lesson's Init and an initial Resize.
func (r *Runner) Initialize() error {
	if r.stage != StageUninitialized {
		return fmt.Errorf("runner cannot initialize while %s", r.stage)
	}
	r.stage = StageInitializing
	config := r.ctx.config

	if err := r.ctx.Device.SetVSync(config.VSync); err != nil {
		return core.NewDeviceError("SetVSync", err)
	}
	width, height := r.ctx.Window.FramebufferSize()
	if r.ctx.depthFormat != gpu.TextureFormatInvalid {
		if err := r.ctx.setupDepthTexture(uint32(max(width, 0)), uint32(max(height, 0))); err != nil {
			return err
		}
	}
	if config.Fullscreen {
		r.ctx.Window.SetFullscreen(true)
	}

	if err := r.lesson.Init(r.ctx); err != nil {
		return err
	}
	r.lesson.Resize(r.ctx, width, height)
	r.stage = StageInitialized
	core.LogInfo("lesson '%s' initialized at %dx%d", config.Title, width, height)
	return nil
}

// Stop asks the run loop to quit after the current frame. It is safe to call
// from any goroutine.
func (r *Runner) Stop() {
	r.stopping.Store(true)
	r.events.Push(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
}

// Run calls Frame until the lesson quits, the frame limit is reached or a
// frame fails.
func (r *Runner) Run() error {
	if r.stage != StageInitialized {
		return fmt.Errorf("runner cannot run while %s", r.stage)
	}
	r.stage = StageRunning
	r.clock.Start()

	limit := r.ctx.config.MaxFrames
	for !r.stopping.Load() {
		running, err := r.Frame()
		if err != nil {
			core.LogError("frame %d failed: %s", r.frames, err)
			return err
		}
		if !running || (limit > 0 && r.frames >= limit) {
			break
		}
	}
	return nil
}

// Frame handles pending events and draws one frame. It returns false once
// the lesson should quit.
func (r *Runner) Frame() (bool, error) {
	if !r.pumpEvents() {
		return false, nil
	}
	defer r.ctx.keys.Update()
	if r.suspended {
		return true, nil
	}

	r.clock.Update()
	frameStart := r.clock.Elapsed()

	device := r.ctx.Device
	cmd, err := device.AcquireCommandBuffer()
	if err != nil {
		return false, core.NewDeviceError(gpu.OpAcquireCommandBuffer, err)
	}
	swapchain, width, height, err := device.WaitAndAcquireSwapchainTexture(cmd)
	if err != nil {
		device.CancelCommandBuffer(cmd)
		return false, core.NewDeviceError("WaitAndAcquireSwapchainTexture", err)
	}
	if !swapchain.Valid() {
		// Nothing to draw to, usually a minimised window.
		device.CancelCommandBuffer(cmd)
		return true, nil
	}
	if err := r.ctx.ensureDepthTexture(width, height); err != nil {
		device.CancelCommandBuffer(cmd)
		return false, err
	}
	if err := r.lesson.Draw(r.ctx, cmd, swapchain); err != nil {
		device.CancelCommandBuffer(cmd)
		return false, err
	}
	if err := device.SubmitCommandBuffer(cmd); err != nil {
		return false, core.NewDeviceError(gpu.OpSubmitCommandBuffer, err)
	}
	r.frames++

	r.clock.Update()
	now := r.clock.Elapsed()
	r.metrics.Update(now - frameStart)
	if now-r.lastLog >= 1 {
		fps, frameTime := r.metrics.Frame()
		core.Logger().Debug("frame stats", "fps", fps, "ms", frameTime, "frames", r.frames)
		r.lastLog = now
	}
	return true, nil
}

// pumpEvents drains the event queue. It returns false on a quit request.
func (r *Runner) pumpEvents() bool {
	r.ctx.Window.PollEvents()
	for {
		e, ok := r.events.Poll()
		if !ok {
			return true
		}
		switch e.Code {
		case core.EVENT_CODE_APPLICATION_QUIT:
			return false
		case core.EVENT_CODE_KEY_PRESSED, core.EVENT_CODE_KEY_RELEASED:
			down := e.Down()
			r.ctx.keys.Process(e.Key, down)
			if down && e.Key == core.KEY_ESCAPE {
				return false
			}
			if down && e.Key == core.KEY_F1 {
				if !e.Repeat {
					r.ctx.Window.SetFullscreen(!r.ctx.Window.Fullscreen())
				}
				continue
			}
			r.lesson.Key(r.ctx, e.Key, down, e.Repeat)
		case core.EVENT_CODE_RESIZED:
			r.suspended = e.Width <= 0 || e.Height <= 0
			if r.suspended {
				core.LogDebug("window minimised, suspending")
				continue
			}
			r.lesson.Resize(r.ctx, e.Width, e.Height)
		case core.EVENT_CODE_FOCUS_LOST:
			r.ctx.keys.Reset()
		}
	}
}

// Shutdown quits the lesson and releases the depth texture. The device and
// window belong to the caller.
func (r *Runner) Shutdown() error {
	switch r.stage {
	case StageShuttingDown, StageShutdown:
		return nil
	case StageUninitialized:
		r.stage = StageShutdown
		return nil
	}
	initialized := r.stage != StageInitializing
	r.stage = StageShuttingDown
	if err := r.ctx.Device.WaitIdle(); err != nil {
		core.LogWarn("device did not become idle: %s", err)
	}
	if initialized {
		r.lesson.Quit(r.ctx)
	}
	r.ctx.releaseDepthTexture()
	r.stage = StageShutdown
	core.LogInfo("lesson '%s' shut down after %d frames", r.ctx.config.Title, r.frames)
	return nil
}
