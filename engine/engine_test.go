package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/gpu/headless"
)

type keyEvent struct {
	key          core.KeyCode
	down, repeat bool
}

type recordingLesson struct {
	BaseLesson
	config  AppConfig
	initErr error
	drawErr error

	inits, quits, draws int
	resizes             [][2]int32
	keys                []keyEvent
	upHeld              []bool
}

func (l *recordingLesson) Config() AppConfig { return l.config }

func (l *recordingLesson) Init(ctx *Context) error {
	l.inits++
	return l.initErr
}

func (l *recordingLesson) Quit(ctx *Context) { l.quits++ }

func (l *recordingLesson) Resize(ctx *Context, width, height int32) {
	l.resizes = append(l.resizes, [2]int32{width, height})
}

func (l *recordingLesson) Key(ctx *Context, key core.KeyCode, down, repeat bool) {
	l.keys = append(l.keys, keyEvent{key, down, repeat})
}

func (l *recordingLesson) Draw(ctx *Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	l.draws++
	l.upHeld = append(l.upHeld, ctx.Keys().IsDown(core.KEY_UP))
	if l.drawErr != nil {
		return l.drawErr
	}
	pass, err := ctx.BeginClearPass(cmd, swapchain, 1, 0, 0, 1)
	if err != nil {
		return err
	}
	return ctx.Device.EndRenderPass(pass)
}

type harness struct {
	device *headless.Device
	window *headless.Window
	lesson *recordingLesson
	runner *Runner
}

func newHarness(t *testing.T, mutate func(*AppConfig)) *harness {
	t.Helper()
	config := DefaultConfig()
	config.Width, config.Height = 8, 4
	if mutate != nil {
		mutate(&config)
	}
	device := headless.NewDevice(uint32(config.Width), uint32(config.Height))
	events := core.NewEventQueue()
	window := headless.NewWindow(device, events)
	lesson := &recordingLesson{config: config}
	runner, err := NewRunner(lesson, config, device, window, nil, events)
	require.NoError(t, err)
	return &harness{device: device, window: window, lesson: lesson, runner: runner}
}

func TestRunnerInitializeResizes(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())
	assert.Equal(t, StageInitialized, h.runner.Stage())
	assert.Equal(t, 1, h.lesson.inits)
	assert.Equal(t, [][2]int32{{8, 4}}, h.lesson.resizes)
	assert.False(t, h.runner.Context().DepthTexture().Valid())
	assert.True(t, h.device.VSync())

	assert.Error(t, h.runner.Initialize())
}

func TestRunnerInitFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.lesson.initErr = errors.New("no shaders")
	assert.ErrorIs(t, h.runner.Initialize(), h.lesson.initErr)
	assert.Error(t, h.runner.Run())
	require.NoError(t, h.runner.Shutdown())
	assert.Zero(t, h.lesson.quits)
}

func TestRunnerFrameClearsSwapchain(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())

	running, err := h.runner.Frame()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, 1, h.runner.Frames())
	assert.Equal(t, 1, h.device.Stats().Submitted)

	pixels, err := h.device.ReadTexture(h.device.Swapchain(), 0)
	require.NoError(t, err)
	require.Len(t, pixels, 8*4*4)
	for i := 0; i < len(pixels); i += 4 {
		assert.Equal(t, []byte{0, 0, 255, 255}, pixels[i:i+4])
	}
}

func TestRunnerDepthTexture(t *testing.T) {
	h := newHarness(t, func(c *AppConfig) { c.DepthFormat = "d16_unorm" })
	require.NoError(t, h.runner.Initialize())

	depth := h.runner.Context().DepthTexture()
	require.True(t, depth.Valid())
	info, ok := h.device.TextureInfo(depth)
	require.True(t, ok)
	assert.Equal(t, gpu.TextureFormatD16Unorm, info.Format)
	assert.Equal(t, uint32(8), info.Width)
	assert.Equal(t, uint32(4), info.Height)

	_, err := h.runner.Frame()
	require.NoError(t, err)
	assert.Equal(t, depth, h.runner.Context().DepthTexture(), "same size keeps the texture")

	h.window.Resize(16, 2)
	_, err = h.runner.Frame()
	require.NoError(t, err)
	resized := h.runner.Context().DepthTexture()
	assert.NotEqual(t, depth, resized)
	assert.Equal(t, 1, h.device.ReleaseCount(uint64(depth)))
	info, ok = h.device.TextureInfo(resized)
	require.True(t, ok)
	assert.Equal(t, uint32(16), info.Width)
	assert.Equal(t, uint32(2), info.Height)
	assert.Equal(t, [2]int32{16, 2}, h.lesson.resizes[len(h.lesson.resizes)-1])

	require.NoError(t, h.runner.Shutdown())
	assert.Equal(t, 1, h.device.ReleaseCount(uint64(resized)))
	assert.False(t, h.runner.Context().DepthTexture().Valid())
	assert.Equal(t, 1, h.lesson.quits)
}

func TestRunnerKeys(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())

	h.window.KeyDown(core.KEY_UP, false)
	h.window.KeyDown(core.KEY_UP, true)
	h.window.Press(core.KEY_F1)
	_, err := h.runner.Frame()
	require.NoError(t, err)

	assert.True(t, h.window.Fullscreen())
	assert.Equal(t, []keyEvent{
		{core.KEY_UP, true, false},
		{core.KEY_UP, true, true},
		{core.KEY_F1, false, false},
	}, h.lesson.keys)
	assert.Equal(t, []bool{true}, h.lesson.upHeld)

	h.window.KeyUp(core.KEY_UP)
	_, err = h.runner.Frame()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, h.lesson.upHeld)

	h.window.Press(core.KEY_F1)
	_, err = h.runner.Frame()
	require.NoError(t, err)
	assert.False(t, h.window.Fullscreen())
}

func TestRunnerEscapeQuits(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())

	h.window.Press(core.KEY_ESCAPE)
	running, err := h.runner.Frame()
	require.NoError(t, err)
	assert.False(t, running)
	assert.Zero(t, h.lesson.draws)
	assert.Empty(t, h.lesson.keys)
}

func TestRunnerMinimisedSkipsDrawing(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())

	h.window.Resize(0, 0)
	running, err := h.runner.Frame()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Zero(t, h.lesson.draws)
	assert.Zero(t, h.device.Stats().Submitted)
	assert.Equal(t, [][2]int32{{8, 4}}, h.lesson.resizes, "a zero size is not forwarded")

	h.window.Resize(8, 4)
	_, err = h.runner.Frame()
	require.NoError(t, err)
	assert.Equal(t, 1, h.lesson.draws)
}

func TestRunnerDrawErrorCancels(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())
	h.lesson.drawErr = errors.New("draw failed")

	_, err := h.runner.Frame()
	assert.ErrorIs(t, err, h.lesson.drawErr)
	assert.Equal(t, 1, h.device.Stats().Cancelled)
	assert.Zero(t, h.device.Stats().Submitted)
}

func TestRunnerDeviceErrors(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())

	h.device.FailOn(headless.OpWaitAndAcquireSwapchainTexture, 1)
	_, err := h.runner.Frame()
	require.Error(t, err)
	assert.Equal(t, "WaitAndAcquireSwapchainTexture", core.FailedOp(err))
	assert.Equal(t, 1, h.device.Stats().Cancelled)

	h.device.FailOn(gpu.OpSubmitCommandBuffer, 1)
	_, err = h.runner.Frame()
	require.Error(t, err)
	assert.Equal(t, gpu.OpSubmitCommandBuffer, core.FailedOp(err))
}

func TestRunnerRunStops(t *testing.T) {
	h := newHarness(t, func(c *AppConfig) { c.MaxFrames = 3 })
	require.NoError(t, h.runner.Initialize())
	require.NoError(t, h.runner.Run())
	assert.Equal(t, 3, h.runner.Frames())
	assert.Equal(t, StageRunning, h.runner.Stage())

	require.NoError(t, h.runner.Shutdown())
	assert.Equal(t, StageShutdown, h.runner.Stage())
	require.NoError(t, h.runner.Shutdown())
	assert.Equal(t, 1, h.lesson.quits)

	h = newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())
	h.window.Quit()
	require.NoError(t, h.runner.Run())
	assert.Zero(t, h.runner.Frames())

	h = newHarness(t, nil)
	require.NoError(t, h.runner.Initialize())
	h.runner.Stop()
	require.NoError(t, h.runner.Run())
	assert.LessOrEqual(t, h.runner.Frames(), 1)
}

func TestContextCopyPass(t *testing.T) {
	h := newHarness(t, nil)
	ctx := h.runner.Context()

	var vertices gpu.Buffer
	err := ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		vertices, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, []float32{1, 2, 3})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.device.Stats().Submitted)
	data, err := h.device.ReadBuffer(vertices)
	require.NoError(t, err)
	assert.Len(t, data, 12)
	assert.Zero(t, h.device.Stats().LiveTransfers)

	abort := errors.New("abort")
	err = ctx.CopyPass(func(pass *gpu.CopyPass) error {
		if _, err := pass.CreateBufferBytes(gpu.BufferUsageIndex, []byte{1, 2}); err != nil {
			return err
		}
		return abort
	})
	assert.ErrorIs(t, err, abort)
	assert.Equal(t, 1, h.device.Stats().Submitted, "a failed callback does not submit")
	assert.Zero(t, h.device.Stats().LiveTransfers)
}

func TestNewRunnerValidatesConfig(t *testing.T) {
	device := headless.NewDevice(8, 8)
	events := core.NewEventQueue()
	window := headless.NewWindow(device, events)

	config := DefaultConfig()
	config.DepthFormat = "r8g8b8a8_unorm"
	_, err := NewRunner(&recordingLesson{}, config, device, window, nil, events)
	assert.Error(t, err)

	config = DefaultConfig()
	config.Width = 0
	_, err = NewRunner(&recordingLesson{}, config, device, window, nil, events)
	assert.Error(t, err)
}
