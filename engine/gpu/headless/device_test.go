package headless

import (
	"encoding/binary"
	"errors"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

func TestRenderPassClears(t *testing.T) {
	d := NewDevice(4, 2)
	depth, err := d.CreateTexture(gpu.TextureCreateInfo{
		Format: gpu.TextureFormatD16Unorm,
		Usage:  gpu.TextureUsageDepthStencilTarget,
		Width:  4,
		Height: 2,
	})
	require.NoError(t, err)

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	swapchain, w, h, err := d.WaitAndAcquireSwapchainTexture(cmd)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), w)
	assert.Equal(t, uint32(2), h)

	pass, err := d.BeginRenderPass(cmd,
		gpu.ColorTargetInfo{Texture: swapchain, ClearColor: math.Vec4{X: 1, Y: 0, Z: 0, W: 0.5}, Clear: true},
		&gpu.DepthStencilTargetInfo{Texture: depth, ClearDepth: 1, Clear: true})
	require.NoError(t, err)
	require.NoError(t, d.EndRenderPass(pass))

	// Nothing executes until submission.
	pixels, err := d.ReadTexture(swapchain, 0)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), pixels)

	require.NoError(t, d.SubmitCommandBuffer(cmd))

	pixels, err = d.ReadTexture(swapchain, 0)
	require.NoError(t, err)
	for i := 0; i < len(pixels); i += 4 {
		assert.Equal(t, []byte{0, 0, 255, 128}, pixels[i:i+4])
	}
	depths, err := d.ReadTexture(depth, 0)
	require.NoError(t, err)
	for i := 0; i < len(depths); i += 2 {
		assert.Equal(t, uint16(0xFFFF), binary.NativeEndian.Uint16(depths[i:]))
	}
}

func TestRenderPassTargets(t *testing.T) {
	d := NewDevice(4, 4)
	sampled, err := d.CreateTexture(gpu.TextureCreateInfo{Format: gpu.TextureFormatR8G8B8A8Unorm, Usage: gpu.TextureUsageSampler, Width: 4, Height: 4})
	require.NoError(t, err)
	smallDepth, err := d.CreateTexture(gpu.TextureCreateInfo{Format: gpu.TextureFormatD32Float, Usage: gpu.TextureUsageDepthStencilTarget, Width: 2, Height: 2})
	require.NoError(t, err)

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)

	_, err = d.BeginRenderPass(cmd, gpu.ColorTargetInfo{Texture: sampled}, nil)
	assert.Error(t, err)
	_, err = d.BeginRenderPass(cmd, gpu.ColorTargetInfo{Texture: d.Swapchain()}, &gpu.DepthStencilTargetInfo{Texture: smallDepth})
	assert.Error(t, err)

	pass, err := d.BeginRenderPass(cmd, gpu.ColorTargetInfo{Texture: d.Swapchain()}, nil)
	require.NoError(t, err)
	_, err = d.BeginCopyPass(cmd)
	assert.Error(t, err, "only one pass may be open")
	assert.Error(t, d.SubmitCommandBuffer(cmd), "submitting with an open pass")
	require.NoError(t, d.EndRenderPass(pass))
	assert.Error(t, d.EndRenderPass(pass))
	require.NoError(t, d.SubmitCommandBuffer(cmd))
	assert.Error(t, d.SubmitCommandBuffer(cmd))
}

func TestCreateTextureValidation(t *testing.T) {
	d := NewDevice(1, 1)
	tests := []struct {
		name string
		info gpu.TextureCreateInfo
	}{
		{"zero size", gpu.TextureCreateInfo{Format: gpu.TextureFormatR8G8B8A8Unorm, Width: 0, Height: 4}},
		{"invalid format", gpu.TextureCreateInfo{Format: gpu.TextureFormatInvalid, Width: 4, Height: 4}},
		{"too many levels", gpu.TextureCreateInfo{Format: gpu.TextureFormatR8G8B8A8Unorm, Width: 4, Height: 4, NumLevels: 4}},
		{"depth without target usage", gpu.TextureCreateInfo{Format: gpu.TextureFormatD16Unorm, Usage: gpu.TextureUsageSampler, Width: 4, Height: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.CreateTexture(tt.info)
			assert.Error(t, err)
			assert.False(t, tex.Valid())
		})
	}
}

func TestMinimisedSwapchain(t *testing.T) {
	d := NewDevice(8, 8)
	first := d.Swapchain()
	d.Resize(0, 600)

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	tex, w, h, err := d.WaitAndAcquireSwapchainTexture(cmd)
	require.NoError(t, err)
	assert.False(t, tex.Valid())
	assert.Zero(t, w)
	assert.Zero(t, h)
	d.CancelCommandBuffer(cmd)
	assert.Equal(t, 1, d.Stats().Cancelled)

	d.Resize(16, 4)
	assert.True(t, d.Swapchain().Valid())
	assert.NotEqual(t, first, d.Swapchain())
	info, ok := d.TextureInfo(d.Swapchain())
	require.True(t, ok)
	assert.Equal(t, uint32(16), info.Width)
	assert.Equal(t, d.SwapchainTextureFormat(), info.Format)
}

func TestSwapchainIsNotReleased(t *testing.T) {
	d := NewDevice(2, 2)
	d.ReleaseTexture(d.Swapchain())
	_, ok := d.TextureInfo(d.Swapchain())
	assert.True(t, ok)
}

func TestFaultInjection(t *testing.T) {
	d := NewDevice(1, 1)
	boom := errors.New("boom")
	d.FailOnWith(gpu.OpCreateBuffer, 2, boom)
	d.FailOn(gpu.OpCreateBuffer, 3)

	_, err := d.CreateBuffer(gpu.BufferUsageVertex, 4)
	assert.NoError(t, err)
	_, err = d.CreateBuffer(gpu.BufferUsageVertex, 4)
	assert.ErrorIs(t, err, boom)
	_, err = d.CreateBuffer(gpu.BufferUsageVertex, 4)
	assert.ErrorIs(t, err, ErrInjected)
	_, err = d.CreateBuffer(gpu.BufferUsageVertex, 4)
	assert.NoError(t, err)

	assert.Equal(t, 4, d.Calls(gpu.OpCreateBuffer))
	assert.Equal(t, 2, d.Stats().LiveBuffers)
}

func TestReleasedStagingFailsExecution(t *testing.T) {
	d := NewDevice(1, 1)
	dst, err := d.CreateBuffer(gpu.BufferUsageVertex, 4)
	require.NoError(t, err)
	src, err := d.CreateTransferBuffer(4)
	require.NoError(t, err)
	mapped, err := d.MapTransferBuffer(src)
	require.NoError(t, err)
	copy(mapped, []byte{1, 2, 3, 4})
	_, err = d.MapTransferBuffer(src)
	assert.Error(t, err, "double map")
	d.UnmapTransferBuffer(src)

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	scope, err := d.BeginCopyPass(cmd)
	require.NoError(t, err)
	require.NoError(t, d.UploadToBuffer(scope, src, dst, 4))
	require.NoError(t, d.EndCopyPass(scope))

	d.ReleaseTransferBuffer(src)
	assert.Error(t, d.SubmitCommandBuffer(cmd))
	data, err := d.ReadBuffer(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestFailedSubmitAppliesNothing(t *testing.T) {
	d := NewDevice(1, 1)
	upload := func(scope gpu.CopyScope, fill byte) (gpu.Buffer, gpu.TransferBuffer) {
		dst, err := d.CreateBuffer(gpu.BufferUsageVertex, 4)
		require.NoError(t, err)
		src, err := d.CreateTransferBuffer(4)
		require.NoError(t, err)
		mapped, err := d.MapTransferBuffer(src)
		require.NoError(t, err)
		copy(mapped, []byte{fill, fill, fill, fill})
		d.UnmapTransferBuffer(src)
		require.NoError(t, d.UploadToBuffer(scope, src, dst, 4))
		return dst, src
	}

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	scope, err := d.BeginCopyPass(cmd)
	require.NoError(t, err)
	first, _ := upload(scope, 7)
	_, second := upload(scope, 9)
	require.NoError(t, d.EndCopyPass(scope))
	require.NoError(t, d.PushVertexUniformData(cmd, 0, []byte{1}))

	d.ReleaseTransferBuffer(second)
	assert.Error(t, d.SubmitCommandBuffer(cmd))

	data, err := d.ReadBuffer(first)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)
	assert.Nil(t, d.VertexUniform(0))
	assert.Zero(t, d.Stats().Submitted)
}

func TestUploadChecksDestinationWhenRecorded(t *testing.T) {
	d := NewDevice(1, 1)
	dst, _ := d.CreateBuffer(gpu.BufferUsageVertex, 4)
	src, _ := d.CreateTransferBuffer(8)
	tex, err := d.CreateTexture(gpu.TextureCreateInfo{
		Format: gpu.TextureFormatR8G8B8A8Unorm, Usage: gpu.TextureUsageSampler, Width: 1, Height: 1,
	})
	require.NoError(t, err)

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	scope, err := d.BeginCopyPass(cmd)
	require.NoError(t, err)

	assert.Error(t, d.UploadToBuffer(scope, src, dst, 8), "larger than the destination")
	assert.Error(t, d.UploadToTexture(scope, src, tex, 2, 1), "wider than the destination")
	d.ReleaseBuffer(dst)
	assert.Error(t, d.UploadToBuffer(scope, src, dst, 4))
	d.ReleaseTexture(tex)
	assert.Error(t, d.UploadToTexture(scope, src, tex, 1, 1))

	d.CancelCommandBuffer(cmd)
	assert.Equal(t, 1, d.Calls(OpCancelCommandBuffer))
	assert.Equal(t, 1, d.Stats().Cancelled)
}

func TestUploadOutsideScope(t *testing.T) {
	d := NewDevice(1, 1)
	dst, _ := d.CreateBuffer(gpu.BufferUsageVertex, 4)
	src, _ := d.CreateTransferBuffer(4)
	assert.Error(t, d.UploadToBuffer(gpu.CopyScope(999), src, dst, 4))

	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)
	scope, err := d.BeginCopyPass(cmd)
	require.NoError(t, err)
	require.NoError(t, d.EndCopyPass(scope))
	assert.Error(t, d.UploadToBuffer(scope, src, dst, 4))
	d.CancelCommandBuffer(cmd)
	assert.Error(t, d.SubmitCommandBuffer(cmd))
}

func TestVertexUniformsApplyOnSubmit(t *testing.T) {
	d := NewDevice(1, 1)
	cmd, err := d.AcquireCommandBuffer()
	require.NoError(t, err)

	m := math.Translation(1, 2, 3)
	require.NoError(t, d.PushVertexUniformData(cmd, 0, m.Bytes()))
	m.Translate(1, 1, 1)
	assert.Nil(t, d.VertexUniform(0))

	require.NoError(t, d.SubmitCommandBuffer(cmd))
	data := d.VertexUniform(0)
	require.Len(t, data, 64)
	assert.Equal(t, float32(1), stdmath.Float32frombits(binary.NativeEndian.Uint32(data[48:])))
	assert.Equal(t, float32(3), stdmath.Float32frombits(binary.NativeEndian.Uint32(data[56:])))
}

func TestVSync(t *testing.T) {
	d := NewDevice(1, 1)
	assert.True(t, d.VSync())
	require.NoError(t, d.SetVSync(false))
	assert.False(t, d.VSync())
}

func TestCloseReleasesEverything(t *testing.T) {
	d := NewDevice(2, 2)
	_, err := d.CreateBuffer(gpu.BufferUsageVertex, 8)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.Equal(t, 0, d.Stats().LiveBuffers)
	_, err = d.AcquireCommandBuffer()
	assert.Error(t, err)
}

func TestWindowEvents(t *testing.T) {
	d := NewDevice(640, 480)
	queue := core.NewEventQueue()
	w := NewWindow(d, queue)

	w.Resize(800, 600)
	w.Press(core.KEY_F1)
	w.Quit()

	_, ok := queue.Poll()
	assert.False(t, ok, "events are delivered by PollEvents")
	width, height := w.FramebufferSize()
	assert.Equal(t, int32(800), width)
	assert.Equal(t, int32(600), height)

	w.PollEvents()
	var codes []core.SystemEventCode
	for {
		e, ok := queue.Poll()
		if !ok {
			break
		}
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []core.SystemEventCode{
		core.EVENT_CODE_RESIZED,
		core.EVENT_CODE_KEY_PRESSED,
		core.EVENT_CODE_KEY_RELEASED,
		core.EVENT_CODE_APPLICATION_QUIT,
	}, codes)

	w.SetFullscreen(true)
	assert.True(t, w.Fullscreen())
	w.Close()
	assert.True(t, w.Closed())
}
