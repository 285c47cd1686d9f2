package gpu_test

import (
	"encoding/binary"
	"errors"
	"io/fs"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/gpu/headless"
	"github.com/spaghettifunk/nehe/engine/math"
)

type stubLoader struct {
	surfaces map[string]*gpu.Surface
}

func (l *stubLoader) LoadImage(path string) (*gpu.Surface, error) {
	s, ok := l.surfaces[path]
	if !ok {
		return nil, &core.IOError{Path: path, Err: fs.ErrNotExist}
	}
	return s, nil
}

func newPass(loader gpu.ImageLoader) (*headless.Device, *gpu.CopyPass) {
	dev := headless.NewDevice(64, 64)
	return dev, gpu.NewCopyPass(dev, loader)
}

func pattern(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i*3)
	}
	return out
}

func TestUploadVisibilityOrdering(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	first := pattern(48, 0x10)
	second := pattern(20, 0x80)
	a, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, first)
	require.NoError(t, err)
	b, err := pass.CreateBufferBytes(gpu.BufferUsageIndex, second)
	require.NoError(t, err)
	assert.True(t, a.Valid())
	assert.True(t, b.Valid())
	assert.Equal(t, 2, pass.Len())

	// Handles are usable before submission but hold no data yet.
	before, err := dev.ReadBuffer(a)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 48), before)

	require.NoError(t, pass.Submit())

	got, err := dev.ReadBuffer(a)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	got, err = dev.ReadBuffer(b)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	assert.Equal(t, []string{
		gpu.OpCreateBuffer, gpu.OpCreateTransferBuffer, gpu.OpMapTransferBuffer,
		gpu.OpCreateBuffer, gpu.OpCreateTransferBuffer, gpu.OpMapTransferBuffer,
		gpu.OpAcquireCommandBuffer,
		gpu.OpBeginCopyPass, gpu.OpUploadToBuffer, gpu.OpUploadToBuffer, gpu.OpEndCopyPass,
		gpu.OpSubmitCommandBuffer,
	}, dev.Trace())

	stats := dev.Stats()
	assert.Equal(t, 1, stats.Submitted)
	assert.Equal(t, 0, stats.Cancelled)
	assert.Equal(t, 0, stats.LiveTransfers)
	assert.Equal(t, 2, stats.LiveBuffers)
}

func TestStagingReleasedInReverseOrderOnce(t *testing.T) {
	dev, pass := newPass(nil)
	for i := 0; i < 3; i++ {
		_, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, byte(i)))
		require.NoError(t, err)
	}
	require.NoError(t, pass.Submit())
	pass.Close()
	pass.Close()

	transfers := dev.TransferBuffers()
	require.Len(t, transfers, 3)
	assert.Equal(t, []uint64{uint64(transfers[2]), uint64(transfers[1]), uint64(transfers[0])}, dev.Released())
	for _, tb := range transfers {
		assert.Equal(t, 1, dev.ReleaseCount(uint64(tb)))
	}
}

func TestCreateBufferFromElements(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	vertices := []math.Vec3{{X: 0, Y: 1, Z: 0}, {X: -1, Y: -1, Z: 0}, {X: 1, Y: -1, Z: 0.5}}
	indices := []uint16{0, 1, 2}

	vb, err := gpu.CreateBuffer(pass, gpu.BufferUsageVertex, vertices)
	require.NoError(t, err)
	ib, err := gpu.CreateBuffer(pass, gpu.BufferUsageIndex, indices)
	require.NoError(t, err)
	require.NoError(t, pass.Submit())

	data, err := dev.ReadBuffer(vb)
	require.NoError(t, err)
	require.Len(t, data, 36)
	f := func(i int) float32 {
		return stdmath.Float32frombits(binary.NativeEndian.Uint32(data[i*4:]))
	}
	assert.Equal(t, float32(1), f(1))
	assert.Equal(t, float32(-1), f(3))
	assert.Equal(t, float32(0.5), f(8))

	data, err = dev.ReadBuffer(ib)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2}, []uint16{
		binary.NativeEndian.Uint16(data[0:]),
		binary.NativeEndian.Uint16(data[2:]),
		binary.NativeEndian.Uint16(data[4:]),
	})

	usage, ok := dev.BufferUsage(ib)
	require.True(t, ok)
	assert.Equal(t, gpu.BufferUsageIndex, usage)
}

func TestCleanupOnMidBatchFailure(t *testing.T) {
	for _, op := range []string{gpu.OpCreateBuffer, gpu.OpCreateTransferBuffer, gpu.OpMapTransferBuffer} {
		t.Run(op, func(t *testing.T) {
			dev, pass := newPass(nil)
			dev.FailOn(op, 2)

			first, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(16, 1))
			require.NoError(t, err)

			second, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(16, 2))
			require.Error(t, err)
			assert.Equal(t, op, core.FailedOp(err))
			assert.True(t, errors.Is(err, headless.ErrInjected))
			assert.False(t, second.Valid())
			assert.Equal(t, 1, pass.Len())

			// Nothing from the failed call survives.
			stats := dev.Stats()
			assert.Equal(t, 1, stats.LiveBuffers)
			assert.Equal(t, 1, stats.LiveTransfers)

			// The caller abandons the pass.
			pass.Close()
			transfers := dev.TransferBuffers()
			require.NotEmpty(t, transfers)
			assert.Equal(t, 1, dev.ReleaseCount(uint64(transfers[0])))
			assert.Equal(t, 0, dev.Stats().LiveTransfers)
			assert.Equal(t, 0, dev.Stats().Submitted)

			// The destination outlives the pass and still belongs to the caller.
			_, err = dev.ReadBuffer(first)
			assert.NoError(t, err)
			_, err = pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(4, 3))
			assert.ErrorIs(t, err, core.ErrCopyPassSpent)
		})
	}
}

func TestPassContinuesAfterFailedUpload(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()
	dev.FailOn(gpu.OpCreateTransferBuffer, 2)

	a, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, 1))
	require.NoError(t, err)
	_, err = pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, 2))
	require.Error(t, err)
	c, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, 3))
	require.NoError(t, err)
	require.NoError(t, pass.Submit())

	got, err := dev.ReadBuffer(a)
	require.NoError(t, err)
	assert.Equal(t, pattern(8, 1), got)
	got, err = dev.ReadBuffer(c)
	require.NoError(t, err)
	assert.Equal(t, pattern(8, 3), got)
}

func TestSubmitIsAllOrNothing(t *testing.T) {
	tests := []struct {
		op        string
		nth       int
		cancelled int
	}{
		{gpu.OpAcquireCommandBuffer, 1, 0},
		{gpu.OpBeginCopyPass, 1, 1},
		{gpu.OpUploadToBuffer, 2, 1},
		{gpu.OpUploadToTexture, 1, 1},
		{gpu.OpEndCopyPass, 1, 1},
		{gpu.OpGenerateMipmaps, 1, 1},
		{gpu.OpSubmitCommandBuffer, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			dev, pass := newPass(nil)
			defer pass.Close()

			var buffers []gpu.Buffer
			for i := 0; i < 3; i++ {
				b, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(12, byte(i+1)))
				require.NoError(t, err)
				buffers = append(buffers, b)
			}
			_, err := pass.CreateTextureFromSurface(gpu.NewSurface(gpu.PixelFormatRGBA32, 8, 8), true)
			require.NoError(t, err)

			dev.FailOn(tt.op, tt.nth)
			err = pass.Submit()
			require.Error(t, err)
			assert.Equal(t, tt.op, core.FailedOp(err))

			stats := dev.Stats()
			assert.Equal(t, 0, stats.Submitted)
			assert.Equal(t, tt.cancelled, stats.Cancelled)
			assert.Equal(t, 0, stats.LiveTransfers)
			for _, b := range buffers {
				data, err := dev.ReadBuffer(b)
				require.NoError(t, err)
				assert.Equal(t, make([]byte, 12), data)
			}

			assert.ErrorIs(t, pass.Submit(), core.ErrCopyPassSpent)
		})
	}
}

func TestReleasedDestinationCancelsSubmit(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	a, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, 1))
	require.NoError(t, err)
	b, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(8, 2))
	require.NoError(t, err)
	dev.ReleaseBuffer(b)

	err = pass.Submit()
	require.Error(t, err)
	assert.Equal(t, gpu.OpUploadToBuffer, core.FailedOp(err))

	stats := dev.Stats()
	assert.Zero(t, stats.Submitted)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Zero(t, stats.LiveTransfers)
	data, err := dev.ReadBuffer(a)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), data, "no upload of a failed pass is visible")
}

func TestEmptyBufferIsFatal(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	_, err := pass.CreateBufferBytes(gpu.BufferUsageVertex, nil)
	var fatal *core.FatalError
	assert.ErrorAs(t, err, &fatal)

	_, err = gpu.CreateBuffer[uint16](pass, gpu.BufferUsageIndex, nil)
	assert.ErrorAs(t, err, &fatal)
	assert.Equal(t, 0, dev.Calls(gpu.OpCreateBuffer))
}

func TestEmptyPassSubmits(t *testing.T) {
	dev, pass := newPass(nil)
	require.NoError(t, pass.Submit())
	assert.Equal(t, 1, dev.Stats().Submitted)
	assert.Empty(t, dev.Released())
}

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		w, h, want uint32
	}{
		{0, 0, 1},
		{1, 1, 1},
		{2, 1, 2},
		{256, 64, 9},
		{64, 256, 9},
		{255, 3, 8},
		{1024, 1024, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gpu.MipLevelCount(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestTextureMipmapLevels(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	mipped, err := pass.CreateTextureFromSurface(gpu.NewSurface(gpu.PixelFormatRGBA32, 256, 64), true)
	require.NoError(t, err)
	plain, err := pass.CreateTextureFromSurface(gpu.NewSurface(gpu.PixelFormatRGBA32, 256, 64), false)
	require.NoError(t, err)

	info, ok := dev.TextureInfo(mipped)
	require.True(t, ok)
	assert.Equal(t, uint32(9), info.NumLevels)
	assert.Equal(t, gpu.TextureUsageSampler|gpu.TextureUsageColorTarget, info.Usage)

	info, ok = dev.TextureInfo(plain)
	require.True(t, ok)
	assert.Equal(t, uint32(1), info.NumLevels)
	assert.Equal(t, gpu.TextureUsageSampler, info.Usage)
}

func TestMipmapsGeneratedAfterUploads(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	s := gpu.NewSurface(gpu.PixelFormatRGBA32, 4, 4)
	for i := 0; i < len(s.Pixels); i += 4 {
		copy(s.Pixels[i:], []byte{200, 100, 50, 255})
	}
	tex, err := pass.CreateTextureFromSurface(s, true)
	require.NoError(t, err)
	_, err = pass.CreateBufferBytes(gpu.BufferUsageVertex, pattern(4, 9))
	require.NoError(t, err)
	dev.ResetTrace()
	require.NoError(t, pass.Submit())

	assert.Equal(t, []string{
		gpu.OpAcquireCommandBuffer,
		gpu.OpBeginCopyPass, gpu.OpUploadToTexture, gpu.OpUploadToBuffer, gpu.OpEndCopyPass,
		gpu.OpGenerateMipmaps,
		gpu.OpSubmitCommandBuffer,
	}, dev.Trace())

	for level, size := range []int{16, 4, 1} {
		data, err := dev.ReadTexture(tex, uint32(level))
		require.NoError(t, err)
		require.Len(t, data, size*4)
		for i := 0; i < len(data); i += 4 {
			assert.InDelta(t, 200, data[i], 1)
			assert.InDelta(t, 100, data[i+1], 1)
			assert.InDelta(t, 50, data[i+2], 1)
			assert.InDelta(t, 255, data[i+3], 1)
		}
	}
}

func TestTextureFormatForSurface(t *testing.T) {
	tests := []struct {
		in      gpu.PixelFormat
		want    gpu.TextureFormat
		convert bool
	}{
		{gpu.PixelFormatRGBA32, gpu.TextureFormatR8G8B8A8Unorm, false},
		{gpu.PixelFormatRGBA64, gpu.TextureFormatR16G16B16A16Unorm, false},
		{gpu.PixelFormatRGB565, gpu.TextureFormatB5G6R5Unorm, false},
		{gpu.PixelFormatARGB1555, gpu.TextureFormatB5G5R5A1Unorm, false},
		{gpu.PixelFormatBGRA4444, gpu.TextureFormatB4G4R4A4Unorm, false},
		{gpu.PixelFormatBGRA32, gpu.TextureFormatB8G8R8A8Unorm, false},
		{gpu.PixelFormatRGBA64Float, gpu.TextureFormatR16G16B16A16Float, false},
		{gpu.PixelFormatRGBA128Float, gpu.TextureFormatR32G32B32A32Float, false},
		{gpu.PixelFormatRGB24, gpu.TextureFormatR8G8B8A8Unorm, true},
		{gpu.PixelFormatBGR24, gpu.TextureFormatR8G8B8A8Unorm, true},
		{gpu.PixelFormatGray8, gpu.TextureFormatR8G8B8A8Unorm, true},
		{gpu.PixelFormatUnknown, gpu.TextureFormatR8G8B8A8Unorm, true},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, convert := gpu.TextureFormatForSurface(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.convert, convert)
		})
	}
}

func TestTextureConversion(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	bgr := gpu.NewSurface(gpu.PixelFormatBGR24, 2, 1)
	copy(bgr.Pixels, []byte{1, 2, 3, 4, 5, 6})
	gray := gpu.NewSurface(gpu.PixelFormatGray8, 2, 1)
	copy(gray.Pixels, []byte{7, 250})

	bt, err := pass.CreateTextureFromSurface(bgr, false)
	require.NoError(t, err)
	gt, err := pass.CreateTextureFromSurface(gray, false)
	require.NoError(t, err)
	require.NoError(t, pass.Submit())

	info, _ := dev.TextureInfo(bt)
	assert.Equal(t, gpu.TextureFormatR8G8B8A8Unorm, info.Format)

	data, err := dev.ReadTexture(bt, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1, 255, 6, 5, 4, 255}, data)
	data, err = dev.ReadTexture(gt, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7, 7, 255, 250, 250, 250, 255}, data)
}

func TestUnconvertibleSurface(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	s := &gpu.Surface{Format: gpu.PixelFormatUnknown, Width: 2, Height: 2, Pitch: 8, Pixels: make([]byte, 16)}
	tex, err := pass.CreateTextureFromSurface(s, false)
	assert.Equal(t, gpu.OpConvertSurface, core.FailedOp(err))
	assert.False(t, tex.Valid())
	assert.Equal(t, 0, dev.Calls(gpu.OpCreateTexture))
}

func TestTextureFailureReleasesDestination(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()
	dev.FailOn(gpu.OpMapTransferBuffer, 1)
	liveBefore := dev.Stats().LiveTextures

	_, err := pass.CreateTextureFromSurface(gpu.NewSurface(gpu.PixelFormatRGBA32, 4, 4), true)
	assert.Equal(t, gpu.OpMapTransferBuffer, core.FailedOp(err))
	assert.Equal(t, liveBefore, dev.Stats().LiveTextures)
	assert.Equal(t, 0, dev.Stats().LiveTransfers)
}

func TestPaddedSurfaceUploadsPacked(t *testing.T) {
	dev, pass := newPass(nil)
	defer pass.Close()

	s := &gpu.Surface{Format: gpu.PixelFormatRGBA32, Width: 1, Height: 2, Pitch: 8, Pixels: []byte{
		1, 2, 3, 4, 0xEE, 0xEE, 0xEE, 0xEE,
		5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
	}}
	tex, err := pass.CreateTextureFromSurface(s, false)
	require.NoError(t, err)
	require.NoError(t, pass.Submit())

	data, err := dev.ReadTexture(tex, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data)
}

func TestLoadTexture(t *testing.T) {
	image := gpu.NewSurface(gpu.PixelFormatRGBA32, 1, 2)
	copy(image.Pixels, []byte{1, 1, 1, 1, 2, 2, 2, 2})
	loader := &stubLoader{surfaces: map[string]*gpu.Surface{"Data/Test.bmp": image}}

	dev, pass := newPass(loader)
	defer pass.Close()

	tex, err := pass.LoadTexture("Data/Test.bmp", true, false)
	require.NoError(t, err)
	require.NoError(t, pass.Submit())

	data, err := dev.ReadTexture(tex, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2, 2, 2, 1, 1, 1, 1}, data)
}

func TestLoadTextureErrors(t *testing.T) {
	broken := &gpu.Surface{Format: gpu.PixelFormatRGBA32, Width: 4, Height: 4, Pitch: 2, Pixels: make([]byte, 8)}
	loader := &stubLoader{surfaces: map[string]*gpu.Surface{"broken.bmp": broken}}

	_, pass := newPass(loader)
	defer pass.Close()

	_, err := pass.LoadTexture("missing.bmp", false, false)
	var ioErr *core.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "missing.bmp", ioErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = pass.LoadTexture("broken.bmp", true, false)
	assert.Equal(t, gpu.OpFlipSurface, core.FailedOp(err))

	_, noLoader := newPass(nil)
	defer noLoader.Close()
	_, err = noLoader.LoadTexture("any.bmp", false, false)
	var fatal *core.FatalError
	assert.ErrorAs(t, err, &fatal)
}
