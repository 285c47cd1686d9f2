package gpu

import (
	"encoding/binary"
	"image/color"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(s *Surface) [][]byte {
	bpp := s.Format.BytesPerPixel()
	out := make([][]byte, s.Height)
	for y := range out {
		out[y] = s.Pixels[y*s.Pitch : y*s.Pitch+s.Width*bpp]
	}
	return out
}

func TestFlipVertical(t *testing.T) {
	for _, height := range []int{1, 2, 3, 4} {
		s := NewSurface(PixelFormatRGB24, 2, height)
		for i := range s.Pixels {
			s.Pixels[i] = byte(i / s.Pitch)
		}
		require.NoError(t, s.FlipVertical())
		for y, row := range rows(s) {
			for _, b := range row {
				assert.Equal(t, byte(height-1-y), b, "height %d row %d", height, y)
			}
		}
	}
}

func TestFlipVerticalKeepsPadding(t *testing.T) {
	s := &Surface{Format: PixelFormatGray8, Width: 2, Height: 2, Pitch: 3, Pixels: []byte{
		1, 2, 0xAA,
		3, 4, 0xBB,
	}}
	require.NoError(t, s.FlipVertical())
	assert.Equal(t, []byte{3, 4, 0xAA, 1, 2, 0xBB}, s.Pixels)
	assert.Equal(t, []byte{3, 4, 1, 2}, s.Packed())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		surface Surface
		ok      bool
	}{
		{"packed", Surface{Format: PixelFormatRGBA32, Width: 2, Height: 2, Pitch: 8, Pixels: make([]byte, 16)}, true},
		{"short last row padding", Surface{Format: PixelFormatRGBA32, Width: 1, Height: 2, Pitch: 8, Pixels: make([]byte, 12)}, true},
		{"unknown format", Surface{Format: PixelFormatUnknown, Width: 1, Height: 1, Pitch: 4, Pixels: make([]byte, 4)}, false},
		{"zero width", Surface{Format: PixelFormatRGBA32, Width: 0, Height: 1, Pitch: 0}, false},
		{"pitch too small", Surface{Format: PixelFormatRGBA32, Width: 2, Height: 1, Pitch: 4, Pixels: make([]byte, 8)}, false},
		{"pixels too short", Surface{Format: PixelFormatRGB24, Width: 2, Height: 2, Pitch: 6, Pixels: make([]byte, 11)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.surface.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSurfaceAt(t *testing.T) {
	ne := binary.NativeEndian
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		ne.PutUint16(b, v)
		return b
	}
	tests := []struct {
		format PixelFormat
		pixel  []byte
		want   color.Color
	}{
		{PixelFormatRGBA32, []byte{1, 2, 3, 4}, color.NRGBA{1, 2, 3, 4}},
		{PixelFormatBGRA32, []byte{1, 2, 3, 4}, color.NRGBA{3, 2, 1, 4}},
		{PixelFormatRGB24, []byte{1, 2, 3}, color.NRGBA{1, 2, 3, 0xFF}},
		{PixelFormatBGR24, []byte{1, 2, 3}, color.NRGBA{3, 2, 1, 0xFF}},
		{PixelFormatGray8, []byte{9}, color.Gray{9}},
		{PixelFormatRGB565, u16(0xF800), color.NRGBA{0xFF, 0, 0, 0xFF}},
		{PixelFormatRGB565, u16(0x07E0), color.NRGBA{0, 0xFF, 0, 0xFF}},
		{PixelFormatARGB1555, u16(0x801F), color.NRGBA{0, 0, 0xFF, 0xFF}},
		{PixelFormatARGB1555, u16(0x7C00), color.NRGBA{0xFF, 0, 0, 0}},
		{PixelFormatBGRA4444, u16(0xF00F), color.NRGBA{0, 0, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			s := NewSurface(tt.format, 1, 1)
			copy(s.Pixels, tt.pixel)
			assert.Equal(t, tt.want, s.At(0, 0))
		})
	}
}

func TestSurfaceAtFloat(t *testing.T) {
	s := NewSurface(PixelFormatRGBA128Float, 1, 1)
	for i, c := range []float32{1, 0.5, -1, 2} {
		binary.NativeEndian.PutUint32(s.Pixels[i*4:], stdmath.Float32bits(c))
	}
	assert.Equal(t, color.NRGBA64{0xFFFF, 0x8000, 0, 0xFFFF}, s.At(0, 0))

	h := NewSurface(PixelFormatRGBA64Float, 1, 1)
	for i, v := range []uint16{0x3C00, 0x3800, 0xC000, 0x0000} {
		binary.NativeEndian.PutUint16(h.Pixels[i*2:], v)
	}
	assert.Equal(t, color.NRGBA64{0xFFFF, 0x8000, 0, 0}, h.At(0, 0))
}

func TestSurfaceAtOutOfBounds(t *testing.T) {
	s := NewSurface(PixelFormatRGBA32, 1, 1)
	assert.Equal(t, color.NRGBA{}, s.At(1, 0))
	assert.Equal(t, color.NRGBA{}, s.At(0, -1))
}

func TestHalfToFloat(t *testing.T) {
	tests := []struct {
		in   uint16
		want float32
	}{
		{0x0000, 0},
		{0x3C00, 1},
		{0xC000, -2},
		{0x3800, 0.5},
		{0x7BFF, 65504},
		{0x0001, 1.0 / (1 << 24)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, halfToFloat(tt.in), "%#04x", tt.in)
	}
	assert.True(t, stdmath.IsInf(float64(halfToFloat(0x7C00)), 1))
	assert.True(t, stdmath.IsNaN(float64(halfToFloat(0x7E00))))
}

func TestConvertRGBA32(t *testing.T) {
	bgr := &Surface{Format: PixelFormatBGR24, Width: 2, Height: 2, Pitch: 8, Pixels: []byte{
		10, 20, 30, 40, 50, 60, 0, 0,
		70, 80, 90, 100, 110, 120, 0, 0,
	}}
	out, err := bgr.ConvertRGBA32()
	require.NoError(t, err)
	assert.Equal(t, PixelFormatRGBA32, out.Format)
	assert.Equal(t, 8, out.Pitch)
	assert.Equal(t, []byte{
		30, 20, 10, 255, 60, 50, 40, 255,
		90, 80, 70, 255, 120, 110, 100, 255,
	}, out.Pixels)

	gray := NewSurface(PixelFormatGray8, 1, 1)
	gray.Pixels[0] = 77
	out, err = gray.ConvertRGBA32()
	require.NoError(t, err)
	assert.Equal(t, []byte{77, 77, 77, 255}, out.Pixels)

	_, err = (&Surface{Format: PixelFormatUnknown, Width: 1, Height: 1}).ConvertRGBA32()
	assert.Error(t, err)
}

func TestParseTextureFormat(t *testing.T) {
	for _, f := range []TextureFormat{TextureFormatD16Unorm, TextureFormatD32Float, TextureFormatB8G8R8A8Unorm} {
		got, err := ParseTextureFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseTextureFormat("none")
	require.NoError(t, err)
	assert.Equal(t, TextureFormatInvalid, got)

	_, err = ParseTextureFormat("d8_unorm")
	assert.Error(t, err)

	assert.True(t, TextureFormatD24UnormS8Uint.IsDepth())
	assert.False(t, TextureFormatR8G8B8A8Unorm.IsDepth())
	assert.Equal(t, uint32(2), TextureFormatD16Unorm.BytesPerPixel())
}
