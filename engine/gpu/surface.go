package gpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	stdmath "math"

	"github.com/anthonynsimon/bild/clone"
)

/**
 * @brief The memory layout of a Surface's pixels. Names give the component
 * order as it appears in memory for byte-sized components, and from the most
 * significant bit down for packed 16-bit formats.
 */
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatRGBA32
	PixelFormatBGRA32
	PixelFormatRGB24
	PixelFormatBGR24
	PixelFormatGray8
	PixelFormatRGB565
	PixelFormatARGB1555
	PixelFormatBGRA4444
	PixelFormatRGBA64
	PixelFormatRGBA64Float
	PixelFormatRGBA128Float
)

var pixelFormatNames = [...]string{
	PixelFormatUnknown:      "unknown",
	PixelFormatRGBA32:       "rgba32",
	PixelFormatBGRA32:       "bgra32",
	PixelFormatRGB24:        "rgb24",
	PixelFormatBGR24:        "bgr24",
	PixelFormatGray8:        "gray8",
	PixelFormatRGB565:       "rgb565",
	PixelFormatARGB1555:     "argb1555",
	PixelFormatBGRA4444:     "bgra4444",
	PixelFormatRGBA64:       "rgba64",
	PixelFormatRGBA64Float:  "rgba64_float",
	PixelFormatRGBA128Float: "rgba128_float",
}

func (f PixelFormat) String() string {
	if f >= 0 && int(f) < len(pixelFormatNames) {
		return pixelFormatNames[f]
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatGray8:
		return 1
	case PixelFormatRGB565, PixelFormatARGB1555, PixelFormatBGRA4444:
		return 2
	case PixelFormatRGB24, PixelFormatBGR24:
		return 3
	case PixelFormatRGBA32, PixelFormatBGRA32:
		return 4
	case PixelFormatRGBA64, PixelFormatRGBA64Float:
		return 8
	case PixelFormatRGBA128Float:
		return 16
	}
	return 0
}

/**
 * @brief A CPU-side image. Rows are Pitch bytes apart and the first row is
 * the top of the image. Surface implements image.Image.
 */
type Surface struct {
	Format PixelFormat
	Width  int
	Height int
	Pitch  int
	Pixels []byte
}

// NewSurface allocates a zeroed, tightly packed surface.
func NewSurface(format PixelFormat, width, height int) *Surface {
	pitch := width * format.BytesPerPixel()
	return &Surface{
		Format: format,
		Width:  width,
		Height: height,
		Pitch:  pitch,
		Pixels: make([]byte, pitch*height),
	}
}

// Validate checks that the pixel slice covers every row.
func (s *Surface) Validate() error {
	bpp := s.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("unsupported pixel format %s", s.Format)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", s.Width, s.Height)
	}
	if s.Pitch < s.Width*bpp {
		return fmt.Errorf("pitch %d is shorter than a %s row of %d pixels", s.Pitch, s.Format, s.Width)
	}
	if len(s.Pixels) < s.Pitch*(s.Height-1)+s.Width*bpp {
		return fmt.Errorf("%d bytes cannot hold %dx%d pixels with pitch %d", len(s.Pixels), s.Width, s.Height, s.Pitch)
	}
	return nil
}

// FlipVertical reverses the row order in place.
func (s *Surface) FlipVertical() error {
	if err := s.Validate(); err != nil {
		return err
	}
	rowBytes := s.Width * s.Format.BytesPerPixel()
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, s.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := s.Pixels[top*s.Pitch : top*s.Pitch+rowBytes]
		b := s.Pixels[bottom*s.Pitch : bottom*s.Pitch+rowBytes]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
	return nil
}

// Packed returns the pixels with rows Width*BytesPerPixel apart. The
// surface's own slice is returned when it is already packed.
func (s *Surface) Packed() []byte {
	rowBytes := s.Width * s.Format.BytesPerPixel()
	if s.Pitch == rowBytes {
		return s.Pixels[:rowBytes*s.Height]
	}
	out := make([]byte, rowBytes*s.Height)
	for y := 0; y < s.Height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], s.Pixels[y*s.Pitch:])
	}
	return out
}

// ConvertRGBA32 returns a packed RGBA32 copy of the surface.
func (s *Surface) ConvertRGBA32() (*Surface, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rgba := clone.AsRGBA(s)
	return &Surface{
		Format: PixelFormatRGBA32,
		Width:  s.Width,
		Height: s.Height,
		Pitch:  rgba.Stride,
		Pixels: rgba.Pix,
	}, nil
}

func (s *Surface) ColorModel() color.Model {
	switch s.Format {
	case PixelFormatGray8:
		return color.GrayModel
	case PixelFormatRGBA64, PixelFormatRGBA64Float, PixelFormatRGBA128Float:
		return color.NRGBA64Model
	}
	return color.NRGBAModel
}

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

func (s *Surface) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(s.Bounds())) {
		return color.NRGBA{}
	}
	bpp := s.Format.BytesPerPixel()
	p := s.Pixels[y*s.Pitch+x*bpp : y*s.Pitch+(x+1)*bpp]
	ne := binary.NativeEndian

	switch s.Format {
	case PixelFormatRGBA32:
		return color.NRGBA{p[0], p[1], p[2], p[3]}
	case PixelFormatBGRA32:
		return color.NRGBA{p[2], p[1], p[0], p[3]}
	case PixelFormatRGB24:
		return color.NRGBA{p[0], p[1], p[2], 0xFF}
	case PixelFormatBGR24:
		return color.NRGBA{p[2], p[1], p[0], 0xFF}
	case PixelFormatGray8:
		return color.Gray{p[0]}
	case PixelFormatRGB565:
		v := ne.Uint16(p)
		return color.NRGBA{expand(v>>11, 5), expand(v>>5, 6), expand(v, 5), 0xFF}
	case PixelFormatARGB1555:
		v := ne.Uint16(p)
		return color.NRGBA{expand(v>>10, 5), expand(v>>5, 5), expand(v, 5), expand(v>>15, 1)}
	case PixelFormatBGRA4444:
		v := ne.Uint16(p)
		return color.NRGBA{expand(v>>4, 4), expand(v>>8, 4), expand(v>>12, 4), expand(v, 4)}
	case PixelFormatRGBA64:
		return color.NRGBA64{ne.Uint16(p[0:]), ne.Uint16(p[2:]), ne.Uint16(p[4:]), ne.Uint16(p[6:])}
	case PixelFormatRGBA64Float:
		return color.NRGBA64{
			unitToUint16(halfToFloat(ne.Uint16(p[0:]))),
			unitToUint16(halfToFloat(ne.Uint16(p[2:]))),
			unitToUint16(halfToFloat(ne.Uint16(p[4:]))),
			unitToUint16(halfToFloat(ne.Uint16(p[6:]))),
		}
	case PixelFormatRGBA128Float:
		return color.NRGBA64{
			unitToUint16(stdmath.Float32frombits(ne.Uint32(p[0:]))),
			unitToUint16(stdmath.Float32frombits(ne.Uint32(p[4:]))),
			unitToUint16(stdmath.Float32frombits(ne.Uint32(p[8:]))),
			unitToUint16(stdmath.Float32frombits(ne.Uint32(p[12:]))),
		}
	}
	return color.NRGBA{}
}

// expand widens the low bits of v to 8 bits by bit replication.
func expand(v uint16, bits uint) uint8 {
	v &= 1<<bits - 1
	switch bits {
	case 1:
		return uint8(v * 0xFF)
	case 4:
		return uint8(v<<4 | v)
	case 5:
		return uint8(v<<3 | v>>2)
	case 6:
		return uint8(v<<2 | v>>4)
	}
	return uint8(v)
}

func unitToUint16(f float32) uint16 {
	if f <= 0 || f != f {
		return 0
	}
	if f >= 1 {
		return 0xFFFF
	}
	return uint16(f*0xFFFF + 0.5)
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF
	switch {
	case exp == 0 && mant == 0:
		return stdmath.Float32frombits(sign)
	case exp == 0:
		// Subnormal.
		f := float32(mant) / 1024 / 16384
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1F:
		return stdmath.Float32frombits(sign | 0x7F800000 | mant<<13)
	}
	return stdmath.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
