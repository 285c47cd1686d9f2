package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

/**
 * @brief Loads images named relative to an Index into gpu surfaces.
 * Implements gpu.ImageLoader.
 */
type ImageLoader struct {
	index *Index
}

func NewImageLoader(index *Index) *ImageLoader {
	return &ImageLoader{index: index}
}

// Index is the resource index names are resolved against.
func (l *ImageLoader) Index() *Index {
	return l.index
}

func (l *ImageLoader) LoadImage(name string) (*gpu.Surface, error) {
	path, err := l.index.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.IOError{Path: name, Err: err}
	}
	surface, err := DecodeImage(name, data)
	if err != nil {
		return nil, err
	}
	core.LogDebug("loaded image '%s' (%dx%d %s)", name, surface.Width, surface.Height, surface.Format)
	return surface, nil
}

// DecodeImage sniffs the container format of data and decodes it. The name
// is only used in errors.
func DecodeImage(name string, data []byte) (*gpu.Surface, error) {
	kind, err := filetype.Image(data)
	if err != nil {
		return nil, core.Fatalf("'%s' is not a supported image", name)
	}

	var img image.Image
	r := bytes.NewReader(data)
	switch kind {
	case matchers.TypeBmp:
		img, err = bmp.Decode(r)
	case matchers.TypePng:
		img, err = png.Decode(r)
	case matchers.TypeJpeg:
		img, err = jpeg.Decode(r)
	default:
		return nil, core.Fatalf("'%s' is a %s image, which is not supported", name, kind.MIME.Value)
	}
	if err != nil {
		return nil, core.Fatalf("malformed image '%s': %s", name, err)
	}
	return SurfaceFromImage(img), nil
}

// SurfaceFromImage copies img into a packed surface. Grayscale stays single
// channel, 16-bit images keep their depth and everything else becomes RGBA32
// with straight alpha.
func SurfaceFromImage(img image.Image) *gpu.Surface {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		s := gpu.NewSurface(gpu.PixelFormatGray8, w, h)
		copyRows(s, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride)
		return s

	case *image.NRGBA:
		s := gpu.NewSurface(gpu.PixelFormatRGBA32, w, h)
		copyRows(s, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride)
		return s

	case *image.RGBA:
		if src.Opaque() {
			s := gpu.NewSurface(gpu.PixelFormatRGBA32, w, h)
			copyRows(s, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride)
			return s
		}

	case *image.NRGBA64:
		// image stores components big endian, surfaces use host order.
		s := gpu.NewSurface(gpu.PixelFormatRGBA64, w, h)
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			out := s.Pixels[y*s.Pitch:]
			for i := 0; i < w*4; i++ {
				binary.NativeEndian.PutUint16(out[i*2:], binary.BigEndian.Uint16(row[i*2:]))
			}
		}
		return s
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &gpu.Surface{
		Format: gpu.PixelFormatRGBA32,
		Width:  w,
		Height: h,
		Pitch:  dst.Stride,
		Pixels: dst.Pix,
	}
}

func copyRows(s *gpu.Surface, pix []byte, stride int) {
	rowBytes := s.Width * s.Format.BytesPerPixel()
	for y := 0; y < s.Height; y++ {
		copy(s.Pixels[y*s.Pitch:y*s.Pitch+rowBytes], pix[y*stride:])
	}
}
