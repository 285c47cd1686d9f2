package gpu

import (
	stdmath "math"
	"math/bits"
	"unsafe"

	"github.com/google/uuid"

	"github.com/spaghettifunk/nehe/engine/core"
)

// Operation names carried by DeviceError.
const (
	OpCreateBuffer         = "CreateBuffer"
	OpCreateTexture        = "CreateTexture"
	OpCreateTransferBuffer = "CreateTransferBuffer"
	OpMapTransferBuffer    = "MapTransferBuffer"
	OpFlipSurface          = "FlipSurface"
	OpConvertSurface       = "ConvertSurface"
	OpAcquireCommandBuffer = "AcquireCommandBuffer"
	OpBeginCopyPass        = "BeginCopyPass"
	OpUploadToBuffer       = "UploadToBuffer"
	OpUploadToTexture      = "UploadToTexture"
	OpEndCopyPass          = "EndCopyPass"
	OpGenerateMipmaps      = "GenerateMipmaps"
	OpSubmitCommandBuffer  = "SubmitCommandBuffer"
)

/**
 * @brief Loads image resources into CPU-side surfaces.
 */
type ImageLoader interface {
	LoadImage(path string) (*Surface, error)
}

// passThroughFormats are surface layouts the device can sample directly.
var passThroughFormats = map[PixelFormat]TextureFormat{
	PixelFormatRGBA32:       TextureFormatR8G8B8A8Unorm,
	PixelFormatRGBA64:       TextureFormatR16G16B16A16Unorm,
	PixelFormatRGB565:       TextureFormatB5G6R5Unorm,
	PixelFormatARGB1555:     TextureFormatB5G5R5A1Unorm,
	PixelFormatBGRA4444:     TextureFormatB4G4R4A4Unorm,
	PixelFormatBGRA32:       TextureFormatB8G8R8A8Unorm,
	PixelFormatRGBA64Float:  TextureFormatR16G16B16A16Float,
	PixelFormatRGBA128Float: TextureFormatR32G32B32A32Float,
}

// TextureFormatForSurface returns the device format a surface uploads as and
// whether it must first be converted to RGBA32.
func TextureFormatForSurface(format PixelFormat) (TextureFormat, bool) {
	if tf, ok := passThroughFormats[format]; ok {
		return tf, false
	}
	return TextureFormatR8G8B8A8Unorm, true
}

// MipLevelCount returns floor(log2(max(width, height))) + 1.
func MipLevelCount(width, height uint32) uint32 {
	n := uint32(bits.Len32(max(width, height)))
	return max(n, 1)
}

// payload is the destination half of a staged upload.
type payload interface {
	upload(device Device, scope CopyScope, src TransferBuffer) error
}

type bufferPayload struct {
	buffer Buffer
	size   uint32
}

func (b bufferPayload) upload(device Device, scope CopyScope, src TransferBuffer) error {
	if err := device.UploadToBuffer(scope, src, b.buffer, b.size); err != nil {
		return core.NewDeviceError(OpUploadToBuffer, err)
	}
	return nil
}

type texturePayload struct {
	texture Texture
	width   uint32
	height  uint32
	mipmaps bool
}

func (t texturePayload) upload(device Device, scope CopyScope, src TransferBuffer) error {
	if err := device.UploadToTexture(scope, src, t.texture, t.width, t.height); err != nil {
		return core.NewDeviceError(OpUploadToTexture, err)
	}
	return nil
}

type stagedUpload struct {
	transfer TransferBuffer
	payload  payload
}

/**
 * @brief Batches the initial contents of buffers and textures into a single
 * command buffer submission.
 *
 * Destination handles belong to the caller as soon as they are returned. The
 * staging memory behind them belongs to the pass and is released by Close,
 * which Submit calls itself. Callers should defer Close so that a pass
 * abandoned on an error path still releases its staging memory.
 */
type CopyPass struct {
	id      uuid.UUID
	device  Device
	loader  ImageLoader
	uploads []stagedUpload
	spent   bool
	closed  bool
}

// NewCopyPass creates an empty pass. loader may be nil if the pass never
// loads textures from resources.
func NewCopyPass(device Device, loader ImageLoader) *CopyPass {
	return &CopyPass{
		id:     uuid.New(),
		device: device,
		loader: loader,
	}
}

func (p *CopyPass) ID() uuid.UUID {
	return p.id
}

// Len returns the number of queued uploads.
func (p *CopyPass) Len() int {
	return len(p.uploads)
}

// CreateBuffer queues a buffer initialised with elements. E must be plain
// data without pointers.
func CreateBuffer[E any](p *CopyPass, usage BufferUsage, elements []E) (Buffer, error) {
	return p.CreateBufferBytes(usage, Bytes(elements))
}

// Bytes views elements as raw bytes without copying. E must be plain data
// without pointers.
func Bytes[E any](elements []E) []byte {
	if len(elements) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(elements[0])) * len(elements)
	return unsafe.Slice((*byte)(unsafe.Pointer(&elements[0])), size)
}

// CreateBufferBytes creates a buffer of len(data) bytes and queues data as
// its contents. The returned buffer may be referenced immediately but holds
// data only once Submit has succeeded.
func (p *CopyPass) CreateBufferBytes(usage BufferUsage, data []byte) (Buffer, error) {
	if p.spent {
		return 0, core.ErrCopyPassSpent
	}
	if len(data) == 0 {
		return 0, core.Fatalf("buffer data is empty")
	}
	if uint64(len(data)) > stdmath.MaxUint32 {
		return 0, core.Fatalf("buffer data of %d bytes is too large", len(data))
	}
	size := uint32(len(data))

	buffer, err := p.device.CreateBuffer(usage, size)
	if err != nil {
		return 0, core.NewDeviceError(OpCreateBuffer, err)
	}
	transfer, err := p.stage(data)
	if err != nil {
		p.device.ReleaseBuffer(buffer)
		return 0, err
	}

	p.uploads = append(p.uploads, stagedUpload{
		transfer: transfer,
		payload:  bufferPayload{buffer: buffer, size: size},
	})
	return buffer, nil
}

// LoadTexture reads an image through the pass's loader and queues it as a
// texture. Images are stored top row first; pass flipVertical for lessons
// whose texture coordinates put the origin at the bottom.
func (p *CopyPass) LoadTexture(path string, flipVertical, generateMipmaps bool) (Texture, error) {
	if p.spent {
		return 0, core.ErrCopyPassSpent
	}
	if p.loader == nil {
		return 0, core.Fatalf("no image loader for '%s'", path)
	}
	surface, err := p.loader.LoadImage(path)
	if err != nil {
		return 0, err
	}
	if flipVertical {
		if err := surface.FlipVertical(); err != nil {
			return 0, core.NewDeviceError(OpFlipSurface, err)
		}
	}
	return p.CreateTextureFromSurface(surface, generateMipmaps)
}

// CreateTextureFromSurface creates a sampled texture matching surface and
// queues its pixels. Formats the device cannot sample directly are converted
// to RGBA32 first. With generateMipmaps the texture gets a full mip chain
// which Submit fills after the upload.
func (p *CopyPass) CreateTextureFromSurface(surface *Surface, generateMipmaps bool) (Texture, error) {
	if p.spent {
		return 0, core.ErrCopyPassSpent
	}
	if surface == nil {
		return 0, core.Fatalf("nil surface")
	}

	format, convert := TextureFormatForSurface(surface.Format)
	if convert {
		converted, err := surface.ConvertRGBA32()
		if err != nil {
			return 0, core.NewDeviceError(OpConvertSurface, err)
		}
		surface = converted
	} else if err := surface.Validate(); err != nil {
		return 0, core.Fatalf("malformed surface: %s", err)
	}

	info := TextureCreateInfo{
		Format:    format,
		Usage:     TextureUsageSampler,
		Width:     uint32(surface.Width),
		Height:    uint32(surface.Height),
		NumLevels: 1,
	}
	if generateMipmaps {
		info.Usage |= TextureUsageColorTarget
		info.NumLevels = MipLevelCount(info.Width, info.Height)
	}

	texture, err := p.device.CreateTexture(info)
	if err != nil {
		return 0, core.NewDeviceError(OpCreateTexture, err)
	}
	transfer, err := p.stage(surface.Packed())
	if err != nil {
		p.device.ReleaseTexture(texture)
		return 0, err
	}

	p.uploads = append(p.uploads, stagedUpload{
		transfer: transfer,
		payload: texturePayload{
			texture: texture,
			width:   info.Width,
			height:  info.Height,
			mipmaps: generateMipmaps,
		},
	})
	return texture, nil
}

// stage copies data into a new transfer buffer. Nothing is left allocated
// when it fails.
func (p *CopyPass) stage(data []byte) (TransferBuffer, error) {
	transfer, err := p.device.CreateTransferBuffer(uint32(len(data)))
	if err != nil {
		return 0, core.NewDeviceError(OpCreateTransferBuffer, err)
	}
	mapped, err := p.device.MapTransferBuffer(transfer)
	if err != nil {
		p.device.ReleaseTransferBuffer(transfer)
		return 0, core.NewDeviceError(OpMapTransferBuffer, err)
	}
	if len(mapped) < len(data) {
		p.device.UnmapTransferBuffer(transfer)
		p.device.ReleaseTransferBuffer(transfer)
		return 0, core.Fatalf("mapped %d bytes for a %d byte upload", len(mapped), len(data))
	}
	copy(mapped, data)
	p.device.UnmapTransferBuffer(transfer)
	return transfer, nil
}

// Submit records every queued upload in order on one command buffer,
// generates the requested mipmaps and submits it. Nothing is submitted if
// any step fails. The pass is spent afterwards either way.
func (p *CopyPass) Submit() error {
	if p.spent {
		return core.ErrCopyPassSpent
	}
	p.spent = true
	defer p.Close()

	cmd, err := p.device.AcquireCommandBuffer()
	if err != nil {
		return core.NewDeviceError(OpAcquireCommandBuffer, err)
	}
	mipmaps, err := p.record(cmd)
	if err != nil {
		p.device.CancelCommandBuffer(cmd)
		core.Logger().Error("copy pass cancelled", "pass", p.id, "op", core.FailedOp(err), "err", err)
		return err
	}
	if err := p.device.SubmitCommandBuffer(cmd); err != nil {
		return core.NewDeviceError(OpSubmitCommandBuffer, err)
	}
	core.Logger().Debug("copy pass submitted", "pass", p.id, "uploads", len(p.uploads), "mipmaps", mipmaps)
	return nil
}

func (p *CopyPass) record(cmd CommandBuffer) (int, error) {
	scope, err := p.device.BeginCopyPass(cmd)
	if err != nil {
		return 0, core.NewDeviceError(OpBeginCopyPass, err)
	}
	for _, u := range p.uploads {
		if err := u.payload.upload(p.device, scope, u.transfer); err != nil {
			return 0, err
		}
	}
	if err := p.device.EndCopyPass(scope); err != nil {
		return 0, core.NewDeviceError(OpEndCopyPass, err)
	}

	// Uploads are recorded before this point, so every level 0 is populated.
	mipmaps := 0
	for _, u := range p.uploads {
		t, ok := u.payload.(texturePayload)
		if !ok || !t.mipmaps {
			continue
		}
		if err := p.device.GenerateMipmaps(cmd, t.texture); err != nil {
			return 0, core.NewDeviceError(OpGenerateMipmaps, err)
		}
		mipmaps++
	}
	return mipmaps, nil
}

// Close releases the staging memory of every queued upload, most recent
// first. It is safe to call more than once. Destination resources are not
// touched.
func (p *CopyPass) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.spent = true
	for i := len(p.uploads) - 1; i >= 0; i-- {
		p.device.ReleaseTransferBuffer(p.uploads[i].transfer)
	}
	p.uploads = nil
}
