package gpu

import (
	"fmt"

	"github.com/spaghettifunk/nehe/engine/math"
)

/** @brief A device-local GPU buffer. The zero value is not a buffer. */
type Buffer uint64

/** @brief A GPU texture. The zero value is not a texture. */
type Texture uint64

/** @brief Host-visible memory used to stage uploads. */
type TransferBuffer uint64

/** @brief A command buffer acquired for one submission. */
type CommandBuffer uint64

/** @brief An open copy scope on a command buffer. */
type CopyScope uint64

/** @brief An open render pass on a command buffer. */
type RenderPass uint64

func (b Buffer) Valid() bool         { return b != 0 }
func (t Texture) Valid() bool        { return t != 0 }
func (t TransferBuffer) Valid() bool { return t != 0 }
func (c CommandBuffer) Valid() bool  { return c != 0 }
func (s CopyScope) Valid() bool      { return s != 0 }
func (r RenderPass) Valid() bool     { return r != 0 }

type BufferUsage uint32

const (
	BufferUsageVertex   BufferUsage = 0x1
	BufferUsageIndex    BufferUsage = 0x2
	BufferUsageIndirect BufferUsage = 0x4
	BufferUsageStorage  BufferUsage = 0x8
)

type TextureUsage uint32

const (
	/** @brief The texture can be bound for sampling. */
	TextureUsageSampler TextureUsage = 0x1
	/** @brief The texture can be rendered to. Required for mipmap generation. */
	TextureUsageColorTarget TextureUsage = 0x2
	/** @brief The texture can be used as a depth attachment. */
	TextureUsageDepthStencilTarget TextureUsage = 0x4
)

type TextureFormat int

const (
	TextureFormatInvalid TextureFormat = iota
	TextureFormatR8G8B8A8Unorm
	TextureFormatB8G8R8A8Unorm
	TextureFormatR16G16B16A16Unorm
	TextureFormatB5G6R5Unorm
	TextureFormatB5G5R5A1Unorm
	TextureFormatB4G4R4A4Unorm
	TextureFormatR16G16B16A16Float
	TextureFormatR32G32B32A32Float
	TextureFormatD16Unorm
	TextureFormatD24UnormS8Uint
	TextureFormatD32Float
	TextureFormatD32FloatS8Uint
)

var textureFormatNames = map[TextureFormat]string{
	TextureFormatInvalid:           "invalid",
	TextureFormatR8G8B8A8Unorm:     "r8g8b8a8_unorm",
	TextureFormatB8G8R8A8Unorm:     "b8g8r8a8_unorm",
	TextureFormatR16G16B16A16Unorm: "r16g16b16a16_unorm",
	TextureFormatB5G6R5Unorm:       "b5g6r5_unorm",
	TextureFormatB5G5R5A1Unorm:     "b5g5r5a1_unorm",
	TextureFormatB4G4R4A4Unorm:     "b4g4r4a4_unorm",
	TextureFormatR16G16B16A16Float: "r16g16b16a16_float",
	TextureFormatR32G32B32A32Float: "r32g32b32a32_float",
	TextureFormatD16Unorm:          "d16_unorm",
	TextureFormatD24UnormS8Uint:    "d24_unorm_s8_uint",
	TextureFormatD32Float:          "d32_float",
	TextureFormatD32FloatS8Uint:    "d32_float_s8_uint",
}

func (f TextureFormat) String() string {
	if name, ok := textureFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// ParseTextureFormat maps a name as printed by String back to its format.
// The empty string and "none" mean TextureFormatInvalid.
func ParseTextureFormat(name string) (TextureFormat, error) {
	if name == "" || name == "none" {
		return TextureFormatInvalid, nil
	}
	for f, n := range textureFormatNames {
		if n == name {
			return f, nil
		}
	}
	return TextureFormatInvalid, fmt.Errorf("unknown texture format '%s'", name)
}

// IsDepth reports whether f is a depth or depth-stencil format.
func (f TextureFormat) IsDepth() bool {
	switch f {
	case TextureFormatD16Unorm, TextureFormatD24UnormS8Uint, TextureFormatD32Float, TextureFormatD32FloatS8Uint:
		return true
	}
	return false
}

// BytesPerPixel returns the texel size of a colour format, or 0.
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatB5G6R5Unorm, TextureFormatB5G5R5A1Unorm, TextureFormatB4G4R4A4Unorm, TextureFormatD16Unorm:
		return 2
	case TextureFormatR8G8B8A8Unorm, TextureFormatB8G8R8A8Unorm, TextureFormatD24UnormS8Uint, TextureFormatD32Float:
		return 4
	case TextureFormatR16G16B16A16Unorm, TextureFormatR16G16B16A16Float, TextureFormatD32FloatS8Uint:
		return 8
	case TextureFormatR32G32B32A32Float:
		return 16
	}
	return 0
}

/**
 * @brief Describes a 2D texture to be created. Depth and layer count are
 * always 1.
 */
type TextureCreateInfo struct {
	Format    TextureFormat
	Usage     TextureUsage
	Width     uint32
	Height    uint32
	NumLevels uint32
	/** @brief Optional debug name. */
	Name string
}

/**
 * @brief The colour attachment of a render pass. The target is cleared to
 * ClearColor when Clear is set, otherwise its contents are loaded.
 */
type ColorTargetInfo struct {
	Texture    Texture
	ClearColor math.Vec4
	Clear      bool
}

/**
 * @brief The depth attachment of a render pass.
 */
type DepthStencilTargetInfo struct {
	Texture    Texture
	ClearDepth float32
	Clear      bool
}

/**
 * @brief The GPU capabilities consumed by the copy pass. Handles returned by
 * the Create functions are owned by the caller and must be released once.
 */
type Device interface {
	CreateBuffer(usage BufferUsage, size uint32) (Buffer, error)
	ReleaseBuffer(buffer Buffer)
	CreateTexture(info TextureCreateInfo) (Texture, error)
	ReleaseTexture(texture Texture)

	CreateTransferBuffer(size uint32) (TransferBuffer, error)
	// MapTransferBuffer returns a writable view of the whole buffer. The view
	// is invalid after UnmapTransferBuffer.
	MapTransferBuffer(transfer TransferBuffer) ([]byte, error)
	UnmapTransferBuffer(transfer TransferBuffer)
	ReleaseTransferBuffer(transfer TransferBuffer)

	AcquireCommandBuffer() (CommandBuffer, error)
	BeginCopyPass(cmd CommandBuffer) (CopyScope, error)
	UploadToBuffer(scope CopyScope, src TransferBuffer, dst Buffer, size uint32) error
	UploadToTexture(scope CopyScope, src TransferBuffer, dst Texture, width, height uint32) error
	EndCopyPass(scope CopyScope) error
	// GenerateMipmaps fills every level below the first from level 0. The
	// texture must have been created with TextureUsageColorTarget.
	GenerateMipmaps(cmd CommandBuffer, texture Texture) error
	SubmitCommandBuffer(cmd CommandBuffer) error
	// CancelCommandBuffer discards everything recorded without executing it.
	CancelCommandBuffer(cmd CommandBuffer)
}

/**
 * @brief A Device that also presents frames to a window.
 */
type RenderDevice interface {
	Device

	SwapchainTextureFormat() TextureFormat
	SetVSync(enabled bool) error
	// WaitAndAcquireSwapchainTexture blocks until a backbuffer is available.
	// A zero texture with a nil error means there is nothing to draw to, for
	// example while the window is minimised.
	WaitAndAcquireSwapchainTexture(cmd CommandBuffer) (Texture, uint32, uint32, error)
	BeginRenderPass(cmd CommandBuffer, color ColorTargetInfo, depth *DepthStencilTargetInfo) (RenderPass, error)
	EndRenderPass(pass RenderPass) error
	// PushVertexUniformData sets the vertex stage uniform block bound at slot
	// for the following draws on cmd.
	PushVertexUniformData(cmd CommandBuffer, slot uint32, data []byte) error
	WaitIdle() error
	Close() error
}
