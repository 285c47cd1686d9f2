package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/gpu"
)

var textureFormats = map[gpu.TextureFormat]vk.Format{
	gpu.TextureFormatR8G8B8A8Unorm:     vk.FormatR8g8b8a8Unorm,
	gpu.TextureFormatB8G8R8A8Unorm:     vk.FormatB8g8r8a8Unorm,
	gpu.TextureFormatR16G16B16A16Unorm: vk.FormatR16g16b16a16Unorm,
	gpu.TextureFormatB5G6R5Unorm:       vk.FormatR5g6b5UnormPack16,
	gpu.TextureFormatB5G5R5A1Unorm:     vk.FormatA1r5g5b5UnormPack16,
	gpu.TextureFormatB4G4R4A4Unorm:     vk.FormatB4g4r4a4UnormPack16,
	gpu.TextureFormatR16G16B16A16Float: vk.FormatR16g16b16a16Sfloat,
	gpu.TextureFormatR32G32B32A32Float: vk.FormatR32g32b32a32Sfloat,
	gpu.TextureFormatD16Unorm:          vk.FormatD16Unorm,
	gpu.TextureFormatD24UnormS8Uint:    vk.FormatD24UnormS8Uint,
	gpu.TextureFormatD32Float:          vk.FormatD32Sfloat,
	gpu.TextureFormatD32FloatS8Uint:    vk.FormatD32SfloatS8Uint,
}

// Format returns the Vulkan format for f, or FormatUndefined.
func Format(f gpu.TextureFormat) vk.Format {
	if vf, ok := textureFormats[f]; ok {
		return vf
	}
	return vk.FormatUndefined
}

// TextureFormat maps a Vulkan format back. sRGB swapchain formats report
// their unorm counterpart.
func TextureFormat(f vk.Format) gpu.TextureFormat {
	switch f {
	case vk.FormatB8g8r8a8Srgb:
		return gpu.TextureFormatB8G8R8A8Unorm
	case vk.FormatR8g8b8a8Srgb:
		return gpu.TextureFormatR8G8B8A8Unorm
	}
	for tf, vf := range textureFormats {
		if vf == f {
			return tf
		}
	}
	return gpu.TextureFormatInvalid
}

func aspectMask(f gpu.TextureFormat) vk.ImageAspectFlags {
	switch f {
	case gpu.TextureFormatD16Unorm, gpu.TextureFormatD32Float:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	case gpu.TextureFormatD24UnormS8Uint, gpu.TextureFormatD32FloatS8Uint:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func bufferUsage(usage gpu.BufferUsage) vk.BufferUsageFlags {
	flags := vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	if usage&gpu.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if usage&gpu.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if usage&gpu.BufferUsageIndirect != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageIndirectBufferBit)
	}
	if usage&gpu.BufferUsageStorage != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	}
	return flags
}

// imageUsage returns the usage flags and the format features an image with
// the given usage needs. Every image can be uploaded to.
func imageUsage(usage gpu.TextureUsage) (vk.ImageUsageFlags, vk.FormatFeatureFlags) {
	flags := vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	var features vk.FormatFeatureFlags
	if usage&gpu.TextureUsageSampler != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
		features |= vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit)
	}
	if usage&gpu.TextureUsageColorTarget != 0 {
		// Mipmaps are generated by blitting between levels.
		flags |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit)
		features |= vk.FormatFeatureFlags(vk.FormatFeatureColorAttachmentBit | vk.FormatFeatureBlitSrcBit | vk.FormatFeatureBlitDstBit)
	}
	if usage&gpu.TextureUsageDepthStencilTarget != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
		features |= vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	}
	return flags, features
}

// accessFor returns the access and stage a layout is used with, for the two
// halves of a barrier.
func accessFor(layout vk.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch layout {
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessShaderReadBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	case vk.ImageLayoutPresentSrc:
		return 0, vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
}
