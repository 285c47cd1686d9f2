package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/gpu"
)

/**
 * @brief A 2D image with a view covering every level. Swapchain images are
 * owned by their swapchain and carry no memory.
 */
type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Levels uint32
	Format vk.Format
	Aspect vk.ImageAspectFlags
	Info   gpu.TextureCreateInfo
	// Layout is the layout after the last submitted command buffer that
	// touched the image.
	Layout    vk.ImageLayout
	swapchain bool
}

func createImage(context *Context, info gpu.TextureCreateInfo) (*Image, error) {
	format := Format(info.Format)
	if format == vk.FormatUndefined {
		return nil, fmt.Errorf("unsupported texture format %s", info.Format)
	}
	usage, features := imageUsage(info.Usage)
	if !context.supportsFormat(format, features) {
		return nil, fmt.Errorf("texture format %s does not support usage 0x%x", info.Format, uint32(info.Usage))
	}

	image := &Image{
		Width:  info.Width,
		Height: info.Height,
		Levels: info.NumLevels,
		Format: format,
		Aspect: aspectMask(info.Format),
		Info:   info,
		Layout: vk.ImageLayoutUndefined,
	}
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  info.Width,
			Height: info.Height,
			Depth:  1,
		},
		MipLevels:     info.NumLevels,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if err := check("vkCreateImage", vk.CreateImage(context.LogicalDevice, &imageCreateInfo, context.Allocator, &image.Handle)); err != nil {
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.LogicalDevice, image.Handle, &requirements)
	requirements.Deref()
	memory, err := context.allocate(requirements, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		image.destroy(context)
		return nil, err
	}
	image.Memory = memory
	if err := check("vkBindImageMemory", vk.BindImageMemory(context.LogicalDevice, image.Handle, image.Memory, 0)); err != nil {
		image.destroy(context)
		return nil, err
	}

	view, err := createView(context, image.Handle, format, image.Aspect, info.NumLevels)
	if err != nil {
		image.destroy(context)
		return nil, err
	}
	image.View = view
	return image, nil
}

func createView(context *Context, handle vk.Image, format vk.Format, aspect vk.ImageAspectFlags, levels uint32) (vk.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     levels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if err := check("vkCreateImageView", vk.CreateImageView(context.LogicalDevice, &viewCreateInfo, context.Allocator, &view)); err != nil {
		return nil, err
	}
	return view, nil
}

func (i *Image) destroy(context *Context) {
	if i.View != nil {
		vk.DestroyImageView(context.LogicalDevice, i.View, context.Allocator)
		i.View = nil
	}
	if i.swapchain {
		return
	}
	if i.Handle != nil {
		vk.DestroyImage(context.LogicalDevice, i.Handle, context.Allocator)
		i.Handle = nil
	}
	if i.Memory != nil {
		vk.FreeMemory(context.LogicalDevice, i.Memory, context.Allocator)
		i.Memory = nil
	}
}

// transition records a layout change for levelCount levels from baseLevel.
func (i *Image) transition(cmd vk.CommandBuffer, from, to vk.ImageLayout, baseLevel, levelCount uint32) {
	srcAccess, srcStage := accessFor(from)
	dstAccess, dstStage := accessFor(to)
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               i.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     i.Aspect,
			BaseMipLevel:   baseLevel,
			LevelCount:     levelCount,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// blitMipmaps fills every level below the first from level 0, which must be
// in TransferDstOptimal like the rest of the chain. Every level ends up in
// ShaderReadOnlyOptimal.
func (i *Image) blitMipmaps(cmd vk.CommandBuffer) {
	width, height := int32(i.Width), int32(i.Height)
	for level := uint32(1); level < i.Levels; level++ {
		i.transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal, level-1, 1)

		nextWidth, nextHeight := max(width/2, 1), max(height/2, 1)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask:     i.Aspect,
				MipLevel:       level - 1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: width, Y: height, Z: 1},
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask:     i.Aspect,
				MipLevel:       level,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			DstOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: nextWidth, Y: nextHeight, Z: 1},
			},
		}
		vk.CmdBlitImage(cmd,
			i.Handle, vk.ImageLayoutTransferSrcOptimal,
			i.Handle, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		i.transition(cmd, vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal, level-1, 1)
		width, height = nextWidth, nextHeight
	}
	i.transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal, i.Levels-1, 1)
}
