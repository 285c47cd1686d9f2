package vulkan

import (
	vk "github.com/goki/vulkan"
)

/**
 * @brief Everything a render pass object depends on. Passes are created on
 * first use and cached for the lifetime of the device.
 */
type renderpassKey struct {
	colorFormat  vk.Format
	colorLoad    vk.AttachmentLoadOp
	colorInitial vk.ImageLayout
	colorFinal   vk.ImageLayout
	depthFormat  vk.Format
	depthLoad    vk.AttachmentLoadOp
	depthInitial vk.ImageLayout
}

func (k renderpassKey) hasDepth() bool {
	return k.depthFormat != vk.FormatUndefined
}

// attachmentLoad clears or loads. A cleared attachment starts from an
// undefined layout since its contents are discarded anyway.
func attachmentLoad(clear bool, current vk.ImageLayout) (vk.AttachmentLoadOp, vk.ImageLayout) {
	if clear {
		return vk.AttachmentLoadOpClear, vk.ImageLayoutUndefined
	}
	return vk.AttachmentLoadOpLoad, current
}

func createRenderpass(context *Context, key renderpassKey) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         key.colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         key.colorLoad,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  key.colorInitial,
		FinalLayout:    key.colorFinal,
	}}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	dstStage := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	dstAccess := vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)

	if key.hasDepth() {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         key.depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         key.depthLoad,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  key.depthLoad,
			StencilStoreOp: vk.AttachmentStoreOpStore,
			InitialLayout:  key.depthInitial,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		dstStage |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		dstAccess |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  dstStage,
		SrcAccessMask: 0,
		DstStageMask:  dstStage,
		DstAccessMask: dstAccess,
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var renderpass vk.RenderPass
	if err := check("vkCreateRenderPass", vk.CreateRenderPass(context.LogicalDevice, &renderpassCreateInfo, context.Allocator, &renderpass)); err != nil {
		return nil, err
	}
	return renderpass, nil
}

func createFramebuffer(context *Context, renderpass vk.RenderPass, width, height uint32, attachments []vk.ImageView) (vk.Framebuffer, error) {
	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var framebuffer vk.Framebuffer
	if err := check("vkCreateFramebuffer", vk.CreateFramebuffer(context.LogicalDevice, &framebufferCreateInfo, context.Allocator, &framebuffer)); err != nil {
		return nil, err
	}
	return framebuffer, nil
}

// clearValues packs the colour and optional depth clear values in
// attachment order.
func clearValues(color [4]float32, depth *float32) []vk.ClearValue {
	values := make([]vk.ClearValue, 1, 2)
	values[0].SetColor(color[:])
	if depth != nil {
		var v vk.ClearValue
		v.SetDepthStencil(*depth, 0)
		values = append(values, v)
	}
	return values
}
