package vulkan

import (
	vk "github.com/goki/vulkan"
)

type CommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY CommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_COPY_PASS
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s CommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "ready"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "recording"
	case COMMAND_BUFFER_STATE_IN_COPY_PASS:
		return "in copy pass"
	case COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return "in render pass"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "recording ended"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "submitted"
	}
	return "not allocated"
}

/**
 * @brief A primary command buffer recorded for a single submission.
 *
 * Layout changes are tracked per command buffer and only committed to the
 * images once it has been submitted, so a cancelled buffer leaves every
 * image as it was.
 */
type CommandBuffer struct {
	Handle vk.CommandBuffer
	State  CommandBufferState

	// open is the handle of the copy scope or render pass being recorded.
	open    uint64
	layouts map[*Image]vk.ImageLayout
	// framebuffers are destroyed once the submission has completed.
	framebuffers []vk.Framebuffer
	// swapchainImage is the index of the acquired swapchain image, or -1.
	swapchainImage int
	uniforms       [MaxUniformSlots]UniformBinding
}

func allocateCommandBuffer(context *Context) (*CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        context.GraphicsCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	handles := make([]vk.CommandBuffer, 1)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(context.LogicalDevice, &allocateInfo, handles)); err != nil {
		return nil, err
	}
	return &CommandBuffer{
		Handle:         handles[0],
		State:          COMMAND_BUFFER_STATE_READY,
		layouts:        make(map[*Image]vk.ImageLayout),
		swapchainImage: -1,
	}, nil
}

func (c *CommandBuffer) begin() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(c.Handle, &beginInfo)); err != nil {
		return err
	}
	c.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (c *CommandBuffer) end() error {
	if err := check("vkEndCommandBuffer", vk.EndCommandBuffer(c.Handle)); err != nil {
		return err
	}
	c.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

// reset discards everything recorded and starts recording again.
func (c *CommandBuffer) reset() error {
	if err := check("vkResetCommandBuffer", vk.ResetCommandBuffer(c.Handle, 0)); err != nil {
		return err
	}
	clear(c.layouts)
	c.open = 0
	return c.begin()
}

// layout is the layout image will be in at this point of the recording.
func (c *CommandBuffer) layout(image *Image) vk.ImageLayout {
	if l, ok := c.layouts[image]; ok {
		return l
	}
	return image.Layout
}

// transition records a barrier moving every level of image to layout.
func (c *CommandBuffer) transition(image *Image, layout vk.ImageLayout) {
	from := c.layout(image)
	if from == layout {
		return
	}
	image.transition(c.Handle, from, layout, 0, image.Levels)
	c.layouts[image] = layout
}

// commit applies the recorded layouts once the buffer has been submitted.
func (c *CommandBuffer) commit() {
	for image, layout := range c.layouts {
		image.Layout = layout
	}
	clear(c.layouts)
}

func (c *CommandBuffer) free(context *Context) {
	for _, framebuffer := range c.framebuffers {
		vk.DestroyFramebuffer(context.LogicalDevice, framebuffer, context.Allocator)
	}
	c.framebuffers = nil
	if c.Handle != nil {
		vk.FreeCommandBuffers(context.LogicalDevice, context.GraphicsCommandPool, 1, []vk.CommandBuffer{c.Handle})
		c.Handle = nil
	}
	c.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}
