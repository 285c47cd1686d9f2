package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

var _ gpu.RenderDevice = (*Device)(nil)

/**
 * @brief A RenderDevice backed by Vulkan. Every submission is executed
 * synchronously: SubmitCommandBuffer returns once the GPU has finished
 * with the command buffer, which keeps resource lifetimes trivial.
 */
type Device struct {
	context   *Context
	window    Window
	swapchain *Swapchain
	// width and height are the framebuffer size the swapchain was requested
	// for, which may differ from its extent.
	width, height uint32
	vsync         bool
	nextID        uint64

	buffers   map[gpu.Buffer]*Buffer
	textures  map[gpu.Texture]*Image
	transfers map[gpu.TransferBuffer]*transfer
	commands  map[gpu.CommandBuffer]*CommandBuffer
	scopes    map[uint64]gpu.CommandBuffer

	renderpasses map[renderpassKey]vk.RenderPass
	fence        *Fence
	uniforms     *uniformArena
	// graveyard holds destructors of resources released while a command
	// buffer might still refer to them.
	graveyard []func()
	closed    bool
}

type transfer struct {
	buffer *Buffer
	mapped bool
}

func NewDevice(window Window, appName string, debug, vsync bool) (*Device, error) {
	d := &Device{
		context:      &Context{},
		window:       window,
		vsync:        vsync,
		buffers:      make(map[gpu.Buffer]*Buffer),
		textures:     make(map[gpu.Texture]*Image),
		transfers:    make(map[gpu.TransferBuffer]*transfer),
		commands:     make(map[gpu.CommandBuffer]*CommandBuffer),
		scopes:       make(map[uint64]gpu.CommandBuffer),
		renderpasses: make(map[renderpassKey]vk.RenderPass),
	}
	if err := d.initialize(appName, debug); err != nil {
		d.teardown()
		return nil, core.NewDeviceError("NewDevice", err)
	}
	core.LogInfo("Vulkan device initialized successfully.")
	return d, nil
}

func (d *Device) initialize(appName string, debug bool) error {
	if err := createInstance(d.context, d.window, appName, debug); err != nil {
		return err
	}
	if err := selectPhysicalDevice(d.context); err != nil {
		return err
	}
	if err := createLogicalDevice(d.context); err != nil {
		return err
	}
	fence, err := NewFence(d.context, false)
	if err != nil {
		return err
	}
	d.fence = fence
	if d.uniforms, err = newUniformArena(d.context); err != nil {
		return err
	}
	width, height := d.window.FramebufferSize()
	if width > 0 && height > 0 {
		return d.recreateSwapchain(uint32(width), uint32(height))
	}
	return nil
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// recreateSwapchain replaces the swapchain and the texture handles of its
// images.
func (d *Device) recreateSwapchain(width, height uint32) error {
	if d.swapchain != nil {
		if err := d.WaitIdle(); err != nil {
			return err
		}
	}
	swapchain, err := createSwapchain(d.context, width, height, d.vsync, d.swapchain)
	if err != nil {
		return err
	}
	if d.swapchain != nil {
		for _, t := range d.swapchain.Textures {
			delete(d.textures, t)
		}
		d.swapchain.destroy(d.context)
	}
	swapchain.Textures = make([]gpu.Texture, len(swapchain.Images))
	for i, image := range swapchain.Images {
		t := gpu.Texture(d.id())
		swapchain.Textures[i] = t
		d.textures[t] = image
	}
	d.swapchain = swapchain
	d.width, d.height = width, height
	return nil
}

func (d *Device) CreateBuffer(usage gpu.BufferUsage, size uint32) (gpu.Buffer, error) {
	if size == 0 {
		return 0, fmt.Errorf("zero sized buffer")
	}
	buffer, err := createBuffer(d.context, size, bufferUsage(usage), vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return 0, err
	}
	b := gpu.Buffer(d.id())
	d.buffers[b] = buffer
	return b, nil
}

func (d *Device) ReleaseBuffer(b gpu.Buffer) {
	buffer, ok := d.buffers[b]
	if !ok {
		core.LogWarn("ReleaseBuffer called with unknown buffer %d.", b)
		return
	}
	delete(d.buffers, b)
	d.bury(func() { buffer.destroy(d.context) })
}

func (d *Device) CreateTexture(info gpu.TextureCreateInfo) (gpu.Texture, error) {
	if info.Width == 0 || info.Height == 0 {
		return 0, fmt.Errorf("invalid texture size %dx%d", info.Width, info.Height)
	}
	if info.NumLevels == 0 {
		info.NumLevels = 1
	}
	if info.NumLevels > gpu.MipLevelCount(info.Width, info.Height) {
		return 0, fmt.Errorf("%d levels exceed the mip chain of a %dx%d texture", info.NumLevels, info.Width, info.Height)
	}
	if info.Format.IsDepth() && info.Usage&gpu.TextureUsageDepthStencilTarget == 0 {
		return 0, fmt.Errorf("depth format %s without depth target usage", info.Format)
	}
	image, err := createImage(d.context, info)
	if err != nil {
		return 0, err
	}
	t := gpu.Texture(d.id())
	d.textures[t] = image
	return t, nil
}

// ReleaseTexture ignores swapchain textures, which live as long as the
// swapchain.
func (d *Device) ReleaseTexture(t gpu.Texture) {
	image, ok := d.textures[t]
	if !ok {
		core.LogWarn("ReleaseTexture called with unknown texture %d.", t)
		return
	}
	if image.swapchain {
		return
	}
	delete(d.textures, t)
	d.bury(func() { image.destroy(d.context) })
}

func (d *Device) CreateTransferBuffer(size uint32) (gpu.TransferBuffer, error) {
	if size == 0 {
		return 0, fmt.Errorf("zero sized transfer buffer")
	}
	buffer, err := createHostBuffer(d.context, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return 0, err
	}
	t := gpu.TransferBuffer(d.id())
	d.transfers[t] = &transfer{buffer: buffer}
	return t, nil
}

func (d *Device) MapTransferBuffer(t gpu.TransferBuffer) ([]byte, error) {
	tb, ok := d.transfers[t]
	if !ok {
		return nil, fmt.Errorf("transfer buffer %d is not live", t)
	}
	if tb.mapped {
		return nil, fmt.Errorf("transfer buffer %d is already mapped", t)
	}
	data, err := tb.buffer.lock(d.context)
	if err != nil {
		return nil, err
	}
	tb.mapped = true
	return data, nil
}

func (d *Device) UnmapTransferBuffer(t gpu.TransferBuffer) {
	if tb, ok := d.transfers[t]; ok && tb.mapped {
		tb.buffer.unlock(d.context)
		tb.mapped = false
	}
}

func (d *Device) ReleaseTransferBuffer(t gpu.TransferBuffer) {
	tb, ok := d.transfers[t]
	if !ok {
		core.LogWarn("ReleaseTransferBuffer called with unknown transfer buffer %d.", t)
		return
	}
	delete(d.transfers, t)
	d.bury(func() { tb.buffer.destroy(d.context) })
}

// bury destroys a released resource now, or once every outstanding command
// buffer has completed.
func (d *Device) bury(destroy func()) {
	if len(d.commands) == 0 {
		destroy()
		return
	}
	d.graveyard = append(d.graveyard, destroy)
}

func (d *Device) AcquireCommandBuffer() (gpu.CommandBuffer, error) {
	if d.closed {
		return 0, fmt.Errorf("device is closed")
	}
	cb, err := allocateCommandBuffer(d.context)
	if err != nil {
		return 0, err
	}
	if err := cb.begin(); err != nil {
		cb.free(d.context)
		return 0, err
	}
	cmd := gpu.CommandBuffer(d.id())
	d.commands[cmd] = cb
	return cmd, nil
}

func (d *Device) recording(cmd gpu.CommandBuffer) (*CommandBuffer, error) {
	cb, ok := d.commands[cmd]
	if !ok {
		return nil, fmt.Errorf("command buffer %d does not exist", cmd)
	}
	if cb.State != COMMAND_BUFFER_STATE_RECORDING {
		return nil, fmt.Errorf("command buffer %d is %s", cmd, cb.State)
	}
	return cb, nil
}

// open starts a copy scope or render pass on cmd.
func (d *Device) open(cmd gpu.CommandBuffer, state CommandBufferState) (*CommandBuffer, uint64, error) {
	cb, err := d.recording(cmd)
	if err != nil {
		return nil, 0, err
	}
	id := d.id()
	cb.open = id
	cb.State = state
	d.scopes[id] = cmd
	return cb, id, nil
}

func (d *Device) inScope(scope uint64, state CommandBufferState) (*CommandBuffer, error) {
	cmd, ok := d.scopes[scope]
	if !ok {
		return nil, fmt.Errorf("pass %d is not open", scope)
	}
	cb, ok := d.commands[cmd]
	if !ok || cb.open != scope || cb.State != state {
		return nil, fmt.Errorf("pass %d is not open", scope)
	}
	return cb, nil
}

func (d *Device) close(cb *CommandBuffer) {
	delete(d.scopes, cb.open)
	cb.open = 0
	cb.State = COMMAND_BUFFER_STATE_RECORDING
}

func (d *Device) BeginCopyPass(cmd gpu.CommandBuffer) (gpu.CopyScope, error) {
	_, id, err := d.open(cmd, COMMAND_BUFFER_STATE_IN_COPY_PASS)
	return gpu.CopyScope(id), err
}

func (d *Device) UploadToBuffer(scope gpu.CopyScope, src gpu.TransferBuffer, dst gpu.Buffer, size uint32) error {
	cb, err := d.inScope(uint64(scope), COMMAND_BUFFER_STATE_IN_COPY_PASS)
	if err != nil {
		return err
	}
	tb, ok := d.transfers[src]
	if !ok {
		return fmt.Errorf("transfer buffer %d is not live", src)
	}
	buffer, ok := d.buffers[dst]
	if !ok {
		return fmt.Errorf("buffer %d is not live", dst)
	}
	if size > tb.buffer.Size || size > buffer.Size {
		return fmt.Errorf("upload of %d bytes from %d byte transfer buffer into %d byte buffer", size, tb.buffer.Size, buffer.Size)
	}
	vk.CmdCopyBuffer(cb.Handle, tb.buffer.Handle, buffer.Handle, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})
	return nil
}

// UploadToTexture copies tightly packed rows into level 0. Afterwards the
// texture is ready for sampling.
func (d *Device) UploadToTexture(scope gpu.CopyScope, src gpu.TransferBuffer, dst gpu.Texture, width, height uint32) error {
	cb, err := d.inScope(uint64(scope), COMMAND_BUFFER_STATE_IN_COPY_PASS)
	if err != nil {
		return err
	}
	tb, ok := d.transfers[src]
	if !ok {
		return fmt.Errorf("transfer buffer %d is not live", src)
	}
	image, ok := d.textures[dst]
	if !ok {
		return fmt.Errorf("texture %d is not live", dst)
	}
	if image.swapchain || image.Info.Format.IsDepth() {
		return fmt.Errorf("texture %d cannot be uploaded to", dst)
	}
	if width > image.Width || height > image.Height {
		return fmt.Errorf("upload of %dx%d exceeds texture %d of %dx%d", width, height, dst, image.Width, image.Height)
	}
	if size := width * height * image.Info.Format.BytesPerPixel(); size > tb.buffer.Size {
		return fmt.Errorf("transfer buffer %d holds %d bytes, %d requested", src, tb.buffer.Size, size)
	}

	cb.transition(image, vk.ImageLayoutTransferDstOptimal)
	vk.CmdCopyBufferToImage(cb.Handle, tb.buffer.Handle, image.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     image.Aspect,
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}})
	cb.transition(image, vk.ImageLayoutShaderReadOnlyOptimal)
	return nil
}

func (d *Device) EndCopyPass(scope gpu.CopyScope) error {
	cb, err := d.inScope(uint64(scope), COMMAND_BUFFER_STATE_IN_COPY_PASS)
	if err != nil {
		return err
	}
	d.close(cb)
	return nil
}

func (d *Device) GenerateMipmaps(cmd gpu.CommandBuffer, tex gpu.Texture) error {
	cb, err := d.recording(cmd)
	if err != nil {
		return err
	}
	image, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("texture %d is not live", tex)
	}
	if image.Info.Usage&gpu.TextureUsageColorTarget == 0 {
		return fmt.Errorf("texture %d is not a colour target", tex)
	}
	if image.Levels < 2 {
		return nil
	}
	cb.transition(image, vk.ImageLayoutTransferDstOptimal)
	image.blitMipmaps(cb.Handle)
	cb.layouts[image] = vk.ImageLayoutShaderReadOnlyOptimal
	return nil
}

func (d *Device) SubmitCommandBuffer(cmd gpu.CommandBuffer) error {
	cb, err := d.recording(cmd)
	if err != nil {
		return err
	}
	if cb.swapchainImage >= 0 {
		cb.transition(d.swapchain.Images[cb.swapchainImage], vk.ImageLayoutPresentSrc)
	}
	return d.execute(cmd, cb)
}

// execute ends, submits and waits for cb, presenting the acquired swapchain
// image if there is one. cb is freed whatever the outcome.
func (d *Device) execute(cmd gpu.CommandBuffer, cb *CommandBuffer) error {
	defer d.retire(cmd, cb)

	if err := cb.end(); err != nil {
		return err
	}
	if err := d.fence.Reset(d.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	presenting := cb.swapchainImage >= 0
	if presenting {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{d.swapchain.imageAvailable}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{d.swapchain.renderFinished[cb.swapchainImage]}
	}
	if err := check("vkQueueSubmit", vk.QueueSubmit(d.context.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, d.fence.Handle)); err != nil {
		if presenting {
			// The acquire semaphore is still signalled.
			d.swapchain.stale = true
		}
		return err
	}
	cb.State = COMMAND_BUFFER_STATE_SUBMITTED

	var presentErr error
	if presenting {
		presentErr = d.swapchain.present(d.context, uint32(cb.swapchainImage))
	}
	if err := d.fence.Wait(d.context); err != nil {
		return err
	}
	cb.commit()
	return presentErr
}

func (d *Device) retire(cmd gpu.CommandBuffer, cb *CommandBuffer) {
	if cb.open != 0 {
		delete(d.scopes, cb.open)
	}
	cb.free(d.context)
	delete(d.commands, cmd)
	if len(d.commands) > 0 {
		return
	}
	if d.uniforms != nil {
		d.uniforms.reset()
	}
	for _, destroy := range d.graveyard {
		destroy()
	}
	d.graveyard = nil
}

// CancelCommandBuffer drops everything recorded on cmd. An acquired
// swapchain image still has to be handed back, so it is presented with
// undefined contents.
func (d *Device) CancelCommandBuffer(cmd gpu.CommandBuffer) {
	cb, ok := d.commands[cmd]
	if !ok {
		return
	}
	if cb.swapchainImage < 0 {
		d.retire(cmd, cb)
		return
	}
	if err := cb.reset(); err != nil {
		core.LogError("Failed to reset cancelled command buffer: %s", err)
		d.swapchain.stale = true
		d.retire(cmd, cb)
		return
	}
	image := d.swapchain.Images[cb.swapchainImage]
	image.transition(cb.Handle, vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc, 0, 1)
	cb.layouts[image] = vk.ImageLayoutPresentSrc
	if err := d.execute(cmd, cb); err != nil {
		core.LogError("Failed to return swapchain image of cancelled command buffer: %s", err)
	}
}

func (d *Device) SwapchainTextureFormat() gpu.TextureFormat {
	if d.swapchain == nil {
		return gpu.TextureFormatB8G8R8A8Unorm
	}
	return TextureFormat(d.swapchain.ImageFormat.Format)
}

// SetVSync takes effect from the next acquired swapchain texture.
func (d *Device) SetVSync(enabled bool) error {
	if d.vsync == enabled {
		return nil
	}
	d.vsync = enabled
	if d.swapchain != nil {
		d.swapchain.stale = true
	}
	return nil
}

func (d *Device) WaitAndAcquireSwapchainTexture(cmd gpu.CommandBuffer) (gpu.Texture, uint32, uint32, error) {
	cb, err := d.recording(cmd)
	if err != nil {
		return 0, 0, 0, err
	}
	if cb.swapchainImage >= 0 {
		return 0, 0, 0, fmt.Errorf("command buffer %d already holds a swapchain texture", cmd)
	}
	w, h := d.window.FramebufferSize()
	if w <= 0 || h <= 0 {
		return 0, 0, 0, nil
	}
	width, height := uint32(w), uint32(h)
	if d.swapchain == nil || d.swapchain.stale || width != d.width || height != d.height {
		if err := d.recreateSwapchain(width, height); err != nil {
			return 0, 0, 0, err
		}
	}

	index, ok, err := d.swapchain.acquire(d.context)
	if err != nil {
		return 0, 0, 0, err
	}
	if !ok {
		return 0, 0, 0, d.recreateSwapchain(width, height)
	}
	cb.swapchainImage = int(index)
	extent := d.swapchain.Extent
	return d.swapchain.Textures[index], extent.Width, extent.Height, nil
}

func (d *Device) BeginRenderPass(cmd gpu.CommandBuffer, color gpu.ColorTargetInfo, depth *gpu.DepthStencilTargetInfo) (gpu.RenderPass, error) {
	cb, err := d.recording(cmd)
	if err != nil {
		return 0, err
	}
	target, ok := d.textures[color.Texture]
	if !ok {
		return 0, fmt.Errorf("colour target %d is not live", color.Texture)
	}
	if target.Info.Usage&gpu.TextureUsageColorTarget == 0 {
		return 0, fmt.Errorf("texture %d is not a colour target", color.Texture)
	}

	key := renderpassKey{colorFormat: target.Format, colorFinal: vk.ImageLayoutColorAttachmentOptimal}
	if target.swapchain {
		key.colorFinal = vk.ImageLayoutPresentSrc
	}
	key.colorLoad, key.colorInitial = attachmentLoad(color.Clear, cb.layout(target))
	views := []vk.ImageView{target.View}
	extent := vk.Extent2D{Width: target.Width, Height: target.Height}

	var depthTarget *Image
	var clearDepth *float32
	if depth != nil {
		if depthTarget, ok = d.textures[depth.Texture]; !ok {
			return 0, fmt.Errorf("depth target %d is not live", depth.Texture)
		}
		if depthTarget.Info.Usage&gpu.TextureUsageDepthStencilTarget == 0 {
			return 0, fmt.Errorf("texture %d is not a depth target", depth.Texture)
		}
		if depthTarget.Width != target.Width || depthTarget.Height != target.Height {
			return 0, fmt.Errorf("depth target %dx%d does not match colour target %dx%d",
				depthTarget.Width, depthTarget.Height, target.Width, target.Height)
		}
		key.depthFormat = depthTarget.Format
		key.depthLoad, key.depthInitial = attachmentLoad(depth.Clear, cb.layout(depthTarget))
		views = append(views, depthTarget.View)
		clearDepth = &depth.ClearDepth
	}

	renderpass, err := d.renderpass(key)
	if err != nil {
		return 0, err
	}
	framebuffer, err := createFramebuffer(d.context, renderpass, extent.Width, extent.Height, views)
	if err != nil {
		return 0, err
	}
	cb.framebuffers = append(cb.framebuffers, framebuffer)

	c := color.ClearColor
	clears := clearValues([4]float32{c.X, c.Y, c.Z, c.W}, clearDepth)
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderpass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}
	vk.CmdBeginRenderPass(cb.Handle, &beginInfo, vk.SubpassContentsInline)

	cb.layouts[target] = key.colorFinal
	if depthTarget != nil {
		cb.layouts[depthTarget] = vk.ImageLayoutDepthStencilAttachmentOptimal
	}
	_, id, err := d.open(cmd, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
	return gpu.RenderPass(id), err
}

func (d *Device) renderpass(key renderpassKey) (vk.RenderPass, error) {
	if rp, ok := d.renderpasses[key]; ok {
		return rp, nil
	}
	rp, err := createRenderpass(d.context, key)
	if err != nil {
		return nil, err
	}
	d.renderpasses[key] = rp
	return rp, nil
}

func (d *Device) EndRenderPass(pass gpu.RenderPass) error {
	cb, err := d.inScope(uint64(pass), COMMAND_BUFFER_STATE_IN_RENDER_PASS)
	if err != nil {
		return err
	}
	vk.CmdEndRenderPass(cb.Handle)
	d.close(cb)
	return nil
}

func (d *Device) PushVertexUniformData(cmd gpu.CommandBuffer, slot uint32, data []byte) error {
	cb, ok := d.commands[cmd]
	if !ok {
		return fmt.Errorf("command buffer %d does not exist", cmd)
	}
	if cb.State != COMMAND_BUFFER_STATE_RECORDING && cb.State != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return fmt.Errorf("command buffer %d is %s", cmd, cb.State)
	}
	if slot >= MaxUniformSlots {
		return fmt.Errorf("uniform slot %d out of range [0, %d)", slot, MaxUniformSlots)
	}
	binding, err := d.uniforms.push(data)
	if err != nil {
		return err
	}
	cb.uniforms[slot] = binding
	return nil
}

// VertexUniform returns where the data last pushed to slot on cmd lives.
func (d *Device) VertexUniform(cmd gpu.CommandBuffer, slot uint32) (UniformBinding, bool) {
	cb, ok := d.commands[cmd]
	if !ok || slot >= MaxUniformSlots {
		return UniformBinding{}, false
	}
	binding := cb.uniforms[slot]
	return binding, binding.Valid()
}

func (d *Device) WaitIdle() error {
	if d.context.LogicalDevice == nil {
		return nil
	}
	return check("vkDeviceWaitIdle", vk.DeviceWaitIdle(d.context.LogicalDevice))
}

// Close waits for the GPU and destroys everything the device created.
// Handles still alive are reported as leaks.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.WaitIdle()
	d.teardown()
	core.LogInfo("Vulkan device destroyed.")
	return err
}

func (d *Device) teardown() {
	for cmd, cb := range d.commands {
		core.LogWarn("Command buffer %d was never submitted.", cmd)
		d.retire(cmd, cb)
	}
	if n := len(d.buffers); n > 0 {
		core.LogWarn("%d buffers were never released.", n)
	}
	for b, buffer := range d.buffers {
		buffer.destroy(d.context)
		delete(d.buffers, b)
	}
	for t, tb := range d.transfers {
		core.LogWarn("Transfer buffer %d was never released.", t)
		tb.buffer.destroy(d.context)
		delete(d.transfers, t)
	}
	leaked := 0
	for t, image := range d.textures {
		if !image.swapchain {
			leaked++
			image.destroy(d.context)
		}
		delete(d.textures, t)
	}
	if leaked > 0 {
		core.LogWarn("%d textures were never released.", leaked)
	}

	if d.context.LogicalDevice != nil {
		for key, rp := range d.renderpasses {
			vk.DestroyRenderPass(d.context.LogicalDevice, rp, d.context.Allocator)
			delete(d.renderpasses, key)
		}
		if d.swapchain != nil {
			d.swapchain.destroy(d.context)
			d.swapchain = nil
		}
		if d.uniforms != nil {
			d.uniforms.destroy(d.context)
			d.uniforms = nil
		}
		if d.fence != nil {
			d.fence.Destroy(d.context)
			d.fence = nil
		}
	}
	destroyLogicalDevice(d.context)
	destroyInstance(d.context)
}
