package vulkan

import (
	stdmath "math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

type swapchainSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (s *swapchainSupport) query(device vk.PhysicalDevice, surface vk.Surface) error {
	if err := check("vkGetPhysicalDeviceSurfaceCapabilities", vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &s.capabilities)); err != nil {
		return err
	}
	s.capabilities.Deref()
	s.capabilities.CurrentExtent.Deref()
	s.capabilities.MinImageExtent.Deref()
	s.capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)); err != nil {
		return err
	}
	s.formats = make([]vk.SurfaceFormat, formatCount)
	if formatCount > 0 {
		if err := check("vkGetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, s.formats)); err != nil {
			return err
		}
	}
	for i := range s.formats {
		s.formats[i].Deref()
	}

	var modeCount uint32
	if err := check("vkGetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, nil)); err != nil {
		return err
	}
	s.presentModes = make([]vk.PresentMode, modeCount)
	if modeCount > 0 {
		if err := check("vkGetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, s.presentModes)); err != nil {
			return err
		}
	}
	return nil
}

// chooseFormat prefers an 8-bit BGRA or RGBA format the device
// understands, then anything the surface offers.
func (s *swapchainSupport) chooseFormat() vk.SurfaceFormat {
	for _, preferred := range []vk.Format{vk.FormatB8g8r8a8Unorm, vk.FormatR8g8b8a8Unorm} {
		for _, f := range s.formats {
			if f.Format == preferred && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
				return f
			}
		}
	}
	return s.formats[0]
}

// choosePresentMode uses FIFO, the only mode that is always available, with
// vsync. Without it mailbox is preferred over immediate.
func (s *swapchainSupport) choosePresentMode(vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	mode := vk.PresentModeFifo
	for _, m := range s.presentModes {
		if m == vk.PresentModeMailbox {
			return m
		}
		if m == vk.PresentModeImmediate {
			mode = m
		}
	}
	return mode
}

/**
 * @brief The presentable images of the window surface together with the
 * semaphores ordering acquisition, rendering and presentation.
 */
type Swapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Images      []*Image
	// Textures are the device handles of Images, in the same order.
	Textures []gpu.Texture

	imageAvailable vk.Semaphore
	renderFinished []vk.Semaphore
	// stale is set when the surface no longer matches and the swapchain must
	// be recreated before the next acquire.
	stale bool
}

func createSwapchain(context *Context, width, height uint32, vsync bool, old *Swapchain) (*Swapchain, error) {
	var support swapchainSupport
	if err := support.query(context.PhysicalDevice, context.Surface); err != nil {
		return nil, err
	}
	if len(support.formats) == 0 {
		return nil, core.NewDeviceError("createSwapchain", core.ErrSwapchainUnavailable)
	}

	swapchain := &Swapchain{
		ImageFormat: support.chooseFormat(),
		PresentMode: support.choosePresentMode(vsync),
		Extent:      vk.Extent2D{Width: width, Height: height},
	}

	caps := support.capabilities
	if caps.CurrentExtent.Width != stdmath.MaxUint32 {
		swapchain.Extent = caps.CurrentExtent
	}
	swapchain.Extent.Width = math.Clamp(swapchain.Extent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	swapchain.Extent.Height = math.Clamp(swapchain.Extent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
	}
	if context.GraphicsQueueIndex != context.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{context.GraphicsQueueIndex, context.PresentQueueIndex}
	}
	if old != nil {
		swapchainCreateInfo.OldSwapchain = old.Handle
	}

	if err := check("vkCreateSwapchain", vk.CreateSwapchain(context.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchain.Handle)); err != nil {
		return nil, err
	}

	var count uint32
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(context.LogicalDevice, swapchain.Handle, &count, nil)); err != nil {
		swapchain.destroy(context)
		return nil, err
	}
	handles := make([]vk.Image, count)
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(context.LogicalDevice, swapchain.Handle, &count, handles)); err != nil {
		swapchain.destroy(context)
		return nil, err
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	for _, handle := range handles {
		view, err := createView(context, handle, swapchain.ImageFormat.Format, aspect, 1)
		if err != nil {
			swapchain.destroy(context)
			return nil, err
		}
		swapchain.Images = append(swapchain.Images, &Image{
			Handle: handle,
			View:   view,
			Width:  swapchain.Extent.Width,
			Height: swapchain.Extent.Height,
			Levels: 1,
			Format: swapchain.ImageFormat.Format,
			Aspect: aspect,
			Info: gpu.TextureCreateInfo{
				Format:    TextureFormat(swapchain.ImageFormat.Format),
				Usage:     gpu.TextureUsageColorTarget,
				Width:     swapchain.Extent.Width,
				Height:    swapchain.Extent.Height,
				NumLevels: 1,
			},
			Layout:    vk.ImageLayoutUndefined,
			swapchain: true,
		})
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(context.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &swapchain.imageAvailable)); err != nil {
		swapchain.destroy(context)
		return nil, err
	}
	swapchain.renderFinished = make([]vk.Semaphore, count)
	for i := range swapchain.renderFinished {
		if err := check("vkCreateSemaphore", vk.CreateSemaphore(context.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &swapchain.renderFinished[i])); err != nil {
			swapchain.destroy(context)
			return nil, err
		}
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, %s.", swapchain.Extent.Width, swapchain.Extent.Height, count, TextureFormat(swapchain.ImageFormat.Format))
	return swapchain, nil
}

// destroy releases the views and semaphores. The images belong to the
// swapchain itself.
func (s *Swapchain) destroy(context *Context) {
	for _, image := range s.Images {
		image.destroy(context)
	}
	s.Images = nil
	if s.imageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(context.LogicalDevice, s.imageAvailable, context.Allocator)
		s.imageAvailable = vk.NullSemaphore
	}
	for _, semaphore := range s.renderFinished {
		if semaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.LogicalDevice, semaphore, context.Allocator)
		}
	}
	s.renderFinished = nil
	if s.Handle != nil {
		vk.DestroySwapchain(context.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}

// acquire waits for the next presentable image. ok is false when the
// swapchain has to be recreated first.
func (s *Swapchain) acquire(context *Context) (index uint32, ok bool, err error) {
	result := vk.AcquireNextImage(context.LogicalDevice, s.Handle, stdmath.MaxUint64, s.imageAvailable, vk.NullFence, &index)
	switch result {
	case vk.Success:
		return index, true, nil
	case vk.Suboptimal:
		// The image is acquired and must be used; recreate afterwards.
		s.stale = true
		return index, true, nil
	case vk.ErrorOutOfDate:
		s.stale = true
		return 0, false, nil
	}
	return 0, false, check("vkAcquireNextImage", result)
}

// present queues image index for presentation once rendering has signalled.
func (s *Swapchain) present(context *Context, index uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.renderFinished[index]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{index},
	}
	result := vk.QueuePresent(context.PresentQueue, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		s.stale = true
		return nil
	}
	return check("vkQueuePresent", result)
}
