package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChoosePresentMode(t *testing.T) {
	all := swapchainSupport{presentModes: []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}}
	assert.Equal(t, vk.PresentModeFifo, all.choosePresentMode(true))
	assert.Equal(t, vk.PresentModeMailbox, all.choosePresentMode(false))

	noMailbox := swapchainSupport{presentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}}
	assert.Equal(t, vk.PresentModeImmediate, noMailbox.choosePresentMode(false))

	fifo := swapchainSupport{presentModes: []vk.PresentMode{vk.PresentModeFifo}}
	assert.Equal(t, vk.PresentModeFifo, fifo.choosePresentMode(false))
}

func TestChooseFormat(t *testing.T) {
	s := swapchainSupport{formats: []vk.SurfaceFormat{
		{Format: vk.FormatR16g16b16a16Sfloat, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}}
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, s.chooseFormat().Format)

	s.formats = s.formats[:2]
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, s.chooseFormat().Format)

	s.formats = s.formats[:1]
	assert.Equal(t, vk.FormatR16g16b16a16Sfloat, s.chooseFormat().Format)
}

func TestAttachmentLoad(t *testing.T) {
	op, layout := attachmentLoad(true, vk.ImageLayoutShaderReadOnlyOptimal)
	assert.Equal(t, vk.AttachmentLoadOpClear, op)
	assert.Equal(t, vk.ImageLayoutUndefined, layout)

	op, layout = attachmentLoad(false, vk.ImageLayoutPresentSrc)
	assert.Equal(t, vk.AttachmentLoadOpLoad, op)
	assert.Equal(t, vk.ImageLayoutPresentSrc, layout)
}

func TestRenderpassKeyDepth(t *testing.T) {
	assert.False(t, renderpassKey{colorFormat: vk.FormatB8g8r8a8Unorm}.hasDepth())
	assert.True(t, renderpassKey{colorFormat: vk.FormatB8g8r8a8Unorm, depthFormat: vk.FormatD16Unorm}.hasDepth())
}

func TestClearValuesCount(t *testing.T) {
	assert.Len(t, clearValues([4]float32{0, 0, 0, 1}, nil), 1)
	depth := float32(1)
	assert.Len(t, clearValues([4]float32{0, 0, 0, 1}, &depth), 2)
}
