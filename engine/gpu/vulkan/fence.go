package vulkan

import (
	stdmath "math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

type Fence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *Context, createSignaled bool) (*Fence, error) {
	fence := &Fence{IsSignaled: createSignaled}
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	if err := check("vkCreateFence", vk.CreateFence(context.LogicalDevice, &fenceCreateInfo, context.Allocator, &fence.Handle)); err != nil {
		return nil, err
	}
	return fence, nil
}

func (f *Fence) Destroy(context *Context) {
	if f.Handle != vk.NullFence {
		vk.DestroyFence(context.LogicalDevice, f.Handle, context.Allocator)
		f.Handle = vk.NullFence
	}
	f.IsSignaled = false
}

// Wait blocks until the fence is signalled. A signalled fence returns at once.
func (f *Fence) Wait(context *Context) error {
	if f.IsSignaled {
		return nil
	}
	result := vk.WaitForFences(context.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, stdmath.MaxUint64)
	switch result {
	case vk.Success:
		f.IsSignaled = true
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	default:
		core.LogError("vk_fence_wait - %s", ResultString(result, true))
	}
	return check("vkWaitForFences", result)
}

func (f *Fence) Reset(context *Context) error {
	if !f.IsSignaled {
		return nil
	}
	if err := check("vkResetFences", vk.ResetFences(context.LogicalDevice, 1, []vk.Fence{f.Handle})); err != nil {
		return err
	}
	f.IsSignaled = false
	return nil
}
