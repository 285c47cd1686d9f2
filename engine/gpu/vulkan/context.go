package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

/**
 * @brief The Vulkan objects shared by every resource a device creates.
 */
type Context struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugReport vk.DebugReportCallback

	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32
	GraphicsQueue      vk.Queue
	PresentQueue       vk.Queue

	// GraphicsCommandPool allows individual command buffers to be reset.
	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags, or -1.
func (c *Context) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	for i := uint32(0); i < c.Memory.MemoryTypeCount; i++ {
		memoryType := c.Memory.MemoryTypes[i]
		memoryType.Deref()
		if typeFilter&(1<<i) != 0 && memoryType.PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

// allocate reserves memory matching requirements with the given properties.
func (c *Context) allocate(requirements vk.MemoryRequirements, properties vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	index := c.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if index < 0 {
		return nil, fmt.Errorf("no memory type with properties 0x%x", uint32(properties))
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	var memory vk.DeviceMemory
	if err := check("vkAllocateMemory", vk.AllocateMemory(c.LogicalDevice, &allocateInfo, c.Allocator, &memory)); err != nil {
		return nil, err
	}
	return memory, nil
}

// supportsFormat reports whether format has features with optimal tiling.
func (c *Context) supportsFormat(format vk.Format, features vk.FormatFeatureFlags) bool {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(c.PhysicalDevice, format, &properties)
	properties.Deref()
	return properties.OptimalTilingFeatures&features == features
}
