package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

/**
 * @brief A buffer bound to its own memory allocation.
 */
type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint32
	Usage  vk.BufferUsageFlags
	mapped unsafe.Pointer
}

func createBuffer(context *Context, size uint32, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*Buffer, error) {
	buffer := &Buffer{Size: size, Usage: usage}
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if err := check("vkCreateBuffer", vk.CreateBuffer(context.LogicalDevice, &bufferCreateInfo, context.Allocator, &buffer.Handle)); err != nil {
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()
	memory, err := context.allocate(requirements, properties)
	if err != nil {
		buffer.destroy(context)
		return nil, err
	}
	buffer.Memory = memory
	if err := check("vkBindBufferMemory", vk.BindBufferMemory(context.LogicalDevice, buffer.Handle, buffer.Memory, 0)); err != nil {
		buffer.destroy(context)
		return nil, err
	}
	return buffer, nil
}

// createHostBuffer creates a buffer the CPU writes through a coherent
// mapping.
func createHostBuffer(context *Context, size uint32, usage vk.BufferUsageFlags) (*Buffer, error) {
	return createBuffer(context, size, usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
}

// lock maps the whole buffer. Mapping an already mapped buffer returns the
// same view.
func (b *Buffer) lock(context *Context) ([]byte, error) {
	if b.mapped == nil {
		var data unsafe.Pointer
		if err := check("vkMapMemory", vk.MapMemory(context.LogicalDevice, b.Memory, 0, vk.DeviceSize(b.Size), 0, &data)); err != nil {
			return nil, err
		}
		b.mapped = data
	}
	return unsafe.Slice((*byte)(b.mapped), b.Size), nil
}

func (b *Buffer) unlock(context *Context) {
	if b.mapped != nil {
		vk.UnmapMemory(context.LogicalDevice, b.Memory)
		b.mapped = nil
	}
}

func (b *Buffer) destroy(context *Context) {
	b.unlock(context)
	if b.Handle != nil {
		vk.DestroyBuffer(context.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(context.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
}
