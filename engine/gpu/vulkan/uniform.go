package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

const (
	// MaxUniformSlots is the number of vertex uniform blocks a draw can see.
	MaxUniformSlots  = 4
	uniformArenaSize = 1 << 20
)

/**
 * @brief Where the data last pushed to a uniform slot lives. Pipelines bind
 * it as a dynamic uniform buffer at Offset.
 */
type UniformBinding struct {
	Buffer vk.Buffer
	Offset uint32
	Size   uint32
}

func (b UniformBinding) Valid() bool {
	return b.Size > 0
}

// uniformArena is a linear allocator over one persistently mapped buffer.
// Every push gets its own aligned range so several draws in one command
// buffer each see their own data. The arena is rewound once no command
// buffer refers to it.
type uniformArena struct {
	buffer    *Buffer
	data      []byte
	alignment uint32
	head      uint32
}

func newUniformArena(context *Context) (*uniformArena, error) {
	buffer, err := createHostBuffer(context, uniformArenaSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
	if err != nil {
		return nil, err
	}
	data, err := buffer.lock(context)
	if err != nil {
		buffer.destroy(context)
		return nil, err
	}
	return &uniformArena{
		buffer:    buffer,
		data:      data,
		alignment: max(uint32(context.Properties.Limits.MinUniformBufferOffsetAlignment), 16),
	}, nil
}

func (a *uniformArena) push(data []byte) (UniformBinding, error) {
	offset := (a.head + a.alignment - 1) / a.alignment * a.alignment
	size := uint32(len(data))
	if uint64(offset)+uint64(size) > uint64(len(a.data)) {
		return UniformBinding{}, fmt.Errorf("uniform arena exhausted: %d bytes at offset %d", size, offset)
	}
	copy(a.data[offset:], data)
	a.head = offset + size
	return UniformBinding{Buffer: a.buffer.Handle, Offset: offset, Size: size}, nil
}

func (a *uniformArena) reset() {
	a.head = 0
}

func (a *uniformArena) destroy(context *Context) {
	a.buffer.destroy(context)
	a.data = nil
}
