package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

// perspective is the projection every 3D lesson uses for a backbuffer of
// width x height.
func perspective(width, height int32) math.Mat4 {
	return math.Perspective(45, float32(width)/float32(max(height, 1)), 0.1, 100)
}

// createMesh uploads a vertex and a 16 bit index buffer in one copy pass.
// Neither buffer is returned unless both were uploaded.
func createMesh[V any](ctx *engine.Context, vertices []V, indices []uint16) (gpu.Buffer, gpu.Buffer, error) {
	var vtx, idx gpu.Buffer
	err := ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		if vtx, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, vertices); err != nil {
			return err
		}
		idx, err = gpu.CreateBuffer(pass, gpu.BufferUsageIndex, indices)
		return err
	})
	if err != nil {
		releaseBuffers(ctx.Device, vtx, idx)
		return 0, 0, err
	}
	return vtx, idx, nil
}

func releaseBuffers(device gpu.Device, buffers ...gpu.Buffer) {
	for _, b := range buffers {
		if b.Valid() {
			device.ReleaseBuffer(b)
		}
	}
}

func releaseTextures(device gpu.Device, textures ...gpu.Texture) {
	for _, t := range textures {
		if t.Valid() {
			device.ReleaseTexture(t)
		}
	}
}

/**
 * @brief A vertex buffer rewritten every frame. Data is staged in a transfer
 * buffer of the same size and copied in a copy scope recorded on the frame's
 * command buffer, ahead of the render pass.
 */
type stream struct {
	buffer   gpu.Buffer
	transfer gpu.TransferBuffer
	size     uint32
}

func newStream(device gpu.Device, usage gpu.BufferUsage, size uint32) (*stream, error) {
	buffer, err := device.CreateBuffer(usage, size)
	if err != nil {
		return nil, core.NewDeviceError(gpu.OpCreateBuffer, err)
	}
	transfer, err := device.CreateTransferBuffer(size)
	if err != nil {
		device.ReleaseBuffer(buffer)
		return nil, core.NewDeviceError(gpu.OpCreateTransferBuffer, err)
	}
	return &stream{buffer: buffer, transfer: transfer, size: size}, nil
}

// upload records a copy of data to the start of the buffer on cmd.
func (s *stream) upload(device gpu.Device, cmd gpu.CommandBuffer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if uint64(len(data)) > uint64(s.size) {
		return core.Fatalf("stream upload of %d bytes exceeds %d", len(data), s.size)
	}
	mapped, err := device.MapTransferBuffer(s.transfer)
	if err != nil {
		return core.NewDeviceError(gpu.OpMapTransferBuffer, err)
	}
	copy(mapped, data)
	device.UnmapTransferBuffer(s.transfer)

	scope, err := device.BeginCopyPass(cmd)
	if err != nil {
		return core.NewDeviceError(gpu.OpBeginCopyPass, err)
	}
	if err := device.UploadToBuffer(scope, s.transfer, s.buffer, uint32(len(data))); err != nil {
		return core.NewDeviceError(gpu.OpUploadToBuffer, err)
	}
	if err := device.EndCopyPass(scope); err != nil {
		return core.NewDeviceError(gpu.OpEndCopyPass, err)
	}
	return nil
}

func (s *stream) release(device gpu.Device) {
	device.ReleaseTransferBuffer(s.transfer)
	device.ReleaseBuffer(s.buffer)
}
