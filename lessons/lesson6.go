package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

// Lesson6 spins a cube textured with the NeHe logo.
type Lesson6 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	texture    gpu.Texture
	projection math.Mat4

	xRot, yRot, zRot float32
}

func NewLesson6() *Lesson6 {
	return &Lesson6{projection: math.Identity()}
}

func (l *Lesson6) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's Texture Mapping Tutorial"
	config.DepthFormat = "d16_unorm"
	return config
}

func (l *Lesson6) Init(ctx *engine.Context) error {
	err := ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		if l.texture, err = pass.LoadTexture("NeHe.bmp", true, false); err != nil {
			return err
		}
		if l.vertices, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, texturedCube()); err != nil {
			return err
		}
		l.indices, err = gpu.CreateBuffer(pass, gpu.BufferUsageIndex, cubeIndices)
		return err
	})
	if err != nil {
		// Quit is not called after a failed Init.
		l.Quit(ctx)
	}
	return err
}

func (l *Lesson6) Quit(ctx *engine.Context) {
	releaseBuffers(ctx.Device, l.indices, l.vertices)
	releaseTextures(ctx.Device, l.texture)
}

func (l *Lesson6) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

func (l *Lesson6) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	// The cube buffers and texture are for a pipeline the harness does not
	// model. Recorded here: the clear and the matrix.
	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}

	// 5 units into the screen, then rotate about each axis
	model := math.Translation(0, 0, -5)
	model.Rotate(l.xRot, 1, 0, 0)
	model.Rotate(l.yRot, 0, 1, 0)
	model.Rotate(l.zRot, 0, 0, 1)
	modelViewProj := l.projection.Mul(model)
	if err := ctx.Device.PushVertexUniformData(cmd, 0, modelViewProj.Bytes()); err != nil {
		return err
	}

	if err := ctx.Device.EndRenderPass(pass); err != nil {
		return err
	}
	l.xRot += 0.3
	l.yRot += 0.2
	l.zRot += 0.4
	return nil
}
