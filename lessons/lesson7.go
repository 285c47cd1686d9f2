package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterMipmapped
	filterCount
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	}
	return "mipmapped"
}

// Light is pushed to uniform slot 1 when lighting is on.
type Light struct {
	Ambient  math.Vec4
	Diffuse  math.Vec4
	Position math.Vec4
}

// litUniforms is uniform slot 0 while lighting is on. The unlit path pushes
// the combined matrix instead.
type litUniforms struct {
	Model      math.Mat4
	Projection math.Mat4
}

/**
 * @brief A mipmapped crate the user spins with the arrow keys. L toggles
 * lighting and F cycles the texture filter.
 */
type Lesson7 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	texture    gpu.Texture
	projection math.Mat4

	lighting bool
	light    Light
	filter   Filter

	xRot, yRot     float32
	xSpeed, ySpeed float32
	z              float32
}

func NewLesson7() *Lesson7 {
	return &Lesson7{
		projection: math.Identity(),
		light: Light{
			Ambient:  math.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1},
			Diffuse:  math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
			Position: math.Vec4{X: 0, Y: 0, Z: 2, W: 1},
		},
		z: -5,
	}
}

func (l *Lesson7) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's Textures, Lighting & Keyboard Tutorial"
	config.DepthFormat = "d16_unorm"
	return config
}

func (l *Lesson7) Init(ctx *engine.Context) error {
	err := ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		if l.texture, err = pass.LoadTexture("Crate.bmp", true, true); err != nil {
			return err
		}
		if l.vertices, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, cubeVertices); err != nil {
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

func (l *Lesson7) Quit(ctx *engine.Context) {
	releaseBuffers(ctx.Device, l.indices, l.vertices)
	releaseTextures(ctx.Device, l.texture)
}

func (l *Lesson7) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

func (l *Lesson7) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	// Buffers and texture from Init belong to a pipeline outside the harness.
	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}

	model := math.Translation(0, 0, l.z)
	model.Rotate(l.xRot, 1, 0, 0)
	model.Rotate(l.yRot, 0, 1, 0)

	device := ctx.Device
	if l.lighting {
		u := []litUniforms{{Model: model, Projection: l.projection}}
		if err := device.PushVertexUniformData(cmd, 0, gpu.Bytes(u)); err != nil {
			return err
		}
		if err := device.PushVertexUniformData(cmd, 1, gpu.Bytes([]Light{l.light})); err != nil {
			return err
		}
	} else {
		modelViewProj := l.projection.Mul(model)
		if err := device.PushVertexUniformData(cmd, 0, modelViewProj.Bytes()); err != nil {
			return err
		}
	}

	if err := device.EndRenderPass(pass); err != nil {
		return err
	}

	keys := ctx.Keys()
	if keys.IsDown(core.KEY_PAGEUP) {
		l.z -= 0.02
	}
	if keys.IsDown(core.KEY_PAGEDOWN) {
		l.z += 0.02
	}
	if keys.IsDown(core.KEY_UP) {
		l.xSpeed -= 0.01
	}
	if keys.IsDown(core.KEY_DOWN) {
		l.xSpeed += 0.01
	}
	if keys.IsDown(core.KEY_RIGHT) {
		l.ySpeed += 0.1
	}
	if keys.IsDown(core.KEY_LEFT) {
		l.ySpeed -= 0.1
	}
	l.xRot += l.xSpeed
	l.yRot += l.ySpeed
	return nil
}

func (l *Lesson7) Key(ctx *engine.Context, key core.KeyCode, down, repeat bool) {
	if !down || repeat {
		return
	}
	switch key {
	case core.KEY_L:
		l.lighting = !l.lighting
		core.LogDebug("lighting %t", l.lighting)
	case core.KEY_F:
		l.filter = (l.filter + 1) % filterCount
		core.LogDebug("filter %s", l.filter)
	}
}
