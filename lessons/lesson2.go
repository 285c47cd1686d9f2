package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

var lesson2Vertices = []math.VertexPosition{
	// Triangle
	{Position: math.Vec3{X: 0, Y: 1, Z: 0}},
	{Position: math.Vec3{X: -1, Y: -1, Z: 0}},
	{Position: math.Vec3{X: 1, Y: -1, Z: 0}},
	// Quad
	{Position: math.Vec3{X: -1, Y: 1, Z: 0}},
	{Position: math.Vec3{X: 1, Y: 1, Z: 0}},
	{Position: math.Vec3{X: 1, Y: -1, Z: 0}},
	{Position: math.Vec3{X: -1, Y: -1, Z: 0}},
}

var lesson2Indices = []uint16{
	0, 1, 2,
	3, 4, 5, 5, 6, 3,
}

// Lesson2 draws a triangle and a quad side by side.
type Lesson2 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	projection math.Mat4
}

func NewLesson2() *Lesson2 {
	return &Lesson2{projection: math.Identity()}
}

func (l *Lesson2) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's First Polygon Tutorial"
	return config
}

func (l *Lesson2) Init(ctx *engine.Context) error {
	var err error
	l.vertices, l.indices, err = createMesh(ctx, lesson2Vertices, lesson2Indices)
	return err
}

func (l *Lesson2) Quit(ctx *engine.Context) {
	releaseBuffers(ctx.Device, l.indices, l.vertices)
}

func (l *Lesson2) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

func (l *Lesson2) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	// vertices and indices are bound by a draw pipeline, which the harness
	// does not model. A frame is the clear plus the matrices its shader reads.
	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}

	// Triangle 1.5 units to the left and 6 into the screen
	model := math.Translation(-1.5, 0, -6)
	viewProj := l.projection.Mul(model)
	if err := ctx.Device.PushVertexUniformData(cmd, 0, viewProj.Bytes()); err != nil {
		return err
	}

	// Quad 3 units to the right of it
	model.Translate(3, 0, 0)
	viewProj = l.projection.Mul(model)
	if err := ctx.Device.PushVertexUniformData(cmd, 0, viewProj.Bytes()); err != nil {
		return err
	}
	return ctx.Device.EndRenderPass(pass)
}
