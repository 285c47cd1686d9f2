package lessons

import (
	"unsafe"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/assets"
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

const (
	maxCharacters = 255
	// fontDescriptor is used when present; otherwise fontPage is read as a
	// 16x16 grid of two glyph sets.
	fontDescriptor = "Font.fnt"
	fontPage       = "Font.bmp"
)

const sqrt2 = 1.4142135

var diamondVertices = []math.VertexTexcoord{
	{Position: math.Vec3{X: -sqrt2}, Texcoord: math.Vec2{X: 0, Y: 0}},
	{Position: math.Vec3{Y: sqrt2}, Texcoord: math.Vec2{X: 1, Y: 0}},
	{Position: math.Vec3{X: sqrt2}, Texcoord: math.Vec2{X: 1, Y: 1}},
	{Position: math.Vec3{Y: -sqrt2}, Texcoord: math.Vec2{X: 0, Y: 1}},
	{Position: math.Vec3{Z: sqrt2}, Texcoord: math.Vec2{X: 0, Y: 0}},
	{Position: math.Vec3{Z: -sqrt2}, Texcoord: math.Vec2{X: 1, Y: 1}},
}

var diamondIndices = []uint16{
	0, 1, 2, 2, 3, 0,
	3, 4, 1, 1, 5, 3,
}

// TextInstance is one glyph quad with its colour.
type TextInstance struct {
	assets.Character
	Color math.Vec4
}

/**
 * @brief A bump textured diamond spinning behind bitmap text that drifts
 * around the screen. Glyph quads are laid out every frame in window pixels
 * and drawn with an orthographic projection.
 */
type Lesson17 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	texture    gpu.Texture
	font       *assets.Font
	pages      []gpu.Texture
	text       *stream
	projection math.Mat4
	ortho      math.Mat4

	glyphs  []assets.Character
	scratch []TextInstance

	counterA, counterB float32
}

func NewLesson17() *Lesson17 {
	return &Lesson17{
		projection: math.Identity(),
		ortho:      math.Orthographic2D(0, 640, 0, 480),
	}
}

func (l *Lesson17) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe & Giuseppe D'Agata's 2D Font Tutorial"
	config.DepthFormat = "d16_unorm"
	return config
}

// loadFont prefers a BMFont descriptor from the loader's index and falls
// back to the classic grid sheet.
func loadFont(loader gpu.ImageLoader) (*assets.Font, error) {
	if indexed, ok := loader.(interface{ Index() *assets.Index }); ok {
		index := indexed.Index()
		if _, found := index.Lookup(fontDescriptor); found {
			return assets.LoadFont(index, fontDescriptor)
		}
	}
	return assets.GridFont(fontPage, 256, 256, 16, 16, 2, 10), nil
}

func (l *Lesson17) Init(ctx *engine.Context) error {
	font, err := loadFont(ctx.Loader)
	if err != nil {
		return err
	}
	l.font = font
	core.LogDebug("font '%s' with %d page(s)", font.Face, len(font.Pages))

	err = ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		if l.texture, err = pass.LoadTexture("Bumps.bmp", true, false); err != nil {
			return err
		}
		for _, page := range font.Pages {
			// Glyph rectangles are measured from the top row.
			t, err := pass.LoadTexture(page, false, false)
			if err != nil {
				return err
			}
			l.pages = append(l.pages, t)
		}
		if l.vertices, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, diamondVertices); err != nil {
			return err
		}
		l.indices, err = gpu.CreateBuffer(pass, gpu.BufferUsageIndex, diamondIndices)
		return err
	})
	if err == nil {
		size := uint32(unsafe.Sizeof(TextInstance{})) * maxCharacters
		l.text, err = newStream(ctx.Device, gpu.BufferUsageVertex, size)
	}
	if err != nil {
		l.Quit(ctx)
		return err
	}
	l.glyphs = make([]assets.Character, 0, maxCharacters)
	l.scratch = make([]TextInstance, 0, maxCharacters)
	return nil
}

func (l *Lesson17) Quit(ctx *engine.Context) {
	if l.text != nil {
		l.text.release(ctx.Device)
		l.text = nil
	}
	releaseBuffers(ctx.Device, l.indices, l.vertices)
	releaseTextures(ctx.Device, l.pages...)
	releaseTextures(ctx.Device, l.texture)
	l.pages = nil
}

func (l *Lesson17) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

// print appends text at whole pixel (x, y) in the given colour.
func (l *Lesson17) print(out []TextInstance, x, y float32, color math.Vec4, text string, set int) []TextInstance {
	l.glyphs = l.font.Layout(l.glyphs[:0], math32.Trunc(x), math32.Trunc(y), text, set, maxCharacters-len(out))
	for _, g := range l.glyphs {
		out = append(out, TextInstance{Character: g, Color: color})
	}
	return out
}

// layout places this frame's text.
func (l *Lesson17) layout() []TextInstance {
	a, b := l.counterA, l.counterB
	out := l.scratch[:0]
	out = l.print(out, 280+250*math32.Cos(a), 235+200*math32.Sin(b), math.Vec4{
		X: max(0, math32.Cos(a)),
		Y: max(0, math32.Sin(b)),
		Z: 1 - 0.5*math32.Cos(a+b),
		W: 1,
	}, "NeHe", 0)
	out = l.print(out, 280+230*math32.Cos(b), 235+200*math32.Sin(a), math.Vec4{
		X: max(0, math32.Sin(b)),
		Y: 1 - 0.5*math32.Cos(a+b),
		Z: max(0, math32.Cos(a)),
		W: 1,
	}, "OpenGL", 1)

	x := 240 + math32.Trunc(200*math32.Cos(a+b)/5)
	out = l.print(out, x, 2, math.Vec4{Z: 1, W: 1}, "Giuseppe D'Agata", 0)
	out = l.print(out, x+2, 2, math.Vec4{X: 1, Y: 1, Z: 1, W: 1}, "Giuseppe D'Agata", 0)
	l.scratch = out
	return out
}

func (l *Lesson17) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	device := ctx.Device
	if err := l.text.upload(device, cmd, gpu.Bytes(l.layout())); err != nil {
		return err
	}

	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0)
	if err != nil {
		return err
	}

	model := math.Translation(0, 0, -5)
	model.Rotate(30*l.counterA, 0, 1, 0)
	modelViewProj := l.projection.Mul(model)
	if err := device.PushVertexUniformData(cmd, 0, modelViewProj.Bytes()); err != nil {
		return err
	}
	if err := device.PushVertexUniformData(cmd, 1, l.ortho.Bytes()); err != nil {
		return err
	}
	if err := device.EndRenderPass(pass); err != nil {
		return err
	}

	l.counterA += 0.01
	l.counterB += 0.0081
	return nil
}
