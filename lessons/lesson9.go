package lessons

import (
	"unsafe"

	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/math"
)

const numStars = 50

var quadVertices = []math.VertexTexcoord{
	{Position: math.Vec3{X: -1, Y: -1}, Texcoord: math.Vec2{X: 0, Y: 0}},
	{Position: math.Vec3{X: 1, Y: -1}, Texcoord: math.Vec2{X: 1, Y: 0}},
	{Position: math.Vec3{X: 1, Y: 1}, Texcoord: math.Vec2{X: 1, Y: 1}},
	{Position: math.Vec3{X: -1, Y: 1}, Texcoord: math.Vec2{X: 0, Y: 1}},
}

var quadIndices = []uint16{0, 1, 2, 2, 3, 0}

// StarInstance is the per instance vertex data of one star sprite.
type StarInstance struct {
	Model math.Mat4
	Color math.Vec4
}

type star struct {
	angle    float32
	distance float32
	color    [3]uint8
}

// starCoefficient spreads stars evenly: it sets both the starting distance
// and the angular speed of star i.
func starCoefficient(i int) float32 {
	return float32(i) / numStars
}

func nextStarColor(random *math.Random) [3]uint8 {
	return [3]uint8{
		uint8(random.Next() % 256),
		uint8(random.Next() % 256),
		uint8(random.Next() % 256),
	}
}

func (s *star) update(coeff float32, random *math.Random) {
	s.angle += coeff
	s.distance -= 0.01
	if s.distance < 0 {
		s.distance += 5
		s.color = nextStarColor(random)
	}
}

func (s star) rgba() math.Vec4 {
	return math.Vec4{
		X: float32(s.color[0]) / 255,
		Y: float32(s.color[1]) / 255,
		Z: float32(s.color[2]) / 255,
		W: 1,
	}
}

/**
 * @brief Fifty blended star sprites spiralling into the centre. Instances
 * are rebuilt and uploaded every frame. T toggles twinkling, which draws a
 * second copy of each star in another star's colour.
 */
type Lesson9 struct {
	engine.BaseLesson

	vertices   gpu.Buffer
	indices    gpu.Buffer
	texture    gpu.Texture
	instances  *stream
	projection math.Mat4

	twinkle bool
	stars   [numStars]star
	scratch []StarInstance

	zoom, tilt, spin float32
	random           *math.Random
}

func NewLesson9() *Lesson9 {
	return &Lesson9{
		projection: math.Identity(),
		zoom:       -15,
		tilt:       90,
		random:     math.NewRandom(),
	}
}

func (l *Lesson9) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's Animated Blended Textures Tutorial"
	return config
}

func (l *Lesson9) Init(ctx *engine.Context) error {
	err := ctx.CopyPass(func(pass *gpu.CopyPass) error {
		var err error
		if l.texture, err = pass.LoadTexture("Star.bmp", true, false); err != nil {
			return err
		}
		if l.vertices, err = gpu.CreateBuffer(pass, gpu.BufferUsageVertex, quadVertices); err != nil {
			return err
		}
		l.indices, err = gpu.CreateBuffer(pass, gpu.BufferUsageIndex, quadIndices)
		return err
	})
	if err == nil {
		// Room for every star twice over when twinkling
		size := uint32(unsafe.Sizeof(StarInstance{})) * 2 * numStars
		l.instances, err = newStream(ctx.Device, gpu.BufferUsageVertex, size)
	}
	if err != nil {
		l.Quit(ctx)
		return err
	}
	l.scratch = make([]StarInstance, 0, 2*numStars)

	for i := range l.stars {
		l.stars[i] = star{
			distance: 5 * starCoefficient(i),
			color:    nextStarColor(l.random),
		}
	}
	return nil
}

func (l *Lesson9) Quit(ctx *engine.Context) {
	if l.instances != nil {
		l.instances.release(ctx.Device)
		l.instances = nil
	}
	releaseBuffers(ctx.Device, l.indices, l.vertices)
	releaseTextures(ctx.Device, l.texture)
}

func (l *Lesson9) Resize(ctx *engine.Context, width, height int32) {
	l.projection = perspective(width, height)
}

// animate builds this frame's instances and advances every star.
func (l *Lesson9) animate() []StarInstance {
	out := l.scratch[:0]
	for i := range l.stars {
		s := &l.stars[i]

		model := math.Translation(0, 0, l.zoom)
		model.Rotate(l.tilt, 1, 0, 0)
		model.Rotate(s.angle, 0, 1, 0)
		model.Translate(s.distance, 0, 0)
		model.Rotate(-s.angle, 0, 1, 0)
		model.Rotate(-l.tilt, 1, 0, 0)

		if l.twinkle {
			out = append(out, StarInstance{Model: model, Color: l.stars[numStars-i-1].rgba()})
		}
		model.Rotate(l.spin, 0, 0, 1)
		out = append(out, StarInstance{Model: model, Color: s.rgba()})

		l.spin += 0.01
		s.update(starCoefficient(i), l.random)
	}
	l.scratch = out
	return out
}

func (l *Lesson9) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	device := ctx.Device
	if err := l.instances.upload(device, cmd, gpu.Bytes(l.animate())); err != nil {
		return err
	}

	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}
	if err := device.PushVertexUniformData(cmd, 0, l.projection.Bytes()); err != nil {
		return err
	}
	if err := device.EndRenderPass(pass); err != nil {
		return err
	}

	keys := ctx.Keys()
	if keys.IsDown(core.KEY_UP) {
		l.tilt -= 0.5
	}
	if keys.IsDown(core.KEY_DOWN) {
		l.tilt += 0.5
	}
	if keys.IsDown(core.KEY_PAGEUP) {
		l.zoom -= 0.2
	}
	if keys.IsDown(core.KEY_PAGEDOWN) {
		l.zoom += 0.2
	}
	return nil
}

func (l *Lesson9) Key(ctx *engine.Context, key core.KeyCode, down, repeat bool) {
	if key == core.KEY_T && down && !repeat {
		l.twinkle = !l.twinkle
	}
}
