package lessons

import (
	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

// Lesson1 opens a window and clears it every frame.
type Lesson1 struct {
	engine.BaseLesson
}

func NewLesson1() *Lesson1 {
	return &Lesson1{}
}

func (l *Lesson1) Config() engine.AppConfig {
	config := engine.DefaultConfig()
	config.Title = "NeHe's OpenGL Framework"
	return config
}

func (l *Lesson1) Draw(ctx *engine.Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error {
	pass, err := ctx.BeginClearPass(cmd, swapchain, 0, 0, 0, 0.5)
	if err != nil {
		return err
	}
	return ctx.Device.EndRenderPass(pass)
}
