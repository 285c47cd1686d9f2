package engine

import (
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

/**
 * @brief A lesson driven by the Runner. Draw is called once per frame with a
 * command buffer that already holds the swapchain texture; the runner
 * submits it afterwards.
 */
type Lesson interface {
	// Config returns the defaults the lesson runs with.
	Config() AppConfig
	Init(ctx *Context) error
	Quit(ctx *Context)
	// Resize receives the backbuffer size in pixels. It is also called once
	// right after Init.
	Resize(ctx *Context, width, height int32)
	Draw(ctx *Context, cmd gpu.CommandBuffer, swapchain gpu.Texture) error
	// Key receives every key transition the runner does not handle itself.
	Key(ctx *Context, key core.KeyCode, down, repeat bool)
}

// BaseLesson supplies no-op defaults. Embed it and override what you need.
type BaseLesson struct{}

func (BaseLesson) Config() AppConfig                                     { return DefaultConfig() }
func (BaseLesson) Init(ctx *Context) error                               { return nil }
func (BaseLesson) Quit(ctx *Context)                                     {}
func (BaseLesson) Resize(ctx *Context, width, height int32)              {}
func (BaseLesson) Key(ctx *Context, key core.KeyCode, down, repeat bool) {}
