package engine

import (
	"fmt"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

/**
 * @brief The window a Runner drives. Events are delivered through the
 * runner's event queue when PollEvents is called.
 */
type Window interface {
	// FramebufferSize is the drawable size in pixels.
	FramebufferSize() (int32, int32)
	PollEvents()
	SetFullscreen(on bool)
	Fullscreen() bool
	Close()
}

/**
 * @brief Everything a lesson may use: the device, the window, resource
 * loading, keyboard state and the optional depth texture.
 */
type Context struct {
	Device gpu.RenderDevice
	Window Window
	Loader gpu.ImageLoader

	config      AppConfig
	keys        *core.Keyboard
	depthFormat gpu.TextureFormat
	depth       gpu.Texture
	depthWidth  uint32
	depthHeight uint32
}

func newContext(device gpu.RenderDevice, window Window, loader gpu.ImageLoader, config AppConfig) (*Context, error) {
	format, err := config.DepthTextureFormat()
	if err != nil {
		return nil, err
	}
	return &Context{
		Device:      device,
		Window:      window,
		Loader:      loader,
		config:      config,
		keys:        &core.Keyboard{},
		depthFormat: format,
	}, nil
}

func (c *Context) Config() AppConfig {
	return c.config
}

// Keys is the keyboard state as of the events processed this frame.
func (c *Context) Keys() *core.Keyboard {
	return c.keys
}

// DepthTexture is the harness managed depth target, or the zero texture when
// the lesson did not ask for one.
func (c *Context) DepthTexture() gpu.Texture {
	return c.depth
}

func (c *Context) DepthFormat() gpu.TextureFormat {
	return c.depthFormat
}

// setupDepthTexture replaces the depth texture with one of width x height.
func (c *Context) setupDepthTexture(width, height uint32) error {
	c.releaseDepthTexture()
	if width == 0 || height == 0 {
		return nil
	}
	depth, err := c.Device.CreateTexture(gpu.TextureCreateInfo{
		Format:    c.depthFormat,
		Usage:     gpu.TextureUsageDepthStencilTarget,
		Width:     width,
		Height:    height,
		NumLevels: 1,
		Name:      "depth",
	})
	if err != nil {
		return core.NewDeviceError(gpu.OpCreateTexture, err)
	}
	c.depth = depth
	c.depthWidth, c.depthHeight = width, height
	core.LogDebug("depth texture %s created at %dx%d", c.depthFormat, width, height)
	return nil
}

// ensureDepthTexture recreates the depth texture when the backbuffer size
// has changed.
func (c *Context) ensureDepthTexture(width, height uint32) error {
	if c.depthFormat == gpu.TextureFormatInvalid {
		return nil
	}
	if c.depth.Valid() && c.depthWidth == width && c.depthHeight == height {
		return nil
	}
	return c.setupDepthTexture(width, height)
}

func (c *Context) releaseDepthTexture() {
	if c.depth.Valid() {
		c.Device.ReleaseTexture(c.depth)
		c.depth = 0
		c.depthWidth, c.depthHeight = 0, 0
	}
}

// CopyPass runs fn against a new copy pass and submits it if fn succeeded.
// Staging memory is released whatever happens.
func (c *Context) CopyPass(fn func(pass *gpu.CopyPass) error) error {
	pass := gpu.NewCopyPass(c.Device, c.Loader)
	defer pass.Close()
	if err := fn(pass); err != nil {
		return err
	}
	return pass.Submit()
}

// BeginClearPass begins a render pass on target that clears it to the given
// colour. The depth texture, if any, is attached and cleared to 1.
func (c *Context) BeginClearPass(cmd gpu.CommandBuffer, target gpu.Texture, r, g, b, a float32) (gpu.RenderPass, error) {
	color := gpu.ColorTargetInfo{Texture: target, Clear: true}
	color.ClearColor.X, color.ClearColor.Y, color.ClearColor.Z, color.ClearColor.W = r, g, b, a
	var depth *gpu.DepthStencilTargetInfo
	if c.depth.Valid() {
		depth = &gpu.DepthStencilTargetInfo{Texture: c.depth, ClearDepth: 1, Clear: true}
	}
	pass, err := c.Device.BeginRenderPass(cmd, color, depth)
	if err != nil {
		return 0, fmt.Errorf("begin render pass: %w", err)
	}
	return pass, nil
}
