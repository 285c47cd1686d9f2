package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

/**
 * @brief A GLFW window with no client API, presented through Vulkan. Input
 * and window events are pushed onto the event queue from the GLFW callbacks
 * during PollEvents.
 */
type Window struct {
	handle *glfw.Window
	events *core.EventQueue

	fullscreen bool
	// windowed placement restored when leaving fullscreen
	x, y, width, height int
}

// NewWindow initialises GLFW and opens a resizable window of width x height
// screen coordinates.
func NewWindow(title string, width, height int32, events *core.EventQueue) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, core.NewDeviceError("glfw.Init", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, core.NewDeviceError("glfw.VulkanSupported", fmt.Errorf("no vulkan loader found"))
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, core.NewDeviceError("glfw.CreateWindow", err)
	}
	w := &Window{handle: handle, events: events}
	w.x, w.y = handle.GetPos()
	w.width, w.height = int(width), int(height)

	handle.SetKeyCallback(w.keyCallback)
	handle.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	handle.SetFocusCallback(w.focusCallback)
	handle.SetCloseCallback(w.closeCallback)

	handle.Show()
	return w, nil
}

func (w *Window) FramebufferSize() (int32, int32) {
	width, height := w.handle.GetFramebufferSize()
	return int32(width), int32(height)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) Fullscreen() bool {
	return w.fullscreen
}

// SetFullscreen moves the window onto the primary monitor at its current
// video mode, or back to where it was.
func (w *Window) SetFullscreen(on bool) {
	if on == w.fullscreen {
		return
	}
	if on {
		monitor := glfw.GetPrimaryMonitor()
		if monitor == nil {
			core.LogWarn("no monitor available for fullscreen")
			return
		}
		w.x, w.y = w.handle.GetPos()
		w.width, w.height = w.handle.GetSize()
		mode := monitor.GetVideoMode()
		w.handle.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	} else {
		w.handle.SetMonitor(nil, w.x, w.y, w.width, w.height, glfw.DontCare)
	}
	w.fullscreen = on
}

func (w *Window) Close() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
}

func (w *Window) InstanceProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surface), nil
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code := translateKey(key)
	if code == core.KEY_UNKNOWN {
		return
	}
	e := core.Event{Key: code, Repeat: action == glfw.Repeat}
	if action == glfw.Release {
		e.Code = core.EVENT_CODE_KEY_RELEASED
	} else {
		e.Code = core.EVENT_CODE_KEY_PRESSED
	}
	w.events.Push(e)
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	w.events.Push(core.Event{Code: core.EVENT_CODE_RESIZED, Width: int32(width), Height: int32(height)})
}

func (w *Window) focusCallback(_ *glfw.Window, focused bool) {
	if !focused {
		w.events.Push(core.Event{Code: core.EVENT_CODE_FOCUS_LOST})
	}
}

func (w *Window) closeCallback(_ *glfw.Window) {
	w.events.Push(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
}
