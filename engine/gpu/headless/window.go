package headless

import (
	"github.com/spaghettifunk/nehe/engine/core"
)

/**
 * @brief A window stand-in for the headless device. Events are injected by
 * the caller and delivered on the next PollEvents.
 */
type Window struct {
	device     *Device
	events     *core.EventQueue
	pending    []core.Event
	fullscreen bool
	closed     bool
}

func NewWindow(device *Device, events *core.EventQueue) *Window {
	return &Window{device: device, events: events}
}

func (w *Window) FramebufferSize() (int32, int32) {
	return int32(w.device.width), int32(w.device.height)
}

func (w *Window) PollEvents() {
	for _, e := range w.pending {
		w.events.Push(e)
	}
	w.pending = w.pending[:0]
}

func (w *Window) SetFullscreen(on bool) {
	w.fullscreen = on
}

func (w *Window) Fullscreen() bool {
	return w.fullscreen
}

func (w *Window) Close() {
	w.closed = true
}

func (w *Window) Closed() bool {
	return w.closed
}

// Resize changes the swapchain size and queues the matching event.
func (w *Window) Resize(width, height int32) {
	w.device.Resize(uint32(max(width, 0)), uint32(max(height, 0)))
	w.pending = append(w.pending, core.Event{Code: core.EVENT_CODE_RESIZED, Width: width, Height: height})
}

// Press queues a key press followed by its release.
func (w *Window) Press(key core.KeyCode) {
	w.KeyDown(key, false)
	w.KeyUp(key)
}

func (w *Window) KeyDown(key core.KeyCode, repeat bool) {
	w.pending = append(w.pending, core.Event{Code: core.EVENT_CODE_KEY_PRESSED, Key: key, Repeat: repeat})
}

func (w *Window) KeyUp(key core.KeyCode) {
	w.pending = append(w.pending, core.Event{Code: core.EVENT_CODE_KEY_RELEASED, Key: key})
}

func (w *Window) Quit() {
	w.pending = append(w.pending, core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
}
