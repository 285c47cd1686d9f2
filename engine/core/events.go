package core

import (
	"sync"

	"github.com/spaghettifunk/nehe/engine/containers"
)

// System internal event codes.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01
	// Keyboard key pressed. Key, Repeat are set.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02
	// Keyboard key released. Key is set.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03
	// Framebuffer pixel size changed. Width, Height are set.
	EVENT_CODE_RESIZED SystemEventCode = 0x08
	// Window lost keyboard focus.
	EVENT_CODE_FOCUS_LOST SystemEventCode = 0x09
)

type Event struct {
	Code   SystemEventCode
	Key    KeyCode
	Repeat bool
	Width  int32
	Height int32
}

// Down reports whether a key event is a press.
func (e Event) Down() bool {
	return e.Code == EVENT_CODE_KEY_PRESSED
}

const MAX_QUEUED_EVENTS = 256

// EventQueue buffers platform events between polls. Platform callbacks push,
// the frame loop drains. Push may be called from a signal goroutine.
type EventQueue struct {
	mu    sync.Mutex
	queue *containers.RingQueue[Event]
}

func NewEventQueue() *EventQueue {
	return &EventQueue{queue: containers.NewRingQueue[Event](MAX_QUEUED_EVENTS)}
}

// Push enqueues an event. When the queue is full the event is dropped,
// except for quit requests which replace the oldest event.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.queue.Enqueue(e); err != nil {
		if e.Code != EVENT_CODE_APPLICATION_QUIT {
			LogWarn("event queue full, dropping event %d", e.Code)
			return
		}
		_, _ = q.queue.Dequeue()
		_ = q.queue.Enqueue(e)
	}
}

// Poll pops the oldest event. ok is false when the queue is empty.
func (q *EventQueue) Poll() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, err := q.queue.Dequeue()
	return e, err == nil
}
