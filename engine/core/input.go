package core

// Key code definitions. Values follow the virtual-key table so that letters
// and digits match their ASCII codes.
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_PAUSE     KeyCode = 0x13
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PAGEUP    KeyCode = 0x21
	KEY_PAGEDOWN  KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEYS_MAX_KEYS KeyCode = 0x100
)

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Keyboard holds the current and previous key states. The runner feeds it
// from platform events and lessons poll it while drawing.
type Keyboard struct {
	current  KeyboardState
	previous KeyboardState
}

// Process records a key transition and reports whether the state changed.
// A repeat of an already held key reports false.
func (k *Keyboard) Process(key KeyCode, pressed bool) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	if k.current.Keys[key] == pressed {
		return false
	}
	k.current.Keys[key] = pressed
	return true
}

// Update copies the current state into the previous one. Call once per frame
// after the lesson has drawn.
func (k *Keyboard) Update() {
	k.previous = k.current
}

// Reset releases every key, for example when the window loses focus.
func (k *Keyboard) Reset() {
	k.current = KeyboardState{}
}

func (k *Keyboard) IsDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && k.current.Keys[key]
}

func (k *Keyboard) IsUp(key KeyCode) bool {
	return !k.IsDown(key)
}

func (k *Keyboard) WasDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && k.previous.Keys[key]
}

// Pressed reports a key that went down since the last Update.
func (k *Keyboard) Pressed(key KeyCode) bool {
	return k.IsDown(key) && !k.WasDown(key)
}
