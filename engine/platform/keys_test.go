package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/nehe/engine/core"
)

func TestTranslateKey(t *testing.T) {
	for key, want := range map[glfw.Key]core.KeyCode{
		glfw.KeyA:        core.KEY_A,
		glfw.KeyT:        core.KEY_T,
		glfw.KeyZ:        core.KEY_Z,
		glfw.Key0:        core.KEY_0,
		glfw.Key9:        core.KEY_9,
		glfw.KeyF1:       core.KEY_F1,
		glfw.KeyF12:      core.KEY_F12,
		glfw.KeyEscape:   core.KEY_ESCAPE,
		glfw.KeyPageUp:   core.KEY_PAGEUP,
		glfw.KeyPageDown: core.KEY_PAGEDOWN,
		glfw.KeyUp:       core.KEY_UP,
		glfw.KeyKPEnter:  core.KEY_ENTER,
		glfw.KeyF25:      core.KEY_UNKNOWN,
		glfw.KeyUnknown:  core.KEY_UNKNOWN,
	} {
		assert.Equal(t, want, translateKey(key), "glfw key %d", key)
	}
}
