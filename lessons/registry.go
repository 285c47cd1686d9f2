package lessons

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/nehe/engine"
)

var registry = map[string]func() engine.Lesson{
	"lesson1":  func() engine.Lesson { return NewLesson1() },
	"lesson2":  func() engine.Lesson { return NewLesson2() },
	"lesson5":  func() engine.Lesson { return NewLesson5() },
	"lesson6":  func() engine.Lesson { return NewLesson6() },
	"lesson7":  func() engine.Lesson { return NewLesson7() },
	"lesson9":  func() engine.Lesson { return NewLesson9() },
	"lesson17": func() engine.Lesson { return NewLesson17() },
}

// Names lists the available lessons in tutorial order.
func Names() []string {
	return []string{"lesson1", "lesson2", "lesson5", "lesson6", "lesson7", "lesson9", "lesson17"}
}

// New creates a lesson by name. "lesson7" and "7" name the same lesson.
func New(name string) (engine.Lesson, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(key, "lesson") {
		key = "lesson" + key
	}
	create, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown lesson '%s', available: %s", name, strings.Join(Names(), ", "))
	}
	return create(), nil
}
