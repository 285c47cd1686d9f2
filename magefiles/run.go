//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs a lesson in a window, for example `mage run:lesson 7`.
func (Run) Lesson(name string) error {
	mg.Deps(Build.Lessons)
	fmt.Printf("Run lesson %s...\n", name)
	if _, err := executeCmd("bin/nehe", withArgs("-lesson", name), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a few frames of every lesson on the in-memory device.
func (Run) Headless() error {
	mg.Deps(Build.Lessons)
	out, err := executeCmd("bin/nehe", withArgs("-list"))
	if err != nil {
		return err
	}
	for _, name := range lessonNames(out) {
		if _, err := executeCmd("bin/nehe", withArgs("-lesson", name, "-headless", "-frames", "10"), withStream()); err != nil {
			return err
		}
	}
	return nil
}
