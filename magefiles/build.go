//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module (writing go.sum) and builds the lesson runner into bin/.
func (Build) Lessons() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/nehe", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests. None of them need a GPU or a display.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
