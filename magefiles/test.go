//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the whole test suite.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite with coverage reporting.
func (Test) Cover() error {
	if _, err := executeCmd("go", withArgs("test", "-coverprofile=coverage.out", "./..."), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("tool", "cover", "-func=coverage.out"), withStream()); err != nil {
		return err
	}
	return nil
}
