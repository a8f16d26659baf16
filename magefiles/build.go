//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the testbed binary into bin/.
func (Build) Testbed() error {
	if err := goModDownload(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/oncue", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs the batching, scene and render target tests only.
func (Test) Renderer() error {
	_, err := executeCmd("go", withArgs("test", "-count=1", "./engine/renderer/..."), withStream())
	return err
}
