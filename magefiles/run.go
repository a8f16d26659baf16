//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed on the headless backend. ONCUE_CONFIG points at a TOML file.
func (Run) Engine() error {
	mg.Deps(Build.Testbed)
	args := []string{}
	if path := os.Getenv("ONCUE_CONFIG"); path != "" {
		args = append(args, "-config", path, "-watch")
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/oncue", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
