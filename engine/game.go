package engine

import (
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
	"github.com/spaghettifunk/oncue/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize is called.
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render returns the camera and the scene it looks at for this frame.
type Render func(deltaTime float64) (*components.Camera, *scene.RenderScene, error)
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
