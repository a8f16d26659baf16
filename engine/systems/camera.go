package systems

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
)

type cameraLookup struct {
	id             uint32
	referenceCount uint16
	camera         *components.Camera
}

type CameraSystem struct {
	Config *CameraSystemConfig
	ids    *core.IdentifierPool
	lookup map[string]*cameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:        config,
		ids:           core.NewIdentifierPool(uint32(config.MaxCameraCount)),
		lookup:        make(map[string]*cameraLookup, config.MaxCameraCount),
		DefaultCamera: components.NewCamera(),
	}
	return cs, nil
}

func (cs *CameraSystem) Shutdown() error {
	for name := range cs.lookup {
		delete(cs.lookup, name)
	}
	return nil
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is created.
 * Internal reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	l, ok := cs.lookup[name]
	if !ok {
		id, err := cs.ids.Acquire(name)
		if err != nil {
			err = fmt.Errorf("func Acquire - failed to acquire a slot for camera '%s'. Adjust camera system config to allow more: %w", name, err)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		l = &cameraLookup{id: id, camera: components.NewCamera()}
		cs.lookup[name] = l
	}
	l.referenceCount++
	return l.camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is dropped
 * and its slot is usable by a new camera.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	l, ok := cs.lookup[name]
	if !ok {
		core.LogWarn("CameraSystem.Release failed lookup for '%s'. Nothing was done.", name)
		return
	}
	l.referenceCount--
	if l.referenceCount < 1 {
		l.camera.Reset()
		if err := cs.ids.Release(l.id); err != nil {
			core.LogWarn(err.Error())
		}
		delete(cs.lookup, name)
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
