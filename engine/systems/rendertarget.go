package systems

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
	"github.com/spaghettifunk/oncue/engine/renderer/target"
)

type RenderTargetSystemConfig struct {
	MaxTargetCount uint32
	/** @brief The colour targets show when they are cut out of a view cycle. */
	FallbackColour math.Vec4
}

/**
 * @brief Owns every render target and resets their resolution state at the
 * start of each frame.
 */
type RenderTargetSystem struct {
	Config *RenderTargetSystemConfig

	renderer  *renderer.Renderer
	resources *ResourceSystem
	ids       *core.IdentifierPool
	targets   map[string]*target.RenderTarget
	order     []*target.RenderTarget
}

func NewRenderTargetSystem(config *RenderTargetSystemConfig, r *renderer.Renderer, rs *ResourceSystem) (*RenderTargetSystem, error) {
	if config.MaxTargetCount == 0 {
		err := fmt.Errorf("func NewRenderTargetSystem - config.MaxTargetCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderTargetSystem{
		Config:    config,
		renderer:  r,
		resources: rs,
		ids:       core.NewIdentifierPool(config.MaxTargetCount),
		targets:   make(map[string]*target.RenderTarget),
	}, nil
}

// Create builds a target with one colour and one depth attachment of the given size.
func (ts *RenderTargetSystem) Create(name string, width, height uint32, camera *components.Camera, sc *scene.RenderScene) (*target.RenderTarget, error) {
	if _, ok := ts.targets[name]; ok {
		err := fmt.Errorf("func Create - '%s': %w", name, core.ErrTargetExists)
		core.LogError(err.Error())
		return nil, err
	}
	id, err := ts.ids.Acquire(name)
	if err != nil {
		core.LogError("failed to create render target '%s': %s", name, err)
		return nil, err
	}
	fb, err := ts.resources.CreateFramebuffer("target."+name, width, height, []metadata.AttachmentConfig{
		{Type: metadata.ATTACHMENT_TYPE_COLOUR, Format: metadata.TextureFormatRGBA8},
		{Type: metadata.ATTACHMENT_TYPE_DEPTH, Format: metadata.TextureFormatDepth24Stencil8},
	})
	if err != nil {
		ts.ids.Release(id)
		return nil, err
	}

	rt := target.NewRenderTarget(ts.renderer, name, fb, camera, sc)
	rt.ID = id
	rt.FallbackColour = ts.Config.FallbackColour
	ts.targets[name] = rt
	ts.order = append(ts.order, rt)
	core.LogDebug("render target '%s' created (%dx%d)", name, width, height)
	return rt, nil
}

func (ts *RenderTargetSystem) Get(name string) (*target.RenderTarget, error) {
	rt, ok := ts.targets[name]
	if !ok {
		return nil, fmt.Errorf("func Get - render target '%s': %w", name, core.ErrUnknownResource)
	}
	return rt, nil
}

// Destroy releases the target and its framebuffer. Scenes still attached to
// it must detach first.
func (ts *RenderTargetSystem) Destroy(name string) error {
	rt, ok := ts.targets[name]
	if !ok {
		return fmt.Errorf("func Destroy - render target '%s': %w", name, core.ErrUnknownResource)
	}
	delete(ts.targets, name)
	for i, t := range ts.order {
		if t == rt {
			ts.order = append(ts.order[:i], ts.order[i+1:]...)
			break
		}
	}
	if err := ts.ids.Release(rt.ID); err != nil {
		core.LogWarn(err.Error())
	}
	return ts.resources.DestroyFramebuffer(rt.Framebuffer)
}

// ResetAll returns every target to the unresolved state. Called once at the start of every frame.
func (ts *RenderTargetSystem) ResetAll() {
	for _, rt := range ts.order {
		rt.Reset()
	}
}

// SetFallbackColour updates the colour of every target, existing and future.
func (ts *RenderTargetSystem) SetFallbackColour(colour math.Vec4) {
	ts.Config.FallbackColour = colour
	for _, rt := range ts.order {
		rt.FallbackColour = colour
	}
}

// Targets returns the targets in creation order.
func (ts *RenderTargetSystem) Targets() []*target.RenderTarget {
	return ts.order
}

func (ts *RenderTargetSystem) Shutdown() error {
	for len(ts.order) > 0 {
		if err := ts.Destroy(ts.order[0].Name); err != nil {
			return err
		}
	}
	return nil
}
