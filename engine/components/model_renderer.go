package components

import (
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

/**
 * @brief Puts a single drawable into a scene. The renderer owns its draw
 * instance; the scene only references it while the renderer is shown.
 */
type ModelRenderer struct {
	Transform *math.Transform

	scene    *scene.RenderScene
	instance *batch.DrawInstance
	visible  bool
}

// NewModelRenderer creates a hidden renderer. A nil transform draws at the origin.
func NewModelRenderer(sc *scene.RenderScene, state batch.DrawState, transform *math.Transform, opaque bool, params ...metadata.ParamOverride) *ModelRenderer {
	if transform == nil {
		transform = math.TransformCreate()
	}
	return &ModelRenderer{
		Transform: transform,
		scene:     sc,
		instance:  batch.NewDrawInstance(state, transform, opaque, params...),
	}
}

func (m *ModelRenderer) Instance() *batch.DrawInstance {
	return m.instance
}

// SetParam changes a per-instance uniform. Takes effect on the next frame.
func (m *ModelRenderer) SetParam(location int32, value metadata.ParamValue) {
	m.instance.SetParam(location, value)
}

// Show registers the instance with the scene. Showing twice does nothing.
func (m *ModelRenderer) Show() {
	if m.visible {
		return
	}
	m.scene.Append(m.instance)
	m.visible = true
}

// Hide unregisters the instance. Hiding a hidden renderer does nothing.
func (m *ModelRenderer) Hide() error {
	if !m.visible {
		return nil
	}
	if err := m.scene.Remove(m.instance); err != nil {
		return err
	}
	m.visible = false
	return nil
}

func (m *ModelRenderer) Visible() bool {
	return m.visible
}
