package target

import (
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

/**
 * @brief An off-screen framebuffer a camera renders a scene into. Other
 * scenes sample its colour attachments as textures, and attach the target so
 * it is resolved before they are drawn. A target is rendered at most once per
 * frame; a target reached again while it is still rendering is cleared to
 * FallbackColour instead.
 *
 * Not safe for concurrent use.
 */
type RenderTarget struct {
	ID          uint32
	Name        string
	Framebuffer *metadata.Framebuffer
	Camera      *components.Camera
	Scene       *scene.RenderScene
	/** @brief The colour the output is cleared to when a cycle is broken. Defaults to opaque black. */
	FallbackColour math.Vec4

	r     *renderer.Renderer
	state ResolutionState

	renders uint32
	clears  uint32
}

func NewRenderTarget(r *renderer.Renderer, name string, fb *metadata.Framebuffer, camera *components.Camera, sc *scene.RenderScene) *RenderTarget {
	return &RenderTarget{
		Name:           name,
		Framebuffer:    fb,
		Camera:         camera,
		Scene:          sc,
		FallbackColour: math.NewVec4(0, 0, 0, 1),
		r:              r,
	}
}

func (t *RenderTarget) State() ResolutionState {
	return t.state
}

// ColourAttachments returns the textures other materials sample.
func (t *RenderTarget) ColourAttachments() []*metadata.Texture {
	return t.Framebuffer.ColourAttachments()
}

// Texture returns the handle of the index-th colour attachment.
func (t *RenderTarget) Texture(index int) metadata.TextureHandle {
	tex := t.Framebuffer.ColourAttachment(index)
	if tex == nil {
		return metadata.InvalidTexture
	}
	return tex.Handle
}

// TryResolve makes the output of this frame available. Only the first call
// of a frame renders. Safe to call recursively from the target's own scene.
func (t *RenderTarget) TryResolve() {
	next, act := transition(t.state)
	t.state = next

	switch act {
	case actionRender:
		t.renders++
		t.Camera.ViewFrame(t.r, t.Framebuffer, t.Scene)
		t.state = Resolved
	case actionClear:
		t.clears++
		t.r.FramebufferBind(t.Framebuffer)
		t.r.Clear(t.FallbackColour, metadata.CLEAR_COLOUR_BUFFER_FLAG)
	}
}

// Reset makes the target renderable again. Called once at the start of every frame.
func (t *RenderTarget) Reset() {
	t.state = Unresolved
	t.renders = 0
	t.clears = 0
}

// Renders is the number of times the target was rendered since the last Reset.
func (t *RenderTarget) Renders() uint32 {
	return t.renders
}

// Clears is the number of times a cycle was broken on this target since the last Reset.
func (t *RenderTarget) Clears() uint32 {
	return t.clears
}

func (t *RenderTarget) String() string {
	return "RenderTarget(" + t.Name + ")"
}
