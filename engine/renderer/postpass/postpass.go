// Package postpass holds the full-screen passes run on the rendered frame
// before it is presented.
package postpass

import (
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// PostPass reads the colour output of src and writes into dst. A nil dst is the screen.
type PostPass interface {
	Dispatch(r *renderer.Renderer, src, dst *metadata.Framebuffer)
	Resize(width, height uint32) error
}

// FramebufferAllocator creates the intermediate framebuffers a pass needs.
type FramebufferAllocator interface {
	CreateFramebuffer(name string, width, height uint32, attachments []metadata.AttachmentConfig) (*metadata.Framebuffer, error)
	DestroyFramebuffer(fb *metadata.Framebuffer) error
}

// fullscreen triangle, the vertex shader generates the positions
const fullscreenVertices uint32 = 3

func drawFullscreen(r *renderer.Renderer) {
	r.Draw(metadata.TopologyTriangles, fullscreenVertices, false)
}

/**
 * @brief A pass that runs one pipeline over the source colour attachment.
 * Setup, when set, runs after the pipeline and target are bound so it can
 * upload the pass uniforms.
 */
type SinglePass struct {
	Pipeline metadata.PipelineHandle
	Setup    func(r *renderer.Renderer)
}

func NewSinglePass(pipeline metadata.PipelineHandle, setup func(r *renderer.Renderer)) *SinglePass {
	return &SinglePass{Pipeline: pipeline, Setup: setup}
}

func (p *SinglePass) Dispatch(r *renderer.Renderer, src, dst *metadata.Framebuffer) {
	r.SetBlendMode(metadata.BlendModeNone)
	r.PipelineBind(p.Pipeline)
	if tex := src.ColourAttachment(0); tex != nil {
		r.TextureBind(0, tex.Handle)
	}
	r.FramebufferBind(dst)
	if p.Setup != nil {
		p.Setup(r)
	}
	drawFullscreen(r)
}

func (p *SinglePass) Resize(width, height uint32) error {
	return nil
}

// NewBlit copies the source to the destination through the given pipeline.
func NewBlit(pipeline metadata.PipelineHandle) *SinglePass {
	return NewSinglePass(pipeline, nil)
}
