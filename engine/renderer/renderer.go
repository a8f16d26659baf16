package renderer

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// Renderer is the front-end every drawing component talks to. It forwards to
// the backend and keeps per-frame submission counters.
type Renderer struct {
	backend RendererBackend

	width  uint32
	height uint32

	drawCalls     uint32
	instanceCount uint32
	frameNumber   uint64
	inFrame       bool
}

func NewRenderer(backend RendererBackend) *Renderer {
	return &Renderer{
		backend: backend,
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if r.backend == nil {
		return fmt.Errorf("func Initialize - renderer backend is nil: %w", core.ErrInvalidConfig)
	}
	r.width = appWidth
	r.height = appHeight
	if err := r.backend.Initialize(appName, appWidth, appHeight); err != nil {
		core.LogError("failed to initialize renderer backend: %s", err)
		return err
	}
	core.LogInfo("renderer initialized (%dx%d)", appWidth, appHeight)
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

// Size returns the current size of the default framebuffer.
func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *Renderer) OnResize(width, height uint32) error {
	r.width = width
	r.height = height
	return r.backend.Resized(width, height)
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	r.ResetCounters()
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}
	r.inFrame = true
	return nil
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	r.inFrame = false
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("RendererEndFrame failed: %s", err)
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// DrawCalls is the number of draw submissions since the last BeginFrame.
func (r *Renderer) DrawCalls() uint32 {
	return r.drawCalls
}

// Instances is the number of instances submitted since the last BeginFrame.
func (r *Renderer) Instances() uint32 {
	return r.instanceCount
}

func (r *Renderer) ResetCounters() {
	r.drawCalls = 0
	r.instanceCount = 0
}

func (r *Renderer) TextureCreateWriteable(texture *metadata.Texture) error {
	return r.backend.TextureCreateWriteable(texture)
}

func (r *Renderer) TextureDestroy(texture *metadata.Texture) {
	r.backend.TextureDestroy(texture)
}

func (r *Renderer) FramebufferCreate(framebuffer *metadata.Framebuffer) error {
	return r.backend.FramebufferCreate(framebuffer)
}

func (r *Renderer) FramebufferDestroy(framebuffer *metadata.Framebuffer) {
	r.backend.FramebufferDestroy(framebuffer)
}

func (r *Renderer) UploadVertices(mesh *metadata.Mesh, vertices []float32) error {
	return r.backend.UploadVertices(mesh, vertices)
}

// FramebufferBind binds the framebuffer and sets the viewport to cover it.
func (r *Renderer) FramebufferBind(framebuffer *metadata.Framebuffer) {
	r.backend.FramebufferBind(framebuffer)
	w, h := framebuffer.Viewport(r.width, r.height)
	r.backend.SetViewport(0, 0, w, h)
}

func (r *Renderer) Clear(colour math.Vec4, flags metadata.ClearFlag) {
	r.backend.Clear(colour, flags)
}

func (r *Renderer) SetBlendMode(mode metadata.BlendMode) {
	r.backend.SetBlendMode(mode)
}

func (r *Renderer) PipelineBind(pipeline metadata.PipelineHandle) {
	r.backend.PipelineBind(pipeline)
}

func (r *Renderer) TextureBind(slot uint32, texture metadata.TextureHandle) {
	r.backend.TextureBind(slot, texture)
}

func (r *Renderer) MeshBind(mesh metadata.MeshHandle) {
	r.backend.MeshBind(mesh)
}

func (r *Renderer) UniformLocation(pipeline metadata.PipelineHandle, name string) int32 {
	return r.backend.UniformLocation(pipeline, name)
}

func (r *Renderer) SetUniformMat4(location int32, values []math.Mat4) {
	if location < 0 || len(values) == 0 {
		return
	}
	r.backend.SetUniformMat4(location, values)
}

func (r *Renderer) SetUniformFloats(location int32, components int, values []float32) {
	if location < 0 || len(values) == 0 {
		return
	}
	r.backend.SetUniformFloats(location, components, values)
}

func (r *Renderer) SetUniformInts(location int32, components int, values []int32) {
	if location < 0 || len(values) == 0 {
		return
	}
	r.backend.SetUniformInts(location, components, values)
}

func (r *Renderer) SetCameraUniforms(uniforms metadata.CameraUniforms) {
	r.backend.SetCameraUniforms(uniforms)
}

func (r *Renderer) Draw(topology metadata.Topology, count uint32, indexed bool) {
	r.drawCalls++
	r.instanceCount++
	r.backend.Draw(topology, count, indexed)
}

func (r *Renderer) DrawInstanced(topology metadata.Topology, count, instances uint32, indexed bool) {
	r.drawCalls++
	r.instanceCount += instances
	r.backend.DrawInstanced(topology, count, instances, indexed)
}

func (r *Renderer) Blit(src, dst *metadata.Framebuffer) {
	w, h := src.Viewport(r.width, r.height)
	r.backend.Blit(src, dst, w, h)
}
