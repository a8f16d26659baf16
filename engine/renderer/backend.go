package renderer

import (
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// RendererBackend is the narrow GPU surface the batching engine submits to.
// A nil framebuffer always means the default (screen) framebuffer.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	TextureCreateWriteable(texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture)
	FramebufferCreate(framebuffer *metadata.Framebuffer) error
	FramebufferDestroy(framebuffer *metadata.Framebuffer)
	UploadVertices(mesh *metadata.Mesh, vertices []float32) error

	FramebufferBind(framebuffer *metadata.Framebuffer)
	SetViewport(x, y int32, width, height uint32)
	Clear(colour math.Vec4, flags metadata.ClearFlag)
	SetBlendMode(mode metadata.BlendMode)
	PipelineBind(pipeline metadata.PipelineHandle)
	TextureBind(slot uint32, texture metadata.TextureHandle)
	MeshBind(mesh metadata.MeshHandle)

	UniformLocation(pipeline metadata.PipelineHandle, name string) int32
	SetUniformMat4(location int32, values []math.Mat4)
	SetUniformFloats(location int32, components int, values []float32)
	SetUniformInts(location int32, components int, values []int32)
	SetCameraUniforms(uniforms metadata.CameraUniforms)

	Draw(topology metadata.Topology, count uint32, indexed bool)
	DrawInstanced(topology metadata.Topology, count, instances uint32, indexed bool)
	Blit(src, dst *metadata.Framebuffer, width, height uint32)
}
