// Package headless implements a renderer backend that records every command
// instead of talking to a GPU. It backs the test suites, CI runs and the
// windowless testbed.
package headless

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

type uniformKey struct {
	pipeline metadata.PipelineHandle
	name     string
}

// Backend records the commands of the current frame. BeginFrame discards the
// previous frame's commands unless KeepHistory is set.
type Backend struct {
	KeepHistory bool

	commands []Command
	frame    uint64
	width    uint32
	height   uint32

	nextTexture     metadata.TextureHandle
	nextFramebuffer metadata.FramebufferHandle
	uniforms        map[uniformKey]int32
	nextLocation    map[metadata.PipelineHandle]int32
	vertices        map[metadata.MeshHandle][]float32
	framebuffers    map[metadata.FramebufferHandle]*metadata.Framebuffer
	initialized     bool
}

func New() *Backend {
	return &Backend{
		uniforms:     make(map[uniformKey]int32),
		nextLocation: make(map[metadata.PipelineHandle]int32),
		vertices:     make(map[metadata.MeshHandle][]float32),
		framebuffers: make(map[metadata.FramebufferHandle]*metadata.Framebuffer),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.width = appWidth
	b.height = appHeight
	b.initialized = true
	core.LogDebug("headless backend '%s' initialized", appName)
	return nil
}

func (b *Backend) Shutdown() error {
	if !b.initialized {
		return fmt.Errorf("func Shutdown - headless backend was never initialized")
	}
	for h := range b.framebuffers {
		delete(b.framebuffers, h)
	}
	b.initialized = false
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.width = width
	b.height = height
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if !b.KeepHistory {
		b.commands = b.commands[:0]
	}
	b.frame++
	b.record(Command{Kind: CmdBeginFrame})
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.record(Command{Kind: CmdEndFrame})
	return nil
}

func (b *Backend) TextureCreateWriteable(texture *metadata.Texture) error {
	if texture.Width == 0 || texture.Height == 0 {
		return fmt.Errorf("func TextureCreateWriteable - texture '%s' has a zero dimension", texture.Name)
	}
	b.nextTexture++
	texture.Handle = b.nextTexture
	texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagIsWriteable)
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	texture.Handle = metadata.InvalidTexture
}

func (b *Backend) FramebufferCreate(framebuffer *metadata.Framebuffer) error {
	if framebuffer.Width == 0 || framebuffer.Height == 0 {
		return fmt.Errorf("func FramebufferCreate - framebuffer '%s' has a zero dimension", framebuffer.Name)
	}
	b.nextFramebuffer++
	framebuffer.Handle = b.nextFramebuffer
	b.framebuffers[framebuffer.Handle] = framebuffer
	return nil
}

func (b *Backend) FramebufferDestroy(framebuffer *metadata.Framebuffer) {
	delete(b.framebuffers, framebuffer.Handle)
	framebuffer.Handle = metadata.DefaultFramebuffer
}

// UploadVertices keeps a copy of the vertex data so tests can inspect it.
func (b *Backend) UploadVertices(mesh *metadata.Mesh, vertices []float32) error {
	data := append([]float32(nil), vertices...)
	b.vertices[mesh.Handle] = data
	b.record(Command{Kind: CmdUploadVertices, Mesh: mesh.Handle, Floats: data})
	return nil
}

func (b *Backend) Vertices(mesh metadata.MeshHandle) []float32 {
	return b.vertices[mesh]
}

func (b *Backend) FramebufferBind(framebuffer *metadata.Framebuffer) {
	h := metadata.DefaultFramebuffer
	if framebuffer != nil {
		h = framebuffer.Handle
	}
	b.record(Command{Kind: CmdBindFramebuffer, Framebuffer: h})
}

func (b *Backend) SetViewport(x, y int32, width, height uint32) {
	b.record(Command{Kind: CmdViewport, Width: width, Height: height})
}

func (b *Backend) Clear(colour math.Vec4, flags metadata.ClearFlag) {
	b.record(Command{Kind: CmdClear, Colour: colour, ClearFlags: flags})
}

func (b *Backend) SetBlendMode(mode metadata.BlendMode) {
	b.record(Command{Kind: CmdBlendMode, Blend: mode})
}

func (b *Backend) PipelineBind(pipeline metadata.PipelineHandle) {
	b.record(Command{Kind: CmdBindPipeline, Pipeline: pipeline})
}

func (b *Backend) TextureBind(slot uint32, texture metadata.TextureHandle) {
	b.record(Command{Kind: CmdBindTexture, Slot: slot, Texture: texture})
}

func (b *Backend) MeshBind(mesh metadata.MeshHandle) {
	b.record(Command{Kind: CmdBindMesh, Mesh: mesh})
}

// UniformLocation hands out locations per pipeline in first-query order.
// Names marked with MissingUniform resolve to -1.
func (b *Backend) UniformLocation(pipeline metadata.PipelineHandle, name string) int32 {
	key := uniformKey{pipeline: pipeline, name: name}
	if loc, ok := b.uniforms[key]; ok {
		return loc
	}
	loc := b.nextLocation[pipeline]
	b.nextLocation[pipeline] = loc + 1
	b.uniforms[key] = loc
	return loc
}

// MissingUniform makes the pipeline report the uniform as absent.
func (b *Backend) MissingUniform(pipeline metadata.PipelineHandle, name string) {
	b.uniforms[uniformKey{pipeline: pipeline, name: name}] = metadata.InvalidUniformLocation
}

func (b *Backend) SetUniformMat4(location int32, values []math.Mat4) {
	b.record(Command{Kind: CmdUniformMat4, Location: location, Matrices: append([]math.Mat4(nil), values...)})
}

func (b *Backend) SetUniformFloats(location int32, components int, values []float32) {
	b.record(Command{Kind: CmdUniformFloats, Location: location, Components: components, Floats: append([]float32(nil), values...)})
}

func (b *Backend) SetUniformInts(location int32, components int, values []int32) {
	b.record(Command{Kind: CmdUniformInts, Location: location, Components: components, Ints: append([]int32(nil), values...)})
}

func (b *Backend) SetCameraUniforms(uniforms metadata.CameraUniforms) {
	b.record(Command{Kind: CmdCameraUniforms, Matrices: []math.Mat4{uniforms.View, uniforms.Projection}})
}

func (b *Backend) Draw(topology metadata.Topology, count uint32, indexed bool) {
	b.record(Command{Kind: CmdDraw, Topology: topology, Count: count, Instances: 1, Indexed: indexed})
}

func (b *Backend) DrawInstanced(topology metadata.Topology, count, instances uint32, indexed bool) {
	b.record(Command{Kind: CmdDrawInstanced, Topology: topology, Count: count, Instances: instances, Indexed: indexed})
}

func (b *Backend) Blit(src, dst *metadata.Framebuffer, width, height uint32) {
	cmd := Command{Kind: CmdBlit, Width: width, Height: height}
	if src != nil {
		cmd.Source = src.Handle
	}
	if dst != nil {
		cmd.Framebuffer = dst.Handle
	}
	b.record(cmd)
}

func (b *Backend) record(cmd Command) {
	cmd.Frame = b.frame
	b.commands = append(b.commands, cmd)
}

func (b *Backend) Size() (uint32, uint32) {
	return b.width, b.height
}
