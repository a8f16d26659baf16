package batch

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

/** @brief The maximum number of textures a single draw state can bind. */
const MaxTextureBinds = 8

/**
 * @brief The GPU state shared by every instance that may be merged into one
 * instanced submission. DrawState is comparable and is used as a map key, so
 * it must never change after construction.
 */
type DrawState struct {
	pipeline     metadata.PipelineHandle
	mesh         metadata.MeshHandle
	indexed      bool
	textures     [MaxTextureBinds]metadata.TextureHandle
	textureCount uint8
	drawCount    uint32
}

type DrawStateOption func(*DrawState)

// WithDrawCount overrides the mesh's natural draw count, for geometry the
// vertex shader generates on its own.
func WithDrawCount(count uint32) DrawStateOption {
	return func(s *DrawState) {
		s.drawCount = count
	}
}

// NewDrawState builds the state for the given pipeline, mesh and ordered
// texture bindings. The resource layer guarantees the handles are valid; a
// nil mesh or too many textures is a programming error and panics.
func NewDrawState(pipeline metadata.PipelineHandle, mesh *metadata.Mesh, textures []metadata.TextureHandle, opts ...DrawStateOption) DrawState {
	if mesh == nil {
		panic(fmt.Errorf("func NewDrawState - mesh is nil: %w", core.ErrInvalidDrawState))
	}
	if len(textures) > MaxTextureBinds {
		panic(fmt.Errorf("func NewDrawState - %d textures exceed the limit of %d: %w", len(textures), MaxTextureBinds, core.ErrInvalidDrawState))
	}
	s := DrawState{
		pipeline:     pipeline,
		mesh:         mesh.Handle,
		indexed:      mesh.HasElements,
		textureCount: uint8(len(textures)),
		drawCount:    mesh.NaturalDrawCount(),
	}
	copy(s.textures[:], textures)
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s DrawState) Pipeline() metadata.PipelineHandle {
	return s.pipeline
}

func (s DrawState) Mesh() metadata.MeshHandle {
	return s.mesh
}

// Indexed reports whether draws go through the mesh's element buffer.
func (s DrawState) Indexed() bool {
	return s.indexed
}

func (s DrawState) DrawCount() uint32 {
	return s.drawCount
}

// Textures returns a copy of the ordered texture bindings.
func (s DrawState) Textures() []metadata.TextureHandle {
	out := make([]metadata.TextureHandle, s.textureCount)
	copy(out, s.textures[:s.textureCount])
	return out
}

// Bind binds the pipeline and every texture to its slot.
func (s DrawState) Bind(r binder) {
	r.PipelineBind(s.pipeline)
	for i := uint8(0); i < s.textureCount; i++ {
		r.TextureBind(uint32(i), s.textures[i])
	}
}

func (s DrawState) String() string {
	return fmt.Sprintf("DrawState{pipeline: %d, mesh: %d, textures: %v, count: %d}", s.pipeline, s.mesh, s.textures[:s.textureCount], s.drawCount)
}

type binder interface {
	PipelineBind(pipeline metadata.PipelineHandle)
	TextureBind(slot uint32, texture metadata.TextureHandle)
}
