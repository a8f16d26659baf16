package metadata

/** @brief Opaque handle of a compiled shader pipeline, issued by the resource layer. */
type PipelineHandle uint32

/** @brief Opaque handle of an uploaded mesh (vertex array), issued by the resource layer. */
type MeshHandle uint32

/** @brief Opaque handle of a GPU texture, issued by the resource layer. */
type TextureHandle uint32

/** @brief Opaque handle of a framebuffer object. */
type FramebufferHandle uint32

const (
	InvalidPipeline    PipelineHandle    = 0
	InvalidMesh        MeshHandle        = 0
	InvalidTexture     TextureHandle     = 0
	DefaultFramebuffer FramebufferHandle = 0
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	ResourceTypePipeline
	ResourceTypeMesh
	ResourceTypeTexture
	ResourceTypeFramebuffer
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypePipeline:
		return "pipeline"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeFramebuffer:
		return "framebuffer"
	default:
		return "none"
	}
}
