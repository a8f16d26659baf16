package metadata

/**
 * @brief Represents a mesh uploaded by the resource layer. Only the data
 * the batching engine needs to issue draws is exposed.
 */
type Mesh struct {
	Handle MeshHandle
	Name   string
	/** @brief Number of vertices in the vertex buffers. */
	VertexCount uint32
	/** @brief Number of indices, only meaningful when HasElements is set. */
	ElementCount uint32
	/** @brief Indicates the mesh has an index (element) buffer. */
	HasElements bool
}

// NaturalDrawCount is the element count for indexed meshes, the vertex count otherwise.
func (m *Mesh) NaturalDrawCount() uint32 {
	if m.HasElements {
		return m.ElementCount
	}
	return m.VertexCount
}
