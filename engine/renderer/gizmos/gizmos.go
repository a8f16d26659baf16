// Package gizmos draws debug geometry that lives for a single frame.
package gizmos

import (
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// position and colour, three floats each
const floatsPerVertex = 6

type Gizmos struct {
	pipeline metadata.PipelineHandle
	mesh     *metadata.Mesh
	vertices []float32
}

// New creates the gizmo drawer. mesh is the streaming vertex buffer the line
// list is uploaded into every frame.
func New(pipeline metadata.PipelineHandle, mesh *metadata.Mesh) *Gizmos {
	return &Gizmos{
		pipeline: pipeline,
		mesh:     mesh,
	}
}

func (g *Gizmos) DrawLine(p1, p2 math.Vec3, c1, c2 math.Vec3) {
	g.vertices = append(g.vertices,
		p1.X, p1.Y, p1.Z, c1.X, c1.Y, c1.Z,
		p2.X, p2.Y, p2.Z, c2.X, c2.Y, c2.Z,
	)
}

// DrawBox draws the twelve edges of an axis aligned box.
func (g *Gizmos) DrawBox(min, max math.Vec3, colour math.Vec3) {
	corner := func(x, y, z bool) math.Vec3 {
		p := min
		if x {
			p.X = max.X
		}
		if y {
			p.Y = max.Y
		}
		if z {
			p.Z = max.Z
		}
		return p
	}
	for _, x := range []bool{false, true} {
		g.DrawLine(corner(x, false, false), corner(x, false, true), colour, colour)
		g.DrawLine(corner(x, false, true), corner(x, true, true), colour, colour)
		g.DrawLine(corner(x, true, true), corner(x, true, false), colour, colour)
		g.DrawLine(corner(x, true, false), corner(x, false, false), colour, colour)
	}
	for _, y := range []bool{false, true} {
		for _, z := range []bool{false, true} {
			g.DrawLine(corner(false, y, z), corner(true, y, z), colour, colour)
		}
	}
}

// Lines is the number of lines queued for the current frame.
func (g *Gizmos) Lines() int {
	return len(g.vertices) / (floatsPerVertex * 2)
}

// Flush draws every queued line in one submission and clears the queue.
// Nothing is submitted when no line was queued.
func (g *Gizmos) Flush(r *renderer.Renderer) {
	if len(g.vertices) == 0 {
		return
	}
	defer func() { g.vertices = g.vertices[:0] }()

	if err := r.UploadVertices(g.mesh, g.vertices); err != nil {
		core.LogWarn("failed to upload gizmo vertices: %s", err)
		return
	}
	count := uint32(len(g.vertices) / floatsPerVertex)
	g.mesh.VertexCount = count

	r.SetBlendMode(metadata.BlendModeNone)
	r.PipelineBind(g.pipeline)
	r.MeshBind(g.mesh.Handle)
	r.Draw(metadata.TopologyLines, count, false)
}
