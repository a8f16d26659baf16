package headless

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

type CommandKind uint8

const (
	CmdBeginFrame CommandKind = iota
	CmdEndFrame
	CmdBindFramebuffer
	CmdViewport
	CmdClear
	CmdBlendMode
	CmdBindPipeline
	CmdBindTexture
	CmdBindMesh
	CmdUniformMat4
	CmdUniformFloats
	CmdUniformInts
	CmdCameraUniforms
	CmdUploadVertices
	CmdDraw
	CmdDrawInstanced
	CmdBlit
)

var commandNames = [...]string{
	CmdBeginFrame:      "begin_frame",
	CmdEndFrame:        "end_frame",
	CmdBindFramebuffer: "bind_framebuffer",
	CmdViewport:        "viewport",
	CmdClear:           "clear",
	CmdBlendMode:       "blend_mode",
	CmdBindPipeline:    "bind_pipeline",
	CmdBindTexture:     "bind_texture",
	CmdBindMesh:        "bind_mesh",
	CmdUniformMat4:     "uniform_mat4",
	CmdUniformFloats:   "uniform_floats",
	CmdUniformInts:     "uniform_ints",
	CmdCameraUniforms:  "camera_uniforms",
	CmdUploadVertices:  "upload_vertices",
	CmdDraw:            "draw",
	CmdDrawInstanced:   "draw_instanced",
	CmdBlit:            "blit",
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Command is one recorded backend call. Only the fields relevant to Kind are set.
type Command struct {
	Kind  CommandKind
	Frame uint64

	Framebuffer metadata.FramebufferHandle
	Source      metadata.FramebufferHandle
	Width       uint32
	Height      uint32
	Colour      math.Vec4
	ClearFlags  metadata.ClearFlag
	Blend       metadata.BlendMode
	Pipeline    metadata.PipelineHandle
	Texture     metadata.TextureHandle
	Slot        uint32
	Mesh        metadata.MeshHandle
	Location    int32
	Components  int
	Matrices    []math.Mat4
	Floats      []float32
	Ints        []int32
	Topology    metadata.Topology
	Count       uint32
	Instances   uint32
	Indexed     bool
}

// IsDraw reports whether the command submits geometry.
func (c Command) IsDraw() bool {
	return c.Kind == CmdDraw || c.Kind == CmdDrawInstanced
}

func (b *Backend) Commands() []Command {
	return b.commands
}

// Reset drops every recorded command.
func (b *Backend) Reset() {
	b.commands = b.commands[:0]
}

func (b *Backend) Filter(kinds ...CommandKind) []Command {
	var out []Command
	for _, c := range b.commands {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (b *Backend) Count(kind CommandKind) int {
	n := 0
	for _, c := range b.commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Draws returns every draw and instanced draw in submission order.
func (b *Backend) Draws() []Command {
	return b.Filter(CmdDraw, CmdDrawInstanced)
}

// Kinds returns the sequence of recorded command kinds.
func (b *Backend) Kinds() []CommandKind {
	out := make([]CommandKind, len(b.commands))
	for i, c := range b.commands {
		out[i] = c.Kind
	}
	return out
}
