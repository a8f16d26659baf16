package metadata

import "github.com/spaghettifunk/oncue/engine/math"

/**
 * @brief The types of clearing to be done on a framebuffer.
 * Can be combined together for multiple clearing functions.
 */
type ClearFlag uint32

const (
	CLEAR_NONE_FLAG          ClearFlag = 0x0
	CLEAR_COLOUR_BUFFER_FLAG ClearFlag = 0x1
	CLEAR_DEPTH_BUFFER_FLAG  ClearFlag = 0x2
	CLEAR_STENCIL_BUFFER_FLAG ClearFlag = 0x4
)

/** @brief Blending configuration applied to subsequent draws. */
type BlendMode uint8

const (
	BlendModeNone BlendMode = iota
	/** @brief src_alpha, one_minus_src_alpha. Used by the transparent pass. */
	BlendModeAlpha
	/** @brief one, one. Used by bloom upsampling. */
	BlendModeAdditive
)

type Topology uint8

const (
	TopologyTriangles Topology = iota
	TopologyLines
)

type AttachmentType uint32

const (
	ATTACHMENT_TYPE_COLOUR  AttachmentType = 0x1
	ATTACHMENT_TYPE_DEPTH   AttachmentType = 0x2
	ATTACHMENT_TYPE_STENCIL AttachmentType = 0x4
)

// AttachmentConfig describes one framebuffer attachment. When External is set
// no texture is allocated and the external texture is bound instead.
type AttachmentConfig struct {
	Type     AttachmentType
	Format   TextureFormat
	External *Texture
}

type Attachment struct {
	Type    AttachmentType
	Texture *Texture
}

/** @brief An off-screen framebuffer a camera can render into. */
type Framebuffer struct {
	Handle      FramebufferHandle
	Name        string
	Width       uint32
	Height      uint32
	Attachments []*Attachment
}

// ColourAttachment returns the index-th colour attachment texture or nil.
func (fb *Framebuffer) ColourAttachment(index int) *Texture {
	if fb == nil {
		return nil
	}
	n := 0
	for _, a := range fb.Attachments {
		if a.Type != ATTACHMENT_TYPE_COLOUR {
			continue
		}
		if n == index {
			return a.Texture
		}
		n++
	}
	return nil
}

// ColourAttachments returns every colour attachment texture in declaration order.
func (fb *Framebuffer) ColourAttachments() []*Texture {
	var out []*Texture
	for _, a := range fb.Attachments {
		if a.Type == ATTACHMENT_TYPE_COLOUR {
			out = append(out, a.Texture)
		}
	}
	return out
}

// Viewport returns the framebuffer size, or the given fallback for the default framebuffer.
func (fb *Framebuffer) Viewport(width, height uint32) (uint32, uint32) {
	if fb == nil {
		return width, height
	}
	return fb.Width, fb.Height
}

// CameraUniforms is what a camera uploads before its scene is drawn.
type CameraUniforms struct {
	View       math.Mat4
	Projection math.Mat4
	Position   math.Vec3
}
