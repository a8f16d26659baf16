package postpass

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

/** @brief The number of downsampled levels the bloom chain uses. */
const BloomLevelCount = 8

const bloomResolutionUniform = "in_res"

type bloomLevel struct {
	width  uint32
	height uint32
	fb     *metadata.Framebuffer
}

/**
 * @brief Physically based bloom: the source is downsampled through a chain of
 * half-sized levels, then the levels are upsampled and added on top of a copy
 * of the source.
 */
type Bloom struct {
	downsample metadata.PipelineHandle
	upsample   metadata.PipelineHandle
	alloc      FramebufferAllocator

	resolutionLocation int32
	srcWidth           uint32
	srcHeight          uint32
	levels             [BloomLevelCount]bloomLevel
}

func NewBloom(r *renderer.Renderer, alloc FramebufferAllocator, downsample, upsample metadata.PipelineHandle, width, height uint32) (*Bloom, error) {
	b := &Bloom{
		downsample: downsample,
		upsample:   upsample,
		alloc:      alloc,
	}
	b.resolutionLocation = r.UniformLocation(downsample, bloomResolutionUniform)
	if b.resolutionLocation == metadata.InvalidUniformLocation {
		core.LogWarn("bloom downsample pipeline has no '%s' uniform", bloomResolutionUniform)
	}
	if err := b.Resize(width, height); err != nil {
		return nil, err
	}
	return b, nil
}

// LevelSize returns the size of the level-th downsampled image.
func (b *Bloom) LevelSize(level int) (uint32, uint32) {
	return b.levels[level].width, b.levels[level].height
}

func levelExtent(size uint32, level int) uint32 {
	return math.Max(size>>uint(level+1), 1)
}

// Resize rebuilds the level chain for a source of the given size.
func (b *Bloom) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("func Resize - bloom source size %dx%d: %w", width, height, core.ErrInvalidConfig)
	}
	b.release()
	b.srcWidth = width
	b.srcHeight = height

	for i := range b.levels {
		w, h := levelExtent(width, i), levelExtent(height, i)
		fb, err := b.alloc.CreateFramebuffer(fmt.Sprintf("bloom.level%d", i), w, h, []metadata.AttachmentConfig{
			{Type: metadata.ATTACHMENT_TYPE_COLOUR, Format: metadata.TextureFormatR11G11B10F},
		})
		if err != nil {
			b.release()
			return err
		}
		b.levels[i] = bloomLevel{width: w, height: h, fb: fb}
	}
	return nil
}

func (b *Bloom) release() {
	for i := range b.levels {
		if b.levels[i].fb == nil {
			continue
		}
		if err := b.alloc.DestroyFramebuffer(b.levels[i].fb); err != nil {
			core.LogWarn("failed to release bloom level %d: %s", i, err)
		}
		b.levels[i] = bloomLevel{}
	}
}

// Destroy releases the level framebuffers.
func (b *Bloom) Destroy() {
	b.release()
}

func (b *Bloom) setResolution(r *renderer.Renderer, width, height uint32) {
	r.SetUniformInts(b.resolutionLocation, 2, []int32{int32(width), int32(height)})
}

func (b *Bloom) Dispatch(r *renderer.Renderer, src, dst *metadata.Framebuffer) {
	r.SetBlendMode(metadata.BlendModeNone)
	r.PipelineBind(b.downsample)

	b.setResolution(r, b.srcWidth, b.srcHeight)
	if tex := src.ColourAttachment(0); tex != nil {
		r.TextureBind(0, tex.Handle)
	}
	for i := range b.levels {
		level := &b.levels[i]
		r.FramebufferBind(level.fb)
		drawFullscreen(r)

		// this level is the input of the next one
		b.setResolution(r, level.width, level.height)
		r.TextureBind(0, level.fb.ColourAttachment(0).Handle)
	}

	r.PipelineBind(b.upsample)
	r.Blit(src, dst)
	r.FramebufferBind(dst)
	r.SetBlendMode(metadata.BlendModeAdditive)
	for i := BloomLevelCount - 1; i > 0; i-- {
		r.TextureBind(0, b.levels[i].fb.ColourAttachment(0).Handle)
		drawFullscreen(r)
	}
	r.SetBlendMode(metadata.BlendModeNone)
}
