package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The maximum number of resources of each type. */
	MaxResourceCount uint32
}

/**
 * @brief Registry of the GPU resources draw states are built from. Loading
 * and compiling happen elsewhere; loaders register the handles they produce
 * here, possibly from their own goroutines. The system also owns the
 * writeable textures and framebuffers created for render targets and post
 * passes.
 */
type ResourceSystem struct {
	Config *ResourceSystemConfig

	renderer *renderer.Renderer
	mutex    sync.RWMutex

	pipelines    map[string]*metadata.Pipeline
	meshes       map[string]*metadata.Mesh
	textures     map[string]*metadata.Texture
	framebuffers map[string]*metadata.Framebuffer

	nextPipeline metadata.PipelineHandle
	nextMesh     metadata.MeshHandle
}

func NewResourceSystem(config *ResourceSystemConfig, r *renderer.Renderer) (*ResourceSystem, error) {
	if config.MaxResourceCount == 0 {
		err := fmt.Errorf("func NewResourceSystem - config.MaxResourceCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	rs := &ResourceSystem{
		Config:       config,
		renderer:     r,
		pipelines:    make(map[string]*metadata.Pipeline),
		meshes:       make(map[string]*metadata.Mesh),
		textures:     make(map[string]*metadata.Texture),
		framebuffers: make(map[string]*metadata.Framebuffer),
	}
	core.LogInfo("Resource system initialized (max %d resources per type).", config.MaxResourceCount)
	return rs, nil
}

func (rs *ResourceSystem) Shutdown() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	for name, fb := range rs.framebuffers {
		rs.destroyFramebuffer(fb)
		delete(rs.framebuffers, name)
	}
	for name, tex := range rs.textures {
		if tex.HasFlag(metadata.TextureFlagIsWriteable) && !tex.HasFlag(metadata.TextureFlagIsWrapped) {
			rs.renderer.TextureDestroy(tex)
		}
		delete(rs.textures, name)
	}
	rs.pipelines = make(map[string]*metadata.Pipeline)
	rs.meshes = make(map[string]*metadata.Mesh)
	return nil
}

func (rs *ResourceSystem) checkCapacity(n int, rt metadata.ResourceType) error {
	if uint32(n) >= rs.Config.MaxResourceCount {
		return fmt.Errorf("func Register - %s limit of %d reached: %w", rt, rs.Config.MaxResourceCount, core.ErrNoFreeSlot)
	}
	return nil
}

// RegisterPipeline records a compiled pipeline and returns it with a fresh handle.
// Registering a known name returns the existing pipeline.
func (rs *ResourceSystem) RegisterPipeline(name string) (*metadata.Pipeline, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if p, ok := rs.pipelines[name]; ok {
		return p, nil
	}
	if err := rs.checkCapacity(len(rs.pipelines), metadata.ResourceTypePipeline); err != nil {
		return nil, err
	}
	rs.nextPipeline++
	p := &metadata.Pipeline{Handle: rs.nextPipeline, Name: name}
	rs.pipelines[name] = p
	return p, nil
}

// RegisterMesh records an uploaded mesh. An element count of 0 marks a non-indexed mesh.
func (rs *ResourceSystem) RegisterMesh(name string, vertexCount, elementCount uint32) (*metadata.Mesh, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if m, ok := rs.meshes[name]; ok {
		return m, nil
	}
	if err := rs.checkCapacity(len(rs.meshes), metadata.ResourceTypeMesh); err != nil {
		return nil, err
	}
	rs.nextMesh++
	m := &metadata.Mesh{
		Handle:       rs.nextMesh,
		Name:         name,
		VertexCount:  vertexCount,
		ElementCount: elementCount,
		HasElements:  elementCount > 0,
	}
	rs.meshes[name] = m
	return m, nil
}

// RegisterTexture records a texture loaded elsewhere. It is never destroyed here.
func (rs *ResourceSystem) RegisterTexture(texture *metadata.Texture) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if _, ok := rs.textures[texture.Name]; ok {
		return fmt.Errorf("func RegisterTexture - texture '%s' already registered", texture.Name)
	}
	if err := rs.checkCapacity(len(rs.textures), metadata.ResourceTypeTexture); err != nil {
		return err
	}
	texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagIsWrapped)
	rs.textures[texture.Name] = texture
	return nil
}

func (rs *ResourceSystem) Pipeline(name string) (*metadata.Pipeline, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	if p, ok := rs.pipelines[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("func Pipeline - '%s': %w", name, core.ErrUnknownResource)
}

func (rs *ResourceSystem) Mesh(name string) (*metadata.Mesh, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	if m, ok := rs.meshes[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("func Mesh - '%s': %w", name, core.ErrUnknownResource)
}

func (rs *ResourceSystem) Texture(name string) (*metadata.Texture, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	if t, ok := rs.textures[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("func Texture - '%s': %w", name, core.ErrUnknownResource)
}

// CreateWriteableTexture creates a texture the renderer can draw into.
// An empty name gets a generated one.
func (rs *ResourceSystem) CreateWriteableTexture(name string, width, height uint32, format metadata.TextureFormat) (*metadata.Texture, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	return rs.createWriteableTexture(name, width, height, format)
}

func (rs *ResourceSystem) createWriteableTexture(name string, width, height uint32, format metadata.TextureFormat) (*metadata.Texture, error) {
	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := rs.textures[name]; ok {
		return nil, fmt.Errorf("func CreateWriteableTexture - texture '%s' already exists", name)
	}
	if err := rs.checkCapacity(len(rs.textures), metadata.ResourceTypeTexture); err != nil {
		return nil, err
	}
	tex := &metadata.Texture{Name: name, Width: width, Height: height, Format: format}
	if err := rs.renderer.TextureCreateWriteable(tex); err != nil {
		core.LogError("failed to create writeable texture '%s': %s", name, err)
		return nil, err
	}
	rs.textures[name] = tex
	return tex, nil
}

// CreateFramebuffer allocates a framebuffer and a texture for every attachment
// that does not bring its own. An empty name gets a generated one.
func (rs *ResourceSystem) CreateFramebuffer(name string, width, height uint32, attachments []metadata.AttachmentConfig) (*metadata.Framebuffer, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := rs.framebuffers[name]; ok {
		return nil, fmt.Errorf("func CreateFramebuffer - framebuffer '%s' already exists", name)
	}
	if err := rs.checkCapacity(len(rs.framebuffers), metadata.ResourceTypeFramebuffer); err != nil {
		return nil, err
	}

	fb := &metadata.Framebuffer{Name: name, Width: width, Height: height}
	for i, cfg := range attachments {
		tex := cfg.External
		if tex == nil {
			var err error
			tex, err = rs.createWriteableTexture(fmt.Sprintf("%s.attachment%d", name, i), width, height, cfg.Format)
			if err != nil {
				rs.destroyFramebuffer(fb)
				return nil, err
			}
		}
		fb.Attachments = append(fb.Attachments, &metadata.Attachment{Type: cfg.Type, Texture: tex})
	}
	if err := rs.renderer.FramebufferCreate(fb); err != nil {
		rs.destroyFramebuffer(fb)
		core.LogError("failed to create framebuffer '%s': %s", name, err)
		return nil, err
	}
	rs.framebuffers[name] = fb
	return fb, nil
}

func (rs *ResourceSystem) DestroyFramebuffer(fb *metadata.Framebuffer) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if known, ok := rs.framebuffers[fb.Name]; !ok || known != fb {
		return fmt.Errorf("func DestroyFramebuffer - '%s': %w", fb.Name, core.ErrUnknownResource)
	}
	delete(rs.framebuffers, fb.Name)
	rs.destroyFramebuffer(fb)
	return nil
}

// destroyFramebuffer releases the framebuffer and the attachments it owns.
func (rs *ResourceSystem) destroyFramebuffer(fb *metadata.Framebuffer) {
	for _, a := range fb.Attachments {
		known, ok := rs.textures[a.Texture.Name]
		if !ok || known != a.Texture || a.Texture.HasFlag(metadata.TextureFlagIsWrapped) {
			continue
		}
		rs.renderer.TextureDestroy(a.Texture)
		delete(rs.textures, a.Texture.Name)
	}
	if fb.Handle != metadata.DefaultFramebuffer {
		rs.renderer.FramebufferDestroy(fb)
	}
}

// Count returns the number of registered resources of the given type.
func (rs *ResourceSystem) Count(rt metadata.ResourceType) int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	switch rt {
	case metadata.ResourceTypePipeline:
		return len(rs.pipelines)
	case metadata.ResourceTypeMesh:
		return len(rs.meshes)
	case metadata.ResourceTypeTexture:
		return len(rs.textures)
	case metadata.ResourceTypeFramebuffer:
		return len(rs.framebuffers)
	}
	return 0
}
