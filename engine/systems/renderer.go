package systems

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/gizmos"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/postpass"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

const (
	GizmoPipelineName = "builtin.gizmos"
	gizmoMeshName     = "builtin.gizmos.stream"
)

type RendererSystemConfig struct {
	AppName   string
	AppWidth  uint32
	AppHeight uint32
}

/**
 * @brief The frame driver. Each frame it resets the render targets, draws the
 * main camera's view (which resolves every target the scene depends on),
 * flushes the debug gizmos, runs the post pass chain and presents.
 */
type RendererSystem struct {
	Config *RendererSystemConfig

	renderer  *renderer.Renderer
	resources *ResourceSystem
	targets   *RenderTargetSystem
	gizmos    *gizmos.Gizmos
	metrics   *core.Metrics

	postPasses []postpass.PostPass
	// ping-pong buffers the scene and the post passes render into
	sceneFramebuffers [2]*metadata.Framebuffer

	// The current window framebuffer width.
	FramebufferWidth uint32
	// The current window framebuffer height.
	FramebufferHeight uint32
	// Time spent on the CPU building the last frame.
	CPUFrameTime time.Duration
}

func NewRendererSystem(config *RendererSystemConfig, r *renderer.Renderer, rs *ResourceSystem, ts *RenderTargetSystem) (*RendererSystem, error) {
	if config.AppWidth == 0 || config.AppHeight == 0 {
		err := fmt.Errorf("func NewRendererSystem - application size %dx%d: %w", config.AppWidth, config.AppHeight, core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &RendererSystem{
		Config:            config,
		renderer:          r,
		resources:         rs,
		targets:           ts,
		metrics:           core.NewMetrics(),
		FramebufferWidth:  config.AppWidth,
		FramebufferHeight: config.AppHeight,
	}, nil
}

func (rs *RendererSystem) Initialize() error {
	if err := rs.renderer.Initialize(rs.Config.AppName, rs.Config.AppWidth, rs.Config.AppHeight); err != nil {
		return err
	}
	pipeline, err := rs.resources.RegisterPipeline(GizmoPipelineName)
	if err != nil {
		return err
	}
	mesh, err := rs.resources.RegisterMesh(gizmoMeshName, 0, 0)
	if err != nil {
		return err
	}
	rs.gizmos = gizmos.New(pipeline.Handle, mesh)
	return nil
}

func (rs *RendererSystem) Shutdown() error {
	for _, p := range rs.postPasses {
		if d, ok := p.(interface{ Destroy() }); ok {
			d.Destroy()
		}
	}
	rs.postPasses = nil
	rs.releaseSceneFramebuffers()
	return rs.renderer.Shutdown()
}

func (rs *RendererSystem) Renderer() *renderer.Renderer {
	return rs.renderer
}

func (rs *RendererSystem) Gizmos() *gizmos.Gizmos {
	return rs.gizmos
}

func (rs *RendererSystem) Metrics() *core.Metrics {
	return rs.metrics
}

// ActivatePostPass appends the pass to the chain. Passes run in activation order.
func (rs *RendererSystem) ActivatePostPass(p postpass.PostPass) error {
	if rs.sceneFramebuffers[0] == nil {
		if err := rs.createSceneFramebuffers(); err != nil {
			return err
		}
	}
	rs.postPasses = append(rs.postPasses, p)
	return nil
}

func (rs *RendererSystem) DeactivatePostPass(p postpass.PostPass) error {
	for i, pass := range rs.postPasses {
		if pass == p {
			rs.postPasses = append(rs.postPasses[:i], rs.postPasses[i+1:]...)
			if len(rs.postPasses) == 0 {
				rs.releaseSceneFramebuffers()
			}
			return nil
		}
	}
	return fmt.Errorf("func DeactivatePostPass - pass is not active: %w", core.ErrUnknownResource)
}

func (rs *RendererSystem) createSceneFramebuffers() error {
	for i := range rs.sceneFramebuffers {
		fb, err := rs.resources.CreateFramebuffer(fmt.Sprintf("renderer.scene%d", i), rs.FramebufferWidth, rs.FramebufferHeight, []metadata.AttachmentConfig{
			{Type: metadata.ATTACHMENT_TYPE_COLOUR, Format: metadata.TextureFormatRGB16F},
			{Type: metadata.ATTACHMENT_TYPE_DEPTH, Format: metadata.TextureFormatDepth24Stencil8},
		})
		if err != nil {
			rs.releaseSceneFramebuffers()
			return err
		}
		rs.sceneFramebuffers[i] = fb
	}
	return nil
}

func (rs *RendererSystem) releaseSceneFramebuffers() {
	for i, fb := range rs.sceneFramebuffers {
		if fb == nil {
			continue
		}
		if err := rs.resources.DestroyFramebuffer(fb); err != nil {
			core.LogWarn(err.Error())
		}
		rs.sceneFramebuffers[i] = nil
	}
}

func (rs *RendererSystem) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		// minimized, keep the last size
		return nil
	}
	rs.FramebufferWidth = width
	rs.FramebufferHeight = height
	if err := rs.renderer.OnResize(width, height); err != nil {
		return err
	}
	if rs.sceneFramebuffers[0] != nil {
		rs.releaseSceneFramebuffers()
		if err := rs.createSceneFramebuffers(); err != nil {
			return err
		}
	}
	for _, p := range rs.postPasses {
		if err := p.Resize(width, height); err != nil {
			return err
		}
	}
	core.LogDebug("renderer resized to %dx%d", width, height)
	return nil
}

// Frame renders and presents one frame of the scene as seen by cam.
func (rs *RendererSystem) Frame(cam *components.Camera, sc *scene.RenderScene, deltaTime float64) error {
	start := time.Now()

	if err := rs.renderer.BeginFrame(deltaTime); err != nil {
		return err
	}
	rs.targets.ResetAll()

	var output *metadata.Framebuffer
	if len(rs.postPasses) > 0 {
		output = rs.sceneFramebuffers[0]
	}
	cam.ViewFrame(rs.renderer, output, sc)
	rs.gizmos.Flush(rs.renderer)

	src := output
	for i, p := range rs.postPasses {
		var dst *metadata.Framebuffer
		if i < len(rs.postPasses)-1 {
			dst = rs.sceneFramebuffers[(i+1)%2]
		}
		p.Dispatch(rs.renderer, src, dst)
		src = dst
	}

	// presenting waits on the GPU, keep it out of the CPU time
	rs.CPUFrameTime = time.Since(start)
	rs.metrics.Update(rs.CPUFrameTime.Seconds(), rs.renderer.DrawCalls())

	if err := rs.renderer.EndFrame(deltaTime); err != nil {
		err = fmt.Errorf("func Frame - backend EndFrame failed. Application shutting down: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}
