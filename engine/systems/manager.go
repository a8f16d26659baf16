package systems

import (
	"github.com/spaghettifunk/oncue/engine/config"
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/postpass"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

const (
	BloomDownsamplePipelineName = "builtin.post.bloom_down"
	BloomUpsamplePipelineName   = "builtin.post.bloom_up"
)

type SystemManager struct {
	Config *config.Config

	CameraSystem       *CameraSystem
	ResourceSystem     *ResourceSystem
	RenderTargetSystem *RenderTargetSystem
	RendererSystem     *RendererSystem

	bloom *postpass.Bloom
}

func NewSystemManager(cfg *config.Config, backend renderer.RendererBackend) (*SystemManager, error) {
	r := renderer.NewRenderer(backend)

	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: 100,
	})
	if err != nil {
		return nil, err
	}
	rs, err := NewResourceSystem(&ResourceSystemConfig{
		MaxResourceCount: 4096,
	}, r)
	if err != nil {
		return nil, err
	}
	ts, err := NewRenderTargetSystem(&RenderTargetSystemConfig{
		MaxTargetCount: cfg.Renderer.MaxRenderTargets,
		FallbackColour: cfg.Renderer.Fallback(),
	}, r, rs)
	if err != nil {
		return nil, err
	}
	rsys, err := NewRendererSystem(&RendererSystemConfig{
		AppName:   cfg.Application.Name,
		AppWidth:  cfg.Application.Width,
		AppHeight: cfg.Application.Height,
	}, r, rs, ts)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		Config:             cfg,
		CameraSystem:       cs,
		ResourceSystem:     rs,
		RenderTargetSystem: ts,
		RendererSystem:     rsys,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	if err := sm.RendererSystem.Initialize(); err != nil {
		return err
	}
	sm.CameraSystem.GetDefault().ClearColour = sm.Config.Renderer.Clear()
	return sm.SetBloom(sm.Config.Renderer.Bloom)
}

// NewScene creates an empty scene using the configured batch capacity.
func (sm *SystemManager) NewScene() *scene.RenderScene {
	return scene.NewRenderScene(sm.RendererSystem.Renderer(), scene.WithBatchCapacity(sm.Config.Renderer.BatchCapacity))
}

// SetBloom turns the bloom post pass on or off.
func (sm *SystemManager) SetBloom(enabled bool) error {
	if enabled == (sm.bloom != nil) {
		return nil
	}
	if !enabled {
		err := sm.RendererSystem.DeactivatePostPass(sm.bloom)
		sm.bloom.Destroy()
		sm.bloom = nil
		return err
	}

	down, err := sm.ResourceSystem.RegisterPipeline(BloomDownsamplePipelineName)
	if err != nil {
		return err
	}
	up, err := sm.ResourceSystem.RegisterPipeline(BloomUpsamplePipelineName)
	if err != nil {
		return err
	}
	rsys := sm.RendererSystem
	bloom, err := postpass.NewBloom(rsys.Renderer(), sm.ResourceSystem, down.Handle, up.Handle, rsys.FramebufferWidth, rsys.FramebufferHeight)
	if err != nil {
		return err
	}
	if err := rsys.ActivatePostPass(bloom); err != nil {
		bloom.Destroy()
		return err
	}
	sm.bloom = bloom
	return nil
}

// ApplyConfig applies the settings that can change while running.
func (sm *SystemManager) ApplyConfig(cfg *config.Config) error {
	if err := core.SetLogLevel(cfg.Logging.Level); err != nil {
		return err
	}
	sm.CameraSystem.GetDefault().ClearColour = cfg.Renderer.Clear()
	sm.RenderTargetSystem.SetFallbackColour(cfg.Renderer.Fallback())
	if err := sm.SetBloom(cfg.Renderer.Bloom); err != nil {
		return err
	}
	sm.Config = cfg
	return nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.RenderTargetSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	sm.bloom = nil
	if err := sm.ResourceSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
