package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/oncue/engine/config"
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isSuspended   bool
	config        *config.Config
	watcher       *config.Watcher
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64
}

func New(g *Game, backend renderer.RendererBackend) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = &ApplicationConfig{}
	}
	cfg, err := g.ApplicationConfig.load()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := core.SetLogLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}

	sm, err := systems.NewSystemManager(cfg, backend)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        cfg,
		systemManager: sm,
		clock:         core.NewClock(),
		width:         cfg.Application.Width,
		height:        cfg.Application.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	app := e.gameInstance.ApplicationConfig
	if app.WatchConfig && app.ConfigPath != "" {
		w, err := config.NewWatcher(app.ConfigPath)
		if err != nil {
			// keep running on the loaded configuration
			core.LogWarn("config hot reload disabled: %s", err)
		} else {
			e.watcher = w
		}
	}

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (%dx%d)", e.config.Application.Name, e.width, e.height)
	return nil
}

// Run drives frames until ctx is cancelled, the configured frame limit is
// reached or the game fails.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("func Run - engine is not initialized: %w", core.ErrInvalidConfig)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for {
		select {
		case <-ctx.Done():
			core.LogInfo("run cancelled after %d frames, shutting down.", e.frameCount)
			return nil
		default:
		}
		if limit := e.config.Application.MaxFrames; limit > 0 && e.frameCount >= limit {
			core.LogInfo("frame limit of %d reached, shutting down.", limit)
			return nil
		}

		e.applyPendingConfig()
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.frame(delta); err != nil {
			return err
		}
		e.frameCount++

		// Give the remaining frame time back to the OS.
		if fps := e.config.Application.TargetFPS; fps > 0 {
			target := time.Second / time.Duration(fps)
			if remaining := target - time.Since(frameStart); remaining > time.Millisecond {
				time.Sleep(remaining - time.Millisecond)
			}
		}

		e.lastTime = currentTime
	}
}

func (e *Engine) frame(delta float64) error {
	if err := e.gameInstance.FnUpdate(delta); err != nil {
		core.LogError("Game update failed, shutting down: %s", err)
		return err
	}
	cam, sc, err := e.gameInstance.FnRender(delta)
	if err != nil {
		core.LogError("Game render failed, shutting down: %s", err)
		return err
	}
	if cam == nil {
		cam = e.systemManager.CameraSystem.GetDefault()
	}
	if sc == nil {
		return fmt.Errorf("func frame - game rendered no scene: %w", core.ErrInvalidConfig)
	}
	return e.systemManager.RendererSystem.Frame(cam, sc, delta)
}

// applyPendingConfig picks up a configuration reloaded since the last frame.
func (e *Engine) applyPendingConfig() {
	if e.watcher == nil {
		return
	}
	select {
	case cfg := <-e.watcher.Updates():
		// the window size and the frame limits only apply at startup
		cfg.Application = e.config.Application
		if err := e.systemManager.ApplyConfig(cfg); err != nil {
			core.LogError("failed to apply reloaded config: %s", err)
			return
		}
		e.config = cfg
	case err := <-e.watcher.Errors():
		core.LogWarn("config watcher: %s", err)
	default:
	}
}

// OnResize forwards a new window size. A zero size suspends rendering until
// the next non-zero size.
func (e *Engine) OnResize(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}
	return e.systemManager.RendererSystem.OnResize(width, height)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			core.LogWarn(err.Error())
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// FrameCount returns the number of frames run so far.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Config() *config.Config {
	return e.config
}
