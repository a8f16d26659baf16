package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/oncue/engine/config"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/headless"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

type testGame struct {
	*Game
	sc      *scene.RenderScene
	updates int
	resized [][2]uint32
	failAt  int
}

func newTestGame(app *ApplicationConfig) *testGame {
	g := &testGame{Game: &Game{ApplicationConfig: app}}
	g.FnInitialize = func() error {
		sm := g.SystemManager
		pipe, err := sm.ResourceSystem.RegisterPipeline("unlit")
		if err != nil {
			return err
		}
		mesh, err := sm.ResourceSystem.RegisterMesh("tri", 3, 0)
		if err != nil {
			return err
		}
		g.sc = sm.NewScene()
		state := batch.NewDrawState(pipe.Handle, mesh, nil)
		for i := 0; i < 4; i++ {
			g.sc.Append(batch.NewDrawInstance(state, math.TransformFromPosition(math.NewVec3(float32(i), 0, -5)), true))
		}
		return nil
	}
	g.FnUpdate = func(deltaTime float64) error {
		g.updates++
		if g.failAt > 0 && g.updates == g.failAt {
			return errors.New("update failed")
		}
		return nil
	}
	g.FnRender = func(deltaTime float64) (*components.Camera, *scene.RenderScene, error) {
		return nil, g.sc, nil
	}
	g.FnOnResize = func(width, height uint32) error {
		g.resized = append(g.resized, [2]uint32{width, height})
		return nil
	}
	return g
}

func newTestEngine(t *testing.T, g *testGame) (*Engine, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	backend.KeepHistory = true
	e, err := New(g.Game, backend)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		if err := e.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return e, backend
}

func testConfig(frames uint64) *config.Config {
	cfg := config.Default()
	cfg.Application.TargetFPS = 0
	cfg.Application.MaxFrames = frames
	cfg.Logging.Level = "error"
	return cfg
}

func TestEngineRunsFrameLimit(t *testing.T) {
	g := newTestGame(&ApplicationConfig{Config: testConfig(3)})
	e, backend := newTestEngine(t, g)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.FrameCount() != 3 || g.updates != 3 {
		t.Errorf("frames = %d updates = %d, want 3", e.FrameCount(), g.updates)
	}
	if n := backend.Count(headless.CmdBeginFrame); n != 3 {
		t.Errorf("BeginFrame = %d, want 3", n)
	}
	// four instances of one state, one instanced draw per frame
	for _, d := range backend.Draws() {
		if d.Kind != headless.CmdDrawInstanced || d.Instances != 4 {
			t.Errorf("draw = %+v, want instanced draw of 4", d)
		}
	}
	if len(g.resized) != 1 || g.resized[0] != [2]uint32{1280, 720} {
		t.Errorf("initial resize = %v", g.resized)
	}
}

func TestEngineStopsOnCancel(t *testing.T) {
	g := newTestGame(&ApplicationConfig{Config: testConfig(0)})
	e, _ := newTestEngine(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	g.FnUpdate = func(deltaTime float64) error {
		g.updates++
		if g.updates == 5 {
			cancel()
		}
		return nil
	}
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.FrameCount() != 5 {
		t.Errorf("frames = %d, want 5", e.FrameCount())
	}
}

func TestEngineGameFailure(t *testing.T) {
	g := newTestGame(&ApplicationConfig{Config: testConfig(10)})
	g.failAt = 2
	e, _ := newTestEngine(t, g)

	if err := e.Run(context.Background()); err == nil {
		t.Fatalf("Run() succeeded with a failing update")
	}
	if e.FrameCount() != 1 {
		t.Errorf("frames = %d, want 1", e.FrameCount())
	}
}

func TestEngineRunBeforeInitialize(t *testing.T) {
	g := newTestGame(&ApplicationConfig{Config: testConfig(1)})
	e, err := New(g.Game, headless.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Run(context.Background()); err == nil {
		t.Errorf("Run() before Initialize succeeded")
	}
}

func TestEngineResize(t *testing.T) {
	g := newTestGame(&ApplicationConfig{Config: testConfig(1)})
	e, backend := newTestEngine(t, g)

	if err := e.OnResize(0, 0); err != nil {
		t.Fatalf("OnResize(0, 0) error = %v", err)
	}
	if !e.isSuspended {
		t.Errorf("zero size did not suspend")
	}
	if err := e.OnResize(800, 600); err != nil {
		t.Fatalf("OnResize() error = %v", err)
	}
	if e.isSuspended {
		t.Errorf("resize did not resume")
	}
	if w, h := backend.Size(); w != 800 || h != 600 {
		t.Errorf("backend size = %dx%d", w, h)
	}
	if last := g.resized[len(g.resized)-1]; last != [2]uint32{800, 600} {
		t.Errorf("game resize = %v", last)
	}
}

func TestEngineConfigReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oncue.toml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("[application]\nmax_frames = 1\ntarget_fps = 0\n[logging]\nlevel = \"error\"\n")

	g := newTestGame(&ApplicationConfig{ConfigPath: path, WatchConfig: true})
	e, _ := newTestEngine(t, g)
	if e.watcher == nil {
		t.Fatalf("watcher not started")
	}

	write("[application]\nmax_frames = 99\n[renderer]\nfallback_colour = [1.0, 0.0, 1.0, 1.0]\n[logging]\nlevel = \"error\"\n")
	deadline := time.Now().Add(5 * time.Second)
	for e.Config().Renderer.FallbackColour[0] != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("reloaded config never applied")
		}
		e.applyPendingConfig()
		time.Sleep(10 * time.Millisecond)
	}
	if e.Config().Application.MaxFrames != 1 {
		t.Errorf("max_frames changed while running: %d", e.Config().Application.MaxFrames)
	}
	if got := e.systemManager.RenderTargetSystem.Config.FallbackColour; got != math.NewVec4(1, 0, 1, 1) {
		t.Errorf("render target fallback colour = %v", got)
	}
}
