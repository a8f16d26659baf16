package systems

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/spaghettifunk/oncue/engine/config"
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/headless"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/target"
)

func newTestManager(t *testing.T, mutate func(*config.Config)) (*SystemManager, *headless.Backend) {
	t.Helper()
	cfg := config.Default()
	cfg.Application.Width = 320
	cfg.Application.Height = 200
	if mutate != nil {
		mutate(cfg)
	}
	backend := headless.New()
	sm, err := NewSystemManager(cfg, backend)
	if err != nil {
		t.Fatalf("NewSystemManager() error = %v", err)
	}
	if err := sm.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		if err := sm.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return sm, backend
}

func TestResourceSystemRegistry(t *testing.T) {
	r := renderer.NewRenderer(headless.New())
	rs, err := NewResourceSystem(&ResourceSystemConfig{MaxResourceCount: 2}, r)
	if err != nil {
		t.Fatalf("NewResourceSystem() error = %v", err)
	}

	a, err := rs.RegisterPipeline("a")
	if err != nil {
		t.Fatalf("RegisterPipeline() error = %v", err)
	}
	again, _ := rs.RegisterPipeline("a")
	if again != a {
		t.Errorf("registering a known name created a new pipeline")
	}
	if _, err := rs.RegisterPipeline("b"); err != nil {
		t.Fatalf("RegisterPipeline(b) error = %v", err)
	}
	if _, err := rs.RegisterPipeline("c"); !errors.Is(err, core.ErrNoFreeSlot) {
		t.Errorf("RegisterPipeline over the limit error = %v", err)
	}
	if _, err := rs.Pipeline("missing"); !errors.Is(err, core.ErrUnknownResource) {
		t.Errorf("Pipeline(missing) error = %v", err)
	}

	m, err := rs.RegisterMesh("quad", 4, 6)
	if err != nil {
		t.Fatalf("RegisterMesh() error = %v", err)
	}
	if !m.HasElements || m.NaturalDrawCount() != 6 {
		t.Errorf("mesh = %+v, want indexed with 6 elements", m)
	}
	if got, _ := rs.Mesh("quad"); got != m {
		t.Errorf("Mesh(quad) = %v", got)
	}

	if _, err := NewResourceSystem(&ResourceSystemConfig{}, r); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("NewResourceSystem(zero) error = %v", err)
	}
}

func TestResourceSystemFramebuffers(t *testing.T) {
	r := renderer.NewRenderer(headless.New())
	rs, _ := NewResourceSystem(&ResourceSystemConfig{MaxResourceCount: 16}, r)

	fb, err := rs.CreateFramebuffer("", 64, 32, []metadata.AttachmentConfig{
		{Type: metadata.ATTACHMENT_TYPE_COLOUR},
		{Type: metadata.ATTACHMENT_TYPE_DEPTH, Format: metadata.TextureFormatDepth24Stencil8},
	})
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	if _, err := uuid.Parse(fb.Name); err != nil {
		t.Errorf("generated name %q is not a uuid: %v", fb.Name, err)
	}
	if fb.Handle == metadata.DefaultFramebuffer {
		t.Errorf("framebuffer has no handle")
	}
	if n := rs.Count(metadata.ResourceTypeTexture); n != 2 {
		t.Errorf("textures = %d, want 2 attachments", n)
	}
	colour := fb.ColourAttachment(0)
	if colour == nil || !colour.HasFlag(metadata.TextureFlagIsWriteable) {
		t.Errorf("colour attachment = %+v", colour)
	}

	if err := rs.DestroyFramebuffer(fb); err != nil {
		t.Fatalf("DestroyFramebuffer() error = %v", err)
	}
	if n := rs.Count(metadata.ResourceTypeTexture); n != 0 {
		t.Errorf("textures after destroy = %d", n)
	}
	if err := rs.DestroyFramebuffer(fb); !errors.Is(err, core.ErrUnknownResource) {
		t.Errorf("second DestroyFramebuffer() error = %v", err)
	}

	if _, err := rs.CreateFramebuffer("broken", 0, 32, nil); err == nil {
		t.Errorf("zero sized framebuffer created")
	}
}

func TestRenderTargetSystem(t *testing.T) {
	sm, _ := newTestManager(t, func(c *config.Config) { c.Renderer.MaxRenderTargets = 2 })
	ts := sm.RenderTargetSystem
	cam := components.NewCamera()

	a, err := ts.Create("a", 64, 64, cam, sm.NewScene())
	if err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}
	if a.FallbackColour != sm.Config.Renderer.Fallback() {
		t.Errorf("fallback colour = %v", a.FallbackColour)
	}
	if _, err := ts.Create("a", 64, 64, cam, sm.NewScene()); !errors.Is(err, core.ErrTargetExists) {
		t.Errorf("duplicate Create() error = %v", err)
	}
	if _, err := ts.Create("b", 64, 64, cam, sm.NewScene()); err != nil {
		t.Fatalf("Create(b) error = %v", err)
	}
	if _, err := ts.Create("c", 64, 64, cam, sm.NewScene()); !errors.Is(err, core.ErrNoFreeSlot) {
		t.Errorf("Create over the limit error = %v", err)
	}

	a.TryResolve()
	if a.State() != target.Resolved {
		t.Fatalf("State() = %v", a.State())
	}
	ts.ResetAll()
	for _, rt := range ts.Targets() {
		if rt.State() != target.Unresolved {
			t.Errorf("%s = %v after ResetAll", rt.Name, rt.State())
		}
	}

	if err := ts.Destroy("a"); err != nil {
		t.Fatalf("Destroy(a) error = %v", err)
	}
	if _, err := ts.Get("a"); !errors.Is(err, core.ErrUnknownResource) {
		t.Errorf("Get(destroyed) error = %v", err)
	}
	if _, err := ts.Create("c", 64, 64, cam, sm.NewScene()); err != nil {
		t.Errorf("Create after Destroy error = %v", err)
	}

	magenta := math.NewVec4(1, 0, 1, 1)
	ts.SetFallbackColour(magenta)
	for _, rt := range ts.Targets() {
		if rt.FallbackColour != magenta {
			t.Errorf("%s fallback = %v", rt.Name, rt.FallbackColour)
		}
	}
}

func TestRendererSystemFrame(t *testing.T) {
	sm, backend := newTestManager(t, nil)
	rs := sm.ResourceSystem
	pipe, _ := rs.RegisterPipeline("lit")
	mesh, _ := rs.RegisterMesh("cube", 24, 36)

	// a mirror showing the main scene, which in turn shows the mirror
	main := sm.NewScene()
	mirrorCam := components.NewCamera()
	mirror, err := sm.RenderTargetSystem.Create("mirror", 64, 64, mirrorCam, main)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	main.AttachRenderTarget(mirror)
	state := batch.NewDrawState(pipe.Handle, mesh, []metadata.TextureHandle{mirror.Texture(0)})
	main.Append(batch.NewDrawInstance(state, math.TransformCreate(), true))

	cam := sm.CameraSystem.GetDefault()
	for frame := 0; frame < 3; frame++ {
		if err := sm.RendererSystem.Frame(cam, main, 1.0/60.0); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}

		cmds := backend.Commands()
		if cmds[0].Kind != headless.CmdBeginFrame || cmds[len(cmds)-1].Kind != headless.CmdEndFrame {
			t.Fatalf("frame %d is not bracketed: %v", frame, backend.Kinds())
		}
		// mirror then screen, each with one draw
		var binds []metadata.FramebufferHandle
		for _, c := range backend.Filter(headless.CmdBindFramebuffer) {
			binds = append(binds, c.Framebuffer)
		}
		if len(binds) != 3 || binds[0] != mirror.Framebuffer.Handle || binds[1] != mirror.Framebuffer.Handle || binds[2] != metadata.DefaultFramebuffer {
			t.Errorf("frame %d framebuffer binds = %v", frame, binds)
		}
		if mirror.Renders() != 1 || mirror.Clears() != 1 {
			t.Errorf("frame %d mirror rendered %d cleared %d", frame, mirror.Renders(), mirror.Clears())
		}
		if n := len(backend.Draws()); n != 2 {
			t.Errorf("frame %d draws = %d, want 2", frame, n)
		}
		if got := sm.RendererSystem.Metrics().LastDrawCalls; got != 2 {
			t.Errorf("frame %d metrics draw calls = %d", frame, got)
		}
	}
	if got := sm.RendererSystem.Metrics().TotalFrames; got != 3 {
		t.Errorf("TotalFrames = %d, want 3", got)
	}
}

func TestRendererSystemPostPasses(t *testing.T) {
	sm, backend := newTestManager(t, func(c *config.Config) { c.Renderer.Bloom = true })
	main := sm.NewScene()
	cam := sm.CameraSystem.GetDefault()

	sm.RendererSystem.Gizmos().DrawLine(math.NewVec3Zero(), math.NewVec3One(), math.NewVec3One(), math.NewVec3One())
	if err := sm.RendererSystem.Frame(cam, main, 0); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	binds := backend.Filter(headless.CmdBindFramebuffer)
	if binds[0].Framebuffer == metadata.DefaultFramebuffer {
		t.Errorf("scene drawn straight to the screen with a post pass active")
	}
	blits := backend.Filter(headless.CmdBlit)
	if len(blits) != 1 || blits[0].Framebuffer != metadata.DefaultFramebuffer || blits[0].Source != binds[0].Framebuffer {
		t.Errorf("blits = %+v, want scene buffer to screen", blits)
	}
	lines := 0
	for _, d := range backend.Draws() {
		if d.Topology == metadata.TopologyLines {
			lines++
		}
	}
	if lines != 1 {
		t.Errorf("gizmo draws = %d, want 1", lines)
	}

	if err := sm.ApplyConfig(func() *config.Config {
		c := *sm.Config
		c.Renderer.Bloom = false
		return &c
	}()); err != nil {
		t.Fatalf("ApplyConfig() error = %v", err)
	}
	backend.Reset()
	if err := sm.RendererSystem.Frame(cam, main, 0); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if n := backend.Count(headless.CmdBlit); n != 0 {
		t.Errorf("blits after disabling bloom = %d", n)
	}
	if binds := backend.Filter(headless.CmdBindFramebuffer); len(binds) != 1 || binds[0].Framebuffer != metadata.DefaultFramebuffer {
		t.Errorf("binds without post passes = %+v", binds)
	}
}

func TestRendererSystemResize(t *testing.T) {
	sm, backend := newTestManager(t, func(c *config.Config) { c.Renderer.Bloom = true })
	if err := sm.RendererSystem.OnResize(800, 600); err != nil {
		t.Fatalf("OnResize() error = %v", err)
	}
	if w, h := backend.Size(); w != 800 || h != 600 {
		t.Errorf("backend size = %dx%d", w, h)
	}
	if w, h := sm.bloom.LevelSize(0); w != 400 || h != 300 {
		t.Errorf("bloom level 0 = %dx%d, want 400x300", w, h)
	}
	if err := sm.RendererSystem.OnResize(0, 0); err != nil {
		t.Errorf("OnResize(0, 0) error = %v", err)
	}
	if sm.RendererSystem.FramebufferWidth != 800 {
		t.Errorf("minimized resize changed the size")
	}
}

func TestCameraSystem(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1})
	if err != nil {
		t.Fatalf("NewCameraSystem() error = %v", err)
	}
	a, err := cs.Acquire("a")
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	if again, _ := cs.Acquire("a"); again != a {
		t.Errorf("Acquire(a) twice returned different cameras")
	}
	if _, err := cs.Acquire("b"); !errors.Is(err, core.ErrNoFreeSlot) {
		t.Errorf("Acquire(b) error = %v", err)
	}
	cs.Release("a")
	cs.Release("a")
	if _, err := cs.Acquire("b"); err != nil {
		t.Errorf("Acquire(b) after release error = %v", err)
	}
	if def, _ := cs.Acquire(components.DEFAULT_CAMERA_NAME); def != cs.GetDefault() {
		t.Errorf("default camera lookup mismatch")
	}
}
