package testbed

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/oncue/engine"
	modelcomponents "github.com/spaghettifunk/oncue/engine/components"
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/components"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
	"github.com/spaghettifunk/oncue/engine/renderer/target"
)

const (
	fieldSize  = 200
	paneCount  = 12
	portalSize = 256

	tintLocation  int32 = 8
	alphaLocation int32 = 9
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera
	world       *scene.RenderScene

	field   []*modelcomponents.ModelRenderer
	panes   []*modelcomponents.ModelRenderer
	portals [2]*target.RenderTarget
	// portal quads, each showing the other portal's view
	doors [2]*modelcomponents.ModelRenderer

	rng     *rand.Rand
	elapsed float64
	width   uint32
	height  uint32
}

func NewTestGame(app *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State: &gameState{
				rng: rand.New(rand.NewSource(1)),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers ")
	}
	state := g.State.(*gameState)
	resources := g.SystemManager.ResourceSystem

	lit, err := resources.RegisterPipeline("testbed.lit")
	if err != nil {
		return err
	}
	glass, err := resources.RegisterPipeline("testbed.glass")
	if err != nil {
		return err
	}
	cube, err := resources.RegisterMesh("testbed.cube", 24, 36)
	if err != nil {
		return err
	}
	quad, err := resources.RegisterMesh("testbed.quad", 4, 6)
	if err != nil {
		return err
	}
	crate, err := resources.CreateWriteableTexture("testbed.crate", 64, 64, metadata.TextureFormatRGBA8)
	if err != nil {
		return err
	}

	state.WorldCamera = g.SystemManager.CameraSystem.GetDefault()
	state.WorldCamera.SetPosition(math.NewVec3(0, 15, 40))
	state.WorldCamera.LookAt(math.NewVec3Zero())
	state.world = g.SystemManager.NewScene()

	// Opaque field. Every cube shares one state so they collapse into
	// instanced draws.
	crateState := batch.NewDrawState(lit.Handle, cube, []metadata.TextureHandle{crate.Handle})
	for i := 0; i < fieldSize; i++ {
		pos := math.NewVec3(state.rng.Float32()*60-30, 0, state.rng.Float32()*60-30)
		m := modelcomponents.NewModelRenderer(state.world, crateState, math.TransformFromPosition(pos), true,
			metadata.ParamOverride{Location: tintLocation, Value: metadata.Float3(state.rng.Float32(), state.rng.Float32(), state.rng.Float32())})
		m.Show()
		state.field = append(state.field, m)
	}

	// Glass panes, sorted back to front every frame.
	paneState := batch.NewDrawState(glass.Handle, quad, nil)
	for i := 0; i < paneCount; i++ {
		pos := math.NewVec3(float32(i%4)*6-9, 3, float32(i/4)*-8)
		m := modelcomponents.NewModelRenderer(state.world, paneState, math.TransformFromPosition(pos), false,
			metadata.ParamOverride{Location: alphaLocation, Value: metadata.Float1(0.25 + 0.05*float32(i))})
		m.Show()
		state.panes = append(state.panes, m)
	}

	// Two portals looking at each other. Both show the world scene, which
	// samples both portals, so each one meets itself once per frame and
	// shows the fallback colour there.
	for i, name := range []string{"portal.a", "portal.b"} {
		cam, err := g.SystemManager.CameraSystem.Acquire(name)
		if err != nil {
			return err
		}
		rt, err := g.SystemManager.RenderTargetSystem.Create(name, portalSize, portalSize, cam, state.world)
		if err != nil {
			return err
		}
		state.world.AttachRenderTarget(rt)
		state.portals[i] = rt
	}
	for i, rt := range state.portals {
		other := state.portals[1-i]
		x := float32(i)*24 - 12
		rt.Camera.SetPosition(math.NewVec3(x, 4, 10))
		rt.Camera.LookAt(math.NewVec3(-x, 4, 10))

		doorState := batch.NewDrawState(glass.Handle, quad, []metadata.TextureHandle{other.Texture(0)})
		door := modelcomponents.NewModelRenderer(state.world, doorState, math.TransformFromPosition(math.NewVec3(x, 4, 10)), true)
		door.Show()
		state.doors[i] = door
	}

	core.LogInfo("testbed ready: %d cubes, %d panes, %d portals", len(state.field), len(state.panes), len(state.portals))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime

	spin := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), float32(0.5*deltaTime), false)
	for _, m := range state.field {
		m.Transform.Rotate(spin)
	}

	// orbit the world camera so the panes change order
	angle := float32(state.elapsed * 0.2)
	state.WorldCamera.SetPosition(math.NewVec3(40*math.Sin(angle), 15, 40*math.Cos(angle)))
	state.WorldCamera.LookAt(math.NewVec3Zero())

	// blink one pane to exercise removal
	pane := state.panes[0]
	if int(state.elapsed)%2 == 0 {
		pane.Show()
	} else if err := pane.Hide(); err != nil {
		return err
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) (*components.Camera, *scene.RenderScene, error) {
	state := g.State.(*gameState)

	gz := g.SystemManager.RendererSystem.Gizmos()
	gz.DrawBox(math.NewVec3(-30, 0, -30), math.NewVec3(30, 2, 30), math.NewVec3(0, 1, 0))
	for _, rt := range state.portals {
		p := rt.Camera.GetPosition()
		gz.DrawLine(p, p.Add(rt.Camera.Forward().MulScalar(3)), math.NewVec3(1, 0, 0), math.NewVec3(1, 1, 0))
	}

	if sm := g.SystemManager.RendererSystem.Metrics(); sm.TotalFrames > 0 && sm.TotalFrames%120 == 0 {
		fps, ms := sm.Frame()
		stats := state.world.Stats()
		core.LogInfo("frame %d: %.1f fps, %.3f ms, %d draw calls, %d opaque groups, %d transparent",
			sm.TotalFrames, fps, ms, sm.LastDrawCalls, stats.OpaqueGroups, stats.TransparentInstances)
	}
	return state.WorldCamera, state.world, nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	for _, rt := range state.portals {
		if rt == nil {
			continue
		}
		if err := state.world.DetachRenderTarget(rt); err != nil {
			return err
		}
		g.SystemManager.CameraSystem.Release(rt.Name)
	}
	return nil
}
