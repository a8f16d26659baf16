package components

import (
	"testing"

	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/headless"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

const tolerance = 1e-4

func TestCameraLookAt(t *testing.T) {
	tests := []struct {
		name           string
		position, look math.Vec3
	}{
		{"down -z", math.NewVec3Zero(), math.NewVec3(0, 0, -10)},
		{"right", math.NewVec3Zero(), math.NewVec3(10, 0, 0)},
		{"behind", math.NewVec3(0, 2, 0), math.NewVec3(0, 2, 8)},
		{"oblique", math.NewVec3(1, 1, 1), math.NewVec3(3, 4, -5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera()
			c.SetPosition(tt.position)
			c.LookAt(tt.look)

			want := tt.look.Sub(tt.position)
			if got := c.Forward(); !got.Compare(want.Normalized(), tolerance) {
				t.Errorf("Forward() = %v, want %v", got, want.Normalized())
			}
			// the target sits straight ahead in view space
			inView := tt.look.Transform(c.GetView())
			if !inView.Compare(math.NewVec3(0, 0, -want.Length()), 1e-3) {
				t.Errorf("target in view space = %v", inView)
			}
		})
	}
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera()
	c.MoveForward(2)
	if !c.GetPosition().Compare(math.NewVec3(0, 0, -2), tolerance) {
		t.Errorf("MoveForward() position = %v", c.GetPosition())
	}
	c.MoveRight(1)
	c.MoveUp(3)
	if !c.GetPosition().Compare(math.NewVec3(1, 3, -2), tolerance) {
		t.Errorf("position = %v, want (1, 3, -2)", c.GetPosition())
	}

	c.Pitch(10)
	if got := c.GetEulerRotation().X; got > 1.56 {
		t.Errorf("Pitch() not clamped: %v", got)
	}

	c.Reset()
	if c.GetPosition() != math.NewVec3Zero() || c.IsDirty {
		t.Errorf("Reset() left state behind")
	}
}

type recordingDependency struct {
	backend  *headless.Backend
	resolved []int
}

func (d *recordingDependency) TryResolve() {
	d.resolved = append(d.resolved, len(d.backend.Commands()))
}

func TestCameraViewFrameOrder(t *testing.T) {
	backend := headless.New()
	r := renderer.NewRenderer(backend)
	if err := r.Initialize("camera-test", 640, 480); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	sc := scene.NewRenderScene(r)
	dep := &recordingDependency{backend: backend}
	sc.AttachRenderTarget(dep)
	mesh := &metadata.Mesh{Handle: 1, VertexCount: 3}
	sc.Append(batch.NewDrawInstance(batch.NewDrawState(1, mesh, nil), math.TransformCreate(), true))

	c := NewCamera()
	c.ClearColour = math.NewVec4(0.2, 0.3, 0.4, 1)
	fb := &metadata.Framebuffer{Handle: 7, Width: 128, Height: 64}
	c.ViewFrame(r, fb, sc)

	if len(dep.resolved) != 1 || dep.resolved[0] != 0 {
		t.Fatalf("dependency resolved at %v, want once before any command", dep.resolved)
	}
	want := []headless.CommandKind{
		headless.CmdBindFramebuffer,
		headless.CmdViewport,
		headless.CmdClear,
		headless.CmdCameraUniforms,
	}
	kinds := backend.Kinds()
	for i, k := range want {
		if i >= len(kinds) || kinds[i] != k {
			t.Fatalf("commands = %v, want prefix %v", kinds, want)
		}
	}
	cmds := backend.Commands()
	if cmds[0].Framebuffer != 7 {
		t.Errorf("bound framebuffer = %d, want 7", cmds[0].Framebuffer)
	}
	if cmds[1].Width != 128 || cmds[1].Height != 64 {
		t.Errorf("viewport = %dx%d, want 128x64", cmds[1].Width, cmds[1].Height)
	}
	if cmds[2].Colour != c.ClearColour || cmds[2].ClearFlags != metadata.CLEAR_COLOUR_BUFFER_FLAG|metadata.CLEAR_DEPTH_BUFFER_FLAG {
		t.Errorf("clear = %+v", cmds[2])
	}
	if n := len(backend.Draws()); n != 1 {
		t.Errorf("draws = %d, want 1", n)
	}
}
