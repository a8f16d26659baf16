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

func TestModelRendererShowHide(t *testing.T) {
	backend := headless.New()
	r := renderer.NewRenderer(backend)
	if err := r.Initialize("components-test", 64, 64); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	sc := scene.NewRenderScene(r)
	mesh := &metadata.Mesh{Handle: 1, VertexCount: 3}
	state := batch.NewDrawState(1, mesh, nil)

	a := NewModelRenderer(sc, state, nil, true)
	b := NewModelRenderer(sc, state, math.TransformFromPosition(math.NewVec3(1, 0, 0)), true)
	if a.Visible() || sc.Contains(a.Instance()) {
		t.Fatalf("new renderer is visible")
	}

	a.Show()
	a.Show()
	b.Show()
	if !a.Visible() || !sc.Contains(a.Instance()) {
		t.Errorf("Show() did not register the instance")
	}

	sc.Frame(math.NewMat4Identity())
	draws := backend.Draws()
	if len(draws) != 1 || draws[0].Kind != headless.CmdDrawInstanced || draws[0].Instances != 2 {
		t.Errorf("draws = %+v, want one instanced draw of 2", draws)
	}

	if err := a.Hide(); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if err := a.Hide(); err != nil {
		t.Errorf("second Hide() error = %v", err)
	}
	if a.Visible() || sc.Contains(a.Instance()) {
		t.Errorf("Hide() left the instance registered")
	}

	backend.Reset()
	sc.Frame(math.NewMat4Identity())
	draws = backend.Draws()
	if len(draws) != 1 || draws[0].Kind != headless.CmdDraw {
		t.Errorf("draws after Hide = %+v, want one single draw", draws)
	}
}
