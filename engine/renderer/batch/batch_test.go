package batch

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/headless"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

func newTestRenderer(t *testing.T) (*renderer.Renderer, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	r := renderer.NewRenderer(backend)
	if err := r.Initialize("batch-test", 64, 64); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return r, backend
}

var (
	quad = &metadata.Mesh{Handle: 1, Name: "quad", VertexCount: 4, ElementCount: 6, HasElements: true}
	tri  = &metadata.Mesh{Handle: 2, Name: "tri", VertexCount: 3}
)

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		if rec == nil {
			t.Fatalf("expected a panic wrapping %v", target)
		}
		err, ok := rec.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want an error wrapping %v", rec, target)
		}
	}()
	fn()
}

func TestNewDrawStateDrawCount(t *testing.T) {
	tests := []struct {
		name string
		mesh *metadata.Mesh
		opts []DrawStateOption
		want uint32
	}{
		{"indexed mesh uses element count", quad, nil, 6},
		{"plain mesh uses vertex count", tri, nil, 3},
		{"override", tri, []DrawStateOption{WithDrawCount(36)}, 36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDrawState(1, tt.mesh, nil, tt.opts...)
			if got := s.DrawCount(); got != tt.want {
				t.Errorf("DrawCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDrawStateEquality(t *testing.T) {
	a := NewDrawState(1, quad, []metadata.TextureHandle{3, 4})
	b := NewDrawState(1, quad, []metadata.TextureHandle{3, 4})
	swapped := NewDrawState(1, quad, []metadata.TextureHandle{4, 3})
	fewer := NewDrawState(1, quad, []metadata.TextureHandle{3})
	other := NewDrawState(2, quad, []metadata.TextureHandle{3, 4})

	if a != b {
		t.Errorf("states built from the same inputs differ: %v vs %v", a, b)
	}
	if a == swapped {
		t.Errorf("texture order must be part of the identity")
	}
	if a == fewer {
		t.Errorf("texture count must be part of the identity")
	}
	if a == other {
		t.Errorf("pipeline must be part of the identity")
	}

	m := map[DrawState]int{a: 1}
	m[b]++
	if m[a] != 2 || len(m) != 1 {
		t.Errorf("equal states must share a map key, got %v", m)
	}
	if got := a.Textures(); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("Textures() = %v, want [3 4]", got)
	}
}

func TestNewDrawStateInvalid(t *testing.T) {
	expectPanic(t, core.ErrInvalidDrawState, func() {
		NewDrawState(1, nil, nil)
	})
	expectPanic(t, core.ErrInvalidDrawState, func() {
		NewDrawState(1, quad, make([]metadata.TextureHandle, MaxTextureBinds+1))
	})
}

func TestDrawBatchCapacity(t *testing.T) {
	tests := []struct {
		n, capacity uint32
	}{
		{0, 4},
		{1, 4},
		{4, 4},
		{5, 4},
		{9, 4},
		{600, 0},
		{512, 256},
	}
	for _, tt := range tests {
		r, backend := newTestRenderer(t)
		state := NewDrawState(1, quad, nil)
		b := NewDrawBatch(r, state, tt.capacity)
		capacity := b.Capacity()

		for i := uint32(0); i < tt.n; i++ {
			b.Append(NewDrawInstance(state, math.TransformCreate(), true))
			if b.Len() >= capacity {
				t.Fatalf("n=%d: Len() = %d after append, capacity %d", tt.n, b.Len(), capacity)
			}
		}
		b.Flush()

		want := int((tt.n + capacity - 1) / capacity)
		draws := backend.Filter(headless.CmdDrawInstanced)
		if len(draws) != want {
			t.Errorf("n=%d c=%d: %d flushes, want %d", tt.n, capacity, len(draws), want)
		}
		var total uint32
		for _, d := range draws {
			if d.Instances > capacity {
				t.Errorf("n=%d c=%d: flush of %d instances exceeds capacity", tt.n, capacity, d.Instances)
			}
			total += d.Instances
		}
		if total != tt.n {
			t.Errorf("n=%d: %d instances submitted", tt.n, total)
		}
		for _, u := range backend.Filter(headless.CmdUniformMat4) {
			if uint32(len(u.Matrices)) > capacity {
				t.Errorf("n=%d: uploaded %d matrices in one flush", tt.n, len(u.Matrices))
			}
		}
	}
}

func TestDrawBatchFlushEmpty(t *testing.T) {
	r, backend := newTestRenderer(t)
	b := NewDrawBatch(r, NewDrawState(1, quad, nil), 0)
	b.Flush()
	if got := len(backend.Commands()); got != 0 {
		t.Errorf("empty flush recorded %d commands: %v", got, backend.Kinds())
	}
}

func TestDrawBatchStateMismatch(t *testing.T) {
	r, _ := newTestRenderer(t)
	b := NewDrawBatch(r, NewDrawState(1, quad, nil), 0)
	stranger := NewDrawInstance(NewDrawState(2, quad, nil), nil, true)

	expectPanic(t, core.ErrDrawStateMismatch, func() { b.Append(stranger) })
	expectPanic(t, core.ErrDrawStateMismatch, func() { b.DrawSingle(stranger) })
}

func TestDrawBatchDrawSingle(t *testing.T) {
	r, backend := newTestRenderer(t)
	state := NewDrawState(1, quad, nil)
	b := NewDrawBatch(r, state, 0)

	inst := NewDrawInstance(state, math.TransformFromPosition(math.NewVec3(1, 2, 3)), true,
		metadata.ParamOverride{Location: 7, Value: metadata.Float4(1, 0, 0, 1)})
	b.DrawSingle(inst)

	draws := backend.Draws()
	if len(draws) != 1 || draws[0].Kind != headless.CmdDraw {
		t.Fatalf("draws = %v, want one plain draw", draws)
	}
	if draws[0].Count != 6 || !draws[0].Indexed {
		t.Errorf("draw count = %d indexed = %v, want 6 indexed", draws[0].Count, draws[0].Indexed)
	}
	mats := backend.Filter(headless.CmdUniformMat4)
	if len(mats) != 1 || len(mats[0].Matrices) != 1 {
		t.Fatalf("matrix uploads = %v, want one matrix", mats)
	}
	if p := mats[0].Matrices[0].Position(); p != math.NewVec3(1, 2, 3) {
		t.Errorf("model matrix position = %v", p)
	}
	floats := backend.Filter(headless.CmdUniformFloats)
	if len(floats) != 1 || floats[0].Location != 7 || floats[0].Components != 4 || len(floats[0].Floats) != 4 {
		t.Errorf("param uploads = %+v", floats)
	}
	if b.Len() != 0 {
		t.Errorf("DrawSingle must not queue the instance")
	}
}

func TestDrawBatchParams(t *testing.T) {
	r, backend := newTestRenderer(t)
	state := NewDrawState(1, tri, nil)
	b := NewDrawBatch(r, state, 0)

	for i := 0; i < 3; i++ {
		inst := NewDrawInstance(state, nil, true)
		inst.SetParam(5, metadata.Int1(int32(i)))
		inst.SetParam(2, metadata.Float2(float32(i), 1))
		b.Append(inst)
	}
	b.Flush()

	kinds := []headless.CommandKind{}
	for _, c := range backend.Commands() {
		kinds = append(kinds, c.Kind)
	}
	want := []headless.CommandKind{headless.CmdBindMesh, headless.CmdUniformInts, headless.CmdUniformFloats, headless.CmdDrawInstanced}
	if len(kinds) != len(want) {
		t.Fatalf("commands = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("commands = %v, want %v", kinds, want)
		}
	}

	ints := backend.Filter(headless.CmdUniformInts)[0]
	if ints.Location != 5 || len(ints.Ints) != 3 || ints.Ints[2] != 2 {
		t.Errorf("int upload = %+v", ints)
	}
	floats := backend.Filter(headless.CmdUniformFloats)[0]
	if floats.Components != 2 || len(floats.Floats) != 6 {
		t.Errorf("float upload = %+v", floats)
	}

	// buffers are reset after a flush
	backend.Reset()
	inst := NewDrawInstance(state, nil, true, metadata.ParamOverride{Location: 5, Value: metadata.Int1(9)})
	b.Append(inst)
	b.Append(inst)
	b.Flush()
	ints = backend.Filter(headless.CmdUniformInts)[0]
	if len(ints.Ints) != 2 || ints.Ints[0] != 9 {
		t.Errorf("second flush int upload = %+v", ints)
	}
	if n := backend.Count(headless.CmdUniformFloats); n != 0 {
		t.Errorf("stale float buffer uploaded %d times", n)
	}
}

func TestDrawBatchMissingModelUniform(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.MissingUniform(3, metadata.MODEL_MATRIX_UNIFORM_NAME)
	state := NewDrawState(3, quad, nil)
	b := NewDrawBatch(r, state, 0)

	b.Append(NewDrawInstance(state, math.TransformCreate(), true))
	b.Append(NewDrawInstance(state, math.TransformCreate(), true))
	b.Flush()
	b.DrawSingle(NewDrawInstance(state, math.TransformCreate(), true))

	if n := backend.Count(headless.CmdUniformMat4); n != 0 {
		t.Errorf("uploaded model matrices %d times without a model uniform", n)
	}
	if n := len(backend.Draws()); n != 2 {
		t.Errorf("draws = %d, want 2", n)
	}
}

func TestDrawInstanceViewDepth(t *testing.T) {
	state := NewDrawState(1, quad, nil)
	view := math.NewMat4LookAt(math.NewVec3Zero(), math.NewVec3(0, 0, -1), math.NewVec3(0, 1, 0))

	far := NewDrawInstance(state, math.TransformFromPosition(math.NewVec3(0, 0, -5)), false)
	near := NewDrawInstance(state, math.TransformFromPosition(math.NewVec3(0, 0, -2)), false)
	origin := NewDrawInstance(state, nil, false)

	if d := far.ViewDepth(view); d < 4.99 || d > 5.01 {
		t.Errorf("far depth = %f, want 5", d)
	}
	if d := near.ViewDepth(view); d < 1.99 || d > 2.01 {
		t.Errorf("near depth = %f, want 2", d)
	}
	if d := origin.ViewDepth(view); d != 0 {
		t.Errorf("depth without transform = %f, want 0", d)
	}
}
