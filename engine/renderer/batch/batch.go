package batch

import (
	"fmt"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// DefaultBatchCapacity bounds the instances of one submission, matching the
// size of the per-instance uniform arrays in the shaders.
const DefaultBatchCapacity uint32 = 256

type paramBuffer struct {
	kind   metadata.ParamKind
	floats []float32
	ints   []int32
	count  int
}

func (p *paramBuffer) push(v metadata.ParamValue) {
	n := v.Kind.Components()
	if v.Kind.IsFloat() {
		p.floats = append(p.floats, v.F[:n]...)
	} else {
		p.ints = append(p.ints, v.I[:n]...)
	}
	p.count++
}

func (p *paramBuffer) reset() {
	p.floats = p.floats[:0]
	p.ints = p.ints[:0]
	p.count = 0
}

type uploadFunc func(r *renderer.Renderer, location int32, p *paramBuffer)

func uploadFloats(r *renderer.Renderer, location int32, p *paramBuffer) {
	r.SetUniformFloats(location, p.kind.Components(), p.floats)
}

func uploadInts(r *renderer.Renderer, location int32, p *paramBuffer) {
	r.SetUniformInts(location, p.kind.Components(), p.ints)
}

// one upload per parameter kind
var paramUploads = [metadata.ParamKindCount]uploadFunc{
	metadata.ParamFloat1: uploadFloats,
	metadata.ParamFloat2: uploadFloats,
	metadata.ParamFloat3: uploadFloats,
	metadata.ParamFloat4: uploadFloats,
	metadata.ParamInt1:   uploadInts,
	metadata.ParamInt2:   uploadInts,
	metadata.ParamInt3:   uploadInts,
	metadata.ParamInt4:   uploadInts,
}

/**
 * @brief A bounded accumulation buffer bound to exactly one DrawState. It
 * collects per-instance model matrices and parameter values and submits them
 * as one instanced draw, flushing on its own whenever capacity is reached.
 */
type DrawBatch struct {
	r     *renderer.Renderer
	state DrawState

	capacity      uint32
	instanceCount uint32
	modelLocation int32

	matrices   []math.Mat4
	params     map[int32]*paramBuffer
	paramOrder []int32

	flushes uint32
}

// NewDrawBatch creates a batch for state. A capacity of 0 selects DefaultBatchCapacity.
func NewDrawBatch(r *renderer.Renderer, state DrawState, capacity uint32) *DrawBatch {
	if capacity == 0 {
		capacity = DefaultBatchCapacity
	}
	return &DrawBatch{
		r:             r,
		state:         state,
		capacity:      capacity,
		modelLocation: r.UniformLocation(state.pipeline, metadata.MODEL_MATRIX_UNIFORM_NAME),
		matrices:      make([]math.Mat4, 0, capacity),
		params:        make(map[int32]*paramBuffer),
	}
}

func (b *DrawBatch) State() DrawState {
	return b.state
}

func (b *DrawBatch) Capacity() uint32 {
	return b.capacity
}

// Len is the number of instances waiting for the next flush.
func (b *DrawBatch) Len() uint32 {
	return b.instanceCount
}

// Flushes counts the instanced submissions this batch has issued.
func (b *DrawBatch) Flushes() uint32 {
	return b.flushes
}

func (b *DrawBatch) checkState(inst *DrawInstance, fn string) {
	if inst.state != b.state {
		panic(fmt.Errorf("func %s - instance %v does not match batch %v: %w", fn, inst.state, b.state, core.ErrDrawStateMismatch))
	}
}

// Append queues the instance. Reaching capacity flushes before returning, so
// the buffers never hold more than capacity instances.
func (b *DrawBatch) Append(inst *DrawInstance) {
	b.checkState(inst, "Append")

	if inst.Transform != nil {
		b.matrices = append(b.matrices, inst.Transform.GetWorld())
	}
	for _, p := range inst.Params {
		buf, ok := b.params[p.Location]
		if !ok {
			buf = &paramBuffer{kind: p.Value.Kind}
			b.params[p.Location] = buf
			b.paramOrder = append(b.paramOrder, p.Location)
		}
		buf.push(p.Value)
	}
	b.instanceCount++

	if b.instanceCount == b.capacity {
		b.Flush()
	}
}

// DrawSingle draws one instance without instancing. Pending instances are not touched.
func (b *DrawBatch) DrawSingle(inst *DrawInstance) {
	b.checkState(inst, "DrawSingle")

	b.r.MeshBind(b.state.mesh)
	if inst.Transform != nil && b.modelLocation != metadata.InvalidUniformLocation {
		b.r.SetUniformMat4(b.modelLocation, []math.Mat4{inst.Transform.GetWorld()})
	}
	for _, p := range inst.Params {
		buf := paramBuffer{kind: p.Value.Kind}
		buf.push(p.Value)
		b.upload(p.Location, &buf)
	}
	b.r.Draw(metadata.TopologyTriangles, b.state.drawCount, b.state.indexed)
}

// Flush submits every pending instance as one instanced draw and resets the
// buffers. It does nothing when the batch is empty.
func (b *DrawBatch) Flush() {
	if b.instanceCount == 0 {
		return
	}

	b.r.MeshBind(b.state.mesh)
	if b.modelLocation != metadata.InvalidUniformLocation {
		b.r.SetUniformMat4(b.modelLocation, b.matrices)
	}
	for _, loc := range b.paramOrder {
		b.upload(loc, b.params[loc])
	}
	b.r.DrawInstanced(metadata.TopologyTriangles, b.state.drawCount, b.instanceCount, b.state.indexed)
	b.flushes++

	b.instanceCount = 0
	b.matrices = b.matrices[:0]
	for _, loc := range b.paramOrder {
		b.params[loc].reset()
	}
}

func (b *DrawBatch) upload(location int32, p *paramBuffer) {
	if p.count == 0 {
		return
	}
	if int(p.kind) >= len(paramUploads) {
		core.LogWarn("unknown parameter kind %s at location %d", p.kind, location)
		return
	}
	paramUploads[p.kind](b.r, location, p)
}
