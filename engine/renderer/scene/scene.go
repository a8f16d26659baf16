package scene

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/batch"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// Dependency is an off-screen view the scene samples from. It must be
// resolved before the scene is drawn.
type Dependency interface {
	TryResolve()
}

type opaqueGroup struct {
	batch     *batch.DrawBatch
	instances *instanceSet
}

type transparentGroup struct {
	batch *batch.DrawBatch
	refs  int
}

type transparentEntry struct {
	inst  *batch.DrawInstance
	seq   uint64
	depth float32
}

type SceneOption func(*RenderScene)

// WithBatchCapacity sets the capacity of every batch the scene creates.
func WithBatchCapacity(capacity uint32) SceneOption {
	return func(s *RenderScene) {
		s.capacity = capacity
	}
}

/**
 * @brief A set of draw instances composed into one frame. Opaque instances
 * are grouped by draw state and drawn in as few submissions as possible,
 * transparent ones are drawn back to front.
 *
 * Not safe for concurrent use: Append, Remove and Frame must all run on the
 * render thread.
 */
type RenderScene struct {
	r        *renderer.Renderer
	capacity uint32

	opaque      map[batch.DrawState]*opaqueGroup
	opaqueOrder []batch.DrawState

	transparent        map[*batch.DrawInstance]uint64
	transparentBatches map[batch.DrawState]*transparentGroup
	nextSeq            uint64
	sortBuf            []transparentEntry

	targets     map[Dependency]int
	targetOrder []Dependency
}

func NewRenderScene(r *renderer.Renderer, opts ...SceneOption) *RenderScene {
	s := &RenderScene{r: r}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Reset drops every registered instance and dependency.
func (s *RenderScene) Reset() {
	s.opaque = make(map[batch.DrawState]*opaqueGroup)
	s.opaqueOrder = nil
	s.transparent = make(map[*batch.DrawInstance]uint64)
	s.transparentBatches = make(map[batch.DrawState]*transparentGroup)
	s.sortBuf = nil
	s.targets = make(map[Dependency]int)
	s.targetOrder = nil
}

// Append registers the instance. Appending an instance twice is a no-op.
func (s *RenderScene) Append(inst *batch.DrawInstance) {
	state := inst.State()
	if inst.IsOpaque() {
		group, ok := s.opaque[state]
		if !ok {
			group = &opaqueGroup{
				batch:     batch.NewDrawBatch(s.r, state, s.capacity),
				instances: newInstanceSet(),
			}
			s.opaque[state] = group
			s.opaqueOrder = append(s.opaqueOrder, state)
		}
		group.instances.add(inst)
		return
	}

	if _, ok := s.transparent[inst]; ok {
		return
	}
	s.transparent[inst] = s.nextSeq
	s.nextSeq++

	group, ok := s.transparentBatches[state]
	if !ok {
		group = &transparentGroup{batch: batch.NewDrawBatch(s.r, state, s.capacity)}
		s.transparentBatches[state] = group
	}
	group.refs++
}

// Remove unregisters the instance. Groups and batches left without
// instances are released.
func (s *RenderScene) Remove(inst *batch.DrawInstance) error {
	state := inst.State()
	if inst.IsOpaque() {
		group, ok := s.opaque[state]
		if !ok || !group.instances.remove(inst) {
			return s.notRegistered(inst)
		}
		if group.instances.len() == 0 {
			delete(s.opaque, state)
			s.opaqueOrder = removeState(s.opaqueOrder, state)
		}
		return nil
	}

	if _, ok := s.transparent[inst]; !ok {
		return s.notRegistered(inst)
	}
	delete(s.transparent, inst)
	if group, ok := s.transparentBatches[state]; ok {
		group.refs--
		if group.refs <= 0 {
			delete(s.transparentBatches, state)
		}
	}
	return nil
}

func (s *RenderScene) notRegistered(inst *batch.DrawInstance) error {
	err := fmt.Errorf("func Remove - instance %p (%v): %w", inst, inst.State(), core.ErrInstanceNotRegistered)
	core.LogError(err.Error())
	return err
}

func removeState(states []batch.DrawState, state batch.DrawState) []batch.DrawState {
	for i, st := range states {
		if st == state {
			return append(states[:i], states[i+1:]...)
		}
	}
	return states
}

func (s *RenderScene) Contains(inst *batch.DrawInstance) bool {
	if inst.IsOpaque() {
		group, ok := s.opaque[inst.State()]
		return ok && group.instances.contains(inst)
	}
	_, ok := s.transparent[inst]
	return ok
}

// AttachRenderTarget records that the scene samples dep. Attachments are refcounted.
func (s *RenderScene) AttachRenderTarget(dep Dependency) {
	if s.targets[dep] == 0 {
		s.targetOrder = append(s.targetOrder, dep)
	}
	s.targets[dep]++
}

func (s *RenderScene) DetachRenderTarget(dep Dependency) error {
	refs, ok := s.targets[dep]
	if !ok {
		err := fmt.Errorf("func DetachRenderTarget - %v: %w", dep, core.ErrTargetNotAttached)
		core.LogError(err.Error())
		return err
	}
	if refs > 1 {
		s.targets[dep] = refs - 1
		return nil
	}
	delete(s.targets, dep)
	for i, d := range s.targetOrder {
		if d == dep {
			s.targetOrder = append(s.targetOrder[:i], s.targetOrder[i+1:]...)
			break
		}
	}
	return nil
}

// TryViewDeps resolves every attached dependency in attach order.
func (s *RenderScene) TryViewDeps() {
	for _, dep := range s.targetOrder {
		dep.TryResolve()
	}
}

// Frame submits the opaque pass followed by the transparent pass for the
// given camera view matrix. A pass with nothing to draw issues no commands.
func (s *RenderScene) Frame(view math.Mat4) {
	if len(s.opaqueOrder) > 0 {
		s.r.SetBlendMode(metadata.BlendModeNone)
		for _, state := range s.opaqueOrder {
			group := s.opaque[state]
			s.process(state, group.batch, group.instances.items)
		}
	}

	if len(s.transparent) == 0 {
		return
	}
	s.r.SetBlendMode(metadata.BlendModeAlpha)

	entries := s.sortBuf[:0]
	for inst, seq := range s.transparent {
		entries = append(entries, transparentEntry{inst: inst, seq: seq, depth: inst.ViewDepth(view)})
	}
	// farthest first, registration order on ties
	slices.SortFunc(entries, func(a, b transparentEntry) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	run := make([]*batch.DrawInstance, 0, len(entries))
	for i, e := range entries {
		run = append(run, e.inst)
		state := e.inst.State()
		if i+1 < len(entries) && entries[i+1].inst.State() == state {
			continue
		}
		s.process(state, s.transparentBatches[state].batch, run)
		run = run[:0]
	}

	for i := range entries {
		entries[i].inst = nil
	}
	s.sortBuf = entries
}

func (s *RenderScene) process(state batch.DrawState, b *batch.DrawBatch, instances []*batch.DrawInstance) {
	state.Bind(s.r)
	if len(instances) == 1 {
		b.DrawSingle(instances[0])
		return
	}
	for _, inst := range instances {
		b.Append(inst)
	}
	b.Flush()
}

type Stats struct {
	OpaqueGroups         int
	OpaqueInstances      int
	TransparentInstances int
	TransparentBatches   int
	Dependencies         int
}

func (s *RenderScene) Stats() Stats {
	st := Stats{
		OpaqueGroups:         len(s.opaque),
		TransparentInstances: len(s.transparent),
		TransparentBatches:   len(s.transparentBatches),
		Dependencies:         len(s.targetOrder),
	}
	for _, g := range s.opaque {
		st.OpaqueInstances += g.instances.len()
	}
	return st
}
