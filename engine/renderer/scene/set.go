package scene

import "github.com/spaghettifunk/oncue/engine/renderer/batch"

// instanceSet keeps insertion order so every pass iterates deterministically.
type instanceSet struct {
	items []*batch.DrawInstance
	index map[*batch.DrawInstance]int
}

func newInstanceSet() *instanceSet {
	return &instanceSet{index: make(map[*batch.DrawInstance]int)}
}

func (s *instanceSet) add(inst *batch.DrawInstance) bool {
	if _, ok := s.index[inst]; ok {
		return false
	}
	s.index[inst] = len(s.items)
	s.items = append(s.items, inst)
	return true
}

// remove swaps the last item into the hole.
func (s *instanceSet) remove(inst *batch.DrawInstance) bool {
	i, ok := s.index[inst]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		s.items[i] = s.items[last]
		s.index[s.items[i]] = i
	}
	s.items[last] = nil
	s.items = s.items[:last]
	delete(s.index, inst)
	return true
}

func (s *instanceSet) contains(inst *batch.DrawInstance) bool {
	_, ok := s.index[inst]
	return ok
}

func (s *instanceSet) len() int {
	return len(s.items)
}
