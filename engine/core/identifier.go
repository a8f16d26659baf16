package core

import "fmt"

// IdentifierPool hands out small integer ids and reuses released slots.
// Each registry owns its own pool.
type IdentifierPool struct {
	owners []interface{}
	max    uint32
}

// NewIdentifierPool creates a pool limited to max live ids; 0 means unbounded.
func NewIdentifierPool(max uint32) *IdentifierPool {
	return &IdentifierPool{max: max}
}

func (p *IdentifierPool) Acquire(owner interface{}) (uint32, error) {
	length := uint32(len(p.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i, nil
		}
	}

	if p.max != 0 && length >= p.max {
		return 0, fmt.Errorf("identifier pool exhausted (max=%d): %w", p.max, ErrNoFreeSlot)
	}

	// No existing free slots, the id will be length.
	p.owners = append(p.owners, owner)
	return length, nil
}

func (p *IdentifierPool) Release(id uint32) error {
	length := uint32(len(p.owners))
	if id >= length || p.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' not in use (len=%d). Nothing was done", id, length)
	}
	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	return nil
}

func (p *IdentifierPool) Owner(id uint32) interface{} {
	if id >= uint32(len(p.owners)) {
		return nil
	}
	return p.owners[id]
}
