package ecs

import "strconv"

// EntityID identifies a node. The lower 32 bits hold the slot index, the upper
// 32 bits a generation that increments when the slot is recycled, so an ID kept
// after its node was destroyed never resolves to the slot's next occupant.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// String renders the ID as "index:generation" for logs.
func (id EntityID) String() string {
	return strconv.FormatUint(uint64(id.Index()), 10) + ":" + strconv.FormatUint(uint64(id.Generation()), 10)
}

// EntityPool hands out node IDs from a free list of recycled slots.
// Slot 0 generation 0 is reserved so the zero EntityID never names a live node.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: []uint32{1},
		freeList:    make([]uint32, 0, 64),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy releases the slot. Stale or unknown IDs are ignored.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
