package scene

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on destroy so a
// stale handle never aliases a reused slot.
type Handle uint64

func newHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// handlePool allocates handles with generational indices and a free list.
type handlePool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func newHandlePool() *handlePool {
	return &handlePool{
		generations: make([]uint32, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *handlePool) create() Handle {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return newHandle(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return newHandle(idx, p.generations[idx])
}

func (p *handlePool) alive(h Handle) bool {
	idx := h.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == h.Generation()
}

func (p *handlePool) destroy(h Handle) {
	if !p.alive(h) {
		return // already destroyed (stale handle)
	}
	idx := h.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
