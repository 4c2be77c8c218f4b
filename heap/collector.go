package heap

// Collector is a stop-the-world mark-sweep pass sufficient to reclaim
// cyclic garbage the Barrier contract alone cannot (spec §3's design
// note: reference counting would leak cycles, so the contract assumes a
// tracing collector). It is intentionally not incremental; spec §6
// scopes a production-grade concurrent/incremental collector out.
type Collector struct {
	roots []*Header
}

// AddRoot registers h as a collection root (a Thread's live stack, or a
// globally reachable table); a Sweep that follows Mark never reclaims a
// root or anything reachable from one.
func (c *Collector) AddRoot(h *Header) {
	c.roots = append(c.roots, h)
}

// Mark walks from every root, coloring everything reachable Black. Edge
// discovery (what a given object points to) is supplied by the caller
// via children, since heap itself has no knowledge of object/vm's field
// layouts.
func (c *Collector) Mark(children func(*Header) []*Header) {
	var gray []*Header
	for _, r := range c.roots {
		if r.color == White {
			r.color = Gray
			gray = append(gray, r)
		}
	}
	for len(gray) > 0 {
		h := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		for _, child := range children(h) {
			if child.color == White {
				child.color = Gray
				gray = append(gray, child)
			}
		}
		h.color = Black
	}
}

// Sweep walks the heap's intrusive object list, invoking free for every
// still-White header (unreached by Mark) and resetting survivors to
// White for the next cycle.
func (heap *Heap) Sweep(free func(*Header)) {
	var prev *Header
	cur := heap.all
	for cur != nil {
		next := cur.next
		if cur.color == White {
			if prev == nil {
				heap.all = next
			} else {
				prev.next = next
			}
			free(cur)
		} else {
			cur.color = White
			prev = cur
		}
		cur = next
	}
}
