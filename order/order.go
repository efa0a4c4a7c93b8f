package order

import (
	"context"
	"math"

	"github.com/quay/zlog"

	"github.com/quay/rpmdb/avail"
)

// collectTE emits q and frees any successor whose last outstanding
// predecessor was q, queueing it either onto the local queue (queueTail) or,
// if it belongs to a different non-trivial SCC than q, onto the outer queue
// outerHead/outerTail. outerHead/outerTail may be nil when q is known to sit
// outside any non-trivial SCC.
func collectTE(prefColor uint32, q *node, out *[]*avail.Te, sccs []sccInfo, queueTail, outerHead, outerTail **node) {
	*out = append(*out, q.te)

	for _, rel := range q.relations {
		p := rel.to
		if p.sccIdx == 0 || p == q {
			continue
		}

		p.count--
		if p.count == 0 {
			p.te.Parent = q.te
			if q.sccIdx > 1 && q.sccIdx != p.sccIdx {
				addQ(p, outerHead, outerTail, prefColor)
			} else {
				addQ(p, &q.next, queueTail, prefColor)
			}
		}

		if p.sccIdx > 1 && p.sccIdx != q.sccIdx {
			sccs[p.sccIdx].count--
			if sccs[p.sccIdx].count == 0 {
				p.te.Parent = q.te
				if outerHead != nil {
					addQ(p, outerHead, outerTail, prefColor)
				} else {
					addQ(p, &q.next, queueTail, prefColor)
				}
			}
		}
	}

	q.sccIdx = 0
}

// collectSCC emits every member of the non-trivial SCC rooted at pTsi, using
// a multi-source Dijkstra pass to prefer emitting members farthest from an
// external (or self) pre-req edge first, minimizing pre-req edges broken to
// resolve the cycle.
func collectSCC(prefColor uint32, pTsi *node, out *[]*avail.Te, sccs []sccInfo, queueTail **node) {
	sccNr := pTsi.sccIdx
	scc := sccs[sccNr]

	outerStart := pTsi.next
	pTsi.next = nil

	queue := make([]*node, 0, len(scc.members)+1)
	for _, m := range scc.members {
		m.sccLow = math.MaxInt
		for _, rel := range m.forwardRelations {
			if rel.flags == 0 || rel.to.sccIdx != sccNr {
				continue
			}
			if rel.to != m {
				m.sccLow = 0
				queue = append(queue, m)
			} else {
				m.sccLow = math.MaxInt / 2
			}
			break
		}
	}
	if len(queue) == 0 {
		for _, m := range scc.members {
			if m.sccLow != math.MaxInt {
				queue = append(queue, m)
			}
		}
	}
	for i := 0; i < len(queue); i++ {
		m := queue[i]
		for _, rel := range m.forwardRelations {
			next := rel.to
			if next.sccIdx != sccNr {
				continue
			}
			if next.sccLow > m.sccLow+1 {
				next.sccLow = m.sccLow + 1
				queue = append(queue, next)
			}
		}
	}

	for {
		var best *node
		bestScore := 0
		for _, m := range scc.members {
			if m.sccIdx == 0 {
				continue
			}
			if m.sccLow >= bestScore {
				best, bestScore = m, m.sccLow
			}
		}
		if best == nil {
			break
		}

		var innerHead, innerTail *node
		addQ(best, &innerHead, &innerTail, prefColor)
		for n := innerHead; n != nil; n = n.next {
			n.reqx = false
			collectTE(prefColor, n, out, sccs, &innerTail, &outerStart, queueTail)
		}
	}

	pTsi.next = outerStart
}

// Order computes an install/erase order for elems. added and erased are the
// availability sets elems were registered into (the caller owns their
// construction, keyed by the same Te pointers passed here); Requires and
// Order dependencies are resolved against whichever set matches each
// element's Kind. prefColor biases queue placement, per [avail.AvailSet].
//
// The result contains every input element exactly once: every Added element
// before the Removed elements it doesn't otherwise precede, cycles broken by
// strongly-connected-component collection.
func Order(ctx context.Context, added, erased *avail.AvailSet, elems []*avail.Te, prefColor uint32) ([]*avail.Te, error) {
	nodes := make([]*node, len(elems))
	byTe := make(map[*avail.Te]*node, len(elems))
	for i, te := range elems {
		n := &node{te: te}
		nodes[i] = n
		byTe[te] = n
		te.SetTSI(n)
	}
	defer func() {
		for _, te := range elems {
			te.SetTSI(nil)
		}
	}()

	addCollectionRelations(nodes)

	for _, te := range elems {
		p := byTe[te]
		avSet := added
		if te.Kind == avail.Removed {
			avSet = erased
		}
		for _, ds := range te.Requires {
			addRelationDep(p, avSet, ds, byTe)
		}
		for _, ds := range te.Order {
			addRelationDep(p, avSet, ds, byTe)
		}
	}

	sccs := detectSCCs(nodes)
	if n := len(sccs) - 2; n > 0 {
		zlog.Debug(ctx).Int("count", n).Msg("order: strongly connected components detected")
	}

	result := make([]*avail.Te, 0, len(elems))
	for _, kind := range [...]avail.Kind{avail.Added, avail.Removed} {
		var head, tail *node
		for _, n := range nodes {
			if n.te.Kind != kind || n.count != 0 {
				continue
			}
			n.next = nil
			addQ(n, &head, &tail, prefColor)
		}
		for sccID := 2; sccID < len(sccs); sccID++ {
			scc := sccs[sccID]
			if len(scc.members) == 0 {
				continue
			}
			member := scc.members[0]
			if scc.count == 0 && member.te.Kind == kind {
				addQ(member, &head, &tail, prefColor)
			}
		}

		for q := head; q != nil; q = q.next {
			q.reqx = false
			if q.sccIdx > 1 {
				collectSCC(prefColor, q, &result, sccs, &tail)
			} else {
				collectTE(prefColor, q, &result, sccs, &tail, nil, nil)
			}
		}
	}

	if len(result) != len(elems) {
		emitted := make(map[*avail.Te]bool, len(result))
		for _, te := range result {
			emitted[te] = true
		}
		zlog.Warn(ctx).
			Int("missing", len(elems)-len(result)).
			Msg("order: dependency loop left elements unqueued, emitting in insertion order")
		for _, te := range elems {
			if !emitted[te] {
				result = append(result, te)
			}
		}
	}
	return result, nil
}

func addRelationDep(p *node, avSet *avail.AvailSet, ds avail.Ds, byTe map[*avail.Te]*node) {
	if ds.Flags.Skip() {
		return
	}
	q := avSet.Satisfies(p.te, ds)
	if q == nil || q == p.te {
		return
	}
	qn, ok := byTe[q]
	if !ok {
		return
	}
	addSingleRelation(p, qn, ds.Flags)
}
