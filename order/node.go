// Package order implements the transaction ordering engine: it turns a set
// of transaction elements and their dependency relations into a single
// linear install/erase order, breaking dependency cycles along the way.
package order

import (
	"github.com/quay/rpmdb/avail"
	"github.com/quay/rpmdb/internal/header"
)

// relation is one directed edge between two nodes, carrying the accumulated
// sense flags of every dependency that produced it.
type relation struct {
	to    *node
	flags header.SenseFlags
}

// node is the ordering engine's private working state for one transaction
// element, analogous to rpm's tsortInfo. It never outlives one call to
// [Order].
type node struct {
	te *avail.Te

	count int // outstanding number of predecessors this node still waits on
	qcnt  int // number of successors that depend on this node

	// relations lists this node's successors: elements that must come
	// after it, i.e. that depend on it.
	relations []*relation
	// forwardRelations lists this node's predecessors: elements it
	// depends on, i.e. that must come before it.
	forwardRelations []*relation

	next   *node // singly linked queue pointer, used by addQ
	reqx   bool  // queued marker
	sccIdx int   // 0 unvisited, <0 in-progress Tarjan index, 1 trivial, >=2 SCC id
	sccLow int   // Tarjan lowlink / Dijkstra distance (reused across passes)
}

// isInstallPreReq/isErasePreReq/isLegacyPreReq classify a dependency's sense
// flags for edge-weight purposes. The upstream rpmsense bit layout for these
// isn't available in this corpus (only its .c callers are); PreReq is used
// directly as both the install and erase pre-req signal, with the "legacy"
// case being a PreReq lacking any of the explicit script-phase bits.
func isInstallPreReq(f header.SenseFlags) header.SenseFlags {
	return f & header.SensePreReq
}

func isErasePreReq(f header.SenseFlags) header.SenseFlags {
	return f & header.SensePreReq
}

func isLegacyPreReq(f header.SenseFlags) bool {
	const scriptBits = header.SenseScriptPre | header.SenseScriptPost | header.SenseScriptPreun
	return f&header.SensePreReq != 0 && f&scriptBits == 0
}

// addSingleRelation records that p depends on q (or, for a Removed element,
// the reverse). When q's most recently added edge already points at p, the
// flags are merged into that edge instead of adding a new one; an older
// q->p edge is not searched for.
func addSingleRelation(p, q *node, dsflags header.SenseFlags) {
	if q == nil || q == p {
		return
	}

	origKind := p.te.Kind
	var flags header.SenseFlags
	if origKind == avail.Removed {
		p, q = q, p
		flags = isErasePreReq(dsflags)
	} else {
		flags = isInstallPreReq(dsflags)
	}
	if isLegacyPreReq(dsflags) {
		if origKind == avail.Added {
			flags |= header.SenseScriptPre
		} else {
			flags |= header.SenseScriptPreun
		}
	}

	if n := len(q.relations); n > 0 && q.relations[n-1].to == p {
		q.relations[n-1].flags |= flags
		p.forwardRelations[len(p.forwardRelations)-1].flags |= flags
		return
	}

	if p != q {
		p.count++
	}
	q.relations = append(q.relations, &relation{to: p, flags: flags})
	if p != q {
		q.qcnt++
	}
	p.forwardRelations = append(p.forwardRelations, &relation{to: q, flags: flags})
}

// addCollectionRelations introduces a ring of ANY-sense edges among every
// member of a grouped collection, forcing them into one SCC so emission
// keeps them adjacent.
func addCollectionRelations(nodes []*node) {
	groups := make(map[string][]*node)
	var order []string
	for _, n := range nodes {
		if n.te.Collection == "" || !n.te.CollectionGrouped {
			continue
		}
		if _, ok := groups[n.te.Collection]; !ok {
			order = append(order, n.te.Collection)
		}
		groups[n.te.Collection] = append(groups[n.te.Collection], n)
	}
	for _, name := range order {
		members := groups[name]
		for i, n := range members {
			next := members[(i+1)%len(members)]
			addSingleRelation(n, next, header.SenseAny)
		}
	}
}

// addQ inserts p into the queue delimited by head/tail, ordered by color
// preference then by descending qcnt, with insertion-position tie-break.
func addQ(p *node, head, tail **node, prefColor uint32) {
	p.reqx = true

	if *tail == nil {
		*tail = p
		*head = p
		return
	}

	pColor := p.te.Color
	var tailCond bool
	if p.te.Kind == avail.Added {
		tailCond = pColor != 0 && pColor != prefColor
	} else {
		tailCond = pColor != 0 && pColor == prefColor
	}

	var qprev, q *node
	q = *head
	for q != nil {
		if tailCond && pColor != q.te.Color {
			qprev = q
			q = q.next
			continue
		}
		if q.qcnt <= p.qcnt {
			break
		}
		qprev = q
		q = q.next
	}

	switch {
	case qprev == nil:
		p.next = q
		*head = p
	case q == nil:
		qprev.next = p
		*tail = p
	default:
		p.next = q
		qprev.next = p
	}
}
