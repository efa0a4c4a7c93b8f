package order

// sccInfo describes one strongly connected component of the dependency
// graph: its members, and the number of edges into the SCC from outside it.
type sccInfo struct {
	count   int
	members []*node
}

// tarjanState is the shared state of one Tarjan DFS pass. sccs is indexed
// from 2 up; indexes 0 and 1 are reserved (1 marks trivial, singleton SCCs).
type tarjanState struct {
	index int
	stack []*node
	sccs  []sccInfo
}

// detectSCCs finds every strongly connected component of the relations
// graph (nodes connected through [node.relations], i.e. the install-order
// successor edges), assigning each node's sccIdx: 1 for a trivial singleton,
// or an index into the returned slice (itself indexed from 2) otherwise.
func detectSCCs(nodes []*node) []sccInfo {
	st := &tarjanState{sccs: make([]sccInfo, 2)}
	for _, n := range nodes {
		if n.sccIdx == 0 {
			tarjan(st, n)
		}
	}
	return st.sccs
}

func tarjan(st *tarjanState, n *node) {
	st.index--
	n.sccIdx = st.index
	n.sccLow = st.index
	st.stack = append(st.stack, n)

	for _, rel := range n.relations {
		q := rel.to
		if q.sccIdx > 0 {
			continue
		}
		if q.sccIdx == 0 {
			tarjan(st, q)
			if n.sccLow < q.sccLow {
				n.sccLow = q.sccLow
			}
		} else if n.sccLow < q.sccIdx {
			n.sccLow = q.sccIdx
		}
	}

	if n.sccLow != n.sccIdx {
		return
	}

	if st.stack[len(st.stack)-1] == n {
		st.stack = st.stack[:len(st.stack)-1]
		n.sccIdx = 1
		return
	}

	sccID := len(st.sccs)
	idx := len(st.stack)
	for {
		idx--
		st.stack[idx].sccIdx = sccID
		if st.stack[idx] == n {
			break
		}
	}
	members := append([]*node(nil), st.stack[idx:]...)
	st.stack = st.stack[:idx]

	count := 0
	for _, m := range members {
		count += m.count
		for _, rel := range m.relations {
			if rel.to != m && rel.to.sccIdx == sccID {
				count--
			}
		}
	}
	st.sccs = append(st.sccs, sccInfo{count: count, members: members})
}
