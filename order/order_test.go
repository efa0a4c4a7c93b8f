package order

import (
	"context"
	"testing"

	"github.com/quay/rpmdb/avail"
)

func indexOf(t *testing.T, order []*avail.Te, te *avail.Te) int {
	t.Helper()
	for i, e := range order {
		if e == te {
			return i
		}
	}
	t.Fatalf("%s not present in order", te.Name)
	return -1
}

func TestOrderLinearDependency(t *testing.T) {
	added := avail.New(0, 0, nil)

	b := &avail.Te{Name: "b", Kind: avail.Added}
	b.Provides = []avail.Ds{{Name: "b"}}
	added.Add(b)

	a := &avail.Te{Name: "a", Kind: avail.Added}
	a.Requires = []avail.Ds{{Name: "b"}}
	added.Add(a)

	order, err := Order(context.Background(), added, avail.New(0, 0, nil), []*avail.Te{a, b}, 0)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("len(order) = %d, want 2", len(order))
	}
	if indexOf(t, order, b) >= indexOf(t, order, a) {
		t.Fatalf("expected b before a, got %v", []string{order[0].Name, order[1].Name})
	}
}

func TestOrderIndependentElementsBothEmitted(t *testing.T) {
	added := avail.New(0, 0, nil)
	a := &avail.Te{Name: "a", Kind: avail.Added}
	b := &avail.Te{Name: "b", Kind: avail.Added}
	added.Add(a)
	added.Add(b)

	order, err := Order(context.Background(), added, avail.New(0, 0, nil), []*avail.Te{a, b}, 0)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("len(order) = %d, want 2", len(order))
	}
}

func TestOrderBreaksCycle(t *testing.T) {
	added := avail.New(0, 0, nil)

	a := &avail.Te{Name: "a", Kind: avail.Added}
	b := &avail.Te{Name: "b", Kind: avail.Added}
	a.Provides = []avail.Ds{{Name: "a"}}
	b.Provides = []avail.Ds{{Name: "b"}}
	a.Requires = []avail.Ds{{Name: "b"}}
	b.Requires = []avail.Ds{{Name: "a"}}
	added.Add(a)
	added.Add(b)

	order, err := Order(context.Background(), added, avail.New(0, 0, nil), []*avail.Te{a, b}, 0)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("len(order) = %d, want 2 (cycle must still emit every element once)", len(order))
	}
	seen := map[*avail.Te]bool{}
	for _, te := range order {
		if seen[te] {
			t.Fatalf("%s emitted more than once", te.Name)
		}
		seen[te] = true
	}
}

func TestOrderRemovedElementReversesDependency(t *testing.T) {
	erased := avail.New(0, 0, nil)

	// On erase, if "a" requires "b", a must be removed before b is
	// (erase is the reverse of install order).
	b := &avail.Te{Name: "b", Kind: avail.Removed}
	b.Provides = []avail.Ds{{Name: "b"}}
	erased.Add(b)

	a := &avail.Te{Name: "a", Kind: avail.Removed}
	a.Requires = []avail.Ds{{Name: "b"}}
	erased.Add(a)

	order, err := Order(context.Background(), avail.New(0, 0, nil), erased, []*avail.Te{a, b}, 0)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if indexOf(t, order, a) >= indexOf(t, order, b) {
		t.Fatalf("expected a removed before b, got %v", []string{order[0].Name, order[1].Name})
	}
}

func TestOrderCollectionGroupingKeepsMembersAdjacent(t *testing.T) {
	added := avail.New(0, 0, nil)

	c1 := &avail.Te{Name: "c1", Kind: avail.Added, Collection: "policy", CollectionGrouped: true}
	c2 := &avail.Te{Name: "c2", Kind: avail.Added, Collection: "policy", CollectionGrouped: true}
	other := &avail.Te{Name: "other", Kind: avail.Added}
	added.Add(c1)
	added.Add(c2)
	added.Add(other)

	order, err := Order(context.Background(), added, avail.New(0, 0, nil), []*avail.Te{c1, c2, other}, 0)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	if d := indexOf(t, order, c1) - indexOf(t, order, c2); d != 1 && d != -1 {
		t.Fatalf("expected c1/c2 adjacent, got positions %d and %d", indexOf(t, order, c1), indexOf(t, order, c2))
	}
}
