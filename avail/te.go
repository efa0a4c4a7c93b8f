// Package avail implements the transaction-element container: the set of
// packages being added or removed in one transaction, indexed so dependency
// resolution can look up "who satisfies this" without a linear scan.
package avail

import (
	"github.com/quay/rpmdb/internal/header"
	"github.com/quay/rpmdb/internal/rpmver"
)

// Kind distinguishes an element being installed from one being erased.
type Kind int

const (
	Added Kind = iota
	Removed
)

func (k Kind) String() string {
	if k == Removed {
		return "removed"
	}
	return "added"
}

// Ds is a dependency spec: the thing one [Te] requires, provides, conflicts
// with, or obsoletes. Comparison between two Ds is delegated to the header
// package's EVR comparator.
type Ds = header.Dep

// Te is a transaction element: one package's identity and metadata as seen
// by the ordering engine, independent of which on-disk backend it came from.
type Te struct {
	Name   string
	EVR    rpmver.Version
	Arch   string
	Color  uint32
	Kind   Kind
	HdrNum uint32

	Requires  []Ds
	Conflicts []Ds
	Obsoletes []Ds
	Provides  []Ds
	Order     []Ds
	Files     []string

	// Collection names the grouped-collection id this element belongs to,
	// if any ("" if it belongs to none). CollectionGrouped reports whether
	// the collection's flag bit 0x1 (force-adjacent) is set.
	Collection        string
	CollectionGrouped bool

	// Parent is set during ordering: the element that caused this one to
	// become ready to emit.
	Parent *Te

	// tsi is populated and owned exclusively by the ordering engine while
	// a transaction is being sorted, and released once ordering completes.
	tsi any
}

// TSI returns the ordering engine's opaque per-element working state.
func (te *Te) TSI() any { return te.tsi }

// SetTSI sets the ordering engine's opaque per-element working state.
func (te *Te) SetTSI(v any) { te.tsi = v }

// ownsDs reports whether ds is one of te's own conflicts or obsoletes
// entries, used to filter self-conflicts and self-obsoletes out of
// satisfies lookups.
func (te *Te) ownsDs(ds Ds) bool {
	for _, d := range te.Conflicts {
		if d == ds {
			return true
		}
	}
	for _, d := range te.Obsoletes {
		if d == ds {
			return true
		}
	}
	return false
}

// nevr returns a Ds describing te's own name/EVR, used as the comparison
// basis when an Obsoletes dependency is checked against a candidate (obsoletes
// compare against the candidate's own NEVR, never against its Provides EVR).
func (te *Te) nevr() Ds {
	return Ds{Tag: header.TagName, Name: te.Name, EVR: te.EVR, Color: te.Color}
}
