// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	mapset "github.com/deckarep/golang-set"
)

// Blacklist is an immutable set of IMSIs loaded once at startup (§4.2).
// Reads from any number of goroutines require no synchronization since
// the underlying set is built once and never mutated afterward.
type Blacklist struct {
	imsis mapset.Set
}

// NewBlacklist constructs a Blacklist from a list of IMSI strings.
func NewBlacklist(imsis []string) *Blacklist {
	set := mapset.NewThreadUnsafeSet()
	for _, imsi := range imsis {
		set.Add(imsi)
	}

	return &Blacklist{imsis: set}
}

// Contains reports whether imsi is blacklisted, in O(1).
func (b *Blacklist) Contains(imsi string) bool {
	return b.imsis.Contains(imsi)
}

// Len returns the number of blacklisted IMSIs.
func (b *Blacklist) Len() int {
	return b.imsis.Cardinality()
}
