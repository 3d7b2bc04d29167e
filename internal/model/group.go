// Package model implements C5, the database core: ordered group and
// entry arrays, CRUD, search, sort, move, merge, plus C8's tree fixup and
// orphan GC as unexported helpers operating on the same slices. See
// spec.md §3-§4.5, §4.8.
package model

import "github.com/passlocker/core/internal/tlv"

// Reserved group_id sentinels (spec.md §3, §6).
const (
	GroupIDNone     uint32 = 0
	GroupIDSentinel uint32 = 0xFFFFFFFF
)

// Group is a node in the flattened ordered group tree (spec.md §3). The
// array position carries the tree structure: the parent of the group at
// index i is the nearest preceding group with Level == self.Level-1.
type Group struct {
	ID           uint32
	Name         string
	ImageID      uint32
	Level        uint16
	Flags        uint32
	Created      tlv.Timestamp
	LastModified tlv.Timestamp
	LastAccessed tlv.Timestamp
	Expires      tlv.Timestamp
}

// clone returns a deep copy of g (Group has no reference fields besides
// strings, which are immutable in Go, so a value copy already suffices;
// clone exists so call sites read the same regardless).
func (g Group) clone() Group { return g }

func isReservedGroupID(id uint32) bool {
	return id == GroupIDNone || id == GroupIDSentinel
}
