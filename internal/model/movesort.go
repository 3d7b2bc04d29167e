package model

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
)

// moveEntrySlice walks s[from] to position to via adjacent swaps,
// preserving the relative order of every other element.
func moveEntrySlice(s []*Entry, from, to int) {
	if from == to {
		return
	}
	if from < to {
		for i := from; i < to; i++ {
			s[i], s[i+1] = s[i+1], s[i]
		}
		return
	}
	for i := from; i > to; i-- {
		s[i], s[i-1] = s[i-1], s[i]
	}
}

func moveGroupSlice(s []*Group, from, to int) {
	if from == to {
		return
	}
	if from < to {
		for i := from; i < to; i++ {
			s[i], s[i+1] = s[i+1], s[i]
		}
		return
	}
	for i := from; i > to; i-- {
		s[i], s[i-1] = s[i-1], s[i]
	}
}

// MoveEntry relocates the entry at from to index to via an adjacent-swap
// walk, preserving the relative order of all other entries.
func (d *Database) MoveEntry(from, to int) error {
	const op = "model.MoveEntry"
	if from < 0 || from >= len(d.entries) || to < 0 || to >= len(d.entries) {
		return dberr.New(dberr.InvalidParam, op, errors.New("index out of range"))
	}
	moveEntrySlice(d.entries, from, to)
	return nil
}

// MoveInGroup relocates the from-th entry of groupID (in current array
// order) to where the to-th entry of groupID sits, via the same
// adjacent-swap walk over the full entry array.
func (d *Database) MoveInGroup(groupID uint32, from, to int) error {
	const op = "model.MoveInGroup"
	var idxs []int
	for i, e := range d.entries {
		if e.GroupID == groupID {
			idxs = append(idxs, i)
		}
	}
	if from < 0 || from >= len(idxs) || to < 0 || to >= len(idxs) {
		return dberr.New(dberr.InvalidParam, op, errors.New("group-relative index out of range"))
	}
	moveEntrySlice(d.entries, idxs[from], idxs[to])
	return nil
}

// MoveGroup relocates the group at from to index to, then re-runs tree
// fixup since the reordering may have broken level continuity.
func (d *Database) MoveGroup(from, to int) error {
	const op = "model.MoveGroup"
	if from < 0 || from >= len(d.groups) || to < 0 || to >= len(d.groups) {
		return dberr.New(dberr.InvalidParam, op, errors.New("index out of range"))
	}
	moveGroupSlice(d.groups, from, to)
	d.FixupTree()
	return nil
}

// SortField selects the comparison key SortGroup uses.
type SortField int

const (
	SortTitle SortField = iota
	SortUsername
	SortURL
	SortPassword
	SortNotes
	SortCreated
	SortLastModified
	SortLastAccessed
	SortExpires
	// SortNone (e.g. for a UUID field selector, which cannot order
	// meaningfully) makes SortGroup a no-op.
	SortNone
)

// SortGroup stable-sorts the entries belonging to groupID in place,
// comparing by field.
//
// Per the original tool's behavior (SPEC_FULL.md §5.3, preserved rather
// than silently changed): string fields sort ascending, timestamp fields
// sort descending (most recent first). A field selector that cannot
// order entries (SortNone) leaves the group untouched. Password
// comparison unlocks and relocks around the comparison.
func (d *Database) SortGroup(groupID uint32, field SortField) {
	if field == SortNone {
		return
	}

	var idxs []int
	for i, e := range d.entries {
		if e.GroupID == groupID {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) < 2 {
		return
	}

	less := func(a, b *Entry) bool {
		switch field {
		case SortTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortUsername:
			return strings.ToLower(a.Username) < strings.ToLower(b.Username)
		case SortURL:
			return strings.ToLower(a.URL) < strings.ToLower(b.URL)
		case SortNotes:
			return strings.ToLower(a.Notes) < strings.ToLower(b.Notes)
		case SortPassword:
			d.unlockEntry(a)
			d.unlockEntry(b)
			lt := string(a.Password[:a.PasswordLen]) < string(b.Password[:b.PasswordLen])
			d.lockEntry(a)
			d.lockEntry(b)
			return lt
		case SortCreated:
			return compareTimestamp(a.Created, b.Created) > 0
		case SortLastModified:
			return compareTimestamp(a.LastModified, b.LastModified) > 0
		case SortLastAccessed:
			return compareTimestamp(a.LastAccessed, b.LastAccessed) > 0
		case SortExpires:
			return compareTimestamp(a.Expires, b.Expires) > 0
		default:
			return false
		}
	}

	// Gather the group's entries, stable-sort that subsequence, then
	// write the result back into the same array slots so indices
	// outside the group are untouched and equal-key entries keep their
	// relative order.
	group := make([]*Entry, len(idxs))
	for i, gi := range idxs {
		group[i] = d.entries[gi]
	}
	sort.SliceStable(group, func(i, j int) bool { return less(group[i], group[j]) })
	for i, gi := range idxs {
		d.entries[gi] = group[i]
	}
}

// groupPath returns the fully-qualified, "/"-joined path of the group at
// index i, root-first, for use by SortGroupList's comparator.
func (d *Database) groupPath(i int) string {
	g := d.groups[i]
	tree := d.GetGroupTree(g.ID)
	parts := make([]string, 0, len(tree))
	for _, anc := range tree {
		if anc == nil {
			continue
		}
		parts = append(parts, anc.Name)
	}
	return strings.Join(parts, "/")
}

// SortGroupList stable-sorts the entire group array by fully-qualified
// path, case-insensitively, then re-runs tree fixup.
func (d *Database) SortGroupList() {
	type keyed struct {
		path string
		g    *Group
	}
	keys := make([]keyed, len(d.groups))
	for i := range d.groups {
		keys[i] = keyed{path: strings.ToLower(d.groupPath(i)), g: d.groups[i]}
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].path < keys[j].path })
	for i := range keys {
		d.groups[i] = keys[i].g
	}
	d.FixupTree()
}
