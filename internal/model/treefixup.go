package model

// FixupTree enforces the level-continuity invariant (spec.md §4.8):
// group[0].Level is clamped to 0, and for every subsequent group,
// Level[i] is clamped down to Level[i-1]+1 whenever it exceeds it. This
// keeps "parent is the nearest preceding group at Level-1" well-defined.
func (d *Database) FixupTree() {
	if len(d.groups) == 0 {
		return
	}
	d.groups[0].Level = 0
	for i := 1; i < len(d.groups); i++ {
		if d.groups[i].Level > d.groups[i-1].Level+1 {
			d.groups[i].Level = d.groups[i-1].Level + 1
		}
	}
}

// GCOrphans repeatedly removes entries whose GroupID resolves to no
// group, returning the number of entries removed. The load path expects
// zero; the merge path tolerates a non-zero result.
func (d *Database) GCOrphans() int {
	removed := 0
	for i := 0; i < len(d.entries); {
		if d.GroupByID(d.entries[i].GroupID) == nil {
			_ = d.DeleteEntry(i)
			removed++
			continue
		}
		i++
	}
	return removed
}

// GetGroupTree walks backward from the group at id's array index,
// collecting ancestors by repeatedly seeking the next preceding group
// whose Level equals the current Level-1. The returned slice has one
// entry per tree depth, indexed by Level, ending with the group itself.
func (d *Database) GetGroupTree(id uint32) []*Group {
	idx := d.GroupIndexByID(id)
	if idx < 0 {
		return nil
	}
	g := d.groups[idx]
	out := make([]*Group, g.Level+1)
	out[g.Level] = g

	level := g.Level
	for i := idx - 1; i >= 0 && level > 0; i-- {
		if d.groups[i].Level == level-1 {
			level--
			out[level] = d.groups[i]
		}
	}
	return out
}

// GetLastChildGroup returns the array index of the last group whose
// Level is strictly greater than the group at parentIndex, scanning
// contiguously forward from it. It returns parentIndex if the parent has
// no children.
func (d *Database) GetLastChildGroup(parentIndex int) int {
	if parentIndex < 0 || parentIndex >= len(d.groups) {
		return parentIndex
	}
	parentLevel := d.groups[parentIndex].Level
	last := parentIndex
	for i := parentIndex + 1; i < len(d.groups); i++ {
		if d.groups[i].Level <= parentLevel {
			break
		}
		last = i
	}
	return last
}
