package model

import "github.com/passlocker/core/internal/secret"

// MergeIn merges other into d, per spec.md §4.5:
//
//   - Groups: if assignNewUUIDs, every source group gets a freshly
//     allocated id and the source's own entries are rewritten to the new
//     group_id; otherwise a local group with the same id is replaced
//     when compareTimes is false, or when the source is strictly newer
//     (compareTimes true), and kept otherwise. A replaced local group's
//     LastAccessed is bumped to now.
//   - Entries: meta-stream entries are skipped. Matching is by UUID,
//     using the same replace-or-keep rule as groups. Source passwords
//     are unlocked for the copy and relocked immediately after.
//   - Finishes with orphan GC (merge tolerates orphans, unlike load).
func (d *Database) MergeIn(other *Database, assignNewUUIDs, compareTimes bool) error {
	idRemap := make(map[uint32]uint32)

	for _, sg := range other.groups {
		srcID := sg.ID
		if assignNewUUIDs {
			newID, err := d.randomGroupID()
			if err != nil {
				return err
			}
			idRemap[srcID] = newID

			g := sg.clone()
			g.ID = newID
			d.groups = append(d.groups, &g)
			continue
		}

		if local := d.GroupByID(srcID); local != nil {
			if !compareTimes || compareTimestamp(sg.LastModified, local.LastModified) > 0 {
				g := sg.clone()
				g.LastAccessed = nowTimestamp()
				*local = g
			}
			continue
		}
		g := sg.clone()
		d.groups = append(d.groups, &g)
	}

	for _, se := range other.entries {
		if se.isMetaStream() {
			continue
		}

		other.unlockEntry(se)
		cleartext := append([]byte(nil), se.Password[:se.PasswordLen]...)
		other.lockEntry(se)

		groupID := se.GroupID
		if newID, ok := idRemap[groupID]; ok {
			groupID = newID
		}

		if local := d.EntryIndexByUUID(se.UUID); local >= 0 {
			dst := d.entries[local]
			if !compareTimes || compareTimestamp(se.LastModified, dst.LastModified) > 0 {
				secret.Zero(dst.Password)
				*dst = *se.clone()
				dst.GroupID = groupID
				d.setEntryPassword(dst, cleartext)
				dst.LastAccessed = nowTimestamp()
			}
			secret.Zero(cleartext)
			continue
		}

		e := se.clone()
		e.GroupID = groupID
		d.setEntryPassword(e, cleartext)
		secret.Zero(cleartext)
		d.entries = append(d.entries, e)
	}

	d.GCOrphans()
	return nil
}
