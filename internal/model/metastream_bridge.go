package model

import (
	"github.com/google/uuid"

	"github.com/passlocker/core/internal/metastream"
)

// ExtractMetaStreams removes every meta-stream entry from the live
// array (spec.md §4.7), decoding the "Simple UI State" stream into the
// database's UI-state fields and preserving any other stream verbatim
// in the database's unknown-stream list, applying the KPX_CUSTOM_ICONS_2
// dedup rule.
func (d *Database) ExtractMetaStreams() {
	var streams []metastream.Stream
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.isMetaStream() {
			streams = append(streams, metastream.Stream{Name: e.Notes, Data: e.Binary})
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept

	state, ok, unknown := metastream.Route(streams)
	if ok {
		d.lastSelectedGroupID = state.LastSelectedGroupID
		d.lastTopVisibleGroupID = state.LastTopVisibleGroupID
		d.lastSelectedEntryUUID = state.LastSelectedEntryUUID
		d.lastTopVisibleEntryUUID = state.LastTopVisibleEntryUUID
	}
	d.unknownStreams = d.unknownStreams[:0]
	for _, s := range unknown {
		d.unknownStreams = append(d.unknownStreams, UnknownStream{Name: s.Name, Data: s.Data})
	}
}

// InjectMetaStreams appends synthetic meta-stream entries (the current
// UI state, then each preserved unknown stream) to the live array ahead
// of a save, and returns their UUIDs so StripMetaStreams can remove
// exactly those entries afterward. Per spec.md §4.7, the injected
// entries' group_id is the first group's id.
func (d *Database) InjectMetaStreams() []uuid.UUID {
	var groupID uint32
	if len(d.groups) > 0 {
		groupID = d.groups[0].ID
	}

	now := nowTimestamp()
	makeSentinel := func(name string, data []byte) *Entry {
		id, _ := uuid.NewRandomFromReader(d.rand)
		var u [16]byte
		copy(u[:], id[:])
		return &Entry{
			UUID:         u,
			GroupID:      groupID,
			ImageID:      0,
			Title:        metaInfoTitle,
			Username:     metaInfoUsername,
			URL:          metaInfoURL,
			BinaryDesc:   metaInfoBinDesc,
			Notes:        name,
			Binary:       data,
			Created:      now,
			LastModified: now,
			LastAccessed: now,
			Expires:      now,
		}
	}

	state := metastream.UIState{
		LastSelectedGroupID:     d.lastSelectedGroupID,
		LastTopVisibleGroupID:   d.lastTopVisibleGroupID,
		LastSelectedEntryUUID:   d.lastSelectedEntryUUID,
		LastTopVisibleEntryUUID: d.lastTopVisibleEntryUUID,
	}

	injected := make([]*Entry, 0, 1+len(d.unknownStreams))
	injected = append(injected, makeSentinel(metastream.SimpleUIStateName, metastream.EncodeUIState(state)))
	for _, s := range d.unknownStreams {
		injected = append(injected, makeSentinel(s.Name, s.Data))
	}

	ids := make([]uuid.UUID, 0, len(injected))
	for _, e := range injected {
		d.entries = append(d.entries, e)
		var u uuid.UUID
		copy(u[:], e.UUID[:])
		ids = append(ids, u)
	}
	return ids
}

// StripMetaStreams removes the entries whose UUID is in ids, restoring
// the model to its pre-InjectMetaStreams state. Called after a save
// completes, per spec.md §4.4 step 8.
func (d *Database) StripMetaStreams(ids []uuid.UUID) {
	set := make(map[[16]byte]struct{}, len(ids))
	for _, id := range ids {
		var u [16]byte
		copy(u[:], id[:])
		set[u] = struct{}{}
	}
	kept := d.entries[:0]
	for _, e := range d.entries {
		if _, found := set[e.UUID]; found {
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
}
