// Package metastream implements C7: synthetic "meta-stream" entries that
// smuggle auxiliary UI/database state and unrecognized legacy payloads
// through the same encrypted container as ordinary entries. See
// spec.md §4.7.
package metastream

import (
	"bytes"
	"encoding/binary"
)

// Sentinel field values identifying a meta-stream entry (spec.md §4.7).
const (
	Title      = "Meta-Info"
	Username   = "SYSTEM"
	URL        = "$"
	BinaryDesc = "bin-stream"
)

// SimpleUIStateName is the notes value naming the UI-state stream.
const SimpleUIStateName = "Simple UI State"

// customIconsStreamName is deduplicated against the most recently stored
// unknown stream on load (spec.md §4.7).
const customIconsStreamName = "KPX_CUSTOM_ICONS_2"

// UIState is the decoded "Simple UI State" payload. Fields are filled
// progressively as more bytes are available; zero value fields mean the
// stream didn't carry that much data.
type UIState struct {
	LastSelectedGroupID     uint32
	LastTopVisibleGroupID   uint32
	LastSelectedEntryUUID   [16]byte
	LastTopVisibleEntryUUID [16]byte
}

// DecodeUIState unpacks raw per the progressive-length rule: >=4 bytes
// yields LastSelectedGroupID, >=8 also LastTopVisibleGroupID, >=24 also
// LastSelectedEntryUUID, >=40 also LastTopVisibleEntryUUID.
func DecodeUIState(raw []byte) UIState {
	var s UIState
	if len(raw) >= 4 {
		s.LastSelectedGroupID = binary.LittleEndian.Uint32(raw[0:4])
	}
	if len(raw) >= 8 {
		s.LastTopVisibleGroupID = binary.LittleEndian.Uint32(raw[4:8])
	}
	if len(raw) >= 24 {
		copy(s.LastSelectedEntryUUID[:], raw[8:24])
	}
	if len(raw) >= 40 {
		copy(s.LastTopVisibleEntryUUID[:], raw[24:40])
	}
	return s
}

// EncodeUIState packs s into the 40-byte "Simple UI State" wire format.
func EncodeUIState(s UIState) []byte {
	buf := make([]byte, 40)
	binary.LittleEndian.PutUint32(buf[0:4], s.LastSelectedGroupID)
	binary.LittleEndian.PutUint32(buf[4:8], s.LastTopVisibleGroupID)
	copy(buf[8:24], s.LastSelectedEntryUUID[:])
	copy(buf[24:40], s.LastTopVisibleEntryUUID[:])
	return buf
}

// Stream is one raw meta-stream as extracted from, or to be injected
// into, the entry array: a name (the entry's Notes field) and its
// payload (the entry's Binary field).
type Stream struct {
	Name string
	Data []byte
}

// Route splits streams into the decoded UI state (if present; ok is
// false if no "Simple UI State" stream was found) and the ordered list
// of unknown streams to preserve verbatim, applying the
// KPX_CUSTOM_ICONS_2 deduplication rule: a stream by that name is
// dropped if it is byte-identical to the most recently kept unknown
// stream.
func Route(streams []Stream) (state UIState, stateOK bool, unknown []Stream) {
	var lastKept []byte
	for _, s := range streams {
		if s.Name == SimpleUIStateName {
			state = DecodeUIState(s.Data)
			stateOK = true
			continue
		}
		if s.Name == customIconsStreamName && lastKept != nil && bytes.Equal(s.Data, lastKept) {
			continue
		}
		unknown = append(unknown, s)
		lastKept = s.Data
	}
	return state, stateOK, unknown
}
