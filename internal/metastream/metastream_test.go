package metastream

import (
	"bytes"
	"testing"
)

func TestUIStateRoundTrip(t *testing.T) {
	want := UIState{
		LastSelectedGroupID:     0x01020304,
		LastTopVisibleGroupID:   0x05060708,
		LastSelectedEntryUUID:   [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		LastTopVisibleEntryUUID: [16]byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	}
	got := DecodeUIState(EncodeUIState(want))
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeUIStateProgressiveThresholds(t *testing.T) {
	full := EncodeUIState(UIState{
		LastSelectedGroupID:   0xAABBCCDD,
		LastTopVisibleGroupID: 0x11223344,
	})

	if got := DecodeUIState(full[:3]); got != (UIState{}) {
		t.Fatalf("below 4 bytes should decode to the zero value, got %+v", got)
	}
	if got := DecodeUIState(full[:4]); got.LastSelectedGroupID != 0xAABBCCDD || got.LastTopVisibleGroupID != 0 {
		t.Fatalf("4 bytes should decode only LastSelectedGroupID, got %+v", got)
	}
	if got := DecodeUIState(full[:8]); got.LastTopVisibleGroupID != 0x11223344 {
		t.Fatalf("8 bytes should also decode LastTopVisibleGroupID, got %+v", got)
	}
}

// TestRouteDedupesRepeatedCustomIconsStream is scenario S6: a duplicate
// "KPX_CUSTOM_ICONS_2" payload immediately following the kept copy is
// dropped, and an unrelated stream after it is preserved.
func TestRouteDedupesRepeatedCustomIconsStream(t *testing.T) {
	icons := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	streams := []Stream{
		{Name: customIconsStreamName, Data: icons},
		{Name: customIconsStreamName, Data: append([]byte(nil), icons...)},
		{Name: "some-other-stream", Data: []byte{0x01}},
	}

	_, _, unknown := Route(streams)
	if len(unknown) != 2 {
		t.Fatalf("expected the duplicate custom-icons stream to be dropped, got %d streams", len(unknown))
	}
	if unknown[0].Name != customIconsStreamName || !bytes.Equal(unknown[0].Data, icons) {
		t.Fatal("first custom-icons stream should survive byte-identically")
	}
	if unknown[1].Name != "some-other-stream" {
		t.Fatal("unrelated unknown stream should be preserved")
	}
}

func TestRouteExtractsUIState(t *testing.T) {
	want := UIState{LastSelectedGroupID: 42}
	streams := []Stream{
		{Name: SimpleUIStateName, Data: EncodeUIState(want)},
		{Name: "legacy-blob", Data: []byte{0x01, 0x02}},
	}

	state, ok, unknown := Route(streams)
	if !ok {
		t.Fatal("expected stateOK to be true when a Simple UI State stream is present")
	}
	if state.LastSelectedGroupID != 42 {
		t.Fatalf("LastSelectedGroupID = %d, want 42", state.LastSelectedGroupID)
	}
	if len(unknown) != 1 || unknown[0].Name != "legacy-blob" {
		t.Fatal("the UI state stream must not appear in the unknown list")
	}
}

func TestRouteNoUIStateStream(t *testing.T) {
	_, ok, unknown := Route([]Stream{{Name: "legacy-blob", Data: []byte{0x01}}})
	if ok {
		t.Fatal("stateOK should be false when no Simple UI State stream is present")
	}
	if len(unknown) != 1 {
		t.Fatal("non-UI-state streams should still be preserved as unknown")
	}
}
