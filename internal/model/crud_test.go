package model

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(rand.Reader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestAddGroupAssignsNonReservedID(t *testing.T) {
	d := newTestDB(t)
	g, err := d.AddGroup(Group{Name: "Internet"})
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if isReservedGroupID(g.ID) {
		t.Fatalf("assigned group id %d is reserved", g.ID)
	}
}

func TestAddEntryRejectsReservedGroupID(t *testing.T) {
	d := newTestDB(t)
	if _, err := d.AddEntry(Entry{GroupID: GroupIDNone}); err == nil {
		t.Fatal("expected an error adding an entry to group_id 0")
	}
	if _, err := d.AddEntry(Entry{GroupID: GroupIDSentinel}); err == nil {
		t.Fatal("expected an error adding an entry to the sentinel group_id")
	}
}

// TestAddEntryTwiceZeroUUIDGetsDistinctIDs is scenario S4: adding two
// entries with an all-zero UUID must yield distinct, non-zero UUIDs.
func TestAddEntryTwiceZeroUUIDGetsDistinctIDs(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})

	e1, err := d.AddEntry(Entry{GroupID: g.ID, Title: "a", Password: []byte("p1")})
	if err != nil {
		t.Fatalf("AddEntry 1: %v", err)
	}
	e2, err := d.AddEntry(Entry{GroupID: g.ID, Title: "b", Password: []byte("p2")})
	if err != nil {
		t.Fatalf("AddEntry 2: %v", err)
	}

	if isZeroUUID(e1.UUID) || isZeroUUID(e2.UUID) {
		t.Fatal("zero-uuid entries must be assigned a non-zero uuid")
	}
	if e1.UUID == e2.UUID {
		t.Fatal("two zero-uuid entries must not collide")
	}
}

func TestPasswordObfuscatedAtRestAndRecoverableThroughAPI(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	e, err := d.AddEntry(Entry{GroupID: g.ID, Title: "site", Password: []byte("hunter2")})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	if bytes.Equal(e.Password[:e.PasswordLen], []byte("hunter2")) {
		t.Fatal("password must not be stored in cleartext at rest")
	}

	d.unlockEntry(e)
	got := append([]byte(nil), e.Password[:e.PasswordLen]...)
	d.lockEntry(e)

	if !bytes.Equal(got, []byte("hunter2")) {
		t.Fatalf("unlocked password = %q, want hunter2", got)
	}
	if bytes.Equal(e.Password[:e.PasswordLen], []byte("hunter2")) {
		t.Fatal("password must be re-locked after unlockEntry/lockEntry")
	}
}

func TestDeleteEntryShiftsTailAndWipes(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	e1, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "one", Password: []byte("a")})
	e2, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "two", Password: []byte("b")})

	if err := d.DeleteEntry(0); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if len(d.Entries()) != 1 || d.Entries()[0] != e2 {
		t.Fatal("expected the second entry to shift into index 0")
	}
	if e1.Title != "" {
		t.Fatal("deleted entry's title should be wiped")
	}
}

func TestDeleteGroupByIDDeletesItsEntriesAndFixesUpTree(t *testing.T) {
	d := newTestDB(t)
	g1, _ := d.AddGroup(Group{Name: "Root", Level: 0})
	g2, _ := d.AddGroup(Group{Name: "Child", Level: 1})
	_, _ = d.AddEntry(Entry{GroupID: g2.ID, Title: "x", Password: []byte("p")})

	if err := d.DeleteGroupByID(g2.ID); err != nil {
		t.Fatalf("DeleteGroupByID: %v", err)
	}
	if len(d.Entries()) != 0 {
		t.Fatal("entries belonging to the deleted group should be gone")
	}
	if len(d.Groups()) != 1 || d.Groups()[0] != g1 {
		t.Fatal("only the remaining root group should be left")
	}
}
