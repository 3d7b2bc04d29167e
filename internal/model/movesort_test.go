package model

import (
	"testing"

	"github.com/passlocker/core/internal/tlv"
)

func TestMoveEntryPreservesOtherOrder(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	a, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "a", Password: []byte("x")})
	b, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "b", Password: []byte("x")})
	c, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "c", Password: []byte("x")})

	if err := d.MoveEntry(0, 2); err != nil {
		t.Fatalf("MoveEntry: %v", err)
	}
	got := d.Entries()
	if got[0] != b || got[1] != c || got[2] != a {
		t.Fatalf("unexpected order after MoveEntry(0,2): %v %v %v", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestMoveEntryRejectsOutOfRange(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	_, _ = d.AddEntry(Entry{GroupID: g.ID, Title: "a", Password: []byte("x")})

	if err := d.MoveEntry(0, 5); err == nil {
		t.Fatal("expected an error moving to an out-of-range index")
	}
}

func TestMoveInGroupOnlyReindexesWithinGroup(t *testing.T) {
	d := newTestDB(t)
	g1, _ := d.AddGroup(Group{Name: "G1"})
	g2, _ := d.AddGroup(Group{Name: "G2"})
	o, _ := d.AddEntry(Entry{GroupID: g2.ID, Title: "other", Password: []byte("x")})
	a, _ := d.AddEntry(Entry{GroupID: g1.ID, Title: "a", Password: []byte("x")})
	b, _ := d.AddEntry(Entry{GroupID: g1.ID, Title: "b", Password: []byte("x")})

	if err := d.MoveInGroup(g1.ID, 0, 1); err != nil {
		t.Fatalf("MoveInGroup: %v", err)
	}

	got := d.Entries()
	if got[0] != o {
		t.Fatal("entry belonging to a different group should not move")
	}
	if got[1] != b || got[2] != a {
		t.Fatalf("group-relative order wrong: %v %v", got[1].Title, got[2].Title)
	}
}

func TestMoveGroupRunsFixup(t *testing.T) {
	d := newTestDB(t)
	_, _ = d.AddGroup(Group{Name: "Root", Level: 0})
	_, _ = d.AddGroup(Group{Name: "Child", Level: 1})

	if err := d.MoveGroup(1, 0); err != nil {
		t.Fatalf("MoveGroup: %v", err)
	}
	if d.Groups()[0].Level != 0 {
		t.Fatal("group moved to index 0 should have had its level fixed up to 0")
	}
}

func TestSortGroupStringFieldsAscending(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	zeta, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "Zeta", Password: []byte("x")})
	alpha, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "alpha", Password: []byte("x")})

	d.SortGroup(g.ID, SortTitle)

	got := d.Entries()
	if got[0] != alpha || got[1] != zeta {
		t.Fatalf("expected case-insensitive ascending title order, got %v %v", got[0].Title, got[1].Title)
	}
}

// TestSortGroupIsStableForEqualKeys regression-tests that entries
// sharing the sort key keep their original relative order: a group with
// two title-2 entries followed by a title-1 entry must sort to
// [title-1, then the two title-2 entries in their original order], not
// swap the equal-key pair.
func TestSortGroupIsStableForEqualKeys(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	twoA, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "2", Username: "a", Password: []byte("x")})
	twoB, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "2", Username: "b", Password: []byte("x")})
	one, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "1", Password: []byte("x")})

	d.SortGroup(g.ID, SortTitle)

	got := d.Entries()
	if got[0] != one || got[1] != twoA || got[2] != twoB {
		t.Fatalf("expected stable order [1, 2a, 2b], got [%s/%s, %s/%s, %s/%s]",
			got[0].Title, got[0].Username, got[1].Title, got[1].Username, got[2].Title, got[2].Username)
	}
}

func TestSortGroupTimestampsDescending(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	old, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "old", Password: []byte("x"),
		LastModified: tlv.Timestamp{Year: 2020, Month: 1, Day: 1}})
	recent, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "recent", Password: []byte("x"),
		LastModified: tlv.Timestamp{Year: 2024, Month: 1, Day: 1}})

	d.SortGroup(g.ID, SortLastModified)

	got := d.Entries()
	if got[0] != recent || got[1] != old {
		t.Fatal("expected most-recently-modified entry first")
	}
}

func TestSortGroupNoneIsNoOp(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	z, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "Zeta", Password: []byte("x")})
	a, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "alpha", Password: []byte("x")})

	d.SortGroup(g.ID, SortNone)

	got := d.Entries()
	if got[0] != z || got[1] != a {
		t.Fatal("SortNone should leave entry order untouched")
	}
}

// TestSortGroupListDepthFirstOrder is scenario S3: a tree with levels
// [0,1,2,1,2,0] should sort into depth-first, case-insensitive path order.
func TestSortGroupListDepthFirstOrder(t *testing.T) {
	d := newTestDB(t)
	root, _ := d.AddGroup(Group{Name: "zroot", Level: 0})
	c1, _ := d.AddGroup(Group{Name: "Bravo", Level: 1})
	gc1, _ := d.AddGroup(Group{Name: "Delta", Level: 2})
	c2, _ := d.AddGroup(Group{Name: "alpha", Level: 1})
	gc2, _ := d.AddGroup(Group{Name: "Charlie", Level: 2})
	root2, _ := d.AddGroup(Group{Name: "aroot", Level: 0})

	d.SortGroupList()

	got := d.Groups()
	if len(got) != 6 {
		t.Fatalf("expected 6 groups, got %d", len(got))
	}
	// "aroot" sorts before "zroot" lexicographically; within zroot,
	// "alpha/Charlie" precedes "Bravo/Delta" case-insensitively.
	want := []*Group{root2, root, c2, gc2, c1, gc1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q, want %q", i, got[i].Name, want[i].Name)
		}
	}
}
