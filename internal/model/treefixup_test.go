package model

import "testing"

func TestFixupTreeClampsLevelContinuity(t *testing.T) {
	d := newTestDB(t)
	levels := []uint16{5, 0, 3, 1, 9, 0}
	for _, lv := range levels {
		if _, err := d.AddGroup(Group{Name: "g", Level: lv}); err != nil {
			t.Fatalf("AddGroup: %v", err)
		}
	}

	d.FixupTree()

	if d.Groups()[0].Level != 0 {
		t.Fatalf("first group level = %d, want 0", d.Groups()[0].Level)
	}
	for i := 1; i < len(d.Groups()); i++ {
		if d.Groups()[i].Level > d.Groups()[i-1].Level+1 {
			t.Fatalf("level continuity violated at index %d: %d > %d+1",
				i, d.Groups()[i].Level, d.Groups()[i-1].Level)
		}
	}
}

func TestGCOrphansRemovesDanglingEntries(t *testing.T) {
	d := newTestDB(t)
	g, _ := d.AddGroup(Group{Name: "G"})
	e, _ := d.AddEntry(Entry{GroupID: g.ID, Title: "x", Password: []byte("p")})

	// Simulate the group vanishing without the entry being cleaned up.
	d.groups = d.groups[:0]

	removed := d.GCOrphans()
	if removed != 1 {
		t.Fatalf("GCOrphans removed %d entries, want 1", removed)
	}
	if d.EntryByUUID(e.UUID) != nil {
		t.Fatal("orphaned entry should have been removed")
	}
}

func TestGetGroupTreeWalksAncestors(t *testing.T) {
	d := newTestDB(t)
	root, _ := d.AddGroup(Group{Name: "Root", Level: 0})
	child, _ := d.AddGroup(Group{Name: "Child", Level: 1})
	grandchild, _ := d.AddGroup(Group{Name: "Grandchild", Level: 2})

	tree := d.GetGroupTree(grandchild.ID)
	if len(tree) != 3 {
		t.Fatalf("tree depth = %d, want 3", len(tree))
	}
	if tree[0] != root || tree[1] != child || tree[2] != grandchild {
		t.Fatal("ancestor chain does not match expected root->child->grandchild order")
	}
}

func TestGetLastChildGroup(t *testing.T) {
	d := newTestDB(t)
	_, _ = d.AddGroup(Group{Name: "Root", Level: 0})
	_, _ = d.AddGroup(Group{Name: "Child1", Level: 1})
	_, _ = d.AddGroup(Group{Name: "Child2", Level: 1})
	_, _ = d.AddGroup(Group{Name: "Sibling", Level: 0})

	last := d.GetLastChildGroup(0)
	if last != 2 {
		t.Fatalf("GetLastChildGroup(0) = %d, want 2", last)
	}
}
