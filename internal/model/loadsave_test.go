package model

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/keyderive"
)

func mustComposeKey(t *testing.T, passphrase string) [32]byte {
	t.Helper()
	key, err := keyderive.Compose(keyderive.Source{Passphrase: []byte(passphrase)})
	if err != nil {
		t.Fatalf("keyderive.Compose: %v", err)
	}
	return key
}

// TestSaveThenLoadRecoversPassword exercises creating a database, saving
// it under a passphrase, then reloading it and confirming the stored
// password decrypts back to its original cleartext.
func TestSaveThenLoadRecoversPassword(t *testing.T) {
	d, err := New(rand.Reader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetMasterKey(mustComposeKey(t, "abc"))
	d.KeyEncRounds = 10

	g, err := d.AddGroup(Group{Name: "Internet"})
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if _, err := d.AddEntry(Entry{GroupID: g.ID, Title: "bank", Username: "alice", Password: []byte("s3cr3t")}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d.Close()

	reloaded, err := Load(bytes.NewReader(buf.Bytes()), rand.Reader, LoadOptions{RawKey: mustComposeKey(t, "abc")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer reloaded.Close()

	if len(reloaded.Groups()) != 1 || reloaded.Groups()[0].Name != "Internet" {
		t.Fatal("reloaded database should contain the saved group")
	}
	if len(reloaded.Entries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(reloaded.Entries()))
	}
	e := reloaded.Entries()[0]
	reloaded.unlockEntry(e)
	got := append([]byte(nil), e.Password[:e.PasswordLen]...)
	reloaded.lockEntry(e)
	if !bytes.Equal(got, []byte("s3cr3t")) {
		t.Fatalf("recovered password = %q, want s3cr3t", got)
	}
}

// TestLoadWithWrongPassphraseFailsInvalidKey reloads a database saved
// under "abc" with the passphrase "abd" and expects the content-hash
// check to reject the mismatched key.
func TestLoadWithWrongPassphraseFailsInvalidKey(t *testing.T) {
	d, err := New(rand.Reader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetMasterKey(mustComposeKey(t, "abc"))
	d.KeyEncRounds = 10
	if _, err := d.AddGroup(Group{Name: "G"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d.Close()

	_, err = Load(bytes.NewReader(buf.Bytes()), rand.Reader, LoadOptions{RawKey: mustComposeKey(t, "abd")})
	if !dberr.Is(err, dberr.InvalidKey) {
		t.Fatalf("expected InvalidKey with the wrong passphrase, got %v", err)
	}
}

// TestSaveLoadRoundTripPreservesStructure verifies a database with a
// multi-level group tree and several entries survives a save/load cycle
// with its structure intact (modulo meta-stream bookkeeping, which the
// load path strips automatically).
func TestSaveLoadRoundTripPreservesStructure(t *testing.T) {
	d, err := New(rand.Reader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetMasterKey(mustComposeKey(t, "correct horse"))
	d.KeyEncRounds = 5

	root, _ := d.AddGroup(Group{Name: "Root", Level: 0})
	child, _ := d.AddGroup(Group{Name: "Child", Level: 1})
	_, _ = d.AddEntry(Entry{GroupID: root.ID, Title: "one", Password: []byte("p1")})
	_, _ = d.AddEntry(Entry{GroupID: child.ID, Title: "two", Password: []byte("p2")})

	var buf bytes.Buffer
	if err := d.Save(&buf, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d.Close()

	reloaded, err := Load(bytes.NewReader(buf.Bytes()), rand.Reader, LoadOptions{RawKey: mustComposeKey(t, "correct horse")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer reloaded.Close()

	if len(reloaded.Groups()) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(reloaded.Groups()))
	}
	if len(reloaded.Entries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(reloaded.Entries()))
	}
	if reloaded.Groups()[1].Level != 1 {
		t.Fatalf("child group level = %d, want 1", reloaded.Groups()[1].Level)
	}
}
