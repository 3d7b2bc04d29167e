package model

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/dbfile"
	"github.com/passlocker/core/internal/secret"
)

// UnknownStream is a preserved, unrecognized meta-stream, kept verbatim
// for round-trip (spec.md §4.7).
type UnknownStream struct {
	Name string
	Data []byte
}

// Database is the owning container for a flattened group array and an
// entry array, plus the secret material and UI-state bookkeeping
// spec.md §3 assigns to it.
type Database struct {
	groups  []*Group
	entries []*Entry

	rawKey     [32]byte
	sessionKey [32]byte
	obfuscator *secret.Obfuscator

	// Cipher and KeyEncRounds persist across Save so a caller that loaded
	// a file preserves its original cost parameters unless it explicitly
	// changes them.
	Cipher       dbfile.CipherKind
	KeyEncRounds uint32

	unknownStreams []UnknownStream

	lastSelectedGroupID     uint32
	lastTopVisibleGroupID   uint32
	lastSelectedEntryUUID   [16]byte
	lastTopVisibleEntryUUID [16]byte

	rand io.Reader
}

// New returns an empty database. rnd supplies every random byte the
// database subsequently needs (group-id allocation, entry and
// meta-stream UUIDs, session key, and, unless overridden per-call,
// save-time seeds); nil defaults to
// crypto/rand.Reader.
func New(rnd io.Reader) (*Database, error) {
	const op = "model.New"

	if rnd == nil {
		rnd = rand.Reader
	}

	d := &Database{
		Cipher:       dbfile.CipherRijndael,
		KeyEncRounds: 6000,
		rand:         rnd,
	}

	if _, err := io.ReadFull(rnd, d.sessionKey[:]); err != nil {
		return nil, dberr.New(dberr.InvalidRandomSource, op, err)
	}
	d.obfuscator = secret.New(d.sessionKey)
	secret.LockMemory(d.sessionKey[:])

	return d, nil
}

// SetMasterKey installs rawKey (the output of keyderive.Compose) as the
// database's raw master key, replacing and wiping any previous one and
// pinning the new one against swap.
func (d *Database) SetMasterKey(rawKey [32]byte) {
	secret.Zero32(&d.rawKey)
	secret.UnlockMemory(d.rawKey[:])
	d.rawKey = rawKey
	secret.LockMemory(d.rawKey[:])
}

// Close zeroes every secret buffer the database owns: the raw master
// key, the session key (both the database's own copy and the
// Obfuscator's), and every entry's obfuscated password buffer. The
// database must not be used after Close.
func (d *Database) Close() {
	for _, e := range d.entries {
		secret.Zero(e.Password)
	}
	d.obfuscator.Zero()
	secret.Zero32(&d.rawKey)
	secret.Zero32(&d.sessionKey)
	secret.UnlockMemory(d.rawKey[:])
	secret.UnlockMemory(d.sessionKey[:])
}

// Groups returns the live, ordered group slice. Indices are valid only
// until the next structural mutation (spec.md §5).
func (d *Database) Groups() []*Group { return d.groups }

// Entries returns the live, ordered entry slice. Indices are valid only
// until the next structural mutation (spec.md §5).
func (d *Database) Entries() []*Entry { return d.entries }

// GroupByID returns the group with the given id, or nil if none matches.
func (d *Database) GroupByID(id uint32) *Group {
	for _, g := range d.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// GroupIndexByID returns the array index of the group with the given id,
// or -1 if none matches.
func (d *Database) GroupIndexByID(id uint32) int {
	for i, g := range d.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// EntryByUUID returns the entry with the given UUID, or nil if none
// matches.
func (d *Database) EntryByUUID(uuid [16]byte) *Entry {
	for _, e := range d.entries {
		if e.UUID == uuid {
			return e
		}
	}
	return nil
}

// EntryIndexByUUID returns the array index of the entry with the given
// UUID, or -1 if none matches.
func (d *Database) EntryIndexByUUID(uuid [16]byte) int {
	for i, e := range d.entries {
		if e.UUID == uuid {
			return i
		}
	}
	return -1
}

// EntryInGroup returns the nth (0-based) entry belonging to groupID, in
// array order, or nil if there are fewer than n+1 such entries.
func (d *Database) EntryInGroup(groupID uint32, n int) *Entry {
	count := 0
	for _, e := range d.entries {
		if e.GroupID == groupID {
			if count == n {
				return e
			}
			count++
		}
	}
	return nil
}

// unlockEntry XORs e.Password back to cleartext in place using the
// session keystream. Every caller must pair this with lockEntry.
func (d *Database) unlockEntry(e *Entry) {
	d.obfuscator.Unlock(e.Password[:e.PasswordLen])
}

// lockEntry re-obfuscates e.Password after a matching unlockEntry.
func (d *Database) lockEntry(e *Entry) {
	d.obfuscator.Lock(e.Password[:e.PasswordLen])
}

// setEntryPassword replaces e's password with cleartext, storing it in
// locked (obfuscated) form, per C6's at-rest invariant.
func (d *Database) setEntryPassword(e *Entry, cleartext []byte) {
	e.Password = append(e.Password[:0], cleartext...)
	e.PasswordLen = len(cleartext)
	d.obfuscator.Lock(e.Password)
}

// randomGroupID allocates a fresh, non-reserved group id not already in
// use, by rejection sampling the random source (spec.md §4.5).
func (d *Database) randomGroupID() (uint32, error) {
	const op = "model.randomGroupID"
	var buf [4]byte
	for attempt := 0; attempt < 1<<16; attempt++ {
		if _, err := io.ReadFull(d.rand, buf[:]); err != nil {
			return 0, dberr.New(dberr.InvalidRandomSource, op, err)
		}
		id := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if isReservedGroupID(id) {
			continue
		}
		if d.GroupByID(id) == nil {
			return id, nil
		}
	}
	return 0, dberr.New(dberr.NoMem, op, errors.New("exhausted attempts allocating a unique group id"))
}
