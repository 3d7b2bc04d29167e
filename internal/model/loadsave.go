package model

import (
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/dbfile"
)

// LoadOptions configures Load. RawKey is the output of
// keyderive.Compose; Repair enables the best-effort partial-parse path
// described in spec.md's Design Notes (disables the content-hash check
// and truncates a misaligned ciphertext) and must never be set for a
// normal open.
type LoadOptions struct {
	RawKey [32]byte
	Repair bool
}

// Load reads, decrypts, and parses a complete database file from r into
// a freshly constructed Database, running C7 (meta-stream extraction)
// and C8 (tree fixup, orphan GC) before returning. On any failure the
// returned database is nil and its partial secret buffers have already
// been wiped.
func Load(r io.Reader, rnd io.Reader, opts LoadOptions) (*Database, error) {
	const op = "model.Load"

	result, err := dbfile.Load(r, dbfile.LoadOptions{RawKey: opts.RawKey, Repair: opts.Repair})
	if err != nil {
		return nil, err
	}

	d, err := New(rnd)
	if err != nil {
		return nil, err
	}
	d.SetMasterKey(opts.RawKey)

	kind, err := dbfile.SelectCipher(result.Header.Flags)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Cipher = kind
	d.KeyEncRounds = result.Header.KeyEncRounds

	if err := d.DecodePayload(result.Payload, result.Header.GroupCount, result.Header.EntryCount); err != nil {
		d.Close()
		return nil, err
	}

	d.ExtractMetaStreams()

	orphansBeforeLoadFixup := d.GCOrphans()
	if orphansBeforeLoadFixup != 0 {
		d.Close()
		return nil, dberr.New(dberr.InvalidFileStructure, op, errors.New("load produced orphan entries"))
	}
	d.FixupTree()

	return d, nil
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Rand supplies the per-save MasterSeed, IV, and MasterSeed2. A nil
	// Rand reuses the database's own random source.
	Rand io.Reader
}

// Save injects meta-streams, serializes the model to TLV, encrypts it
// per C4, and writes the complete file to w. The injected meta-stream
// entries are removed from the live model before Save returns,
// regardless of outcome, per spec.md §4.4 step 8.
func (d *Database) Save(w io.Writer, opts SaveOptions) error {
	rnd := opts.Rand
	if rnd == nil {
		rnd = d.rand
	}

	ids := d.InjectMetaStreams()
	defer d.StripMetaStreams(ids)

	payload := d.EncodePayload()

	return dbfile.Save(w, payload, dbfile.SaveOptions{
		RawKey:       d.rawKey,
		Cipher:       d.Cipher,
		KeyEncRounds: d.KeyEncRounds,
		GroupCount:   uint32(len(d.groups)),
		EntryCount:   uint32(len(d.entries)),
		Rand:         rnd,
	})
}
