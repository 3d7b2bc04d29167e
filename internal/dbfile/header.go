// Package dbfile implements C4, the file header and crypto envelope
// described in spec.md §4.4: a fixed 124-byte header followed by a
// CBC-encrypted TLV payload, guarded by a content hash.
package dbfile

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
)

// HeaderSize is the fixed on-disk size of Header, in bytes.
const HeaderSize = 124

// Signature constants, carried over from the legacy format this spec
// inherits (spec.md §4.4: "must match the legacy values shipped by the
// source").
const (
	Signature1 uint32 = 0x9AA2D903
	Signature2 uint32 = 0xB54BFB65
)

// Version is the only file-format version this implementation accepts;
// older major/minor pairs are out of scope per spec.md §1.
const Version uint32 = 0x00030003

// Cipher selection bits within Header.Flags. Exactly one must be set.
const (
	FlagSHA2     uint32 = 1
	FlagRijndael uint32 = 2
	FlagTwofish  uint32 = 8
)

// Header is the fixed 124-byte file header, all fields little-endian on
// the wire.
type Header struct {
	Signature1   uint32
	Signature2   uint32
	Flags        uint32
	Version      uint32
	MasterSeed   [16]byte
	IV           [16]byte
	GroupCount   uint32
	EntryCount   uint32
	ContentsHash [32]byte
	MasterSeed2  [32]byte
	KeyEncRounds uint32
}

// ReadHeader parses the fixed-size header from the front of r.
func ReadHeader(r io.Reader) (*Header, error) {
	const op = "dbfile.ReadHeader"

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, dberr.New(dberr.InvalidFileHeader, op, err)
	}

	h := &Header{
		Signature1:   binary.LittleEndian.Uint32(buf[0:4]),
		Signature2:   binary.LittleEndian.Uint32(buf[4:8]),
		Flags:        binary.LittleEndian.Uint32(buf[8:12]),
		Version:      binary.LittleEndian.Uint32(buf[12:16]),
		GroupCount:   binary.LittleEndian.Uint32(buf[48:52]),
		EntryCount:   binary.LittleEndian.Uint32(buf[52:56]),
		KeyEncRounds: binary.LittleEndian.Uint32(buf[120:124]),
	}
	copy(h.MasterSeed[:], buf[16:32])
	copy(h.IV[:], buf[32:48])
	copy(h.ContentsHash[:], buf[56:88])
	copy(h.MasterSeed2[:], buf[88:120])

	if h.Signature1 != Signature1 || h.Signature2 != Signature2 {
		return nil, dberr.New(dberr.InvalidFileSignature, op, errors.New("signature mismatch"))
	}
	if h.Version != Version {
		return nil, dberr.New(dberr.InvalidFileHeader, op, errors.Errorf("unsupported version %#x", h.Version))
	}

	return h, nil
}

// WriteHeader serializes h to w in the fixed 124-byte layout.
func WriteHeader(w io.Writer, h *Header) error {
	const op = "dbfile.WriteHeader"

	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Signature1)
	binary.LittleEndian.PutUint32(buf[4:8], h.Signature2)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.Version)
	copy(buf[16:32], h.MasterSeed[:])
	copy(buf[32:48], h.IV[:])
	binary.LittleEndian.PutUint32(buf[48:52], h.GroupCount)
	binary.LittleEndian.PutUint32(buf[52:56], h.EntryCount)
	copy(buf[56:88], h.ContentsHash[:])
	copy(buf[88:120], h.MasterSeed2[:])
	binary.LittleEndian.PutUint32(buf[120:124], h.KeyEncRounds)

	if _, err := w.Write(buf[:]); err != nil {
		return dberr.New(dberr.FileErrorWrite, op, err)
	}
	return nil
}

// CipherKind selects the block cipher driving the CBC envelope.
type CipherKind int

const (
	CipherRijndael CipherKind = iota
	CipherTwofish
)

// SelectCipher reads the cipher-suite bits out of flags. Exactly one of
// RIJNDAEL/TWOFISH must be set, per spec.md §4.4 step 4.
func SelectCipher(flags uint32) (CipherKind, error) {
	const op = "dbfile.SelectCipher"

	rijndael := flags&FlagRijndael != 0
	twofish := flags&FlagTwofish != 0

	switch {
	case rijndael && !twofish:
		return CipherRijndael, nil
	case twofish && !rijndael:
		return CipherTwofish, nil
	default:
		return 0, dberr.New(dberr.InvalidFileHeader, op, errors.New("exactly one of RIJNDAEL/TWOFISH must be set"))
	}
}
