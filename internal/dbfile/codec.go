package dbfile

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/keyderive"
)

// maxPayloadSize is the upper bound on decrypted payload size spec.md
// §4.4 step 7 imposes: 2^31 - 202.
const maxPayloadSize = 1<<31 - 202

// LoadResult is the header and decrypted, hash-verified TLV payload
// produced by Load.
type LoadResult struct {
	Header  *Header
	Payload []byte
}

// LoadOptions configures Load.
type LoadOptions struct {
	// RawKey is the composed master key from C1 (keyderive.Compose).
	RawKey [32]byte
	// Repair disables the content-hash check and truncates a misaligned
	// ciphertext down to a multiple of 16 bytes, per spec.md §4.4.
	Repair bool
}

// Load reads a full database file from r: header, signature and version
// checks, cipher selection, key transform, CBC decryption, and (unless
// Repair is set) content-hash verification.
func Load(r io.Reader, opts LoadOptions) (*LoadResult, error) {
	const op = "dbfile.Load"

	all, err := io.ReadAll(r)
	if err != nil {
		return nil, dberr.New(dberr.FileErrorRead, op, err)
	}
	if len(all) < HeaderSize {
		return nil, dberr.New(dberr.InvalidFileHeader, op, errors.New("file shorter than header"))
	}

	header, err := ReadHeader(bytes.NewReader(all[:HeaderSize]))
	if err != nil {
		return nil, err
	}

	ciphertext := all[HeaderSize:]
	if len(ciphertext)%16 != 0 {
		if !opts.Repair {
			return nil, dberr.New(dberr.InvalidFileSize, op, errors.New("ciphertext length not a multiple of 16"))
		}
		ciphertext = ciphertext[:len(ciphertext)-len(ciphertext)%16]
	}

	kind, err := SelectCipher(header.Flags)
	if err != nil {
		return nil, err
	}

	finalKey, err := keyderive.Transform(opts.RawKey, header.MasterSeed, header.MasterSeed2, header.KeyEncRounds)
	if err != nil {
		return nil, err
	}

	block, err := blockCipher(kind, finalKey)
	if err != nil {
		return nil, err
	}

	payload, err := decryptPayload(block, header.IV, ciphertext)
	if err != nil {
		return nil, err
	}

	if len(payload) > maxPayloadSize {
		return nil, dberr.New(dberr.InvalidKey, op, errors.New("decrypted payload implausibly large"))
	}
	if len(payload) == 0 && (header.GroupCount != 0 || header.EntryCount != 0) {
		return nil, dberr.New(dberr.InvalidKey, op, errors.New("empty payload with non-zero group/entry count"))
	}

	if !opts.Repair {
		gotHash := sha256.Sum256(payload)
		if subtle.ConstantTimeCompare(gotHash[:], header.ContentsHash[:]) != 1 {
			return nil, dberr.New(dberr.InvalidKey, op, errors.New("content hash mismatch"))
		}
	}

	return &LoadResult{Header: header, Payload: payload}, nil
}

// SaveOptions configures Save.
type SaveOptions struct {
	RawKey       [32]byte
	Cipher       CipherKind
	KeyEncRounds uint32
	GroupCount   uint32
	EntryCount   uint32
	// Rand supplies MasterSeed, IV, and MasterSeed2. Required.
	Rand io.Reader
}

// Save writes a complete database file to w: fresh random seeds, key
// transform, content hash, CBC encryption with PKCS#7 padding, then the
// header followed by ciphertext.
func Save(w io.Writer, cleartext []byte, opts SaveOptions) error {
	const op = "dbfile.Save"

	header := &Header{
		Signature1:   Signature1,
		Signature2:   Signature2,
		Version:      Version,
		GroupCount:   opts.GroupCount,
		EntryCount:   opts.EntryCount,
		KeyEncRounds: opts.KeyEncRounds,
	}
	switch opts.Cipher {
	case CipherRijndael:
		header.Flags = FlagRijndael
	case CipherTwofish:
		header.Flags = FlagTwofish
	default:
		return dberr.New(dberr.InvalidParam, op, errors.Errorf("unknown cipher kind %d", opts.Cipher))
	}

	if _, err := io.ReadFull(opts.Rand, header.MasterSeed[:]); err != nil {
		return dberr.New(dberr.InvalidRandomSource, op, err)
	}
	if _, err := io.ReadFull(opts.Rand, header.IV[:]); err != nil {
		return dberr.New(dberr.InvalidRandomSource, op, err)
	}
	if _, err := io.ReadFull(opts.Rand, header.MasterSeed2[:]); err != nil {
		return dberr.New(dberr.InvalidRandomSource, op, err)
	}

	header.ContentsHash = sha256.Sum256(cleartext)

	finalKey, err := keyderive.Transform(opts.RawKey, header.MasterSeed, header.MasterSeed2, opts.KeyEncRounds)
	if err != nil {
		return err
	}

	block, err := blockCipher(opts.Cipher, finalKey)
	if err != nil {
		return err
	}

	ciphertext := encryptPayload(block, header.IV, cleartext)

	if err := WriteHeader(w, header); err != nil {
		return err
	}
	if _, err := w.Write(ciphertext); err != nil {
		return dberr.New(dberr.FileErrorWrite, op, err)
	}
	return nil
}
