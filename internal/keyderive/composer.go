// Package keyderive implements C1 (Key Composer) and C2 (Key Transformer):
// turning a passphrase and/or key-file into the 32-byte raw master key, and
// stretching that key through iterated AES encryption into the final file
// key. See spec.md §4.1-4.2.
package keyderive

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/secret"
)

const keyFileChunkSize = 2048

// RawKeySize is the size in bytes of the raw master key produced by
// Compose and consumed by Transform.
const RawKeySize = 32

// Source selects how the raw master key is composed.
type Source struct {
	// Passphrase is the UTF-8 passphrase bytes. Nil/empty means no
	// passphrase component.
	Passphrase []byte
	// KeyFilePath, if non-empty, is read per the key-file rule in
	// spec.md §4.1, or written instead when Generate is set.
	KeyFilePath string
	// Generate requests that a fresh 32-byte key be created and written
	// to KeyFilePath as 64 ASCII-hex characters, rather than read.
	Generate bool
	// Overwrite allows Generate to replace an existing file at
	// KeyFilePath. Ignored unless Generate is true.
	Overwrite bool
	// Rand is the random source used when Generate is true. Required
	// when Generate is set.
	Rand io.Reader
}

// Compose derives the 32-byte raw master key from src, per spec.md §4.1.
// All intermediate buffers (passphrase hash, key-file hash, file chunks)
// are wiped before Compose returns, success or failure.
func Compose(src Source) (rawKey [32]byte, err error) {
	const op = "keyderive.Compose"

	hasPassphrase := len(src.Passphrase) > 0
	hasKeyFile := src.KeyFilePath != ""

	if !hasPassphrase && !hasKeyFile {
		return rawKey, dberr.New(dberr.InvalidParam, op, errors.New("no passphrase or key file given"))
	}

	var fileKey [32]byte
	defer secret.Zero32(&fileKey)

	if hasKeyFile {
		if src.Generate {
			fk, genErr := generateKeyFile(src.KeyFilePath, src.Overwrite, src.Rand)
			if genErr != nil {
				return rawKey, genErr
			}
			fileKey = fk
		} else {
			fk, readErr := readKeyFile(src.KeyFilePath)
			if readErr != nil {
				return rawKey, readErr
			}
			fileKey = fk
		}
	}

	switch {
	case hasPassphrase && hasKeyFile:
		var pwKey [32]byte
		defer secret.Zero32(&pwKey)
		pwKey = sha256.Sum256(src.Passphrase)

		combined := make([]byte, 0, 64)
		combined = append(combined, pwKey[:]...)
		combined = append(combined, fileKey[:]...)
		defer secret.Zero(combined)
		rawKey = sha256.Sum256(combined)

	case hasPassphrase:
		rawKey = sha256.Sum256(src.Passphrase)

	case hasKeyFile:
		rawKey = fileKey
	}

	return rawKey, nil
}

// readKeyFile applies the key-file decoding rule: 32 raw bytes are used
// as-is, 64 ASCII-hex characters are decoded, anything else is hashed with
// SHA-256 streamed in 2048-byte chunks.
func readKeyFile(path string) ([32]byte, error) {
	const op = "keyderive.readKeyFile"
	var out [32]byte

	f, err := os.Open(path)
	if err != nil {
		return out, dberr.New(dberr.NoFileAccessReadKey, op, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return out, dberr.New(dberr.NoFileAccessReadKey, op, err)
	}

	switch info.Size() {
	case 32:
		buf := make([]byte, 32)
		if _, err := io.ReadFull(f, buf); err != nil {
			return out, dberr.New(dberr.FileErrorRead, op, err)
		}
		defer secret.Zero(buf)
		copy(out[:], buf)
		return out, nil

	case 64:
		hexBuf := make([]byte, 64)
		if _, err := io.ReadFull(f, hexBuf); err != nil {
			return out, dberr.New(dberr.FileErrorRead, op, err)
		}
		defer secret.Zero(hexBuf)
		if looksLikeHex(hexBuf) {
			decoded := make([]byte, 32)
			if _, err := hex.Decode(decoded, hexBuf); err != nil {
				return out, dberr.New(dberr.InvalidFileHeader, op, err)
			}
			defer secret.Zero(decoded)
			copy(out[:], decoded)
			return out, nil
		}
		fallthrough

	default:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return out, dberr.New(dberr.FileErrorRead, op, err)
		}
		h := sha256.New()
		chunk := make([]byte, keyFileChunkSize)
		defer secret.Zero(chunk)
		for {
			n, readErr := f.Read(chunk)
			if n > 0 {
				h.Write(chunk[:n])
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return out, dberr.New(dberr.FileErrorRead, op, readErr)
			}
		}
		sum := h.Sum(nil)
		copy(out[:], sum)
		return out, nil
	}
}

func looksLikeHex(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// generateKeyFile creates 32 random bytes, writes them as 64 ASCII-hex
// characters to path, and returns the 32 raw bytes for immediate use.
func generateKeyFile(path string, overwrite bool, rnd io.Reader) ([32]byte, error) {
	const op = "keyderive.generateKeyFile"
	var out [32]byte

	if rnd == nil {
		rnd = rand.Reader
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return out, dberr.New(dberr.NoFileAccessReadKey, op, errors.Errorf("key file %q already exists", path))
		} else if !os.IsNotExist(err) {
			return out, dberr.New(dberr.NoFileAccessReadKey, op, err)
		}
	}

	if _, err := io.ReadFull(rnd, out[:]); err != nil {
		return out, dberr.New(dberr.InvalidRandomSource, op, err)
	}

	hexBuf := make([]byte, 64)
	hex.Encode(hexBuf, out[:])
	defer secret.Zero(hexBuf)

	if err := os.WriteFile(path, hexBuf, 0o600); err != nil {
		return out, dberr.New(dberr.NoFileAccessWrite, op, err)
	}
	return out, nil
}
