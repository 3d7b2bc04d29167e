package dbfile

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
	"golang.org/x/crypto/twofish"

	"github.com/passlocker/core/internal/dberr"
)

// blockCipher constructs the cipher.Block selected by kind, keyed with
// key. Both RIJNDAEL (AES-256) and TWOFISH-256 take a 32-byte key.
func blockCipher(kind CipherKind, key [32]byte) (cipher.Block, error) {
	const op = "dbfile.blockCipher"

	switch kind {
	case CipherRijndael:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, dberr.New(dberr.CryptError, op, err)
		}
		return block, nil
	case CipherTwofish:
		block, err := twofish.NewCipher(key[:])
		if err != nil {
			return nil, dberr.New(dberr.CryptError, op, err)
		}
		return block, nil
	default:
		return nil, dberr.New(dberr.CryptError, op, errors.Errorf("unknown cipher kind %d", kind))
	}
}

// pkcs7Pad pads data to a multiple of blockSize using PKCS#7 padding. A
// full extra block of padding is appended when data is already aligned,
// so the pad can always be identified and stripped.
func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

// pkcs7Unpad strips and validates PKCS#7 padding from data, which must
// already be a non-empty multiple of blockSize.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	const op = "dbfile.pkcs7Unpad"

	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, dberr.New(dberr.InvalidKey, op, errors.New("ciphertext not block-aligned"))
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, dberr.New(dberr.InvalidKey, op, errors.New("invalid padding"))
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, dberr.New(dberr.InvalidKey, op, errors.New("invalid padding"))
		}
	}
	return data[:len(data)-pad], nil
}

// encryptPayload pads cleartext with PKCS#7 and CBC-encrypts it with
// block, keyed implicitly by the caller's construction of block, using iv.
func encryptPayload(block cipher.Block, iv [16]byte, cleartext []byte) []byte {
	padded := pkcs7Pad(cleartext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv[:])
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext
}

// decryptPayload CBC-decrypts ciphertext with block and iv, then strips
// and validates PKCS#7 padding.
func decryptPayload(block cipher.Block, iv [16]byte, ciphertext []byte) ([]byte, error) {
	const op = "dbfile.decryptPayload"

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, dberr.New(dberr.InvalidFileSize, op, errors.New("ciphertext not block-aligned"))
	}
	padded := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv[:])
	mode.CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded, block.BlockSize())
}
