package keyderive

import (
	"bytes"
	"crypto/aes"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/secret"
)

// StdKeyEncRounds is the default iteration count used when a database is
// created without an explicit round count, matching PWM_STD_KEYENCROUNDS
// in the original source.
const StdKeyEncRounds = 6000

// MaxKeyEncRounds clamps any requested round count of U32_MAX down to
// U32_MAX-1, per the original implementation's policy (spec.md §9 open
// question, resolved in SPEC_FULL.md §5.2).
const MaxKeyEncRounds = 0xFFFFFFFF - 1

// ClampRounds applies the U32_MAX clamp policy to a requested round count.
func ClampRounds(requested uint32) uint32 {
	if requested == 0xFFFFFFFF {
		return MaxKeyEncRounds
	}
	return requested
}

// katKey and katPlaintext/katCiphertext are the fixed known-answer AES
// vectors spec.md §4.2 requires be checked on every transform.
var (
	katKey = func() [32]byte {
		var k [32]byte
		for i := range k {
			k[i] = byte(i)
		}
		return k
	}()
	katPlaintext = func() [16]byte {
		var p [16]byte
		for i := range p {
			p[i] = byte((i << 4) | i)
		}
		return p
	}()
	katCiphertext = [16]byte{
		0x8e, 0xa2, 0xb7, 0xca, 0x51, 0x67, 0x45, 0xbf,
		0xea, 0xfc, 0x49, 0x90, 0x4b, 0x49, 0x60, 0x89,
	}
)

// selfTestAES runs the embedded known-answer test and returns an error if
// the local AES implementation disagrees with the published vector.
func selfTestAES() error {
	block, err := aes.NewCipher(katKey[:])
	if err != nil {
		return err
	}
	var got [16]byte
	block.Encrypt(got[:], katPlaintext[:])
	if !bytes.Equal(got[:], katCiphertext[:]) {
		return errors.New("AES known-answer test failed")
	}
	return nil
}

// Transform stretches rawKey into the final file key per spec.md §4.2:
// N rounds of AES-256 ECB-mode encryption (keyed by masterSeed2) applied
// independently to each 16-byte half of the working buffer, followed by a
// SHA-256 of the result, then a final SHA-256 binding in masterSeed16.
//
// The AES known-answer test is run on every call and the operation fails
// with dberr.CryptError on mismatch, per spec.md §4.2's self-test
// requirement.
func Transform(rawKey [32]byte, masterSeed16 [16]byte, masterSeed2 [32]byte, rounds uint32) (finalKey [32]byte, err error) {
	const op = "keyderive.Transform"

	if err := selfTestAES(); err != nil {
		return finalKey, dberr.New(dberr.CryptError, op, err)
	}

	block, err := aes.NewCipher(masterSeed2[:])
	if err != nil {
		return finalKey, dberr.New(dberr.CryptError, op, err)
	}

	work := rawKey
	defer secret.Zero32(&work)

	rounds = ClampRounds(rounds)
	for i := uint32(0); i < rounds; i++ {
		block.Encrypt(work[0:16], work[0:16])
		block.Encrypt(work[16:32], work[16:32])
	}

	stretched := sha256.Sum256(work[:])
	defer secret.Zero32(&stretched)

	buf := make([]byte, 0, 16+32)
	buf = append(buf, masterSeed16[:]...)
	buf = append(buf, stretched[:]...)
	defer secret.Zero(buf)

	finalKey = sha256.Sum256(buf)
	return finalKey, nil
}
