package secret

import "crypto/rc4"

// Obfuscator applies a per-database session keystream to password buffers
// so that cleartext passwords do not sit in process memory between calls.
// This is a defense-in-depth mitigation, not cryptographic protection: a
// local attacker with memory-read access can recover the session key (it
// lives in the same process) and reverse the XOR. It exists only to keep
// plaintext passwords out of casual memory dumps and swap.
type Obfuscator struct {
	sessionKey [32]byte
}

// New returns an Obfuscator seeded with sessionKey. The key is copied; the
// caller retains ownership of the original and should zero it separately.
func New(sessionKey [32]byte) *Obfuscator {
	return &Obfuscator{sessionKey: sessionKey}
}

// Lock XORs buf in place with the RC4-style keystream derived from the
// session key. buf is typically entry.Password, sized to password_len.
func (o *Obfuscator) Lock(buf []byte) {
	o.apply(buf)
}

// Unlock reverses Lock. The keystream XOR is its own inverse, so Unlock and
// Lock perform the identical transform; both names are kept because
// callers must always pair them and the distinct names make call sites
// self-documenting.
func (o *Obfuscator) Unlock(buf []byte) {
	o.apply(buf)
}

// Zero wipes the Obfuscator's own copy of the session key. Callers must
// call this on teardown (and drop their reference to o afterward); the
// session key installed via New is not zeroed by any other path.
func (o *Obfuscator) Zero() {
	Zero32(&o.sessionKey)
}

func (o *Obfuscator) apply(buf []byte) {
	if len(buf) == 0 {
		return
	}
	c, err := rc4.NewCipher(o.sessionKey[:])
	if err != nil {
		// sessionKey is always exactly 32 bytes, within RC4's 1..256 key
		// size range, so NewCipher cannot fail in practice.
		panic("secret: invalid session key size: " + err.Error())
	}
	c.XORKeyStream(buf, buf)
}
