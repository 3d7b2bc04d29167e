package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/passlocker/core/internal/dbfile"
	"github.com/passlocker/core/internal/keyderive"
	"github.com/passlocker/core/internal/model"
	"github.com/passlocker/core/internal/secret"
)

// decodeHexUUID parses a 32-character hex string into a 16-byte UUID.
func decodeHexUUID(s string) ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	if len(b) != 16 {
		return out, fmt.Errorf("uuid must be 32 hex characters, got %d bytes", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// promptPassphrase reads a passphrase from the controlling terminal with
// echo disabled, following the same golang.org/x/term pattern other
// credential-prompting tools in the reference corpus use.
func promptPassphrase(label string) ([]byte, error) {
	fmt.Fprint(os.Stderr, label)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return pass, nil
}

// openDatabase prompts for the master passphrase and loads path.
func openDatabase(path string) (*model.Database, error) {
	pass, err := promptPassphrase("Master password: ")
	if err != nil {
		return nil, err
	}
	defer secret.Zero(pass)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rawKey, err := keyderive.Compose(keyderive.Source{Passphrase: pass})
	if err != nil {
		return nil, err
	}
	defer secret.Zero32(&rawKey)

	return model.Load(f, rand.Reader, model.LoadOptions{RawKey: rawKey})
}

// createDatabase prompts for a new master passphrase and returns an
// empty database with that key installed, ready to be populated and
// saved.
func createDatabase() (*model.Database, error) {
	pass, err := promptPassphrase("New master password: ")
	if err != nil {
		return nil, err
	}
	defer secret.Zero(pass)

	confirm, err := promptPassphrase("Confirm master password: ")
	if err != nil {
		return nil, err
	}
	defer secret.Zero(confirm)

	if string(pass) != string(confirm) {
		return nil, fmt.Errorf("passphrases do not match")
	}

	rawKey, err := keyderive.Compose(keyderive.Source{Passphrase: pass})
	if err != nil {
		return nil, err
	}
	defer secret.Zero32(&rawKey)

	d, err := model.New(rand.Reader)
	if err != nil {
		return nil, err
	}
	d.SetMasterKey(rawKey)
	d.Cipher = dbfile.CipherRijndael
	d.KeyEncRounds = keyderive.StdKeyEncRounds
	return d, nil
}

// saveDatabase writes d to path, truncating/creating the file.
func saveDatabase(d *model.Database, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.Save(f, model.SaveOptions{})
}
