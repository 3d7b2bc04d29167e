package model

import "github.com/passlocker/core/internal/tlv"

// tanEntryTitle is the sentinel title the original format uses to mark an
// entry as a one-time-password/TAN record. SPEC_FULL.md §4 exposes this
// as a pure classifier with no other behavioral effect.
const tanEntryTitle = "<TAN>"

// metaInfoTitle, metaInfoUsername, metaInfoURL identify a meta-stream
// entry (spec.md §4.7). Declared here because Entry.isMetaStream is a
// property of the record itself; the metastream package declares its own
// copies of the same values.
const (
	metaInfoTitle    = "Meta-Info"
	metaInfoUsername = "SYSTEM"
	metaInfoURL      = "$"
	metaInfoBinDesc  = "bin-stream"
)

// Entry is a leaf record belonging to exactly one group (spec.md §3).
// Password holds the cleartext length in PasswordLen code units but, at
// rest, its bytes are XORed with the database's session keystream -
// callers must Unlock before reading and Lock (or re-Unlock, the
// transform is self-inverse) before returning control to any other
// Database method.
type Entry struct {
	UUID         [16]byte
	GroupID      uint32
	ImageID      uint32
	Title        string
	URL          string
	Username     string
	Password     []byte
	PasswordLen  int
	Notes        string
	BinaryDesc   string
	Binary       []byte
	Created      tlv.Timestamp
	LastModified tlv.Timestamp
	LastAccessed tlv.Timestamp
	Expires      tlv.Timestamp
}

// IsTAN reports whether e is marked as a TAN (one-time password) record.
// This is a classifier only; it gates no CRUD behavior.
func (e *Entry) IsTAN() bool {
	return e.Title == tanEntryTitle
}

// isMetaStream reports whether e matches the sentinel marker C7 uses to
// smuggle auxiliary state through the entry array (spec.md §4.7).
func (e *Entry) isMetaStream() bool {
	return e.Title == metaInfoTitle &&
		e.Username == metaInfoUsername &&
		e.URL == metaInfoURL &&
		e.BinaryDesc == metaInfoBinDesc &&
		e.ImageID == 0 &&
		len(e.Binary) > 0 &&
		e.Notes != ""
}

// clone returns a deep copy of e, including its own backing arrays for
// Password and Binary so mutations to the copy never alias the original.
func (e *Entry) clone() *Entry {
	c := *e
	if e.Password != nil {
		c.Password = append([]byte(nil), e.Password...)
	}
	if e.Binary != nil {
		c.Binary = append([]byte(nil), e.Binary...)
	}
	return &c
}

var zeroUUID [16]byte

func isZeroUUID(u [16]byte) bool { return u == zeroUUID }
