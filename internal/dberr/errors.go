// Package dberr defines the closed error taxonomy shared by every layer of
// the database core (key derivation, TLV codec, file I/O, model). Every
// failure that crosses a package boundary is wrapped in an *Error carrying
// one of the Kind values below, so callers never have to string-match.
package dberr

import "fmt"

// Kind is the closed set of failure categories a caller can branch on.
// Unknown is a reserved catch-all and must never be returned when a more
// specific Kind applies.
type Kind int

const (
	Success Kind = iota
	InvalidParam
	NoMem
	NoFileAccessRead
	NoFileAccessReadKey
	NoFileAccessWrite
	FileErrorRead
	FileErrorWrite
	InvalidFileHeader
	InvalidFileSignature
	InvalidFileSize
	InvalidFileStructure
	InvalidKey
	InvalidRandomSource
	CryptError
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case InvalidParam:
		return "invalid parameter"
	case NoMem:
		return "allocation failure"
	case NoFileAccessRead:
		return "cannot open file for read"
	case NoFileAccessReadKey:
		return "cannot open key file for read"
	case NoFileAccessWrite:
		return "cannot open file for write"
	case FileErrorRead:
		return "short read"
	case FileErrorWrite:
		return "short write"
	case InvalidFileHeader:
		return "invalid file header"
	case InvalidFileSignature:
		return "invalid file signature"
	case InvalidFileSize:
		return "invalid file size"
	case InvalidFileStructure:
		return "invalid file structure"
	case InvalidKey:
		return "invalid key"
	case InvalidRandomSource:
		return "invalid random source"
	case CryptError:
		return "cryptographic error"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the operation that produced it and, optionally,
// the underlying cause. It implements Unwrap so errors.Is/errors.As see
// through to the original cause; it has no Cause method, so
// github.com/pkg/errors.Cause stops at the *Error itself.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error for op, tagged with kind, optionally wrapping
// cause. cause may be nil.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
