// Package tlv implements C3, the type-length-value codec spec.md §4.3
// describes: each field is a little-endian u16 type, a little-endian u32
// size, then size bytes of payload; a record ends with the terminator
// field (type 0xFFFF, size 0).
package tlv

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
)

// Terminator is the field type that ends every record.
const Terminator uint16 = 0xFFFF

// Group field types (spec.md §4.3).
const (
	GroupID       uint16 = 0x0001
	GroupName     uint16 = 0x0002
	GroupCreated  uint16 = 0x0003
	GroupModified uint16 = 0x0004
	GroupAccessed uint16 = 0x0005
	GroupExpires  uint16 = 0x0006
	GroupImageID  uint16 = 0x0007
	GroupLevel    uint16 = 0x0008
	GroupFlags    uint16 = 0x0009
)

// Entry field types (spec.md §4.3).
const (
	EntryUUID       uint16 = 0x0001
	EntryGroupID    uint16 = 0x0002
	EntryImageID    uint16 = 0x0003
	EntryTitle      uint16 = 0x0004
	EntryURL        uint16 = 0x0005
	EntryUsername   uint16 = 0x0006
	EntryPassword   uint16 = 0x0007
	EntryNotes      uint16 = 0x0008
	EntryCreated    uint16 = 0x0009
	EntryModified   uint16 = 0x000A
	EntryAccessed   uint16 = 0x000B
	EntryExpires    uint16 = 0x000C
	EntryBinaryDesc uint16 = 0x000D
	EntryBinary     uint16 = 0x000E
)

// Writer appends TLV fields to an underlying byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with an empty buffer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Field appends one TLV field with the given type and payload.
func (w *Writer) Field(fieldType uint16, payload []byte) {
	var head [6]byte
	binary.LittleEndian.PutUint16(head[0:2], fieldType)
	binary.LittleEndian.PutUint32(head[2:6], uint32(len(payload)))
	w.buf = append(w.buf, head[:]...)
	w.buf = append(w.buf, payload...)
}

// Uint32Field appends a 4-byte little-endian u32 field.
func (w *Writer) Uint32Field(fieldType uint16, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Field(fieldType, b[:])
}

// Uint16Field appends a 2-byte little-endian u16 field.
func (w *Writer) Uint16Field(fieldType uint16, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Field(fieldType, b[:])
}

// StringField appends a NUL-terminated UTF-8 string field; size includes
// the trailing NUL, per spec.md §4.3/§6.
func (w *Writer) StringField(fieldType uint16, s string) {
	payload := make([]byte, 0, len(s)+1)
	payload = append(payload, []byte(s)...)
	payload = append(payload, 0)
	w.Field(fieldType, payload)
}

// TimestampField appends a packed 5-byte timestamp field.
func (w *Writer) TimestampField(fieldType uint16, t Timestamp) {
	packed := Pack(t)
	w.Field(fieldType, packed[:])
}

// Terminate appends the record terminator field.
func (w *Writer) Terminate() {
	w.Field(Terminator, nil)
}

// Reader walks the fields of a single TLV record out of a byte slice.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Pos returns the current read offset into the underlying buffer.
func (r *Reader) Pos() int { return r.pos }

// Next returns the next field's type and payload, or io.EOF if the
// terminator field was just consumed. It returns dberr.InvalidFileStructure
// if the field header or payload overruns the buffer.
func (r *Reader) Next() (fieldType uint16, payload []byte, err error) {
	const op = "tlv.Reader.Next"
	if r.pos+6 > len(r.buf) {
		return 0, nil, dberr.New(dberr.InvalidFileStructure, op, errors.New("field header overruns payload"))
	}
	fieldType = binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+2])
	size := binary.LittleEndian.Uint32(r.buf[r.pos+2 : r.pos+6])
	r.pos += 6

	if fieldType == Terminator {
		return fieldType, nil, io.EOF
	}

	if uint64(r.pos)+uint64(size) > uint64(len(r.buf)) {
		return 0, nil, dberr.New(dberr.InvalidFileStructure, op, errors.New("field payload overruns buffer"))
	}
	payload = r.buf[r.pos : r.pos+int(size)]
	r.pos += int(size)
	return fieldType, payload, nil
}

// StripNUL trims a single trailing NUL byte used to terminate string
// fields on the wire.
func StripNUL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}

// VerifyFieldSize returns dberr.InvalidFileStructure if payload is not
// exactly want bytes, annotated with the field's name for diagnostics.
func VerifyFieldSize(name string, payload []byte, want int) error {
	if len(payload) != want {
		return dberr.New(dberr.InvalidFileStructure, "tlv.VerifyFieldSize",
			errors.Errorf("%s: expected %d bytes, got %d", name, want, len(payload)))
	}
	return nil
}
