package model

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/tlv"
)

// encodeGroup appends g's TLV record (fields plus terminator) to w.
func encodeGroup(w *tlv.Writer, g *Group) {
	w.Uint32Field(tlv.GroupID, g.ID)
	w.StringField(tlv.GroupName, g.Name)
	w.TimestampField(tlv.GroupCreated, g.Created)
	w.TimestampField(tlv.GroupModified, g.LastModified)
	w.TimestampField(tlv.GroupAccessed, g.LastAccessed)
	w.TimestampField(tlv.GroupExpires, g.Expires)
	w.Uint32Field(tlv.GroupImageID, g.ImageID)
	w.Uint16Field(tlv.GroupLevel, g.Level)
	w.Uint32Field(tlv.GroupFlags, g.Flags)
	w.Terminate()
}

// decodeGroup reads one group's TLV record (up to and including its
// terminator) from r.
func decodeGroup(r *tlv.Reader) (*Group, error) {
	const op = "model.decodeGroup"
	g := &Group{}
	for {
		fieldType, payload, err := r.Next()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		switch fieldType {
		case tlv.GroupID:
			if err := tlv.VerifyFieldSize("group_id", payload, 4); err != nil {
				return nil, err
			}
			g.ID = binary.LittleEndian.Uint32(payload)
		case tlv.GroupName:
			g.Name = string(tlv.StripNUL(payload))
		case tlv.GroupCreated:
			g.Created, err = decodeTimestamp(payload)
		case tlv.GroupModified:
			g.LastModified, err = decodeTimestamp(payload)
		case tlv.GroupAccessed:
			g.LastAccessed, err = decodeTimestamp(payload)
		case tlv.GroupExpires:
			g.Expires, err = decodeTimestamp(payload)
		case tlv.GroupImageID:
			if err := tlv.VerifyFieldSize("image_id", payload, 4); err != nil {
				return nil, err
			}
			g.ImageID = binary.LittleEndian.Uint32(payload)
		case tlv.GroupLevel:
			if err := tlv.VerifyFieldSize("level", payload, 2); err != nil {
				return nil, err
			}
			g.Level = binary.LittleEndian.Uint16(payload)
		case tlv.GroupFlags:
			if err := tlv.VerifyFieldSize("flags", payload, 4); err != nil {
				return nil, err
			}
			g.Flags = binary.LittleEndian.Uint32(payload)
		default:
			// unknown field types are tolerated and skipped on read
		}
		if err != nil {
			return nil, dberr.New(dberr.InvalidFileStructure, op, err)
		}
	}
}

// encodeEntry appends e's TLV record to w. The password is emitted in
// cleartext form; the caller must unlock e before calling and relock
// after.
func encodeEntry(w *tlv.Writer, e *Entry) {
	w.Field(tlv.EntryUUID, e.UUID[:])
	w.Uint32Field(tlv.EntryGroupID, e.GroupID)
	w.Uint32Field(tlv.EntryImageID, e.ImageID)
	w.StringField(tlv.EntryTitle, e.Title)
	w.StringField(tlv.EntryURL, e.URL)
	w.StringField(tlv.EntryUsername, e.Username)
	w.StringField(tlv.EntryPassword, string(e.Password[:e.PasswordLen]))
	w.StringField(tlv.EntryNotes, e.Notes)
	w.TimestampField(tlv.EntryCreated, e.Created)
	w.TimestampField(tlv.EntryModified, e.LastModified)
	w.TimestampField(tlv.EntryAccessed, e.LastAccessed)
	w.TimestampField(tlv.EntryExpires, e.Expires)
	w.StringField(tlv.EntryBinaryDesc, e.BinaryDesc)
	w.Field(tlv.EntryBinary, e.Binary)
	w.Terminate()
}

// decodeEntry reads one entry's TLV record from r. The returned entry's
// Password is cleartext; the caller is responsible for obfuscating it
// before it joins the live model.
func decodeEntry(r *tlv.Reader) (*Entry, error) {
	const op = "model.decodeEntry"
	e := &Entry{}
	for {
		fieldType, payload, err := r.Next()
		if err == io.EOF {
			return e, nil
		}
		if err != nil {
			return nil, err
		}
		switch fieldType {
		case tlv.EntryUUID:
			if err := tlv.VerifyFieldSize("uuid", payload, 16); err != nil {
				return nil, err
			}
			copy(e.UUID[:], payload)
		case tlv.EntryGroupID:
			if err := tlv.VerifyFieldSize("group_id", payload, 4); err != nil {
				return nil, err
			}
			e.GroupID = binary.LittleEndian.Uint32(payload)
		case tlv.EntryImageID:
			if err := tlv.VerifyFieldSize("image_id", payload, 4); err != nil {
				return nil, err
			}
			e.ImageID = binary.LittleEndian.Uint32(payload)
		case tlv.EntryTitle:
			e.Title = string(tlv.StripNUL(payload))
		case tlv.EntryURL:
			e.URL = string(tlv.StripNUL(payload))
		case tlv.EntryUsername:
			e.Username = string(tlv.StripNUL(payload))
		case tlv.EntryPassword:
			cleartext := tlv.StripNUL(payload)
			e.Password = append([]byte(nil), cleartext...)
			e.PasswordLen = len(cleartext)
		case tlv.EntryNotes:
			e.Notes = string(tlv.StripNUL(payload))
		case tlv.EntryCreated:
			e.Created, err = decodeTimestamp(payload)
		case tlv.EntryModified:
			e.LastModified, err = decodeTimestamp(payload)
		case tlv.EntryAccessed:
			e.LastAccessed, err = decodeTimestamp(payload)
		case tlv.EntryExpires:
			e.Expires, err = decodeTimestamp(payload)
		case tlv.EntryBinaryDesc:
			e.BinaryDesc = string(tlv.StripNUL(payload))
		case tlv.EntryBinary:
			e.Binary = append([]byte(nil), payload...)
		default:
			// unknown field types are tolerated and skipped on read
		}
		if err != nil {
			return nil, dberr.New(dberr.InvalidFileStructure, op, err)
		}
	}
}

func decodeTimestamp(payload []byte) (tlv.Timestamp, error) {
	if err := tlv.VerifyFieldSize("timestamp", payload, 5); err != nil {
		return tlv.Timestamp{}, err
	}
	var b [5]byte
	copy(b[:], payload)
	return tlv.Unpack(b), nil
}

// DecodePayload parses groupCount group records followed by entryCount
// entry records out of the cleartext TLV payload, populating d's group
// and entry arrays. It does not run C7/C8; callers invoke those
// separately so Load can sequence them explicitly (spec.md §4.4 step
// 9-10).
func (d *Database) DecodePayload(payload []byte, groupCount, entryCount uint32) error {
	const op = "model.DecodePayload"
	r := tlv.NewReader(payload)

	groups := make([]*Group, 0, groupCount)
	for i := uint32(0); i < groupCount; i++ {
		g, err := decodeGroup(r)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	}

	entries := make([]*Entry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		e, err := decodeEntry(r)
		if err != nil {
			return err
		}
		// setEntryPassword copies e.Password into itself and then locks it
		// in place, so the plaintext decoded by decodeEntry never survives
		// past this call; no separate zero pass is needed (and would wipe
		// the just-locked bytes, since they share the same backing array).
		d.setEntryPassword(e, e.Password)
		entries = append(entries, e)
	}

	if len(groups) == 0 && groupCount != 0 {
		return dberr.New(dberr.InvalidFileStructure, op, errors.New("fewer groups parsed than header declared"))
	}

	d.groups = groups
	d.entries = entries
	return nil
}

// EncodePayload serializes d's groups and entries as TLV records, in
// array order, with no outer wrapper. Passwords are unlocked for the
// duration of encoding their own entry and relocked immediately after.
func (d *Database) EncodePayload() []byte {
	w := tlv.NewWriter()
	for _, g := range d.groups {
		encodeGroup(w, g)
	}
	for _, e := range d.entries {
		d.unlockEntry(e)
		encodeEntry(w, e)
		d.lockEntry(e)
	}
	return w.Bytes()
}
