package model

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/passlocker/core/internal/dberr"
	"github.com/passlocker/core/internal/secret"
)

// AddEntry appends a new entry cloned from template. A zero UUID is
// replaced with a freshly generated, unique one. The password in
// template is cleartext; it is stored obfuscated. Fails with
// InvalidParam if template.GroupID is reserved.
func (d *Database) AddEntry(template Entry) (*Entry, error) {
	const op = "model.AddEntry"

	if isReservedGroupID(template.GroupID) {
		return nil, dberr.New(dberr.InvalidParam, op, errors.New("group_id is reserved"))
	}

	e := template.clone()
	if isZeroUUID(e.UUID) {
		for {
			id, err := uuid.NewRandomFromReader(d.rand)
			if err != nil {
				return nil, dberr.New(dberr.InvalidRandomSource, op, err)
			}
			var candidate [16]byte
			copy(candidate[:], id[:])
			if isZeroUUID(candidate) {
				continue
			}
			if d.EntryByUUID(candidate) == nil {
				e.UUID = candidate
				break
			}
		}
	} else if d.EntryByUUID(e.UUID) != nil {
		return nil, dberr.New(dberr.InvalidParam, op, errors.New("uuid already in use"))
	}

	cleartext := append([]byte(nil), template.Password...)
	e.PasswordLen = len(cleartext)
	d.setEntryPassword(e, cleartext)
	secret.Zero(cleartext)

	d.entries = append(d.entries, e)
	return e, nil
}

// AddGroup appends a new group cloned from template. A reserved
// group_id (0 or U32_MAX) is replaced with a freshly allocated one.
func (d *Database) AddGroup(template Group) (*Group, error) {
	g := template.clone()
	if isReservedGroupID(g.ID) {
		id, err := d.randomGroupID()
		if err != nil {
			return nil, err
		}
		g.ID = id
	} else if d.GroupByID(g.ID) != nil {
		return nil, dberr.New(dberr.InvalidParam, "model.AddGroup", errors.New("group id already in use"))
	}
	d.groups = append(d.groups, &g)
	return &g, nil
}

// SetEntry replaces the entry at index in place with template's fields,
// re-obfuscating the password. Fails with InvalidParam on a reserved
// group_id or an out-of-range index.
func (d *Database) SetEntry(index int, template Entry) error {
	const op = "model.SetEntry"
	if index < 0 || index >= len(d.entries) {
		return dberr.New(dberr.InvalidParam, op, errors.New("index out of range"))
	}
	if isReservedGroupID(template.GroupID) {
		return dberr.New(dberr.InvalidParam, op, errors.New("group_id is reserved"))
	}

	dst := d.entries[index]
	secret.Zero(dst.Password)

	keepUUID := dst.UUID
	if !isZeroUUID(template.UUID) {
		keepUUID = template.UUID
	}

	*dst = *template.clone()
	dst.UUID = keepUUID

	cleartext := append([]byte(nil), template.Password...)
	dst.PasswordLen = len(cleartext)
	d.setEntryPassword(dst, cleartext)
	secret.Zero(cleartext)

	return nil
}

// SetGroup replaces the group at index in place with template's fields.
// Fails with InvalidParam on a reserved group_id or an out-of-range
// index.
func (d *Database) SetGroup(index int, template Group) error {
	const op = "model.SetGroup"
	if index < 0 || index >= len(d.groups) {
		return dberr.New(dberr.InvalidParam, op, errors.New("index out of range"))
	}
	if isReservedGroupID(template.ID) {
		return dberr.New(dberr.InvalidParam, op, errors.New("group_id is reserved"))
	}
	g := template.clone()
	d.groups[index] = &g
	return nil
}

// DeleteEntry removes the entry at index, wiping its secret buffers
// before releasing it and shifting the tail left to close the gap.
func (d *Database) DeleteEntry(index int) error {
	const op = "model.DeleteEntry"
	if index < 0 || index >= len(d.entries) {
		return dberr.New(dberr.InvalidParam, op, errors.New("index out of range"))
	}
	e := d.entries[index]
	secret.Zero(e.Password)
	secret.Zero(e.Binary)
	e.Title, e.URL, e.Username, e.Notes, e.BinaryDesc = "", "", "", "", ""

	copy(d.entries[index:], d.entries[index+1:])
	d.entries[len(d.entries)-1] = nil
	d.entries = d.entries[:len(d.entries)-1]
	return nil
}

// DeleteGroupByID deletes every entry belonging to id, removes the
// group itself, then re-runs tree fixup on the remaining groups.
func (d *Database) DeleteGroupByID(id uint32) error {
	for {
		idx := -1
		for i, e := range d.entries {
			if e.GroupID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		if err := d.DeleteEntry(idx); err != nil {
			return err
		}
	}

	gi := d.GroupIndexByID(id)
	if gi < 0 {
		return dberr.New(dberr.InvalidParam, "model.DeleteGroupByID", errors.New("no such group"))
	}
	copy(d.groups[gi:], d.groups[gi+1:])
	d.groups[len(d.groups)-1] = nil
	d.groups = d.groups[:len(d.groups)-1]

	d.FixupTree()
	return nil
}
