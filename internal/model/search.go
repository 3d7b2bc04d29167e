package model

import "strings"

// FieldMask selects which text fields Find compares against needle.
type FieldMask uint32

const (
	FieldTitle FieldMask = 1 << iota
	FieldUsername
	FieldURL
	FieldPassword
	FieldNotes
	FieldGroupName
)

// Find performs a linear scan from startIndex for the first entry with a
// selected field (per fieldMask) containing needle, returning its index
// or -1. Password comparison unlocks and relocks the buffer around the
// match (C6's obfuscation invariant).
func (d *Database) Find(needle string, caseSensitive bool, fieldMask FieldMask, startIndex int) int {
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}

	contains := func(s string) bool {
		if !caseSensitive {
			s = strings.ToLower(s)
		}
		return strings.Contains(s, needle)
	}

	if startIndex < 0 {
		startIndex = 0
	}
	for i := startIndex; i < len(d.entries); i++ {
		e := d.entries[i]

		if fieldMask&FieldTitle != 0 && contains(e.Title) {
			return i
		}
		if fieldMask&FieldUsername != 0 && contains(e.Username) {
			return i
		}
		if fieldMask&FieldURL != 0 && contains(e.URL) {
			return i
		}
		if fieldMask&FieldNotes != 0 && contains(e.Notes) {
			return i
		}
		if fieldMask&FieldGroupName != 0 {
			if g := d.GroupByID(e.GroupID); g != nil && contains(g.Name) {
				return i
			}
		}
		if fieldMask&FieldPassword != 0 {
			d.unlockEntry(e)
			match := contains(string(e.Password[:e.PasswordLen]))
			d.lockEntry(e)
			if match {
				return i
			}
		}
	}
	return -1
}
