package model

import "github.com/passlocker/core/internal/tlv"

const backupGroupName = "Backup"
const backupGroupImageID = 4

// ensureBackupGroup returns the "Backup" group, creating it with
// never-expiring timestamps and icon 4 if it does not already exist.
func (d *Database) ensureBackupGroup() (*Group, error) {
	for _, g := range d.groups {
		if g.Name == backupGroupName {
			return g, nil
		}
	}
	now := nowTimestamp()
	return d.AddGroup(Group{
		Name:         backupGroupName,
		ImageID:      backupGroupImageID,
		Created:      now,
		LastModified: now,
		LastAccessed: now,
		Expires:      tlv.NeverExpires,
	})
}

// BackupEntry deep-copies e into the "Backup" group (created on demand),
// forcing a fresh UUID and bumping LastModified to now, per spec.md
// §4.5.
func (d *Database) BackupEntry(e *Entry) (*Entry, error) {
	bg, err := d.ensureBackupGroup()
	if err != nil {
		return nil, err
	}

	bcopy := e.clone()
	bcopy.UUID = zeroUUID
	bcopy.GroupID = bg.ID
	bcopy.LastModified = nowTimestamp()

	d.unlockEntry(bcopy)
	cleartext := append([]byte(nil), bcopy.Password[:bcopy.PasswordLen]...)
	d.lockEntry(bcopy)

	return d.AddEntry(Entry{
		UUID:         bcopy.UUID,
		GroupID:      bcopy.GroupID,
		ImageID:      bcopy.ImageID,
		Title:        bcopy.Title,
		URL:          bcopy.URL,
		Username:     bcopy.Username,
		Password:     cleartext,
		Notes:        bcopy.Notes,
		BinaryDesc:   bcopy.BinaryDesc,
		Binary:       bcopy.Binary,
		Created:      bcopy.Created,
		LastModified: bcopy.LastModified,
		LastAccessed: bcopy.LastAccessed,
		Expires:      bcopy.Expires,
	})
}
