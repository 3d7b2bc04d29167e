package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passlocker/core/internal/model"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new, empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := createDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		if err := saveDatabase(d, dbPath); err != nil {
			return err
		}
		fmt.Println("created", dbPath)
		return nil
	},
}

var (
	addEntryGroupID uint32
	addEntryTitle   string
	addEntryURL     string
	addEntryUser    string
	addEntryNotes   string
)

var addEntryCmd = &cobra.Command{
	Use:   "add-entry",
	Short: "Add an entry to an existing group",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		pass, err := promptPassphrase("Entry password: ")
		if err != nil {
			return err
		}

		_, err = d.AddEntry(model.Entry{
			GroupID:  addEntryGroupID,
			Title:    addEntryTitle,
			URL:      addEntryURL,
			Username: addEntryUser,
			Notes:    addEntryNotes,
			Password: pass,
		})
		if err != nil {
			return err
		}
		return saveDatabase(d, dbPath)
	},
}

var (
	addGroupName  string
	addGroupLevel uint16
)

var addGroupCmd = &cobra.Command{
	Use:   "add-group",
	Short: "Add a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		if _, err := d.AddGroup(model.Group{Name: addGroupName, Level: addGroupLevel}); err != nil {
			return err
		}
		d.FixupTree()
		return saveDatabase(d, dbPath)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		for _, g := range d.Groups() {
			fmt.Printf("[%d] %*s%s\n", g.ID, int(g.Level)*2, "", g.Name)
			for _, e := range d.Entries() {
				if e.GroupID == g.ID {
					fmt.Printf("      %s  %s\n", e.Title, e.Username)
				}
			}
		}
		return nil
	},
}

var (
	findNeedle        string
	findCaseSensitive bool
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search entry titles, usernames, URLs, and notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		mask := model.FieldTitle | model.FieldUsername | model.FieldURL | model.FieldNotes
		idx := d.Find(findNeedle, findCaseSensitive, mask, 0)
		if idx < 0 {
			fmt.Println("no match")
			return nil
		}
		e := d.Entries()[idx]
		fmt.Printf("[%d] %s  %s  %s\n", idx, e.Title, e.Username, e.URL)
		return nil
	},
}

var (
	moveEntryFrom int
	moveEntryTo   int
)

var moveEntryCmd = &cobra.Command{
	Use:   "move-entry",
	Short: "Move an entry to a new array position",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.MoveEntry(moveEntryFrom, moveEntryTo); err != nil {
			return err
		}
		return saveDatabase(d, dbPath)
	},
}

var (
	sortGroupID    uint32
	sortFieldName  string
	sortFieldTable = map[string]model.SortField{
		"title":    model.SortTitle,
		"username": model.SortUsername,
		"url":      model.SortURL,
		"password": model.SortPassword,
		"notes":    model.SortNotes,
		"created":  model.SortCreated,
		"modified": model.SortLastModified,
		"accessed": model.SortLastAccessed,
		"expires":  model.SortExpires,
	}
)

var sortGroupCmd = &cobra.Command{
	Use:   "sort-group",
	Short: "Stable-sort a group's entries by field",
	RunE: func(cmd *cobra.Command, args []string) error {
		field, ok := sortFieldTable[sortFieldName]
		if !ok {
			field = model.SortNone
		}

		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		d.SortGroup(sortGroupID, field)
		return saveDatabase(d, dbPath)
	},
}

var backupEntryUUIDHex string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Deep-copy an entry into the Backup group",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		uuidBytes, err := decodeHexUUID(backupEntryUUIDHex)
		if err != nil {
			return err
		}
		e := d.EntryByUUID(uuidBytes)
		if e == nil {
			return fmt.Errorf("no entry with uuid %s", backupEntryUUIDHex)
		}
		if _, err := d.BackupEntry(e); err != nil {
			return err
		}
		return saveDatabase(d, dbPath)
	},
}

var (
	mergeSourcePath   string
	mergeAssignUUIDs  bool
	mergeCompareTimes bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge another database file into this one",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		other, err := openDatabase(mergeSourcePath)
		if err != nil {
			return err
		}
		defer other.Close()

		if err := d.MergeIn(other, mergeAssignUUIDs, mergeCompareTimes); err != nil {
			return err
		}
		return saveDatabase(d, dbPath)
	},
}

var rotateRounds uint32

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Re-save with a new key-stretching round count",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		d.KeyEncRounds = rotateRounds
		return saveDatabase(d, dbPath)
	},
}

func init() {
	addEntryCmd.Flags().Uint32Var(&addEntryGroupID, "group", 0, "owning group id")
	addEntryCmd.Flags().StringVar(&addEntryTitle, "title", "", "entry title")
	addEntryCmd.Flags().StringVar(&addEntryURL, "url", "", "entry URL")
	addEntryCmd.Flags().StringVar(&addEntryUser, "username", "", "entry username")
	addEntryCmd.Flags().StringVar(&addEntryNotes, "notes", "", "entry notes")

	addGroupCmd.Flags().StringVar(&addGroupName, "name", "", "group name")
	addGroupCmd.Flags().Uint16Var(&addGroupLevel, "level", 0, "tree depth")

	findCmd.Flags().StringVar(&findNeedle, "needle", "", "text to search for")
	findCmd.Flags().BoolVar(&findCaseSensitive, "case-sensitive", false, "match case exactly")

	moveEntryCmd.Flags().IntVar(&moveEntryFrom, "from", 0, "source index")
	moveEntryCmd.Flags().IntVar(&moveEntryTo, "to", 0, "destination index")

	sortGroupCmd.Flags().Uint32Var(&sortGroupID, "group", 0, "group id")
	sortGroupCmd.Flags().StringVar(&sortFieldName, "field", "title", "title|username|url|password|notes|created|modified|accessed|expires")

	backupCmd.Flags().StringVar(&backupEntryUUIDHex, "uuid", "", "entry UUID, 32 hex characters")

	mergeCmd.Flags().StringVar(&mergeSourcePath, "source", "", "path to the database to merge from")
	mergeCmd.Flags().BoolVar(&mergeAssignUUIDs, "assign-new-uuids", false, "allocate fresh ids for every source group")
	mergeCmd.Flags().BoolVar(&mergeCompareTimes, "compare-times", true, "replace local records only when the source is newer")

	rotateCmd.Flags().Uint32Var(&rotateRounds, "rounds", 6000, "new key-stretching round count")
}
