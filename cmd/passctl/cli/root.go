// Package cli wires the passctl subcommands onto a cobra root command.
// It is the only place in the module allowed to touch stdout/stderr or
// the process's core-dump policy; internal/model and its dependencies
// stay free of any I/O beyond the file handle the caller hands them.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passlocker/core/internal/platform"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "passctl",
	Short: "Command-line access to an encrypted password database",
	Long: `passctl opens, queries, and mutates a single encrypted password
database file: a bespoke TLV-encoded, AES/Twofish-CBC-protected container
in the tradition of the classic KeePass 1.x "kdb" format.

Examples:
  passctl create --db ./vault.kdb
  passctl add-entry --db ./vault.kdb --group 1 --title Gmail --username me@example.com
  passctl list --db ./vault.kdb
  passctl find --db ./vault.kdb --needle gmail`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := platform.DisableCoreDumps(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not disable core dumps: %v\n", err)
		}
	},
}

// Execute runs the root command, exiting the process with status 1 on
// any error it returns.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file")
	_ = rootCmd.MarkPersistentFlagRequired("db")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(addEntryCmd)
	rootCmd.AddCommand(addGroupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(moveEntryCmd)
	rootCmd.AddCommand(sortGroupCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(rotateCmd)
}
