// Package session implements session inspection commands for hgfsctl.
package session

import "github.com/spf13/cobra"

// Cmd is the parent command for session inspection.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Session inspection",
	Long: `Inspect live sessions on the hgfsd server.

A session exists for as long as its guest connection is open; there is no
persistence across restarts, so this is a live view only.

Examples:
  # List all open sessions
  hgfsctl session list`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
