// Package share implements share inspection commands for hgfsctl.
package share

import "github.com/spf13/cobra"

// Cmd is the parent command for share inspection.
var Cmd = &cobra.Command{
	Use:   "share",
	Short: "Share inspection",
	Long: `Inspect shares configured on the hgfsd server.

Shares are frozen for the lifetime of the server process — configured once
at startup from the server's config file — so there is nothing here to
create, edit, or delete, only list and show.

Examples:
  # List all shares
  hgfsctl share list`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
