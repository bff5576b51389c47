package share

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hgfsd/hgfsd/cmd/hgfsctl/cmdutil"
	"github.com/hgfsd/hgfsd/internal/bytesize"
	"github.com/hgfsd/hgfsd/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all shares",
	Long: `List all shares configured on the hgfsd server.

Examples:
  # List shares as table
  hgfsctl share list

  # List as JSON
  hgfsctl share list -o json

  # List as YAML
  hgfsctl share list -o yaml`,
	RunE: runList,
}

// ShareList is a list of shares for table rendering.
type ShareList []apiclient.Share

// Headers implements output.TableRenderer.
func (sl ShareList) Headers() []string {
	return []string{"NAME", "ROOT", "READ", "WRITE", "CASE-SENSITIVE", "FOLLOW-SYMLINKS", "FREE", "TOTAL"}
}

// Rows implements output.TableRenderer.
func (sl ShareList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{
			s.Name,
			s.RootPath,
			boolToYesNo(s.ReadAllowed),
			boolToYesNo(s.WriteAllowed),
			boolToYesNo(s.CaseSensitive),
			boolToYesNo(s.FollowSymlinks),
			bytesize.ByteSize(s.FreeBytes).String(),
			bytesize.ByteSize(s.TotalBytes).String(),
		})
	}
	return rows
}

func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	shares, err := client.ListShares()
	if err != nil {
		return fmt.Errorf("failed to list shares: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, shares, len(shares) == 0, "No shares found.", ShareList(shares))
}
