package session

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hgfsd/hgfsd/cmd/hgfsctl/cmdutil"
	"github.com/hgfsd/hgfsd/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all open sessions",
	Long: `List every session currently open on the hgfsd server, along with its
handle-table occupancy.

Examples:
  # List sessions as table
  hgfsctl session list

  # List as JSON
  hgfsctl session list -o json`,
	RunE: runList,
}

// SessionList is a list of sessions for table rendering.
type SessionList []apiclient.Session

// Headers implements output.TableRenderer.
func (sl SessionList) Headers() []string {
	return []string{"ID", "CACHED NODES", "TOTAL NODES"}
}

// Rows implements output.TableRenderer.
func (sl SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{
			strconv.FormatUint(s.ID, 10),
			strconv.Itoa(s.CachedNodes),
			strconv.Itoa(s.TotalNodes),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	sessions, err := client.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, sessions, len(sessions) == 0, "No open sessions.", SessionList(sessions))
}
