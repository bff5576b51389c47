package share

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hgfsd/hgfsd/cmd/hgfsctl/cmdutil"
	"github.com/hgfsd/hgfsd/internal/bytesize"
	"github.com/hgfsd/hgfsd/internal/cli/prompt"
	"github.com/hgfsd/hgfsd/pkg/apiclient"
)

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a single share's configuration",
	Long: `Show the configuration of a single share.

If name is omitted and the terminal is interactive, hgfsctl prompts you to
pick one from the list of configured shares.

Examples:
  hgfsctl share show archive
  hgfsctl share show`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	Cmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	shares, err := client.ListShares()
	if err != nil {
		return fmt.Errorf("failed to list shares: %w", err)
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	} else {
		names := make([]string, 0, len(shares))
		for _, s := range shares {
			names = append(names, s.Name)
		}
		if len(names) == 0 {
			fmt.Println("No shares found.")
			return nil
		}
		name, err = prompt.SelectString("Select a share", names)
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
	}

	for _, s := range shares {
		if s.Name == name {
			return cmdutil.PrintOutput(os.Stdout, s, false, "", singleShare{s})
		}
	}
	return fmt.Errorf("no such share: %s", name)
}

// singleShare renders one apiclient.Share as a key/value table.
type singleShare struct {
	s apiclient.Share
}

func (r singleShare) Headers() []string { return []string{"FIELD", "VALUE"} }

func (r singleShare) Rows() [][]string {
	return [][]string{
		{"Name", r.s.Name},
		{"Root", r.s.RootPath},
		{"Read allowed", boolToYesNo(r.s.ReadAllowed)},
		{"Write allowed", boolToYesNo(r.s.WriteAllowed)},
		{"Case sensitive", boolToYesNo(r.s.CaseSensitive)},
		{"Follow symlinks", boolToYesNo(r.s.FollowSymlinks)},
		{"Free space", bytesize.ByteSize(r.s.FreeBytes).String()},
		{"Total space", bytesize.ByteSize(r.s.TotalBytes).String()},
	}
}
