package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hgfsd/hgfsd/cmd/hgfsctl/cmdutil"
	"github.com/hgfsd/hgfsd/internal/cli/output"
	"github.com/hgfsd/hgfsd/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Check the readiness of a running hgfsd server.

Examples:
  # Check status of the default local server
  hgfsctl status

  # Check a remote server
  hgfsctl status --server http://10.0.0.5:8081`,
	RunE: runStatus,
}

// serverStatus is the display shape for the status command.
type serverStatus struct {
	Server  string `json:"server" yaml:"server"`
	Status  string `json:"status" yaml:"status"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Shares  int    `json:"shares,omitempty" yaml:"shares,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	status := serverStatus{Server: cmdutil.Flags.Server, Status: "unreachable"}

	health, err := client.Ready()
	if err != nil {
		if apiErr, ok := err.(*apiclient.APIError); ok {
			status.Status = "unhealthy"
			status.Error = apiErr.Message
		} else {
			status.Error = err.Error()
		}
	} else {
		status.Status = "healthy"
		status.Healthy = true
		status.Shares = health.Shares
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}
	return nil
}

func printStatusTable(status serverStatus) {
	fmt.Println()
	fmt.Println("hgfsd Server Status")
	fmt.Println("====================")
	fmt.Println()
	fmt.Printf("  Server:  %s\n", status.Server)

	if status.Healthy {
		fmt.Printf("  Status:  \033[32m● %s\033[0m\n", status.Status)
		fmt.Printf("  Shares:  %d\n", status.Shares)
	} else {
		fmt.Printf("  Status:  \033[31m○ %s\033[0m\n", status.Status)
	}
	if status.Error != "" {
		fmt.Printf("  Error:   %s\n", status.Error)
	}
	fmt.Println()
}
