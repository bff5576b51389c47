// Package commands implements the CLI commands for hgfsctl.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hgfsd/hgfsd/cmd/hgfsctl/cmdutil"
	sessioncmd "github.com/hgfsd/hgfsd/cmd/hgfsctl/commands/session"
	sharecmd "github.com/hgfsd/hgfsd/cmd/hgfsctl/commands/share"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hgfsctl",
	Short: "hgfsd operator CLI",
	Long: `hgfsctl is the command-line inspection tool for a running hgfsd process.

It talks to hgfsd's local admin HTTP API to list configured shares and live
sessions, and to check server health. It never talks the HGFS wire protocol
itself and has no concept of users or credentials — the admin API it
connects to is unauthenticated by design.

Use "hgfsctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.Server, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8081", "hgfsd admin API address")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sharecmd.Cmd)
	rootCmd.AddCommand(sessioncmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
