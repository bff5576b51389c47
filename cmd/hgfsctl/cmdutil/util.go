// Package cmdutil provides shared utilities for hgfsctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/hgfsd/hgfsd/internal/cli/output"
	"github.com/hgfsd/hgfsd/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	Server  string
	Output  string
	NoColor bool
	Verbose bool
}

// GetClient returns an API client for the configured admin API server.
// Unlike a client for a multi-tenant control plane, there is no login or
// credential store to consult: hgfsd's admin API is a local, unauthenticated
// read-only surface, so the only input it needs is the base URL.
func GetClient() (*apiclient.Client, error) {
	if Flags.Server == "" {
		return nil, fmt.Errorf("no admin API address configured. Pass --server <url> (e.g. http://127.0.0.1:8081)")
	}
	return apiclient.New(Flags.Server), nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses
// the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}
