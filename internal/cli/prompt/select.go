// Package prompt wraps promptui for hgfsctl's small set of interactive
// prompts.
package prompt

import "github.com/manifoldco/promptui"

// SelectString prompts the user to pick one of items and returns the
// chosen string. Used when a command's positional argument is omitted and
// stdin is interactive.
func SelectString(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	_, result, err := p.Run()
	if err != nil {
		return "", err
	}
	return result, nil
}

// IsAborted reports whether err came from the user cancelling a prompt
// (Ctrl+C or Ctrl+D).
func IsAborted(err error) bool {
	return err == promptui.ErrInterrupt || err == promptui.ErrEOF
}
