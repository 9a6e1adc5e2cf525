package commands

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptAccessToken asks for the bws access token without echoing it. On a
// non-interactive stdin it returns empty rather than blocking.
func promptAccessToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "bws access token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
