package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptSecret reads a line from stdin with echo disabled when stdin
// is a terminal. The prompt goes to stderr so stdout stays clean for
// the derived credential.
func promptSecret(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s ", prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	return readLine()
}

// promptLine reads an echoed line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s ", prompt)
	return readLine()
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
