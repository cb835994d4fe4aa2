// Package utils provides prompt helpers for interactive runs.
package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirm prompts with msg and expects y/n on in. Installer hooks run
// unattended, so when in is not a terminal it returns true without asking.
func Confirm(out io.Writer, in io.Reader, msg string) bool {
	if !IsInteractive(in) {
		return true
	}
	return ConfirmReader(out, in, msg)
}

// ConfirmReader prompts on out and reads a single answer from in. Returns
// true for yes.
func ConfirmReader(out io.Writer, in io.Reader, msg string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", msg)
	line, _ := bufio.NewReader(in).ReadString('\n')
	resp := strings.TrimSpace(strings.ToLower(line))
	return resp == "y" || resp == "yes"
}

// IsInteractive reports whether in is a terminal.
func IsInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
