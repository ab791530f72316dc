package runcmd

import "strings"

// ShellEscape quotes s for a POSIX shell: the result is wrapped in single
// quotes and every embedded single quote becomes '\''.
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
