package core

import (
	"path/filepath"
	"strings"
)

// ShellEscapePosix returns a single shell token using single-quote strategy,
// including surrounding single quotes.
// example: abc -> 'abc'
// example: a'b -> 'a'"'"'b'
// example: "" -> ''
func ShellEscapePosix(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", "'\"'\"'")
	return "'" + escaped + "'"
}

// ShellQuote returns s unchanged when it only contains characters that are
// safe in a POSIX shell word, otherwise the ShellEscapePosix form.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !isSafeShellRune(r) {
			return ShellEscapePosix(s)
		}
	}
	return s
}

func isSafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=@%+,", r)
}

// FormatCommand renders argv run inside dir as a copy-pasteable shell line.
// dir is relative to the project root; "" and "." mean the root itself.
// example: ("backend", [npm install]) -> "cd backend && npm install"
// example: (".", [npm install]) -> "npm install"
func FormatCommand(dir string, argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = ShellQuote(a)
	}
	line := strings.Join(quoted, " ")
	if dir == "" || filepath.Clean(dir) == "." {
		return line
	}
	return "cd " + ShellQuote(filepath.ToSlash(filepath.Clean(dir))) + " && " + line
}
