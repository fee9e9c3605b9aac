package query

import "strings"

// Normalize assembles a script from one or more fragments. Line endings are
// normalized to LF, each fragment gets a trailing newline, and lines that are
// empty or whitespace-only are dropped. Empty input yields an empty string.
func Normalize(fragments ...string) string {
	var b strings.Builder

	for _, fragment := range fragments {
		fragment = strings.ReplaceAll(fragment, "\r\n", "\n")
		fragment = strings.ReplaceAll(fragment, "\r", "\n")
		b.WriteString(fragment)
		b.WriteString("\n")
	}

	var kept []string
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}

	if len(kept) == 0 {
		return ""
	}

	return strings.Join(kept, "\n") + "\n"
}
