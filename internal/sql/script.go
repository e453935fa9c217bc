package sql

import "strings"

// SplitScript splits a script into statements on ';'. Semicolons inside
// quoted labels do not split, and blank statements are dropped.
func SplitScript(script string) []string {
	var stmts []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c == ';' && !inQuote {
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return stmts
}
