package sql

import (
	"fmt"
	"strings"
)

// parseIdent validates a bare identifier: letters, digits and underscores,
// not starting with a digit. Identifiers are folded to lower case.
func parseIdent(tok string) (string, error) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return "", fmt.Errorf("missing name")
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return "", fmt.Errorf("invalid name %q", s)
		}
	}
	return strings.ToLower(s), nil
}

// afterTokens returns s with its first n whitespace-separated tokens removed.
func afterTokens(s string, n int) string {
	rest := strings.TrimLeft(s, " \t\n\r")
	for ; n > 0; n-- {
		end := strings.IndexAny(rest, " \t\n\r")
		if end == -1 {
			return ""
		}
		rest = strings.TrimLeft(rest[end:], " \t\n\r")
	}
	return rest
}

// parseLabel parses a single-quoted string literal; '' inside it is a quote.
func parseLabel(tok string) (string, error) {
	s := strings.TrimSpace(tok)
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("expected quoted label, got %q", s)
	}
	inner := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] != '\'' {
			b.WriteByte(inner[i])
			continue
		}
		if i+1 < len(inner) && inner[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return "", fmt.Errorf("unescaped quote in label %q", s)
	}
	return b.String(), nil
}

// parseLabelList splits "'a', 'b,c', 'd'" into labels. Commas inside
// quotes do not split.
func parseLabelList(s string) ([]string, error) {
	var labels []string
	var cur strings.Builder
	inQuote := false

	flush := func() error {
		tok := strings.TrimSpace(cur.String())
		cur.Reset()
		if tok == "" {
			return fmt.Errorf("empty label in list")
		}
		label, err := parseLabel(tok)
		if err != nil {
			return err
		}
		labels = append(labels, label)
		return nil
	}

	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c == ',' && !inQuote {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		cur.WriteByte(c)
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated label")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return labels, nil
}
