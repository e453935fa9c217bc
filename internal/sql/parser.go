package sql

import (
	"fmt"
	"strings"
)

// Parse parses a single statement string into an AST Statement.
func Parse(query string) (Statement, error) {
	// Trim leading & trailing whitespace
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}

	// Remove trailing semicolon if present
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(q[:len(q)-1])
	}

	upper := strings.ToUpper(q)
	tokens := strings.Fields(upper)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("invalid statement")
	}

	switch tokens[0] {
	case "CREATE":
		if len(tokens) >= 2 && tokens[1] == "TYPE" {
			return parseCreateEnum(q)
		}
		return nil, fmt.Errorf("invalid statement: only CREATE TYPE is supported")
	case "ALTER":
		return parseAlterEnum(q)
	case "DROP":
		return parseDropType(q)
	case "SELECT":
		return parseSelectEnum(q)
	case "CAST":
		return parseCast(q)
	case "COPY":
		return parseCopy(q)
	case "VACUUM":
		if len(tokens) != 1 {
			return nil, fmt.Errorf("VACUUM: takes no arguments")
		}
		return &VacuumStmt{}, nil
	case "DO":
		return parseDo(q)
	case "BEGIN":
		return parseBegin(q)
	case "COMMIT":
		return parseCommit(q)
	case "ROLLBACK":
		return parseRollback(q)
	}

	return nil, fmt.Errorf("unsupported statement (supported: CREATE TYPE, ALTER TYPE, DROP TYPE, SELECT ENUM, CAST, COPY, VACUUM, DO, BEGIN, COMMIT, ROLLBACK)")
}
