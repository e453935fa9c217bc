package sql

import (
	"fmt"
	"strings"
)

func parseCreateEnum(query string) (Statement, error) {
	// At this point:
	// - query has been trimmed
	// - trailing ';' removed
	// - we already know it starts with CREATE TYPE

	openIdx := strings.Index(query, "(")
	if openIdx == -1 {
		return nil, fmt.Errorf("CREATE TYPE: missing '('")
	}
	closeIdx := strings.LastIndex(query, ")")
	if closeIdx == -1 || closeIdx <= openIdx {
		return nil, fmt.Errorf("CREATE TYPE: missing or misplaced ')'")
	}
	if strings.TrimSpace(query[closeIdx+1:]) != "" {
		return nil, fmt.Errorf("CREATE TYPE: unexpected text after ')'")
	}

	// "head" contains: CREATE TYPE mood AS ENUM
	headTokens := strings.Fields(query[:openIdx])
	if len(headTokens) != 5 {
		return nil, fmt.Errorf("CREATE TYPE: expected CREATE TYPE <name> AS ENUM (...)")
	}
	if strings.ToUpper(headTokens[3]) != "AS" || strings.ToUpper(headTokens[4]) != "ENUM" {
		return nil, fmt.Errorf("CREATE TYPE: only enum types are supported")
	}
	typeName, err := parseIdent(headTokens[2])
	if err != nil {
		return nil, fmt.Errorf("CREATE TYPE: %w", err)
	}

	labels, err := parseLabelList(query[openIdx+1 : closeIdx])
	if err != nil {
		return nil, fmt.Errorf("CREATE TYPE: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("CREATE TYPE: no enum labels")
	}

	return &CreateEnumStmt{TypeName: typeName, Labels: labels}, nil
}

// parseAlterEnum parses ALTER TYPE name ADD VALUE 'label'.
func parseAlterEnum(query string) (Statement, error) {
	tokens := strings.Fields(query)
	if len(tokens) < 6 {
		return nil, fmt.Errorf("ALTER TYPE: expected ALTER TYPE <name> ADD VALUE '<label>'")
	}
	if strings.ToUpper(tokens[1]) != "TYPE" || strings.ToUpper(tokens[3]) != "ADD" || strings.ToUpper(tokens[4]) != "VALUE" {
		return nil, fmt.Errorf("ALTER TYPE: only ADD VALUE is supported")
	}
	typeName, err := parseIdent(tokens[2])
	if err != nil {
		return nil, fmt.Errorf("ALTER TYPE: %w", err)
	}

	// the label may contain spaces, so take everything after VALUE
	label, err := parseLabel(afterTokens(query, 5))
	if err != nil {
		return nil, fmt.Errorf("ALTER TYPE: %w", err)
	}
	return &AlterEnumAddStmt{TypeName: typeName, Label: label}, nil
}

// parseDropType parses DROP TYPE name.
func parseDropType(query string) (Statement, error) {
	tokens := strings.Fields(query)
	if len(tokens) != 3 || strings.ToUpper(tokens[1]) != "TYPE" {
		return nil, fmt.Errorf("DROP: expected DROP TYPE <name>")
	}
	typeName, err := parseIdent(tokens[2])
	if err != nil {
		return nil, fmt.Errorf("DROP TYPE: %w", err)
	}
	return &DropTypeStmt{TypeName: typeName}, nil
}
