package sql

import (
	"fmt"
	"strings"
)

// parseSelectEnum parses SELECT ENUM name.
func parseSelectEnum(query string) (Statement, error) {
	tokens := strings.Fields(query)
	if len(tokens) != 3 || strings.ToUpper(tokens[1]) != "ENUM" {
		return nil, fmt.Errorf("SELECT: only SELECT ENUM <name> is supported")
	}
	typeName, err := parseIdent(tokens[2])
	if err != nil {
		return nil, fmt.Errorf("SELECT: %w", err)
	}
	return &SelectEnumStmt{TypeName: typeName}, nil
}

// parseCast parses CAST 'label' AS name.
func parseCast(query string) (Statement, error) {
	rest := strings.TrimSpace(query[len("CAST"):])
	asIdx := strings.LastIndex(strings.ToUpper(rest), " AS ")
	if asIdx == -1 {
		return nil, fmt.Errorf("CAST: expected CAST '<label>' AS <type>")
	}
	label, err := parseLabel(rest[:asIdx])
	if err != nil {
		return nil, fmt.Errorf("CAST: %w", err)
	}
	typeName, err := parseIdent(strings.TrimSpace(rest[asIdx+len(" AS "):]))
	if err != nil {
		return nil, fmt.Errorf("CAST: %w", err)
	}
	return &CastStmt{Label: label, TypeName: typeName}, nil
}

// parseCopy parses COPY name.
func parseCopy(query string) (Statement, error) {
	tokens := strings.Fields(query)
	if len(tokens) != 2 {
		return nil, fmt.Errorf("COPY: expected COPY <type>")
	}
	typeName, err := parseIdent(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("COPY: %w", err)
	}
	return &CopyStmt{TypeName: typeName}, nil
}

// parseDo parses DO <statement>. Transaction control is not allowed in the body.
func parseDo(query string) (Statement, error) {
	body := strings.TrimSpace(query[len("DO"):])
	if body == "" {
		return nil, fmt.Errorf("DO: missing statement")
	}
	inner, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("DO: %w", err)
	}
	switch inner.(type) {
	case *BeginTxStmt, *CommitTxStmt, *RollbackTxStmt:
		return nil, fmt.Errorf("DO: cannot run %s inside DO", inner.Kind())
	}
	return &DoStmt{Body: inner}, nil
}
