package sql

import (
	"fmt"
	"strings"
)

// parseTxKeyword accepts "<KEYWORD>" or "<KEYWORD> TRANSACTION".
// query is trimmed and has no trailing semicolon here.
func parseTxKeyword(query, keyword string, stmt Statement) (Statement, error) {
	upper := strings.ToUpper(strings.Join(strings.Fields(query), " "))

	if upper == keyword || upper == keyword+" TRANSACTION" {
		return stmt, nil
	}
	if strings.HasPrefix(upper, keyword+" ") {
		return nil, fmt.Errorf("%s: only '%s' or '%s TRANSACTION' are supported", keyword, keyword, keyword)
	}
	return nil, fmt.Errorf("%s: invalid syntax", keyword)
}

func parseBegin(query string) (Statement, error) {
	return parseTxKeyword(query, "BEGIN", &BeginTxStmt{})
}

func parseCommit(query string) (Statement, error) {
	return parseTxKeyword(query, "COMMIT", &CommitTxStmt{})
}

func parseRollback(query string) (Statement, error) {
	return parseTxKeyword(query, "ROLLBACK", &RollbackTxStmt{})
}
