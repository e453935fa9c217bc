package sql

// Statement is the common interface for all statements the dispatch path runs.
type Statement interface {
	stmtNode()

	// Kind names the statement in messages, e.g. "COPY" or "CREATE TYPE".
	Kind() string
}

// BeginTxStmt represents BEGIN [TRANSACTION].
type BeginTxStmt struct{}

// CommitTxStmt represents COMMIT [TRANSACTION].
type CommitTxStmt struct{}

// RollbackTxStmt represents ROLLBACK [TRANSACTION].
type RollbackTxStmt struct{}

// CreateEnumStmt represents CREATE TYPE name AS ENUM ('a', 'b', ...).
type CreateEnumStmt struct {
	TypeName string
	Labels   []string
}

// AlterEnumAddStmt represents ALTER TYPE name ADD VALUE 'label'.
type AlterEnumAddStmt struct {
	TypeName string
	Label    string
}

// DropTypeStmt represents DROP TYPE name.
type DropTypeStmt struct {
	TypeName string
}

// SelectEnumStmt represents SELECT ENUM name: list the members of an enum
// as seen through the guest engine.
type SelectEnumStmt struct {
	TypeName string
}

// CastStmt represents CAST 'label' AS name: convert one host enum value
// into the guest engine and back.
type CastStmt struct {
	Label    string
	TypeName string
}

// CopyStmt represents COPY name: export every member of an enum.
type CopyStmt struct {
	TypeName string
}

// VacuumStmt represents VACUUM: drop every cached guest type.
type VacuumStmt struct{}

// DoStmt represents DO <statement>: run Body nested inside this statement.
type DoStmt struct {
	Body Statement
}

func (*BeginTxStmt) stmtNode()      {}
func (*CommitTxStmt) stmtNode()     {}
func (*RollbackTxStmt) stmtNode()   {}
func (*CreateEnumStmt) stmtNode()   {}
func (*AlterEnumAddStmt) stmtNode() {}
func (*DropTypeStmt) stmtNode()     {}
func (*SelectEnumStmt) stmtNode()   {}
func (*CastStmt) stmtNode()         {}
func (*CopyStmt) stmtNode()         {}
func (*VacuumStmt) stmtNode()       {}
func (*DoStmt) stmtNode()           {}

func (*BeginTxStmt) Kind() string      { return "BEGIN" }
func (*CommitTxStmt) Kind() string     { return "COMMIT" }
func (*RollbackTxStmt) Kind() string   { return "ROLLBACK" }
func (*CreateEnumStmt) Kind() string   { return "CREATE TYPE" }
func (*AlterEnumAddStmt) Kind() string { return "ALTER TYPE" }
func (*DropTypeStmt) Kind() string     { return "DROP TYPE" }
func (*SelectEnumStmt) Kind() string   { return "SELECT" }
func (*CastStmt) Kind() string         { return "CAST" }
func (*CopyStmt) Kind() string         { return "COPY" }
func (*VacuumStmt) Kind() string       { return "VACUUM" }
func (*DoStmt) Kind() string           { return "DO" }
