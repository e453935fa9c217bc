package engine

import (
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"

	"goBridge/internal/dberr"
	"goBridge/internal/enumbridge"
	"goBridge/internal/guest"
	"goBridge/internal/host"
	"goBridge/internal/sql"
)

// Run parses query and executes it.
func (s *Session) Run(query string) ([]string, []Row, error) {
	stmt, err := sql.Parse(query)
	if err != nil {
		return nil, nil, err
	}
	return s.Execute(stmt)
}

// Execute runs one top-level statement.
//
// Outside a transaction block every statement gets its own host transaction,
// committed when the statement succeeds and aborted when it fails. Inside a
// block a failing statement leaves the block failed until COMMIT or ROLLBACK.
func (s *Session) Execute(stmt sql.Statement) (cols []string, rows []Row, err error) {
	if !s.started {
		return nil, nil, fmt.Errorf("session not started")
	}

	switch stmt.(type) {
	case *sql.BeginTxStmt:
		return nil, nil, s.beginTx()
	case *sql.CommitTxStmt:
		return nil, nil, s.commitTx()
	case *sql.RollbackTxStmt:
		return nil, nil, s.rollbackTx()
	}

	if s.host.Xact.InFailedBlock() {
		return nil, nil, dberr.New(dberr.InvalidInput,
			"current transaction is aborted, commands ignored until end of transaction block").
			In("engine", stmt.Kind())
	}

	implicit, err := s.beginImplicit()
	if err != nil {
		return nil, nil, err
	}

	s.coord.BeginStatement()
	s.coord.AutocommitSingleStatementQueries()

	cols, rows, err = s.runStatement(stmt)

	autocommit := s.coord.MustAutocommit()
	s.coord.EndStatement()

	if err != nil {
		log.Printf("[DEBUG] session %s: %s failed: %v", s.id, stmt.Kind(), err)
		cols, rows = nil, nil
	}

	switch {
	case autocommit:
		if ferr := s.host.Xact.FinishImplicit(err == nil); ferr != nil {
			err = multierror.Append(err, fmt.Errorf("finish implicit tx: %w", ferr)).ErrorOrNil()
		}
	case implicit:
		// an implicit transaction must always be closed by its own statement
		if ferr := s.host.Xact.FinishImplicit(false); ferr != nil {
			err = multierror.Append(err, fmt.Errorf("finish implicit tx: %w", ferr)).ErrorOrNil()
		}
		err = multierror.Append(err, dberr.New(dberr.InternalError,
			"statement opened an implicit transaction without autocommit").In("engine", stmt.Kind())).ErrorOrNil()
	case err != nil:
		s.host.Xact.MarkBlockFailed()
	}

	return cols, rows, err
}

// runStatement executes stmt inside the current statement boundary. Nested
// statements (DO bodies) come back through here with the top-level flag cleared.
func (s *Session) runStatement(stmt sql.Statement) ([]string, []Row, error) {
	if s.standalone[stmt.Kind()] {
		if err := s.coord.PreventInTransactionBlock(stmt.Kind()); err != nil {
			return nil, nil, err
		}
	}
	cid := s.coord.ClaimCurrentCommandId()
	log.Printf("[DEBUG] session %s: %s at command id %d", s.id, stmt.Kind(), cid)

	switch st := stmt.(type) {
	case *sql.CreateEnumStmt:
		oid, err := s.host.DDL.CreateEnum(st.TypeName, st.Labels)
		if err != nil {
			return nil, nil, fmt.Errorf("create type: %w", err)
		}
		log.Printf("[INFO] created enum type %s with oid %d", st.TypeName, oid)
		return nil, nil, nil

	case *sql.AlterEnumAddStmt:
		if err := s.host.DDL.AddEnumValue(st.TypeName, st.Label); err != nil {
			return nil, nil, fmt.Errorf("alter type: %w", err)
		}
		return nil, nil, nil

	case *sql.DropTypeStmt:
		if err := s.host.DDL.DropType(st.TypeName); err != nil {
			return nil, nil, fmt.Errorf("drop type: %w", err)
		}
		return nil, nil, nil

	case *sql.SelectEnumStmt:
		return s.selectEnum(st.TypeName)

	case *sql.CastStmt:
		return s.castLabel(st.Label, st.TypeName)

	case *sql.CopyStmt:
		return s.copyEnum(st.TypeName)

	case *sql.VacuumStmt:
		n := s.bridge.Cache().Len()
		s.bridge.Cache().Purge()
		log.Printf("[INFO] vacuum dropped %d cached enum types", n)
		return nil, nil, nil

	case *sql.DoStmt:
		s.coord.MarkStatementNotTopLevel()
		return s.runStatement(st.Body)

	default:
		return nil, nil, fmt.Errorf("unsupported statement type %T", stmt)
	}
}

// enumType resolves a type name to its guest enum type.
func (s *Session) enumType(name string) (host.OID, guest.LogicalType, error) {
	oid, ok := s.host.DDL.LookupTypeByName(name)
	if !ok {
		return host.InvalidOID, guest.LogicalType{}, dberr.New(dberr.NotFound, "type %q does not exist", name).
			In("engine", "enumType")
	}
	t, err := s.bridge.EnumType(oid)
	if err != nil {
		return host.InvalidOID, guest.LogicalType{}, err
	}
	return oid, t, nil
}

// selectEnum lists the members of an enum by pushing every host member
// through the guest and back.
func (s *Session) selectEnum(name string) ([]string, []Row, error) {
	typeOID, t, err := s.enumType(name)
	if err != nil {
		return nil, nil, err
	}
	ids, err := enumbridge.GetMemberIdentifiers(t)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Row, 0, t.Enum.DictSize())
	for i := 0; i < t.Enum.DictSize(); i++ {
		memberOID := host.OID(ids.GetUint32(i))
		v, err := enumbridge.FromHost(memberOID, t)
		if err != nil {
			return nil, nil, err
		}
		pos, err := enumbridge.GetGuestEnumPosition(v)
		if err != nil {
			return nil, nil, err
		}
		back, err := enumbridge.ToHost(v)
		if err != nil {
			return nil, nil, err
		}
		if back != memberOID {
			return nil, nil, dberr.New(dberr.InternalError, "enum %s member %d came back as %d", name, memberOID, back).
				In("engine", "selectEnum")
		}
		rows = append(rows, Row{guest.NewUIntegerValue(uint32(pos)), v, guest.NewUIntegerValue(uint32(back))})
	}

	if len(rows) > 0 {
		owner, err := s.bridge.HostTypeOf(t)
		if err != nil {
			return nil, nil, err
		}
		if owner != typeOID {
			return nil, nil, dberr.New(dberr.InternalError, "enum %s resolved to type %d, want %d", name, owner, typeOID).
				In("engine", "selectEnum")
		}
	}
	return []string{"position", "label", "oid"}, rows, nil
}

// castLabel converts one label to a guest value and back to its host member.
func (s *Session) castLabel(label, name string) ([]string, []Row, error) {
	_, t, err := s.enumType(name)
	if err != nil {
		return nil, nil, err
	}
	v, err := enumbridge.FromLabel(label, t)
	if err != nil {
		return nil, nil, err
	}
	memberOID, err := enumbridge.ToHost(v)
	if err != nil {
		return nil, nil, err
	}
	return []string{"value", "oid"}, []Row{{v, guest.NewUIntegerValue(uint32(memberOID))}}, nil
}

// copyEnum exports every member straight from the guest dictionary.
func (s *Session) copyEnum(name string) ([]string, []Row, error) {
	_, t, err := s.enumType(name)
	if err != nil {
		return nil, nil, err
	}
	ids, err := enumbridge.GetMemberIdentifiers(t)
	if err != nil {
		return nil, nil, err
	}
	dict := t.Enum.ValuesInsertOrder()

	rows := make([]Row, 0, t.Enum.DictSize())
	for i := 0; i < t.Enum.DictSize(); i++ {
		rows = append(rows, Row{guest.NewVarcharValue(dict.GetString(i)), guest.NewUIntegerValue(ids.GetUint32(i))})
	}
	return []string{"label", "oid"}, rows, nil
}
