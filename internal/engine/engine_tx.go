package engine

import (
	"fmt"
	"log"
)

func (s *Session) beginTx() error {
	if s.host.Xact.IsTransactionBlock() {
		return fmt.Errorf("transaction already in progress")
	}
	if err := s.host.Xact.BeginBlock(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	log.Printf("[DEBUG] session %s: transaction block opened", s.id)
	return nil
}

func (s *Session) commitTx() error {
	if !s.host.Xact.IsTransactionBlock() {
		return fmt.Errorf("no active transaction to commit")
	}

	failed := s.host.Xact.InFailedBlock()
	if err := s.host.Xact.CommitBlock(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	if failed {
		log.Printf("[WARN] session %s: commit of failed transaction block rolled back", s.id)
	}
	return nil
}

func (s *Session) rollbackTx() error {
	if !s.host.Xact.IsTransactionBlock() {
		return fmt.Errorf("no active transaction to rollback")
	}

	if err := s.host.Xact.AbortBlock(); err != nil {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

// beginImplicit opens the host's per-statement transaction when no block is
// open. It reports whether it opened one.
func (s *Session) beginImplicit() (bool, error) {
	if s.host.Xact.IsTransactionBlock() {
		return false, nil
	}
	if err := s.host.Xact.StartImplicit(); err != nil {
		return false, fmt.Errorf("start implicit tx: %w", err)
	}
	return true, nil
}
