// Package xact keeps the guest engine's view of the current statement in
// step with the host's transaction and command-id counters.
//
// A Coordinator belongs to one host backend and is driven sequentially by
// that backend's statement dispatch path; it has no locking. Its state is
// reset at every host transaction boundary through the callback installed
// by Register.
package xact

import (
	"log"

	"goBridge/internal/dberr"
	"goBridge/internal/host"
)

// State is the command-id state of the current statement.
type State int

const (
	Idle State = iota
	CommandClaimed
)

func (s State) String() string {
	if s == CommandClaimed {
		return "COMMAND_CLAIMED"
	}
	return "IDLE"
}

// Coordinator tracks the per-statement flags of one backend.
type Coordinator struct {
	host host.Transactions

	state      State
	claimedCID host.CommandID
	autocommit bool
	notTop     bool
}

// New creates a coordinator over the host transaction API.
func New(h host.Transactions) *Coordinator {
	return &Coordinator{host: h}
}

// Register installs the coordinator's transaction-boundary callback.
func (c *Coordinator) Register() {
	c.host.RegisterXactCallback(c.OnXactEvent)
}

// OnXactEvent resets all state. Nothing survives a transaction boundary.
func (c *Coordinator) OnXactEvent(ev host.XactEvent) {
	if c.state == CommandClaimed && ev == host.XactEventAbort {
		log.Printf("[DEBUG] transaction aborted with command id %d claimed", c.claimedCID)
	}
	c.reset()
}

func (c *Coordinator) reset() {
	c.state = Idle
	c.claimedCID = 0
	c.autocommit = false
	c.notTop = false
}

// BeginStatement starts a new top-level statement.
func (c *Coordinator) BeginStatement() {
	c.autocommit = false
	c.notTop = false
}

// EndStatement closes the current statement. If it claimed a command id the
// host counter is advanced, so the next statement observes a new id.
func (c *Coordinator) EndStatement() {
	if c.state == CommandClaimed && c.host.InTransaction() {
		c.host.CommandCounterIncrement()
	}
	c.state = Idle
	c.autocommit = false
	c.notTop = false
}

// ClaimCurrentCommandId marks the host's current command id as used by the
// guest engine and returns it. Further calls within the same statement are
// no-ops returning the same id.
func (c *Coordinator) ClaimCurrentCommandId() host.CommandID {
	if c.state == CommandClaimed {
		return c.claimedCID
	}
	c.claimedCID = c.host.CurrentCommandID(true)
	c.state = CommandClaimed
	return c.claimedCID
}

// ClaimedCommandID returns the id claimed by the current statement, if any.
func (c *Coordinator) ClaimedCommandID() (host.CommandID, bool) {
	return c.claimedCID, c.state == CommandClaimed
}

// State returns the command-id state.
func (c *Coordinator) State() State {
	return c.state
}

// AutocommitSingleStatementQueries marks the current statement to run and
// commit as its own transaction, unless an explicit transaction block is
// open. It does not start or commit anything itself.
func (c *Coordinator) AutocommitSingleStatementQueries() {
	if c.host.IsTransactionBlock() {
		return
	}
	c.autocommit = true
}

// MustAutocommit reports whether the dispatch path must wrap the current
// statement in its own transaction.
func (c *Coordinator) MustAutocommit() bool {
	return c.autocommit
}

// MarkStatementNotTopLevel marks the current statement as nested inside
// another statement's execution.
func (c *Coordinator) MarkStatementNotTopLevel() {
	c.notTop = true
}

// IsTopLevel reports whether the current statement is top-level.
func (c *Coordinator) IsTopLevel() bool {
	return !c.notTop
}

// IsInTransactionBlock reports whether the host has an explicit
// multi-statement transaction block open.
func (c *Coordinator) IsInTransactionBlock() bool {
	return c.host.IsTransactionBlock()
}

// PreventInTransactionBlock fails when a top-level statement of the given
// kind runs inside a transaction block.
func (c *Coordinator) PreventInTransactionBlock(kind string) error {
	if !c.IsTopLevel() || !c.IsInTransactionBlock() {
		return nil
	}
	return dberr.New(dberr.FeatureNotSupported, "%s cannot run inside a transaction block", kind).
		In("xact", "PreventInTransactionBlock")
}
