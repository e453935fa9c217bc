package memhost

import (
	"fmt"

	"goBridge/internal/host"
)

// CurrentCommandID implements host.Transactions.
func (h *Host) CurrentCommandID(used bool) host.CommandID {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	if used {
		h.cidUsed = true
	}
	return h.cid
}

// CommandCounterIncrement implements host.Transactions. Like the host, it
// only advances when the current command id was used.
func (h *Host) CommandCounterIncrement() {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	if !h.cidUsed {
		return
	}
	h.cid++
	h.cidUsed = false
}

// IsTransactionBlock implements host.Transactions.
func (h *Host) IsTransactionBlock() bool {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	return h.inBlock
}

// InTransaction implements host.Transactions.
func (h *Host) InTransaction() bool {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	return h.inXact
}

// InFailedBlock reports whether the open block saw an error and only accepts ROLLBACK.
func (h *Host) InFailedBlock() bool {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	return h.inBlock && h.blockAbort
}

// MarkBlockFailed puts the open block into the aborted state.
func (h *Host) MarkBlockFailed() {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	if h.inBlock {
		h.blockAbort = true
	}
}

// RegisterXactCallback implements host.Transactions.
func (h *Host) RegisterXactCallback(fn func(host.XactEvent)) {
	h.xmu.Lock()
	defer h.xmu.Unlock()
	h.xactCbs = append(h.xactCbs, fn)
}

// BeginBlock implements host.Transactions.
func (h *Host) BeginBlock() error {
	h.xmu.Lock()
	if h.inBlock {
		h.xmu.Unlock()
		return fmt.Errorf("there is already a transaction in progress")
	}
	var cbs []func(host.XactEvent)
	if !h.inXact {
		cbs = h.startXact()
	}
	h.inBlock = true
	h.xmu.Unlock()

	fire(cbs, host.XactEventStart)
	return nil
}

// CommitBlock implements host.Transactions. Committing a failed block rolls it back.
func (h *Host) CommitBlock() error {
	h.xmu.Lock()
	if !h.inBlock {
		h.xmu.Unlock()
		return fmt.Errorf("there is no transaction in progress")
	}
	ev := host.XactEventCommit
	if h.blockAbort {
		ev = host.XactEventAbort
	}
	cbs := h.endXact()
	h.xmu.Unlock()

	fire(cbs, ev)
	return nil
}

// AbortBlock implements host.Transactions.
func (h *Host) AbortBlock() error {
	h.xmu.Lock()
	if !h.inBlock {
		h.xmu.Unlock()
		return fmt.Errorf("there is no transaction in progress")
	}
	cbs := h.endXact()
	h.xmu.Unlock()

	fire(cbs, host.XactEventAbort)
	return nil
}

// StartImplicit implements host.Transactions. Inside a block it is a no-op.
func (h *Host) StartImplicit() error {
	h.xmu.Lock()
	if h.inXact {
		h.xmu.Unlock()
		return nil
	}
	cbs := h.startXact()
	h.xmu.Unlock()

	fire(cbs, host.XactEventStart)
	return nil
}

// FinishImplicit implements host.Transactions. Inside a block it is a no-op.
func (h *Host) FinishImplicit(commit bool) error {
	h.xmu.Lock()
	if h.inBlock {
		h.xmu.Unlock()
		return nil
	}
	if !h.inXact {
		h.xmu.Unlock()
		return fmt.Errorf("no implicit transaction to finish")
	}
	cbs := h.endXact()
	h.xmu.Unlock()

	if commit {
		fire(cbs, host.XactEventCommit)
	} else {
		fire(cbs, host.XactEventAbort)
	}
	return nil
}

// startXact and endXact must hold h.xmu. They return the callbacks to fire
// once the lock is released.
func (h *Host) startXact() []func(host.XactEvent) {
	h.inXact = true
	h.cid = host.FirstCommandID
	h.cidUsed = false
	return h.callbacks()
}

func (h *Host) endXact() []func(host.XactEvent) {
	h.inXact = false
	h.inBlock = false
	h.blockAbort = false
	return h.callbacks()
}

func (h *Host) callbacks() []func(host.XactEvent) {
	cbs := make([]func(host.XactEvent), len(h.xactCbs))
	copy(cbs, h.xactCbs)
	return cbs
}

func fire(cbs []func(host.XactEvent), ev host.XactEvent) {
	for _, fn := range cbs {
		fn(ev)
	}
}
