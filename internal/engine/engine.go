package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"goBridge/internal/enumbridge"
	"goBridge/internal/guest"
	"goBridge/internal/host"
	"goBridge/internal/xact"
)

// DefaultStandaloneKinds are the statement kinds that refuse to run inside
// a transaction block when no list is configured.
var DefaultStandaloneKinds = []string{"COPY", "VACUUM"}

// Host bundles the host services a session runs against.
type Host struct {
	Catalog     host.Catalog
	DDL         host.DDL
	Xact        host.Transactions
	Invalidator host.Invalidator // optional; nil disables cache invalidation
}

// Options tune a session.
type Options struct {
	CacheSize       int
	StandaloneKinds []string
}

// Row is one result row. Values keep their guest types so enum columns
// print as labels.
type Row []guest.Value

// Session is one backend: it dispatches statements, keeps the guest view of
// host enums in its bridge, and drives the transaction coordinator.
type Session struct {
	id         string
	started    bool
	host       Host
	bridge     *enumbridge.Bridge
	coord      *xact.Coordinator
	standalone map[string]bool
}

// New creates a session over h. Call Start before executing statements.
func New(h Host, opts Options) (*Session, error) {
	if h.Catalog == nil || h.DDL == nil || h.Xact == nil {
		return nil, fmt.Errorf("session needs a catalog, DDL and transaction host")
	}
	cache, err := enumbridge.NewTypeCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	kinds := opts.StandaloneKinds
	if kinds == nil {
		kinds = DefaultStandaloneKinds
	}
	standalone := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		standalone[strings.ToUpper(strings.TrimSpace(k))] = true
	}

	return &Session{
		id:         uuid.NewString(),
		host:       h,
		bridge:     enumbridge.New(h.Catalog, cache),
		coord:      xact.New(h.Xact),
		standalone: standalone,
	}, nil
}

// Start registers the session's transaction and invalidation callbacks.
func (s *Session) Start() error {
	if s.started {
		return fmt.Errorf("session already started")
	}
	s.coord.Register()
	if s.host.Invalidator != nil {
		s.bridge.Cache().Attach(s.host.Invalidator)
	}
	s.started = true
	log.Printf("[DEBUG] session %s started", s.id)
	return nil
}

// ID returns the session id used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Coordinator returns the session's transaction coordinator.
func (s *Session) Coordinator() *xact.Coordinator {
	return s.coord
}

// Bridge returns the session's enum bridge.
func (s *Session) Bridge() *enumbridge.Bridge {
	return s.bridge
}

// InTransactionBlock reports whether an explicit transaction block is open.
func (s *Session) InTransactionBlock() bool {
	return s.host.Xact.IsTransactionBlock()
}
