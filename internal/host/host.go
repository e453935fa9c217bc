package host

import "fmt"

// OID is a host object identifier. Type OIDs and enum member OIDs share this space.
type OID uint32

// InvalidOID is never assigned to a catalog object.
const InvalidOID OID = 0

// CommandID is the host's per-statement counter inside a transaction.
type CommandID uint32

// FirstCommandID is the command id of the first statement in a transaction.
const FirstCommandID CommandID = 0

// CacheID selects a host system cache.
type CacheID int

const (
	// TypeOID is keyed by type OID and yields a TypeForm.
	TypeOID CacheID = iota
	// EnumOID is keyed by enum member OID and yields an EnumForm.
	EnumOID
	// EnumTypOIDName is a list cache keyed by enum type OID and yields every member.
	EnumTypOIDName
)

func (c CacheID) String() string {
	switch c {
	case TypeOID:
		return "TYPEOID"
	case EnumOID:
		return "ENUMOID"
	case EnumTypOIDName:
		return "ENUMTYPOIDNAME"
	default:
		return fmt.Sprintf("CACHE(%d)", int(c))
	}
}

// TypTypeEnum is the type kind marker for enumerated types.
const TypTypeEnum byte = 'e'

// Other type kind markers.
const (
	TypTypeBase      byte = 'b'
	TypTypeComposite byte = 'c'
	TypTypeDomain    byte = 'd'
)

// TypeForm is the read-only projection of a type catalog row.
type TypeForm struct {
	OID     OID
	Name    string
	TypType byte
}

// EnumForm is the read-only projection of an enum member catalog row.
type EnumForm struct {
	OID       OID
	EnumTypID OID
	SortOrder float32
	Label     string
}

// EnumMember is a (member identifier, label) pair in host canonical order.
type EnumMember struct {
	OID   OID
	Label string
}

// Tuple is a pinned catalog row. Exactly one of Type or Enum is set,
// depending on the cache it was fetched from.
type Tuple struct {
	Cache CacheID
	Type  *TypeForm
	Enum  *EnumForm
}

// Catalog is the host system cache lookup protocol.
//
// Implementations report failures the way host catalog code does: by
// raising a *Error with panic. Callers outside the host must go through
// the guard package, which turns the signal back into an error value.
type Catalog interface {
	// SearchCache returns a pinned tuple, or nil when no row matches key.
	SearchCache(cache CacheID, key OID) *Tuple

	// ReleaseCache unpins a tuple returned by SearchCache.
	ReleaseCache(tuple *Tuple)

	// SearchCacheList returns every pinned row matching key in a list cache.
	SearchCacheList(cache CacheID, key OID) []*Tuple

	// ReleaseCacheList unpins a list returned by SearchCacheList.
	ReleaseCacheList(list []*Tuple)
}

// XactEvent is delivered to transaction callbacks at transaction boundaries.
type XactEvent int

const (
	XactEventStart XactEvent = iota
	XactEventCommit
	XactEventAbort
)

func (e XactEvent) String() string {
	switch e {
	case XactEventStart:
		return "START"
	case XactEventCommit:
		return "COMMIT"
	case XactEventAbort:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}

// Transactions is the host transaction and command-id API.
type Transactions interface {
	// CurrentCommandID returns the current command id. used=true marks it as
	// consumed so the next CommandCounterIncrement advances it.
	CurrentCommandID(used bool) CommandID

	// CommandCounterIncrement advances the command id if the current one was used.
	CommandCounterIncrement()

	// IsTransactionBlock reports whether an explicit BEGIN ... COMMIT block is open.
	IsTransactionBlock() bool

	// InTransaction reports whether any transaction, implicit or explicit, is open.
	InTransaction() bool

	// RegisterXactCallback registers fn to run at every transaction boundary.
	RegisterXactCallback(fn func(XactEvent))

	BeginBlock() error
	CommitBlock() error
	AbortBlock() error

	// StartImplicit opens the host's default per-statement transaction.
	StartImplicit() error

	// FinishImplicit commits or aborts the implicit transaction.
	FinishImplicit(commit bool) error

	// InFailedBlock reports whether the open block saw an error and only
	// accepts COMMIT or ROLLBACK.
	InFailedBlock() bool

	// MarkBlockFailed puts the open block into the failed state.
	MarkBlockFailed()
}

// DDL is the subset of host DDL the dispatch path issues for enum types.
type DDL interface {
	CreateEnum(name string, labels []string) (OID, error)
	AddEnumValue(name, label string) error
	DropType(name string) error
	LookupTypeByName(name string) (OID, bool)
}

// Invalidator delivers system cache invalidations for changed rows.
type Invalidator interface {
	RegisterSyscacheCallback(fn func(cache CacheID, key OID))
}
