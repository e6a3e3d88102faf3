package models

// MissingKeysBatchSize is the most keys the remote service distributes per
// call.
const MissingKeysBatchSize uint64 = 100

// ScopeKind selects which filter is attached to a distribution call.
type ScopeKind int

const (
	ScopeAllNodes ScopeKind = iota
	ScopeRoomOrFolder
	ScopeSingleFile
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAllNodes:
		return "all nodes"
	case ScopeRoomOrFolder:
		return "room"
	case ScopeSingleFile:
		return "file"
	default:
		return "unknown"
	}
}

// Scope describes which nodes a distribution run covers. NodeID is zero for
// ScopeAllNodes and non-zero otherwise.
type Scope struct {
	Kind   ScopeKind
	NodeID uint64
}

// Filters returns the room and file filters for the remote call. At most one
// of them is non-nil.
func (s Scope) Filters() (roomID, fileID *uint64) {
	id := s.NodeID
	switch s.Kind {
	case ScopeRoomOrFolder:
		return &id, nil
	case ScopeSingleFile:
		return nil, &id
	default:
		return nil, nil
	}
}
