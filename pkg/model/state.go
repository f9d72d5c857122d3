package model

// Mode selects how overload is resolved.
type Mode string

const (
	// ModeClassic drops work through feasibility analysis and eviction, then
	// packs a gap-free timeline per worker.
	ModeClassic Mode = "classic"
	// ModeHybrid packs by priority and defers infeasible instances to an
	// overflow queue.
	ModeHybrid Mode = "hybrid"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true for a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeClassic, ModeHybrid:
		return true
	}
	return false
}

// TagKind is the kind of an assignment tag on one (task, worker) cell.
type TagKind string

const (
	TagNone       TagKind = ""
	TagOptional   TagKind = "optional"
	TagCompulsory TagKind = "compulsory"
)

// String returns the string representation of the tag kind.
func (k TagKind) String() string {
	if k == TagNone {
		return "none"
	}
	return string(k)
}

// Symbol is the one-character rendering used in the matrix grid.
func (k TagKind) Symbol() string {
	switch k {
	case TagCompulsory:
		return "+"
	case TagOptional:
		return "*"
	}
	return " "
}

// EvictionReason names the bound a worker violated when a task was evicted.
type EvictionReason string

const (
	ReasonUtilization EvictionReason = "utilization"
	ReasonHyperperiod EvictionReason = "hyperperiod"
)
