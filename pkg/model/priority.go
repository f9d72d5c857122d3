package model

// Band is an inclusive range of priority weights.
type Band struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether p lies within the band.
func (b Band) Contains(p int) bool {
	return b.Min <= p && p <= b.Max
}

// PriorityBands partitions the weight space used in hybrid mode. The bands
// are disjoint and ordered so that summing tags per worker yields a total
// order: unassigned (0) < optional < compulsory < synchronous < reserved.
type PriorityBands struct {
	Optional    Band `json:"optional" yaml:"optional"`
	Compulsory  Band `json:"compulsory" yaml:"compulsory"`
	Synchronous Band `json:"synchronous" yaml:"synchronous"`
	Reserved    int  `json:"reserved" yaml:"reserved"`
}

// DefaultPriorityBands returns the controller's standard weight layout.
func DefaultPriorityBands() PriorityBands {
	return PriorityBands{
		Optional:    Band{Min: 1, Max: 2},
		Compulsory:  Band{Min: 3, Max: 4},
		Synchronous: Band{Min: 5, Max: 6},
		Reserved:    7,
	}
}

// Ordered reports whether the bands are non-empty, positive and strictly
// increasing.
func (b PriorityBands) Ordered() bool {
	return b.Optional.Min > 0 &&
		b.Optional.Min <= b.Optional.Max &&
		b.Optional.Max < b.Compulsory.Min &&
		b.Compulsory.Min <= b.Compulsory.Max &&
		b.Compulsory.Max < b.Synchronous.Min &&
		b.Synchronous.Min <= b.Synchronous.Max &&
		b.Synchronous.Max < b.Reserved
}
