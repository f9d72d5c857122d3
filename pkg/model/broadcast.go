package model

import "time"

// Broadcast is the envelope handed to the transport layer once per cycle.
// The schedule becomes effective on the cycle after the one that produced it.
type Broadcast struct {
	ID                string    `json:"id"`
	ControllerID      string    `json:"controller_id"`
	Cycle             int64     `json:"cycle"`
	EffectiveCycle    int64     `json:"effective_cycle"`
	ProbingSlots      int       `json:"num_probing_slots"`
	ProbingDuration   int64     `json:"probing_duration"`
	SYSlots           int       `json:"num_sy_slots"`
	SYDurationPerSlot int64     `json:"sy_duration_per_slot"`
	RTReward          int       `json:"rt_reward"`
	Mode              Mode      `json:"mode"`
	Schedule          Schedule  `json:"rt_schedule"`
	CreatedAt         time.Time `json:"created_at"`
}
