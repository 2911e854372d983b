package effects

import "github.com/KirkDiggler/tactics-engine/internal/formula"

// EventKind classifies what happened during a tick
type EventKind string

const (
	EventDamage  EventKind = "damage"
	EventHeal    EventKind = "heal"
	EventSave    EventKind = "save"
	EventExpired EventKind = "expired"
	EventRemoved EventKind = "removed"
	EventFailed  EventKind = "failed"
)

// SaveResult is one saving throw
type SaveResult struct {
	Ability Ability `json:"ability"`
	DC      int     `json:"dc"`
	Roll    int     `json:"roll"`
	Total   int     `json:"total"`
	Success bool    `json:"success"`
}

// TickEvent is one step of a tick
type TickEvent struct {
	Kind       EventKind             `json:"kind"`
	Effect     string                `json:"effect"`
	InstanceID string                `json:"instance_id"`
	Amount     int                   `json:"amount,omitempty"`
	DamageType DamageType            `json:"damage_type,omitempty"`
	Roll       *formula.ResolvedRoll `json:"roll,omitempty"`
	Save       *SaveResult           `json:"save,omitempty"`
	Reason     string                `json:"reason,omitempty"`
}

// TickReport lists everything a tick did to one holder
type TickReport struct {
	HolderID string      `json:"holder_id"`
	Holder   string      `json:"holder"`
	Phase    Phase       `json:"phase"`
	Events   []TickEvent `json:"events"`
}

func (r *TickReport) add(e TickEvent) {
	r.Events = append(r.Events, e)
}

// Empty reports whether the tick did nothing
func (r *TickReport) Empty() bool {
	return len(r.Events) == 0
}
