package events

// Event type constants
const (
	EventTypeTurnCompleted EventType = "turn_completed"
	EventTypeCombatantDied EventType = "combatant_died"
	EventTypeEncounterOver EventType = "encounter_over"
)

// Priority levels, lower runs first
const (
	PriorityNarration = 100
	PriorityStats     = 200
	PriorityAudit     = 300
)
