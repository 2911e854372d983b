package events

// EventType represents the type of encounter event
type EventType string

// Event is the base interface for all encounter events
type Event interface {
	GetType() EventType
	GetEncounterID() string
	GetRound() int
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type        EventType
	EncounterID string
	Round       int
	Cancelled   bool
}

func (e *BaseEvent) GetType() EventType     { return e.Type }
func (e *BaseEvent) GetEncounterID() string { return e.EncounterID }
func (e *BaseEvent) GetRound() int          { return e.Round }
func (e *BaseEvent) IsCancelled() bool      { return e.Cancelled }
func (e *BaseEvent) Cancel()                { e.Cancelled = true }
