package encounter

import (
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

// TurnCompletedEvent is emitted after every turn
type TurnCompletedEvent struct {
	events.BaseEvent
	Report *TurnReport
}

// CombatantDiedEvent is emitted once per death, after the turn it happened in
type CombatantDiedEvent struct {
	events.BaseEvent
	Death Death
}

// EncounterOverEvent is emitted when one side has no living members
type EncounterOverEvent struct {
	events.BaseEvent
	Winner targeting.Team
}

// publish emits the events of a finished turn. Listener failures are
// logged; they never fail the turn.
func (e *Encounter) publish(report *TurnReport) {
	if e.events == nil {
		return
	}

	e.emit(&TurnCompletedEvent{BaseEvent: e.base(events.EventTypeTurnCompleted, report.Round), Report: report})
	for _, death := range report.Deaths {
		e.emit(&CombatantDiedEvent{BaseEvent: e.base(events.EventTypeCombatantDied, report.Round), Death: death})
	}
	if e.Status == StatusCompleted {
		winner, _ := e.Winner()
		e.emit(&EncounterOverEvent{BaseEvent: e.base(events.EventTypeEncounterOver, report.Round), Winner: winner})
	}
}

func (e *Encounter) base(t events.EventType, round int) events.BaseEvent {
	return events.BaseEvent{Type: t, EncounterID: e.ID, Round: round}
}

func (e *Encounter) emit(event events.Event) {
	if err := e.events.Emit(event); err != nil {
		e.logger.Warn("event listener failed",
			zap.String("event", string(event.GetType())),
			zap.Error(err),
		)
	}
}
