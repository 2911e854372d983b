package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/content"
	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/entities"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/repositories/outcomes"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
	"github.com/KirkDiggler/tactics-engine/internal/uuid"
)

// roster is one side of a fight as catalog IDs
type roster struct {
	team targeting.Team
	ids  []string
}

// fight describes an encounter to build
type fight struct {
	name    string
	seed    int64
	sides   []roster
	journal outcomes.Repository
	events  *events.Bus
	logger  *zap.Logger
}

// buildEncounter creates the combatants of every side and adds them in
// order. Repeated stat blocks get numbered IDs and names.
func buildEncounter(catalog *content.Catalog, f *fight) (*encounter.Encounter, error) {
	enc := encounter.New(&encounter.Config{
		ID:            f.name,
		Roller:        dice.NewSeededRoller(f.seed),
		Journal:       f.journal,
		Events:        f.events,
		UUIDGenerator: uuid.NewSequential(f.name),
		Logger:        f.logger,
	})

	counts := make(map[string]int)
	for _, side := range f.sides {
		for _, id := range side.ids {
			counts[id]++
		}
	}

	seen := make(map[string]int)
	for _, side := range f.sides {
		for _, id := range side.ids {
			stats, err := catalog.Combatant(id)
			if err != nil {
				return nil, err
			}
			available, err := catalog.ActionsFor(stats)
			if err != nil {
				return nil, err
			}

			stats.Team = side.team
			combatantID := id
			if counts[id] > 1 {
				seen[id]++
				combatantID = fmt.Sprintf("%s_%d", id, seen[id])
				stats.Name = fmt.Sprintf("%s %d", stats.Name, seen[id])
			}

			if err := enc.Add(entities.NewCombatant(combatantID, stats), available); err != nil {
				return nil, err
			}
		}
	}
	return enc, nil
}

// parseIDs splits a comma separated list of catalog IDs
func parseIDs(flag, value string) ([]string, error) {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.InvalidArgumentf("--%s needs at least one combatant", flag)
	}
	return ids, nil
}
