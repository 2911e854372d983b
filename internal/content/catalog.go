// Package content loads declarative action, effect and combatant records
// into engine definitions.
package content

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/entities"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

//go:embed data/*.yaml
var defaultData embed.FS

// Catalog holds parsed definitions keyed by content ID
type Catalog struct {
	actions      map[string]actions.Definition
	actionIDs    []string
	combatants   map[string]entities.Stats
	combatantIDs []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		actions:    make(map[string]actions.Definition),
		combatants: make(map[string]entities.Stats),
	}
}

// Parse decodes one YAML or JSON document. Every expression is parsed, so a
// catalog that loads cannot fail later on malformed content.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeContent, "decoding content")
	}

	c := NewCatalog()
	for i := range doc.Actions {
		rec := &doc.Actions[i]
		def, err := decodeAction(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "action %s", rec.Name).WithMeta("action", rec.Name)
		}
		id := actions.BaseOf(def).ID
		if _, exists := c.actions[id]; exists {
			return nil, errors.Contentf("duplicate action id %q", id)
		}
		c.addAction(def)
	}

	ids := make([]string, 0, len(doc.Combatants))
	for id := range doc.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		stats := doc.Combatants[id]
		if stats.Name == "" {
			stats.Name = id
		}
		if stats.HP <= 0 {
			return nil, errors.Contentf("combatant %s needs positive hp", id)
		}
		stats.Team = normalizeTeam(stats.Team)
		c.addCombatant(id, stats)
	}

	return c, nil
}

// LoadFile parses a single content file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return c, nil
}

// LoadDir merges every .yaml, .yml and .json file in dir in name order.
// Later files override earlier records with the same ID.
func LoadDir(dir string) (*Catalog, error) {
	return loadFS(os.DirFS(dir), ".")
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return loadFS(defaultData, "data")
}

func loadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing content in %s", dir)
	}

	catalog := NewCatalog()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		name := filepath.ToSlash(filepath.Join(dir, entry.Name()))
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", name)
		}
		catalog.Merge(c)
	}
	return catalog, nil
}

// Merge copies every record of other into c, replacing records that share
// an ID
func (c *Catalog) Merge(other *Catalog) {
	for _, id := range other.actionIDs {
		c.addAction(other.actions[id])
	}
	for _, id := range other.combatantIDs {
		c.addCombatant(id, other.combatants[id])
	}
}

// Action returns an action by ID
func (c *Catalog) Action(id string) (actions.Definition, error) {
	def, ok := c.actions[id]
	if !ok {
		return nil, errors.NotFoundf("action %s not found", id).WithMeta("action", id)
	}
	return def, nil
}

// Actions returns every action in load order
func (c *Catalog) Actions() []actions.Definition {
	out := make([]actions.Definition, 0, len(c.actionIDs))
	for _, id := range c.actionIDs {
		out = append(out, c.actions[id])
	}
	return out
}

// Combatant returns a combatant stat block by ID
func (c *Catalog) Combatant(id string) (entities.Stats, error) {
	stats, ok := c.combatants[id]
	if !ok {
		return entities.Stats{}, errors.NotFoundf("combatant %s not found", id).WithMeta("combatant", id)
	}
	return stats, nil
}

// CombatantIDs lists the combatant stat blocks in load order
func (c *Catalog) CombatantIDs() []string {
	out := make([]string, len(c.combatantIDs))
	copy(out, c.combatantIDs)
	return out
}

// ActionsFor resolves the action IDs listed on a stat block
func (c *Catalog) ActionsFor(stats entities.Stats) ([]actions.Definition, error) {
	out := make([]actions.Definition, 0, len(stats.Actions))
	for _, id := range stats.Actions {
		def, err := c.Action(id)
		if err != nil {
			return nil, errors.Wrapf(err, "actions for %s", stats.Name)
		}
		out = append(out, def)
	}
	return out, nil
}

func (c *Catalog) addAction(def actions.Definition) {
	id := actions.BaseOf(def).ID
	if _, exists := c.actions[id]; !exists {
		c.actionIDs = append(c.actionIDs, id)
	}
	c.actions[id] = def
}

func (c *Catalog) addCombatant(id string, stats entities.Stats) {
	if _, exists := c.combatants[id]; !exists {
		c.combatantIDs = append(c.combatantIDs, id)
	}
	c.combatants[id] = stats
}

func normalizeTeam(team targeting.Team) targeting.Team {
	switch strings.ToUpper(string(team)) {
	case "", string(targeting.TeamOpponents), "ENEMY", "ENEMIES":
		return targeting.TeamOpponents
	case string(targeting.TeamParty), "PLAYER", "PLAYERS":
		return targeting.TeamParty
	}
	return targeting.Team(strings.ToUpper(string(team)))
}
