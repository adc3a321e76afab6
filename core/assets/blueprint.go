package assets

import (
	"encoding/json"
	"fmt"
)

// Blueprint is the structured design document for a game. It is produced
// whole by one structured-generation call and replaced whole on
// adjustment; there is no partial patching.
type Blueprint struct {
	Title   string  `json:"title"`
	Story   Story   `json:"story"`
	Actors  []Entry `json:"actors"`
	Enemies []Entry `json:"enemies"`
	Items   []Entry `json:"items"`
	Maps    []Entry `json:"maps"`
	Quests  []Quest `json:"quests"`
}

type Story struct {
	Tagline string `json:"tagline"`
	Summary string `json:"summary"`
}

type Entry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Quest struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Objective string   `json:"objective"`
	Steps     []string `json:"steps"`
}

// Validate checks the per-list id uniqueness invariant.
func (b *Blueprint) Validate() error {
	lists := []struct {
		name string
		ids  []int
	}{
		{"actors", entryIDs(b.Actors)},
		{"enemies", entryIDs(b.Enemies)},
		{"items", entryIDs(b.Items)},
		{"maps", entryIDs(b.Maps)},
		{"quests", questIDs(b.Quests)},
	}
	for _, list := range lists {
		seen := make(map[int]struct{}, len(list.ids))
		for _, id := range list.ids {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("duplicate id %d in %s", id, list.name)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// ParseBlueprint decodes and validates a serialized blueprint.
func ParseBlueprint(jsonText string) (*Blueprint, error) {
	var b Blueprint
	if err := json.Unmarshal([]byte(jsonText), &b); err != nil {
		return nil, fmt.Errorf("decode blueprint: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blueprint: %w", err)
	}
	return &b, nil
}

func entryIDs(entries []Entry) []int {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func questIDs(quests []Quest) []int {
	ids := make([]int, len(quests))
	for i, q := range quests {
		ids[i] = q.ID
	}
	return ids
}

// Schema descriptors for the structured categories. Each enumerates the
// required fields, their types, and value ranges; the provider is asked
// to return JSON matching the description exactly.

const BlueprintSchema = `Return a single JSON object with exactly these fields:
{
  "title": string,
  "story": { "tagline": string (one sentence), "summary": string (2-4 paragraphs) },
  "actors":  [ { "id": integer (unique within actors, starting at 1), "name": string, "description": string } ],
  "enemies": [ { "id": integer (unique within enemies, starting at 1), "name": string, "description": string } ],
  "items":   [ { "id": integer (unique within items, starting at 1), "name": string, "description": string } ],
  "maps":    [ { "id": integer (unique within maps, starting at 1), "name": string, "description": string } ],
  "quests":  [ { "id": integer (unique within quests, starting at 1), "title": string, "objective": string, "steps": [string] } ]
}
Every list must contain at least one entry. Ids must be unique within their own list.`

const skillSchema = `Return a single JSON object describing one skill:
{
  "name": string,
  "description": string,
  "element": string (one of "fire", "ice", "thunder", "earth", "wind", "water", "light", "dark", "none"),
  "mpCost": integer (0-999),
  "tpCost": integer (0-100),
  "power": integer (0-9999),
  "variance": integer (0-100, percent),
  "scope": string (one of "one-enemy", "all-enemies", "one-ally", "all-allies", "self"),
  "hitType": string (one of "certain", "physical", "magical")
}`

const statsSchema = `Return a single JSON object describing one character stat block:
{
  "name": string,
  "class": string,
  "level": integer (1-99),
  "maxHp": integer (1-9999),
  "maxMp": integer (0-9999),
  "attack": integer (1-999),
  "defense": integer (1-999),
  "magicAttack": integer (1-999),
  "magicDefense": integer (1-999),
  "agility": integer (1-999),
  "luck": integer (1-999)
}`
