package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthroughDecoder decodes data URIs without a store.
type passthroughDecoder struct{}

func (passthroughDecoder) DecodePayload(rec assets.Record) (string, []byte, error) {
	return assets.DecodeDataURI(rec.Payload)
}

func testBlueprint() *assets.Blueprint {
	return &assets.Blueprint{
		Title: "Emberfall",
		Story: assets.Story{Tagline: "A city beneath the ash.", Summary: "Long summary."},
		Actors: []assets.Entry{
			{ID: 1, Name: "Rook", Description: "a disgraced knight"},
		},
		Enemies: []assets.Entry{
			{ID: 1, Name: "Cinder Wraith", Description: "a burning ghost"},
		},
		Items: []assets.Entry{
			{ID: 1, Name: "Ash Key", Description: "opens the undergate"},
		},
		Maps:   []assets.Entry{{ID: 1, Name: "Undercity", Description: "dark streets"}},
		Quests: []assets.Quest{{ID: 1, Title: "Find the Key", Objective: "recover it", Steps: []string{"descend"}}},
	}
}

func testBindings() map[Slot]assets.Record {
	return map[Slot]assets.Record{
		SlotHero: {
			ID: 4, Category: assets.CategoryCharacter,
			Payload: assets.EncodeDataURI("image/png", []byte("hero-bytes")),
		},
		SlotVillain: {
			ID: 9, Category: assets.CategoryMonster,
			Payload: assets.EncodeDataURI("image/png", []byte("villain-bytes")),
		},
		SlotItem: {
			ID: 2, Category: assets.CategoryItem,
			Payload: assets.EncodeDataURI("image/png", []byte("item-bytes")),
		},
	}
}

func buildArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := NewAssembler(passthroughDecoder{}).Build(&buf, testBlueprint(), testBindings())
	require.NoError(t, err)
	return buf.Bytes()
}

func readEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = content
	}
	return entries
}

func TestBuildLayout(t *testing.T) {
	entries := readEntries(t, buildArchive(t))

	want := []string{
		"README.txt",
		"game_plan.json",
		"data/Actors.json",
		"data/Enemies.json",
		"data/Items.json",
		"img/characters/character_4.png",
		"img/enemies/monster_9.png",
		"img/items/item_2.png",
	}
	require.Len(t, entries, len(want))
	for _, name := range want {
		assert.Contains(t, entries, name)
	}

	assert.Equal(t, []byte("hero-bytes"), entries["img/characters/character_4.png"])
	assert.Equal(t, []byte("villain-bytes"), entries["img/enemies/monster_9.png"])
	assert.Contains(t, string(entries["README.txt"]), "Emberfall")
}

func TestBuildGamePlanRoundTrips(t *testing.T) {
	entries := readEntries(t, buildArchive(t))

	var decoded assets.Blueprint
	require.NoError(t, json.Unmarshal(entries["game_plan.json"], &decoded))
	assert.Equal(t, *testBlueprint(), decoded)
}

func TestBuildEngineData(t *testing.T) {
	entries := readEntries(t, buildArchive(t))

	var actors []map[string]any
	require.NoError(t, json.Unmarshal(entries["data/Actors.json"], &actors))
	require.Len(t, actors, 2)
	assert.Nil(t, actors[0], "engine data arrays are one-indexed")
	assert.Equal(t, "Rook", actors[1]["name"])
	assert.Equal(t, "character_4", actors[1]["characterName"])

	var items []map[string]any
	require.NoError(t, json.Unmarshal(entries["data/Items.json"], &items))
	assert.Equal(t, "item_2", items[1]["iconName"])
}

func TestBuildDeterminism(t *testing.T) {
	first := buildArchive(t)
	second := buildArchive(t)
	assert.Equal(t, first, second, "identical inputs must produce byte-identical archives")
}

func TestBuildUnboundSlotFailsBeforeWriting(t *testing.T) {
	bindings := testBindings()
	delete(bindings, SlotVillain)

	var buf bytes.Buffer
	err := NewAssembler(passthroughDecoder{}).Build(&buf, testBlueprint(), bindings)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	assert.Zero(t, buf.Len(), "nothing may be written on validation failure")
}

func TestBuildWrongSlotCategory(t *testing.T) {
	bindings := testBindings()
	hero := bindings[SlotHero]
	hero.Category = assets.CategoryTileset
	bindings[SlotHero] = hero

	var buf bytes.Buffer
	err := NewAssembler(passthroughDecoder{}).Build(&buf, testBlueprint(), bindings)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	assert.Zero(t, buf.Len())
}

func TestBuildUndecodablePayload(t *testing.T) {
	bindings := testBindings()
	hero := bindings[SlotHero]
	hero.Payload = "not-an-image"
	bindings[SlotHero] = hero

	var buf bytes.Buffer
	err := NewAssembler(passthroughDecoder{}).Build(&buf, testBlueprint(), bindings)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	assert.Zero(t, buf.Len())
}

func TestBuildInvalidBlueprint(t *testing.T) {
	bp := testBlueprint()
	bp.Actors = append(bp.Actors, assets.Entry{ID: 1, Name: "Dup"})

	var buf bytes.Buffer
	err := NewAssembler(passthroughDecoder{}).Build(&buf, bp, testBindings())
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	assert.Zero(t, buf.Len())
}

func TestImagePathFallback(t *testing.T) {
	rec := assets.Record{ID: 11, Category: assets.CategoryMap}
	assert.Equal(t, "img/pictures/map_11.png", ImagePath(rec))
}
