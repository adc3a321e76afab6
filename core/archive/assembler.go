// Package archive assembles a downloadable project archive from a design
// document and a set of stored assets bound to named slots. Assembly is
// deterministic: identical inputs produce byte-identical archives.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
)

// Slot names one asset binding in the exported project.
type Slot string

const (
	SlotHero    Slot = "hero"
	SlotVillain Slot = "villain"
	SlotItem    Slot = "item"
)

// RequiredSlots are the bindings every export must provide, in archive
// order.
var RequiredSlots = []Slot{SlotHero, SlotVillain, SlotItem}

// slotCategories pins each slot to the categories it accepts.
var slotCategories = map[Slot][]assets.Category{
	SlotHero:    {assets.CategoryCharacter},
	SlotVillain: {assets.CategoryMonster},
	SlotItem:    {assets.CategoryItem},
}

// imageSubdirs is the fixed category-to-subpath table.
var imageSubdirs = map[assets.Category]string{
	assets.CategoryCharacter: "characters",
	assets.CategoryMonster:   "enemies",
	assets.CategoryItem:      "items",
}

const fallbackSubdir = "pictures"

// PayloadDecoder turns a stored raster payload into raw image bytes.
// The asset store satisfies this.
type PayloadDecoder interface {
	DecodePayload(rec assets.Record) (mime string, data []byte, err error)
}

// Assembler builds project archives. It reads bound records and never
// mutates the store.
type Assembler struct {
	decoder PayloadDecoder
}

func NewAssembler(decoder PayloadDecoder) *Assembler {
	return &Assembler{decoder: decoder}
}

// Build writes a complete project archive to w. All inputs are validated
// before the first byte is written; validation failures are InvalidInput.
func (a *Assembler) Build(w io.Writer, blueprint *assets.Blueprint, bindings map[Slot]assets.Record) error {
	images, err := a.validate(blueprint, bindings)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	if err := a.writeFile(zw, "README.txt", []byte(readmeText(blueprint))); err != nil {
		return err
	}

	planJSON, err := marshalPretty(blueprint)
	if err != nil {
		return err
	}
	if err := a.writeFile(zw, "game_plan.json", planJSON); err != nil {
		return err
	}

	for _, entity := range engineData(blueprint, bindings) {
		data, err := marshalPretty(entity.records)
		if err != nil {
			return err
		}
		if err := a.writeFile(zw, "data/"+entity.file, data); err != nil {
			return err
		}
	}

	for _, slot := range RequiredSlots {
		rec := bindings[slot]
		if err := a.writeFile(zw, ImagePath(rec), images[slot]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// ImagePath returns the deterministic archive path for a bound record.
func ImagePath(rec assets.Record) string {
	subdir, ok := imageSubdirs[rec.Category]
	if !ok {
		subdir = fallbackSubdir
	}
	return fmt.Sprintf("img/%s/%s_%d.png", subdir, rec.Category, rec.ID)
}

func (a *Assembler) validate(blueprint *assets.Blueprint, bindings map[Slot]assets.Record) (map[Slot][]byte, error) {
	if blueprint == nil {
		return nil, errors.New(errors.KindInvalidInput, "no design document provided")
	}
	if err := blueprint.Validate(); err != nil {
		return nil, errors.Wrap(errors.KindInvalidInput, "invalid design document", err)
	}

	images := make(map[Slot][]byte, len(RequiredSlots))
	for _, slot := range RequiredSlots {
		rec, ok := bindings[slot]
		if !ok {
			return nil, errors.Newf(errors.KindInvalidInput, "slot %q is not bound", slot)
		}
		if !categoryAllowed(slot, rec.Category) {
			return nil, errors.Newf(errors.KindInvalidInput,
				"slot %q cannot hold a %q asset", slot, rec.Category)
		}
		_, data, err := a.decoder.DecodePayload(rec)
		if err != nil {
			return nil, errors.Wrap(errors.KindInvalidInput,
				fmt.Sprintf("slot %q has an undecodable payload", slot), err)
		}
		images[slot] = data
	}
	return images, nil
}

func categoryAllowed(slot Slot, category assets.Category) bool {
	allowed, ok := slotCategories[slot]
	if !ok {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// writeFile adds one entry with a fixed header so repeated builds stay
// byte-identical. The zero Modified time maps to the zip epoch.
func (a *Assembler) writeFile(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func marshalPretty(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func readmeText(blueprint *assets.Blueprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", blueprint.Title, strings.Repeat("=", len(blueprint.Title)))
	if blueprint.Story.Tagline != "" {
		fmt.Fprintf(&b, "%s\n\n", blueprint.Story.Tagline)
	}
	b.WriteString("This archive was exported by forgecraft.\n\n")
	b.WriteString("Contents:\n")
	b.WriteString("  game_plan.json  full design document\n")
	b.WriteString("  data/           engine data records for the lead actor, enemy and item\n")
	b.WriteString("  img/            generated images, one per bound slot\n\n")
	b.WriteString("Copy data/ and img/ into your engine project, or import\n")
	b.WriteString("game_plan.json into your own tooling.\n")
	return b.String()
}

type entityFile struct {
	file    string
	records []map[string]any
}

// engineData derives per-entity-type records from the document's first
// actor, enemy and item. The leading null matches the engine's
// one-indexed data arrays.
func engineData(blueprint *assets.Blueprint, bindings map[Slot]assets.Record) []entityFile {
	files := []entityFile{
		{file: "Actors.json"},
		{file: "Enemies.json"},
		{file: "Items.json"},
	}

	if len(blueprint.Actors) > 0 {
		actor := blueprint.Actors[0]
		files[0].records = []map[string]any{nil, {
			"id":            1,
			"name":          actor.Name,
			"profile":       actor.Description,
			"characterName": imageBase(bindings[SlotHero]),
			"initialLevel":  1,
			"maxLevel":      99,
		}}
	}
	if len(blueprint.Enemies) > 0 {
		enemy := blueprint.Enemies[0]
		files[1].records = []map[string]any{nil, {
			"id":          1,
			"name":        enemy.Name,
			"note":        enemy.Description,
			"battlerName": imageBase(bindings[SlotVillain]),
		}}
	}
	if len(blueprint.Items) > 0 {
		item := blueprint.Items[0]
		files[2].records = []map[string]any{nil, {
			"id":          1,
			"name":        item.Name,
			"description": item.Description,
			"iconName":    imageBase(bindings[SlotItem]),
		}}
	}
	return files
}

func imageBase(rec assets.Record) string {
	return fmt.Sprintf("%s_%d", rec.Category, rec.ID)
}
