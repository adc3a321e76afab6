// Package assets defines the asset categories, the request descriptor
// contract attached to each, and the stored record and blueprint types.
package assets

import "fmt"

// Category identifies what kind of artifact a record holds.
type Category string

const (
	CategoryCharacter Category = "character"
	CategorySprite    Category = "sprite"
	CategoryMonster   Category = "monster"
	CategoryFaceset   Category = "faceset"
	CategoryEffect    Category = "effect"
	CategoryTileset   Category = "tileset"
	CategoryMap       Category = "map"
	CategoryItem      Category = "item"
	CategorySkill     Category = "skill"
	CategoryStats     Category = "stats"
	CategoryGamePlan  Category = "game-plan"
)

// AllCategories lists every known category in a fixed order.
var AllCategories = []Category{
	CategoryCharacter,
	CategorySprite,
	CategoryMonster,
	CategoryFaceset,
	CategoryEffect,
	CategoryTileset,
	CategoryMap,
	CategoryItem,
	CategorySkill,
	CategoryStats,
	CategoryGamePlan,
}

// Mode selects the provider call shape for a request.
type Mode string

const (
	ModeCreateImage    Mode = "create-image"
	ModeTransformImage Mode = "transform-image"
	ModeStructuredText Mode = "structured-text"
)

// Shape describes how a category's payload is stored.
type Shape string

const (
	ShapeRaster   Shape = "raster"   // data-URI-encoded image
	ShapeDocument Shape = "document" // serialized JSON document
)

// OutputContract is the fixed technical contract a category's output must
// satisfy. Pixel fields are zero for structured categories.
type OutputContract struct {
	Width       int
	Height      int
	FrameWidth  int
	FrameHeight int
	Columns     int
	Rows        int
	Frames      int
	Transparent bool
	AspectRatio string
	NoText      bool
}

// RequestDescriptor is a fully composed provider request. The reference
// image order is semantically meaningful and must be preserved end-to-end.
type RequestDescriptor struct {
	ID              string
	Category        Category
	Mode            Mode
	PromptText      string
	ReferenceImages [][]byte
	Contract        OutputContract
	Schema          string
}

// Definition binds a category to its generation behavior. The registry is
// fixed at startup; an unknown category is a programming error, not a
// runtime condition.
type Definition struct {
	Mode     Mode
	Shape    Shape
	Contract OutputContract
	Schema   string
	// Subject names what the category produces, used in prompt text.
	Subject string
	// AllowCreateFallback permits composing without references for
	// transform-mode categories that have a text-only default.
	AllowCreateFallback bool
}

var registry = map[Category]Definition{
	CategoryCharacter: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "a full-body game character in a frontal neutral pose",
		Contract: OutputContract{
			Width: 1024, Height: 1024,
			Transparent: true,
		},
		AllowCreateFallback: true,
	},
	CategorySprite: {
		Mode:    ModeTransformImage,
		Shape:   ShapeRaster,
		Subject: "a walking sprite sheet",
		Contract: OutputContract{
			Width: 144, Height: 192,
			FrameWidth: 48, FrameHeight: 48,
			Columns: 3, Rows: 4, Frames: 12,
			Transparent: true,
		},
	},
	CategoryMonster: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "a battler enemy, single frame, facing left",
		Contract: OutputContract{
			Width: 816, Height: 624,
			Frames:      1,
			Transparent: true,
		},
		AllowCreateFallback: true,
	},
	CategoryFaceset: {
		Mode:    ModeTransformImage,
		Shape:   ShapeRaster,
		Subject: "a face portrait",
		Contract: OutputContract{
			Width: 144, Height: 144,
			Transparent: true,
		},
	},
	CategoryEffect: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "a combat effect animation strip",
		Contract: OutputContract{
			Width: 960, Height: 192,
			FrameWidth: 192, FrameHeight: 192,
			Columns: 5, Rows: 1, Frames: 5,
			Transparent: true,
			NoText:      true,
		},
	},
	CategoryTileset: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "a terrain tileset on a 48x48 tile grid",
		Contract: OutputContract{
			FrameWidth: 48, FrameHeight: 48,
			Transparent: true, // overlay objects; ground tiles stay opaque
		},
	},
	CategoryMap: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "concept art of a game location",
		Contract: OutputContract{
			AspectRatio: "16:9",
			Transparent: false,
			NoText:      true,
		},
	},
	CategoryItem: {
		Mode:    ModeCreateImage,
		Shape:   ShapeRaster,
		Subject: "a single item icon, centered",
		Contract: OutputContract{
			Width: 96, Height: 96,
			Transparent: true,
		},
	},
	CategorySkill: {
		Mode:   ModeStructuredText,
		Shape:  ShapeDocument,
		Schema: skillSchema,
	},
	CategoryStats: {
		Mode:   ModeStructuredText,
		Shape:  ShapeDocument,
		Schema: statsSchema,
	},
	CategoryGamePlan: {
		Mode:   ModeStructuredText,
		Shape:  ShapeDocument,
		Schema: BlueprintSchema,
	},
}

func init() {
	for _, c := range AllCategories {
		if _, ok := registry[c]; !ok {
			panic(fmt.Sprintf("assets: category %q has no definition", c))
		}
	}
	if len(registry) != len(AllCategories) {
		panic("assets: registry contains a category missing from AllCategories")
	}
}

// Lookup returns the definition for a category.
func Lookup(c Category) (Definition, bool) {
	def, ok := registry[c]
	return def, ok
}

// Valid reports whether c is a known category.
func Valid(c Category) bool {
	_, ok := registry[c]
	return ok
}
