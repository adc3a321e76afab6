package assets

// Record is one stored artifact. The id is assigned once by the store,
// never reused and never mutated; the category is immutable after
// creation. The payload is either a data-URI-encoded raster image or a
// serialized JSON document, decided by the category's shape.
type Record struct {
	ID         int64
	Category   Category
	PromptText string
	Payload    string
	CreatedAt  int64
}
