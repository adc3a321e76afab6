package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "assets.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAssignsMonotonicIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := s.Add(ctx, assets.CategoryCharacter, "a knight", "data:image/png;base64,AAA=")
		require.NoError(t, err)
		assert.Greater(t, id, prev, "ids must increase")
		prev = id
	}
}

func TestAddAcceptsDuplicateContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Add(ctx, assets.CategoryItem, "a sword", "data:image/png;base64,AAA=")
	require.NoError(t, err)
	id2, err := s.Add(ctx, assets.CategoryItem, "a sword", "data:image/png;base64,AAA=")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestListByCategoryOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var charIDs []int64
	for _, prompt := range []string{"first", "second", "third"} {
		id, err := s.Add(ctx, assets.CategoryCharacter, prompt, "data:image/png;base64,AAA=")
		require.NoError(t, err)
		charIDs = append(charIDs, id)
	}
	_, err := s.Add(ctx, assets.CategoryMonster, "a goblin", "data:image/png;base64,BBB=")
	require.NoError(t, err)

	records, err := s.ListByCategory(ctx, assets.CategoryCharacter)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first; only the requested category.
	assert.Equal(t, charIDs[2], records[0].ID)
	assert.Equal(t, charIDs[1], records[1].ID)
	assert.Equal(t, charIDs[0], records[2].ID)
	for _, rec := range records {
		assert.Equal(t, assets.CategoryCharacter, rec.Category)
	}
	assert.Equal(t, "third", records[0].PromptText)
}

func TestListByCategoryEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ListByCategory(context.Background(), assets.CategoryTileset)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, assets.CategoryCharacter, "a knight", "data:image/png;base64,AAA=")
	require.NoError(t, err)
	last, err := s.Add(ctx, assets.CategorySkill, "a fire spell", `{"name":"Fireball"}`)
	require.NoError(t, err)

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, last, records[0].ID, "newest record first across categories")
}

func TestDeleteByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, assets.CategoryCharacter, "a knight", "data:image/png;base64,AAA=")
	require.NoError(t, err)

	require.NoError(t, s.DeleteByID(ctx, id))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Absent and invalid ids are no-ops.
	assert.NoError(t, s.DeleteByID(ctx, id))
	assert.NoError(t, s.DeleteByID(ctx, -1))
}

func TestGetByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, assets.CategoryMonster, "a goblin", "data:image/png;base64,BBB=")
	require.NoError(t, err)

	rec, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, assets.CategoryMonster, rec.Category)
	assert.Equal(t, "a goblin", rec.PromptText)
	assert.NotZero(t, rec.CreatedAt)

	_, err = s.GetByID(ctx, 99999)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
}

func TestDecodePayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	raw := []byte{0x89, 0x50, 0x4E, 0x47}
	id, err := s.Add(ctx, assets.CategoryCharacter, "a knight", assets.EncodeDataURI("image/png", raw))
	require.NoError(t, err)

	rec, err := s.GetByID(ctx, id)
	require.NoError(t, err)

	mime, data, err := s.DecodePayload(rec)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, raw, data)

	// Second decode comes from the cache and matches.
	mime2, data2, err := s.DecodePayload(rec)
	require.NoError(t, err)
	assert.Equal(t, mime, mime2)
	assert.Equal(t, data, data2)

	_, _, err = s.DecodePayload(assets.Record{ID: 0, Payload: "not a data uri"})
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
}

func TestOpenFailureIsStoreUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(filepath.Join(blocker, "assets.db"), nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindStoreUnavailable, errors.KindOf(err))
}

// Spec'd end-to-end scenario: add character + monster, list, delete, list.
func TestScenarioAddListDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	knight, err := s.Add(ctx, assets.CategoryCharacter, "a knight", "data:image/png;base64,AAA=")
	require.NoError(t, err)
	goblin, err := s.Add(ctx, assets.CategoryMonster, "a goblin", "data:image/png;base64,BBB=")
	require.NoError(t, err)
	assert.Greater(t, goblin, knight)

	chars, err := s.ListByCategory(ctx, assets.CategoryCharacter)
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, knight, chars[0].ID)
	assert.Equal(t, "a knight", chars[0].PromptText)

	require.NoError(t, s.DeleteByID(ctx, knight))

	chars, err = s.ListByCategory(ctx, assets.CategoryCharacter)
	require.NoError(t, err)
	assert.Empty(t, chars)

	monsters, err := s.ListByCategory(ctx, assets.CategoryMonster)
	require.NoError(t, err)
	require.Len(t, monsters, 1)
	assert.Equal(t, goblin, monsters[0].ID)
}
