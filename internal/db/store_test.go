package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "livraria.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "livraria.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, Init(path))

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	books, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)

	id1, err := s.Insert(ctx, models.BookInput{
		Title: "  Dom Casmurro ", Author: " Machado de Assis ",
		Year: models.IntPtr(1899), Price: models.FloatPtr(25.5),
	})
	require.NoError(t, err)
	id2, err := s.Insert(ctx, models.BookInput{Title: "Sem data", Author: "Anônimo"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	books, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, id1, books[0].ID)
	assert.Equal(t, "Dom Casmurro", books[0].Title)
	assert.Equal(t, "Machado de Assis", books[0].Author)
	require.NotNil(t, books[0].Year)
	assert.Equal(t, 1899, *books[0].Year)
	require.NotNil(t, books[0].Price)
	assert.Equal(t, 25.5, *books[0].Price)

	assert.Nil(t, books[1].Year)
	assert.Nil(t, books[1].Price)
}

func TestIDsAreNotReused(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)
	ok, err := s.Delete(ctx, id1)
	require.NoError(t, err)
	require.True(t, ok)

	id2, err := s.Insert(ctx, models.BookInput{Title: "C", Author: "D"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestFindUpdateDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)

	b, ok, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", b.Title)

	_, ok, err = s.FindByID(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdatePrice(ctx, id, 12.75)
	require.NoError(t, err)
	assert.True(t, ok)
	b, _, err = s.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.Price)
	assert.Equal(t, 12.75, *b.Price)

	ok, err = s.UpdatePrice(ctx, id+100, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty catalog")

	_, err = s.InsertMany(ctx, []models.BookInput{{Title: "A", Author: "B"}, {Title: "C", Author: "D"}})
	require.NoError(t, err)

	ok, err = s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchByAuthor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertMany(ctx, []models.BookInput{
		{Title: "Dom Casmurro", Author: "Machado de Assis"},
		{Title: "Capitães da Areia", Author: "Jorge Amado"},
		{Title: "Memórias Póstumas", Author: "Machado de Assis"},
	})
	require.NoError(t, err)

	got, err := s.SearchByAuthor(ctx, " machado ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dom Casmurro", got[0].Title)
	assert.Equal(t, "Memórias Póstumas", got[1].Title)
	assert.Less(t, got[0].ID, got[1].ID)

	got, err = s.SearchByAuthor(ctx, "Tolkien")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertManyIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.InsertMany(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.InsertMany(ctx, []models.BookInput{{Title: "A", Author: "B"}})
	require.Error(t, err)

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
