// Copyright (c) 2026 Shelfy. All rights reserved.

package author_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/catalog/author"
	"github.com/shelfy-app/shelfy/internal/platform/apperr"
)

type fakeRepository struct {
	authors map[string]*author.Author
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{authors: make(map[string]*author.Author)}
}

func (repo *fakeRepository) ListAuthors(_ context.Context, _ author.Filter, _, _ int) ([]*author.Author, int, error) {
	list := make([]*author.Author, 0, len(repo.authors))
	for _, a := range repo.authors {
		list = append(list, a)
	}
	return list, len(list), nil
}

func (repo *fakeRepository) GetAuthor(_ context.Context, id string) (*author.Author, error) {
	if a, ok := repo.authors[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFound("Author")
}

func (repo *fakeRepository) CreateAuthor(_ context.Context, a *author.Author) error {
	repo.authors[a.ID] = a
	return nil
}

func (repo *fakeRepository) UpdateAuthor(_ context.Context, a *author.Author) error {
	if _, ok := repo.authors[a.ID]; !ok {
		return apperr.NotFound("Author")
	}
	repo.authors[a.ID] = a
	return nil
}

func (repo *fakeRepository) DeleteAuthor(_ context.Context, id string) error {
	if _, ok := repo.authors[id]; !ok {
		return apperr.NotFound("Author")
	}
	delete(repo.authors, id)
	return nil
}

func (repo *fakeRepository) Exists(_ context.Context, id string) (bool, error) {
	_, ok := repo.authors[id]
	return ok, nil
}

func newTestService() (*author.Service, *fakeRepository) {
	repo := newFakeRepository()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return author.NewService(repo, logger), repo
}

func TestCreateAuthor(t *testing.T) {
	service, repo := newTestService()

	record := &author.Author{
		FirstName: "Patrick",
		LastName:  "Rothfuss",
		ImageURL:  "https://img.shelfy.app/authors/rothfuss.jpg",
	}

	require.NoError(t, service.CreateAuthor(context.Background(), record))
	assert.NotEmpty(t, record.ID)

	exists, err := repo.Exists(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateAuthor_Validation(t *testing.T) {
	service, _ := newTestService()

	// Missing names
	err := service.CreateAuthor(context.Background(), &author.Author{})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

	// Bad image URL
	err = service.CreateAuthor(context.Background(), &author.Author{
		FirstName: "Patrick",
		LastName:  "Rothfuss",
		ImageURL:  "not-a-url",
	})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestUpdateAuthor(t *testing.T) {
	service, _ := newTestService()

	record := &author.Author{FirstName: "Patrick", LastName: "Rothfus"}
	require.NoError(t, service.CreateAuthor(context.Background(), record))

	update := &author.Author{FirstName: "Patrick", LastName: "Rothfuss"}
	require.NoError(t, service.UpdateAuthor(context.Background(), record.ID, update))

	stored, err := service.GetAuthor(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rothfuss", stored.LastName)
}

func TestDeleteAuthor(t *testing.T) {
	service, _ := newTestService()

	record := &author.Author{FirstName: "Patrick", LastName: "Rothfuss"}
	require.NoError(t, service.CreateAuthor(context.Background(), record))

	require.NoError(t, service.DeleteAuthor(context.Background(), record.ID))

	_, err := service.GetAuthor(context.Background(), record.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	err = service.DeleteAuthor(context.Background(), record.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}
