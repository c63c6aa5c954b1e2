// Copyright (c) 2026 Shelfy. All rights reserved.

package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/catalog/book"
	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # In-Memory Fakes

type fakeRepository struct {
	books map[string]book.Snapshot
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[string]book.Snapshot)}
}

func (repo *fakeRepository) Create(_ context.Context, created *book.Book) error {
	for _, existing := range repo.books {
		if existing.ISBN == created.ISBN() {
			return apperr.Conflict("Resource already exists")
		}
	}
	repo.books[created.ID()] = created.Snapshot()
	return nil
}

func (repo *fakeRepository) GetByID(_ context.Context, id string) (*book.Book, error) {
	if snapshot, ok := repo.books[id]; ok {
		return book.FromSnapshot(snapshot), nil
	}
	return nil, apperr.NotFound("Book")
}

func (repo *fakeRepository) GetByISBN(_ context.Context, isbn string) (*book.Book, error) {
	for _, snapshot := range repo.books {
		if snapshot.ISBN == isbn {
			return book.FromSnapshot(snapshot), nil
		}
	}
	return nil, apperr.NotFound("Book")
}

func (repo *fakeRepository) Browse(_ context.Context, _ string, _ pagination.Params) ([]*book.Book, int, error) {
	books := make([]*book.Book, 0, len(repo.books))
	for _, snapshot := range repo.books {
		books = append(books, book.FromSnapshot(snapshot))
	}
	return books, len(books), nil
}

func (repo *fakeRepository) Update(_ context.Context, updated *book.Book, expectedUpdatedAt time.Time) error {
	stored, ok := repo.books[updated.ID()]
	if !ok {
		return apperr.NotFound("Book")
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return apperr.Conflict("Book was modified by another request")
	}
	repo.books[updated.ID()] = updated.Snapshot()
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := repo.books[id]; !ok {
		return apperr.NotFound("Book")
	}
	delete(repo.books, id)
	return nil
}

type fakeAuthorDirectory struct {
	known map[string]bool
}

func (directory fakeAuthorDirectory) Exists(_ context.Context, authorID string) (bool, error) {
	return directory.known[authorID], nil
}

func newTestService(knownAuthors ...string) (*book.Service, *fakeRepository) {
	repo := newFakeRepository()
	directory := fakeAuthorDirectory{known: make(map[string]bool)}
	for _, id := range knownAuthors {
		directory.known[id] = true
	}
	return book.NewService(repo, directory, "https://shelfy.app"), repo
}

func catalogue(t *testing.T, service *book.Service) *book.Book {
	t.Helper()

	created, err := service.Create(context.Background(), book.CreateInput{
		Title:       "The Name of the Wind",
		Description: "A legendary musician recounts his rise from troubled youth.",
		ISBN:        "9780756404741",
		CoverURL:    "https://covers.shelfy.app/notw.jpg",
		Publisher:   "DAW Books",
		Pages:       662,
		PublishedAt: time.Date(2007, time.March, 27, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "0190a000-0000-7000-8000-0000000000aa",
	})
	require.NoError(t, err)
	return created
}

// # Cataloguing

/*
TestService_Create verifies cataloguing and the duplicate-ISBN conflict.
*/
func TestService_Create(t *testing.T) {
	service, _ := newTestService()

	created := catalogue(t, service)
	assert.NotEmpty(t, created.ID())

	_, err := service.Create(context.Background(), book.CreateInput{
		Title:       "Different Title",
		Description: "A completely different story about the same ISBN.",
		ISBN:        "9780756404741",
		CoverURL:    "https://covers.shelfy.app/other.jpg",
		Publisher:   "Tor",
		Pages:       300,
		PublishedAt: time.Date(2011, time.March, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "0190a000-0000-7000-8000-0000000000aa",
	})
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestService_View verifies the transport projection, including the canonical
site link built from configuration.
*/
func TestService_View(t *testing.T) {
	service, _ := newTestService()
	created := catalogue(t, service)

	view := service.View(created)
	assert.Equal(t, "https://shelfy.app/book/"+created.ID(), view.URL)
	assert.Equal(t, 0.0, view.Rating)
	assert.Equal(t, "9780756404741", view.ISBN)
}

// # Metadata Updates

/*
TestService_Update verifies partial updates: provided fields change, omitted
ones are untouched, and invalid values are rejected.
*/
func TestService_Update(t *testing.T) {
	service, _ := newTestService()
	created := catalogue(t, service)

	newTitle := "The Wise Man's Fear"
	newPages := 994
	updated, err := service.Update(context.Background(), created.ID(), book.UpdateInput{
		Title: &newTitle,
		Pages: &newPages,
	})
	require.NoError(t, err)
	assert.Equal(t, "The Wise Man's Fear", updated.Title())
	assert.Equal(t, 994, updated.Pages())
	assert.Equal(t, created.Description(), updated.Description())

	badDescription := "too short"
	_, err = service.Update(context.Background(), created.ID(), book.UpdateInput{
		Description: &badDescription,
	})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

/*
TestService_Update_ConcurrentWrite verifies that a stale concurrency token
surfaces as CONFLICT instead of silently losing the other writer's change.
*/
func TestService_Update_ConcurrentWrite(t *testing.T) {
	service, repo := newTestService()
	created := catalogue(t, service)

	loaded, err := service.GetByID(context.Background(), created.ID())
	require.NoError(t, err)

	// A token older than the stored timestamp means another writer won.
	staleToken := loaded.UpdatedAt().Add(-time.Minute)
	err = repo.Update(context.Background(), loaded, staleToken)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

// # Author Associations

/*
TestService_AddAuthor verifies existence checking and duplicate links.
*/
func TestService_AddAuthor(t *testing.T) {
	service, _ := newTestService("0190c000-0000-7000-8000-00000000000a")
	created := catalogue(t, service)
	authorID := "0190c000-0000-7000-8000-00000000000a"

	updated, err := service.AddAuthor(context.Background(), created.ID(), authorID)
	require.NoError(t, err)
	assert.Equal(t, []string{authorID}, updated.AuthorIDs())

	// Unknown author
	_, err = service.AddAuthor(context.Background(), created.ID(), "0190c000-0000-7000-8000-00000000000b")
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	// Duplicate link
	_, err = service.AddAuthor(context.Background(), created.ID(), authorID)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

// # Reviews

/*
TestService_ReviewLifecycle verifies add, replace, and delete of a reader's
review through the service, with the rating tracking each step.
*/
func TestService_ReviewLifecycle(t *testing.T) {
	service, _ := newTestService()
	created := catalogue(t, service)

	// Add
	updated, err := service.AddReview(context.Background(), created.ID(), "user-a", 4, "Loved it")
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Rating())

	// Second review from the same user
	_, err = service.AddReview(context.Background(), created.ID(), "user-a", 5, "")
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Replace
	updated, err = service.UpdateReview(context.Background(), created.ID(), "user-a", 2, "On reflection")
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.Rating())
	assert.Equal(t, 1, updated.ReviewCount())

	// Replace without an existing review
	_, err = service.UpdateReview(context.Background(), created.ID(), "ghost", 3, "")
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	// Delete
	updated, err = service.DeleteReview(context.Background(), created.ID(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Rating())

	// Delete again
	_, err = service.DeleteReview(context.Background(), created.ID(), "user-a")
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

/*
TestService_ReviewValidation verifies that out-of-range ratings are rejected
before the aggregate is even loaded.
*/
func TestService_ReviewValidation(t *testing.T) {
	service, _ := newTestService()
	created := catalogue(t, service)

	_, err := service.AddReview(context.Background(), created.ID(), "user-a", 0, "")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

	_, err = service.AddReview(context.Background(), created.ID(), "user-a", 6, "")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}
