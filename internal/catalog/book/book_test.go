// Copyright (c) 2026 Shelfy. All rights reserved.

package book_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/catalog/book"
	"github.com/shelfy-app/shelfy/internal/platform/apperr"
)

// newTestBook creates a valid book for mutation tests.
func newTestBook(t *testing.T) *book.Book {
	t.Helper()

	created, err := book.New(
		"0190b000-0000-7000-8000-000000000001",
		"The Name of the Wind",
		"",
		"A legendary musician recounts his rise from troubled youth.",
		"9780756404741",
		"https://covers.shelfy.app/notw.jpg",
		"DAW Books",
		662,
		time.Date(2007, time.March, 27, 0, 0, 0, 0, time.UTC),
		"0190b000-0000-7000-8000-0000000000aa",
	)
	require.NoError(t, err)
	return created
}

func review(t *testing.T, userID string, rating int) book.Review {
	t.Helper()
	created, err := book.NewReview(userID, rating, "")
	require.NoError(t, err)
	return created
}

/*
TestNew_RejectsInvalidMetadata verifies that creation accumulates every
violated rule into a single validation error.
*/
func TestNew_RejectsInvalidMetadata(t *testing.T) {
	_, err := book.New("id", "", "", "too short", "12345", "not-a-url", "", 0, time.Time{}, "")

	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// title, description, isbn, cover, publisher, pages all failed
	assert.GreaterOrEqual(t, len(appErr.Details), 6)
}

/*
TestSetDescription_Bounds verifies the 15-500 character rule at its edges.
*/
func TestSetDescription_Bounds(t *testing.T) {
	testCases := []struct {
		name   string
		length int
		valid  bool
	}{
		{"below minimum", 14, false},
		{"at minimum", 15, true},
		{"at maximum", 500, true},
		{"above maximum", 501, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			subject := newTestBook(t)
			err := subject.SetDescription(strings.Repeat("a", testCase.length))

			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
			}
		})
	}
}

/*
TestSetISBN_ExactLength verifies the fixed 13-character ISBN rule.
*/
func TestSetISBN_ExactLength(t *testing.T) {
	subject := newTestBook(t)

	assert.Error(t, subject.SetISBN("978075640474"))   // 12
	assert.Error(t, subject.SetISBN("97807564047411")) // 14
	assert.Error(t, subject.SetISBN(""))

	assert.NoError(t, subject.SetISBN("9780756404741"))
	assert.Equal(t, "9780756404741", subject.ISBN())
}

/*
TestSetCover_Format verifies the cover image URL rule.
*/
func TestSetCover_Format(t *testing.T) {
	subject := newTestBook(t)

	valid := []string{
		"https://covers.shelfy.app/a.jpg",
		"http://covers.shelfy.app/a.png",
		"https://covers.shelfy.app/a.gif?size=large",
	}
	invalid := []string{
		"ftp://covers.shelfy.app/a.jpg",
		"https://covers.shelfy.app/a.txt",
		"covers.shelfy.app/a.jpg",
		"",
	}

	for _, url := range valid {
		assert.NoError(t, subject.SetCover(url), url)
	}
	for _, url := range invalid {
		assert.Error(t, subject.SetCover(url), url)
	}
}

/*
TestSetPages_Positive verifies the page count rule.
*/
func TestSetPages_Positive(t *testing.T) {
	subject := newTestBook(t)

	assert.Error(t, subject.SetPages(0))
	assert.Error(t, subject.SetPages(-10))
	assert.NoError(t, subject.SetPages(350))
	assert.Equal(t, 350, subject.Pages())
}

/*
TestRating verifies the derived rating: mean of review ratings rounded to
two decimals, zero with no reviews.
*/
func TestRating(t *testing.T) {
	subject := newTestBook(t)

	// 1. No reviews
	assert.Equal(t, 0.0, subject.Rating())
	assert.Equal(t, 0, subject.ReviewCount())

	// 2. [4, 5, 3] averages to exactly 4.0
	require.NoError(t, subject.AddReview(review(t, "user-a", 4)))
	require.NoError(t, subject.AddReview(review(t, "user-b", 5)))
	require.NoError(t, subject.AddReview(review(t, "user-c", 3)))
	assert.Equal(t, 4.0, subject.Rating())
	assert.Equal(t, 3, subject.ReviewCount())

	// 3. [4, 5, 3, 5] averages to 4.25
	require.NoError(t, subject.AddReview(review(t, "user-d", 5)))
	assert.Equal(t, 4.25, subject.Rating())

	// 4. [5, 5, 3, 5] averages to 4.5 after user-a re-rates
	require.NoError(t, subject.DeleteReview("user-a"))
	require.NoError(t, subject.AddReview(review(t, "user-a", 5)))
	assert.Equal(t, 4.5, subject.Rating())
}

/*
TestRating_Rounding verifies half-away-from-zero rounding to two decimals:
[5, 4, 4] averages 4.333... and rounds to 4.33.
*/
func TestRating_Rounding(t *testing.T) {
	subject := newTestBook(t)

	require.NoError(t, subject.AddReview(review(t, "user-a", 5)))
	require.NoError(t, subject.AddReview(review(t, "user-b", 4)))
	require.NoError(t, subject.AddReview(review(t, "user-c", 4)))

	assert.Equal(t, 4.33, subject.Rating())
}

/*
TestAddReview_OnePerUser verifies the one-review-per-reader invariant.
*/
func TestAddReview_OnePerUser(t *testing.T) {
	subject := newTestBook(t)

	require.NoError(t, subject.AddReview(review(t, "user-a", 4)))

	err := subject.AddReview(review(t, "user-a", 5))
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.Equal(t, 1, subject.ReviewCount())
}

/*
TestDeleteReview_Missing verifies that removing a review that was never
written is NOT_FOUND.
*/
func TestDeleteReview_Missing(t *testing.T) {
	subject := newTestBook(t)

	err := subject.DeleteReview("ghost")
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

/*
TestNewReview_RatingRange verifies the 1-5 rating bounds.
*/
func TestNewReview_RatingRange(t *testing.T) {
	for _, rating := range []int{1, 2, 3, 4, 5} {
		_, err := book.NewReview("user-a", rating, "")
		assert.NoError(t, err)
	}
	for _, rating := range []int{0, 6, -1, 100} {
		_, err := book.NewReview("user-a", rating, "")
		assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), rating)
	}
}

/*
TestAuthorAssociations verifies linking rules: no duplicates, removal of an
unlinked author fails, and accessors return copies.
*/
func TestAuthorAssociations(t *testing.T) {
	subject := newTestBook(t)

	require.NoError(t, subject.AddAuthor("author-1"))
	require.NoError(t, subject.AddAuthor("author-2"))

	// Duplicate link
	err := subject.AddAuthor("author-1")
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Removal of an unlinked author
	err = subject.RemoveAuthor("author-9")
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	// Successful removal
	require.NoError(t, subject.RemoveAuthor("author-1"))
	assert.Equal(t, []string{"author-2"}, subject.AuthorIDs())

	// Mutating the returned slice must not touch the aggregate
	ids := subject.AuthorIDs()
	ids[0] = "tampered"
	assert.Equal(t, []string{"author-2"}, subject.AuthorIDs())
}

/*
TestMutationsStampUpdatedAt verifies that every successful mutation advances
the modification timestamp and failed ones leave it alone.
*/
func TestMutationsStampUpdatedAt(t *testing.T) {
	subject := newTestBook(t)
	before := subject.UpdatedAt()

	// A failed mutation leaves the timestamp untouched
	require.Error(t, subject.SetPages(-1))
	assert.Equal(t, before, subject.UpdatedAt())

	// A successful mutation advances it
	require.NoError(t, subject.SetTitle("The Wise Man's Fear"))
	assert.False(t, subject.UpdatedAt().Before(before))
}

/*
TestSnapshotRoundTrip verifies that persistence rehydration preserves the
aggregate, including its derived rating.
*/
func TestSnapshotRoundTrip(t *testing.T) {
	subject := newTestBook(t)
	require.NoError(t, subject.AddAuthor("author-1"))
	require.NoError(t, subject.AddReview(review(t, "user-a", 4)))
	require.NoError(t, subject.AddReview(review(t, "user-b", 5)))

	restored := book.FromSnapshot(subject.Snapshot())

	assert.Equal(t, subject.ID(), restored.ID())
	assert.Equal(t, subject.Title(), restored.Title())
	assert.Equal(t, subject.ISBN(), restored.ISBN())
	assert.Equal(t, subject.AuthorIDs(), restored.AuthorIDs())
	assert.Equal(t, subject.Reviews(), restored.Reviews())
	assert.Equal(t, subject.Rating(), restored.Rating())
}
