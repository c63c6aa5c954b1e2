// Copyright (c) 2026 Shelfy. All rights reserved.

package book

import (
	"time"

	"github.com/shelfy-app/shelfy/internal/platform/validate"
)

// # Review Entity

// Review is a reader's rating and comment on a book.
//
// Reviews live inside the [Book] aggregate: they are created, replaced, and
// removed exclusively through book methods, and each user holds at most one
// review per book.
type Review struct {
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Review rating bounds and comment limit.
const (
	MinRating = 1
	MaxRating = 5

	MaxCommentLength = 500
)

/*
NewReview creates a validated review.

Parameters:
  - userID: string
  - rating: int (1 to 5 inclusive)
  - comment: string (optional, up to 500 characters)

Returns:
  - Review: Validated entity
  - error: VALIDATION_ERROR on an out-of-range rating or oversized comment
*/
func NewReview(userID string, rating int, comment string) (Review, error) {

	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID).
		Range(FieldRating, rating, MinRating, MaxRating).
		MaxLen(FieldComment, comment, MaxCommentLength)

	if err := validator.Err(); err != nil {
		return Review{}, err
	}

	return Review{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}
