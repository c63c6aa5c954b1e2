// Copyright (c) 2026 Shelfy. All rights reserved.

package author

import "context"

type Repository interface {
	ListAuthors(context context.Context, f Filter, limit, offset int) ([]*Author, int, error)
	GetAuthor(context context.Context, id string) (*Author, error)
	CreateAuthor(context context.Context, a *Author) error
	UpdateAuthor(context context.Context, a *Author) error
	DeleteAuthor(context context.Context, id string) error

	// Exists backs the book domain's association checks.
	Exists(context context.Context, id string) (bool, error)
}
