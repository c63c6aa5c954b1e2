// Copyright (c) 2026 Shelfy. All rights reserved.

package author

import (
	"context"
	"log/slog"

	"github.com/shelfy-app/shelfy/internal/platform/validate"
	"github.com/shelfy-app/shelfy/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	return service.repo.ListAuthors(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	return service.repo.GetAuthor(context, id)
}

func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	if err := validateAuthor(author); err != nil {
		return err
	}

	author.ID = uuidv7.New()
	if err := service.repo.CreateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_created",
		slog.String("author_id", author.ID),
		slog.String("last_name", author.LastName),
	)
	return nil
}

func (service *Service) UpdateAuthor(context context.Context, id string, author *Author) error {
	author.ID = id
	if err := validateAuthor(author); err != nil {
		return err
	}

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))
	return nil
}

func (service *Service) DeleteAuthor(context context.Context, id string) error {
	if err := service.repo.DeleteAuthor(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.String("author_id", id))
	return nil
}

func validateAuthor(author *Author) error {
	validator := &validate.Validator{}

	validator.Required(FieldFirstName, author.FirstName).MaxLen(FieldFirstName, author.FirstName, 100)
	validator.Required(FieldLastName, author.LastName).MaxLen(FieldLastName, author.LastName, 100)
	validator.MaxLen(FieldDescription, author.Description, 2000)

	if author.ImageURL != "" {
		validator.ImageURL(FieldImageURL, author.ImageURL)
	}

	return validator.Err()
}
