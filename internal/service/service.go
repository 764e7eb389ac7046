// Package service holds the business rules behind each route group.
package service

import (
	"errors"

	"realestate-service/internal/apperror"
	"realestate-service/internal/repository"
)

// AuthRecorder receives register and sign-in outcomes.
type AuthRecorder interface {
	AuthAttempt(action, role, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AuthAttempt(string, string, string) {}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

func newPage[T any](data []T, q repository.IdentityQuery, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Page[T]{Data: data, CurrentPage: q.Page, TotalPages: pages, TotalItems: total}
}

// translate maps a repository failure onto the HTTP taxonomy. A missing
// record becomes notFound; anything unexpected becomes a 500.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal(err)
}

// missing reports whether err is a not-found miss and fails otherwise.
func missing(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	return false, apperror.Internal(err)
}
