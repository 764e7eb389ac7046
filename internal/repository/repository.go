// Package repository declares the persistence contract and its mongo
// implementation. Postgres and in-memory backends live in subpackages.
package repository

import (
	"context"
	"errors"
	"io"

	"realestate-service/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// SortableIdentityFields maps the sortBy values accepted from clients to
// themselves; anything else falls back to createdAt.
var SortableIdentityFields = map[string]bool{
	"name":        true,
	"email":       true,
	"username":    true,
	"phoneNumber": true,
	"createdAt":   true,
}

// IdentityQuery pages through one identity store.
type IdentityQuery struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Desc   bool
}

// Normalize fills defaults and clamps the sort field.
func (q IdentityQuery) Normalize() IdentityQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if !SortableIdentityFields[q.SortBy] {
		q.SortBy = "createdAt"
	}
	return q
}

func (q IdentityQuery) Offset() int { return (q.Page - 1) * q.Limit }

type IdentityRepository interface {
	Create(ctx context.Context, role model.Role, id *model.Identity) error
	GetByID(ctx context.Context, role model.Role, id string) (*model.Identity, error)
	GetByEmail(ctx context.Context, role model.Role, email string) (*model.Identity, error)
	// FindConflict returns a record other than excludeID that already uses
	// email or username. Empty arguments are ignored.
	FindConflict(ctx context.Context, role model.Role, email, username, excludeID string) (*model.Identity, error)
	Update(ctx context.Context, role model.Role, id *model.Identity) error
	Delete(ctx context.Context, role model.Role, id string) error
	List(ctx context.Context, role model.Role, q IdentityQuery) ([]model.Identity, int64, error)
	Count(ctx context.Context, role model.Role) (int64, error)
}

// ListingFilter selects listings; zero fields match everything.
type ListingFilter struct {
	Status         model.ListingStatus
	PropertyType   model.PropertyType
	CreatedBy      string
	CreatedByModel model.CreatorModel
	Limit          int
}

type ListingRepository interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	// Find returns matching listings newest first.
	Find(ctx context.Context, f ListingFilter) ([]model.Listing, error)
	Count(ctx context.Context, f ListingFilter) (int64, error)
	Update(ctx context.Context, l *model.Listing) error
	SetStatus(ctx context.Context, id string, status model.ListingStatus) error
	SetPhoto(ctx context.Context, id, photoID, imageURL string, status model.ListingStatus) error
	Delete(ctx context.Context, id string) error
	AddInterest(ctx context.Context, id, buyerID string) error
	RemoveInterest(ctx context.Context, id, buyerID string) error
}

// AppointmentFilter selects appointments; zero fields match everything.
type AppointmentFilter struct {
	BuyerID    string
	SellerID   string
	ListingIDs []string
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	// Find returns matching appointments newest first.
	Find(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	// DeletePending removes the appointment only if it belongs to buyerID
	// and is still pending. It reports whether anything was deleted.
	DeletePending(ctx context.Context, id, buyerID string) (bool, error)
}

type PhotoRepository interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Download(ctx context.Context, photoID string) ([]byte, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Identities   IdentityRepository
	Listings     ListingRepository
	Appointments AppointmentRepository
	Photos       PhotoRepository
	Ping         func(ctx context.Context) error
	Close        func(ctx context.Context) error
}
