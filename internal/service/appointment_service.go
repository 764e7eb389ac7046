package service

import (
	"context"

	"realestate-service/internal/apperror"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
	"realestate-service/internal/validation"
)

const msgAppointmentNotFound = "Appointment not found"

// AppointmentService handles visit requests from both sides.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	listings     repository.ListingRepository
	identities   repository.IdentityRepository
}

func NewAppointmentService(ar repository.AppointmentRepository, lr repository.ListingRepository, ir repository.IdentityRepository) *AppointmentService {
	return &AppointmentService{appointments: ar, listings: lr, identities: ir}
}

// resolver memoises lookups while rendering a batch of appointments.
type resolver struct {
	s        *AppointmentService
	contacts map[string]*model.Contact
	listings map[string]*model.ListingSummary
}

func (s *AppointmentService) resolver() *resolver {
	return &resolver{
		s:        s,
		contacts: make(map[string]*model.Contact),
		listings: make(map[string]*model.ListingSummary),
	}
}

func (r *resolver) contact(ctx context.Context, role model.Role, id string) (*model.Contact, error) {
	key := string(role) + ":" + id
	if c, ok := r.contacts[key]; ok {
		return c, nil
	}
	ident, err := r.s.identities.GetByID(ctx, role, id)
	if notFound, err := missing(err); err != nil {
		return nil, err
	} else if notFound {
		ident = nil
	}
	c := ident.Contact()
	r.contacts[key] = c
	return c, nil
}

func (r *resolver) listing(ctx context.Context, id string) (*model.ListingSummary, error) {
	if l, ok := r.listings[id]; ok {
		return l, nil
	}
	l, err := r.s.listings.GetByID(ctx, id)
	if notFound, err := missing(err); err != nil {
		return nil, err
	} else if notFound {
		l = nil
	}
	sum := l.Summary()
	r.listings[id] = sum
	return sum, nil
}

func (r *resolver) view(ctx context.Context, a *model.Appointment) (*model.AppointmentView, error) {
	seller, err := r.contact(ctx, model.RoleSeller, a.SellerID)
	if err != nil {
		return nil, err
	}
	buyer, err := r.contact(ctx, model.RoleBuyer, a.BuyerID)
	if err != nil {
		return nil, err
	}
	property, err := r.listing(ctx, a.ListingID)
	if err != nil {
		return nil, err
	}
	return &model.AppointmentView{
		ID:           a.ID,
		Date:         a.Date,
		PlaceToVisit: a.PlaceToVisit,
		Message:      a.Message,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
		Seller:       seller,
		Buyer:        buyer,
		Property:     property,
	}, nil
}

func (s *AppointmentService) list(ctx context.Context, f repository.AppointmentFilter) ([]model.AppointmentView, error) {
	list, err := s.appointments.Find(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	r := s.resolver()
	out := make([]model.AppointmentView, 0, len(list))
	for i := range list {
		v, err := r.view(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// get returns the appointment when match accepts it; otherwise not found.
func (s *AppointmentService) get(ctx context.Context, id string, match func(*model.Appointment) bool) (*model.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgAppointmentNotFound)
	}
	if !match(a) {
		return nil, apperror.NotFound(msgAppointmentNotFound)
	}
	return a, nil
}

// Request creates a pending appointment for the buyer. The listing and the
// seller must both exist.
func (s *AppointmentService) Request(ctx context.Context, buyerID string, in model.AppointmentRequest) (*model.AppointmentView, error) {
	date, err := validation.Appointment(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.listings.GetByID(ctx, in.PropertyID); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	if _, err := s.identities.GetByID(ctx, model.RoleSeller, in.SellerID); err != nil {
		return nil, translate(err, "Seller not found")
	}

	a := &model.Appointment{
		Date:         date,
		PlaceToVisit: in.PlaceToVisit,
		Message:      in.Message,
		SellerID:     in.SellerID,
		BuyerID:      buyerID,
		ListingID:    in.PropertyID,
		Status:       model.AppointmentPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, apperror.Internal(err)
	}
	return s.resolver().view(ctx, a)
}

func (s *AppointmentService) ForBuyer(ctx context.Context, buyerID string) ([]model.AppointmentView, error) {
	return s.list(ctx, repository.AppointmentFilter{BuyerID: buyerID})
}

func (s *AppointmentService) GetForBuyer(ctx context.Context, buyerID, id string) (*model.AppointmentView, error) {
	a, err := s.get(ctx, id, func(a *model.Appointment) bool { return a.BuyerID == buyerID })
	if err != nil {
		return nil, err
	}
	return s.resolver().view(ctx, a)
}

// Cancel deletes the buyer's appointment while it is still pending. Any
// other case, including a decided appointment, reads as not found.
func (s *AppointmentService) Cancel(ctx context.Context, buyerID, id string) error {
	ok, err := s.appointments.DeletePending(ctx, id, buyerID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.NotFound("Appointment not found or cannot be cancelled")
	}
	return nil
}

func (s *AppointmentService) ForSeller(ctx context.Context, sellerID string) ([]model.AppointmentView, error) {
	return s.list(ctx, repository.AppointmentFilter{SellerID: sellerID})
}

func (s *AppointmentService) GetForSeller(ctx context.Context, sellerID, id string) (*model.AppointmentView, error) {
	a, err := s.get(ctx, id, func(a *model.Appointment) bool { return a.SellerID == sellerID })
	if err != nil {
		return nil, err
	}
	return s.resolver().view(ctx, a)
}

// SetStatus moves the seller's appointment to any of the four statuses.
func (s *AppointmentService) SetStatus(ctx context.Context, sellerID, id, status string) (*model.AppointmentView, error) {
	if err := validation.AppointmentStatus(status); err != nil {
		return nil, err
	}
	a, err := s.get(ctx, id, func(a *model.Appointment) bool { return a.SellerID == sellerID })
	if err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, id, model.AppointmentStatus(status)); err != nil {
		return nil, translate(err, msgAppointmentNotFound)
	}
	a.Status = model.AppointmentStatus(status)
	return s.resolver().view(ctx, a)
}
