package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"realestate-service/internal/apperror"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
	"realestate-service/internal/validation"
)

const msgPropertyNotFound = "Property not found"

// PhotoURL is the public address of a listing's uploaded photo.
func PhotoURL(listingID string) string {
	return fmt.Sprintf("/api/properties/%s/photo", listingID)
}

// BuyerListing is the buyer's detail view of an approved listing.
type BuyerListing struct {
	Property     *model.Listing `json:"property"`
	Creator      *model.Contact `json:"creator"`
	Buyer        *model.Contact `json:"buyer"`
	IsInterested bool           `json:"isInterested"`
}

// ListingService implements listing moderation, seller inventory, buyer
// browsing and the public catalogue.
type ListingService struct {
	listings   repository.ListingRepository
	identities repository.IdentityRepository
	photos     repository.PhotoRepository
}

func NewListingService(lr repository.ListingRepository, ir repository.IdentityRepository, pr repository.PhotoRepository) *ListingService {
	return &ListingService{listings: lr, identities: ir, photos: pr}
}

func (s *ListingService) get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return l, nil
}

// creator resolves a listing's creator by its discriminator. A creator that
// no longer exists yields nil.
func (s *ListingService) creator(ctx context.Context, l *model.Listing, withPhone bool) (*model.Contact, error) {
	ident, err := s.identities.GetByID(ctx, l.CreatedByModel.Role(), l.CreatedBy)
	if notFound, err := missing(err); err != nil {
		return nil, err
	} else if notFound {
		return nil, nil
	}
	c := ident.Contact()
	if !withPhone {
		c.PhoneNumber = ""
	}
	return c, nil
}

// views attaches creators, hiding the interested set unless keepInterest.
func (s *ListingService) views(ctx context.Context, list []model.Listing, keepInterest bool) ([]model.ListingView, error) {
	type key struct {
		kind model.CreatorModel
		id   string
	}
	cache := make(map[key]*model.Contact)
	out := make([]model.ListingView, 0, len(list))
	for i := range list {
		l := list[i]
		k := key{l.CreatedByModel, l.CreatedBy}
		c, ok := cache[k]
		if !ok {
			var err error
			if c, err = s.creator(ctx, &l, false); err != nil {
				return nil, err
			}
			cache[k] = c
		}
		if !keepInterest {
			l.Interested = nil
		}
		out = append(out, model.ListingView{Listing: l, Creator: c})
	}
	return out, nil
}

// Approved lists approved listings newest first, optionally by type.
func (s *ListingService) Approved(ctx context.Context, propertyType string) ([]model.ListingView, error) {
	list, err := s.listings.Find(ctx, repository.ListingFilter{
		Status:       model.ListingApproved,
		PropertyType: model.PropertyType(propertyType),
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return s.views(ctx, list, false)
}

// GetApproved returns an approved listing; anything else is not found.
func (s *ListingService) GetApproved(ctx context.Context, id string) (*model.ListingView, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != model.ListingApproved {
		return nil, apperror.NotFound(msgPropertyNotFound)
	}
	views, err := s.views(ctx, []model.Listing{*l}, false)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// BuyerDetail returns an approved listing with its creator's contact details
// and whether the buyer marked it.
func (s *ListingService) BuyerDetail(ctx context.Context, buyer *model.Identity, id string) (*BuyerListing, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != model.ListingApproved {
		return nil, apperror.NotFound(msgPropertyNotFound)
	}
	c, err := s.creator(ctx, l, true)
	if err != nil {
		return nil, err
	}
	return &BuyerListing{
		Property:     l,
		Creator:      c,
		Buyer:        buyer.Contact(),
		IsInterested: l.IsInterested(buyer.ID),
	}, nil
}

// SetInterest marks or unmarks a listing for the buyer. Both directions are
// idempotent.
func (s *ListingService) SetInterest(ctx context.Context, buyerID, id, action string) (string, error) {
	if _, err := s.get(ctx, id); err != nil {
		return "", err
	}
	switch action {
	case "mark":
		if err := s.listings.AddInterest(ctx, id, buyerID); err != nil {
			return "", translate(err, msgPropertyNotFound)
		}
		return "Property marked as interested successfully", nil
	case "unmark":
		if err := s.listings.RemoveInterest(ctx, id, buyerID); err != nil {
			return "", translate(err, msgPropertyNotFound)
		}
		return "Property unmarked as interested successfully", nil
	}
	return "", apperror.BadRequest(`Invalid action. Must be either "mark" or "unmark"`)
}

// All lists every listing for moderation, optionally by status.
func (s *ListingService) All(ctx context.Context, status string) ([]model.ListingView, error) {
	if err := validation.ListingStatus(status); err != nil {
		return nil, err
	}
	list, err := s.listings.Find(ctx, repository.ListingFilter{Status: model.ListingStatus(status)})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return s.views(ctx, list, true)
}

func (s *ListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	return s.get(ctx, id)
}

// CreateAsAdmin publishes a listing immediately; a client-supplied status
// is ignored.
func (s *ListingService) CreateAsAdmin(ctx context.Context, adminID string, in model.ListingInput) (*model.Listing, error) {
	if err := validation.Listing(in); err != nil {
		return nil, err
	}
	l := &model.Listing{
		Status:         model.ListingApproved,
		CreatedBy:      adminID,
		CreatedByModel: model.CreatorAdmin,
	}
	in.Apply(l)
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, apperror.Internal(err)
	}
	return l, nil
}

// UpdateAsAdmin edits any listing and may set its status directly.
func (s *ListingService) UpdateAsAdmin(ctx context.Context, id string, in model.ListingInput) (*model.Listing, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Listing(in); err != nil {
		return nil, err
	}
	if err := validation.ListingStatus(in.Status.String()); err != nil {
		return nil, err
	}
	in.Apply(l)
	if in.Status != "" {
		l.Status = model.ListingStatus(in.Status)
	}
	if err := s.listings.Update(ctx, l); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return l, nil
}

// Moderate sets the status of any listing.
func (s *ListingService) Moderate(ctx context.Context, id string, status model.ListingStatus) (*model.Listing, error) {
	if err := s.listings.SetStatus(ctx, id, status); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return s.get(ctx, id)
}

func (s *ListingService) DeleteAsAdmin(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return translate(s.listings.Delete(ctx, id), msgPropertyNotFound)
}

// Own lists the seller's listings newest first.
func (s *ListingService) Own(ctx context.Context, sellerID string) ([]model.Listing, error) {
	list, err := s.listings.Find(ctx, repository.ListingFilter{
		CreatedBy:      sellerID,
		CreatedByModel: model.CreatorSeller,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// GetOwn returns a listing only if the seller created it.
func (s *ListingService) GetOwn(ctx context.Context, sellerID, id string) (*model.Listing, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(sellerID) {
		return nil, apperror.NotFound(msgPropertyNotFound)
	}
	return l, nil
}

// CreateAsSeller stores a listing awaiting moderation.
func (s *ListingService) CreateAsSeller(ctx context.Context, sellerID string, in model.ListingInput) (*model.Listing, error) {
	if err := validation.Listing(in); err != nil {
		return nil, err
	}
	l := &model.Listing{
		Status:         model.ListingPending,
		CreatedBy:      sellerID,
		CreatedByModel: model.CreatorSeller,
	}
	in.Apply(l)
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, apperror.Internal(err)
	}
	return l, nil
}

// UpdateAsSeller edits an owned listing. Every edit sends it back to
// pending, whatever status the payload carries.
func (s *ListingService) UpdateAsSeller(ctx context.Context, sellerID, id string, in model.ListingInput) (*model.Listing, error) {
	if err := validation.Listing(in); err != nil {
		return nil, err
	}
	l, err := s.GetOwn(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	in.Apply(l)
	l.Status = model.ListingPending
	if err := s.listings.Update(ctx, l); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return l, nil
}

// DeleteAsSeller removes an owned listing and returns it.
func (s *ListingService) DeleteAsSeller(ctx context.Context, sellerID, id string) (*model.Listing, error) {
	l, err := s.GetOwn(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return l, nil
}

// AttachPhoto stores the upload and points the listing's imageUrl at it.
// Sellers pass their id, which scopes the listing and resets it to pending;
// admins pass an empty sellerID.
func (s *ListingService) AttachPhoto(ctx context.Context, sellerID, id, filename string, file io.Reader) (*model.Listing, error) {
	var (
		l   *model.Listing
		err error
	)
	if sellerID != "" {
		l, err = s.GetOwn(ctx, sellerID, id)
	} else {
		l, err = s.get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	photoID, err := s.photos.Upload(ctx, filename, file)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	status := l.Status
	if sellerID != "" {
		status = model.ListingPending
	}
	if err := s.listings.SetPhoto(ctx, id, photoID, PhotoURL(id), status); err != nil {
		return nil, translate(err, msgPropertyNotFound)
	}
	return s.get(ctx, id)
}

// Photo returns the bytes of a listing's uploaded photo.
func (s *ListingService) Photo(ctx context.Context, id string) ([]byte, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.PhotoID == "" {
		return nil, apperror.NotFound("Photo not found")
	}
	data, err := s.photos.Download(ctx, l.PhotoID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Photo not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return data, nil
}
