package service

import (
	"context"
	"errors"
	"strings"

	"realestate-service/internal/apperror"
	"realestate-service/internal/auth"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
	"realestate-service/internal/validation"
)

// SellerDetail is a seller together with the listings they created.
type SellerDetail struct {
	model.Identity
	Properties []model.Listing `json:"properties"`
}

// SellerListings is the admin view of one seller's inventory.
type SellerListings struct {
	Seller     *model.Contact  `json:"seller"`
	Properties []model.Listing `json:"properties"`
}

// AccountService manages identities: self-service profiles for every role
// and admin management of buyers and sellers.
type AccountService struct {
	identities repository.IdentityRepository
	listings   repository.ListingRepository
}

func NewAccountService(ir repository.IdentityRepository, lr repository.ListingRepository) *AccountService {
	return &AccountService{identities: ir, listings: lr}
}

func notFoundMsg(role model.Role) string { return role.Title() + " not found" }

func (s *AccountService) Get(ctx context.Context, role model.Role, id string) (*model.Identity, error) {
	ident, err := s.identities.GetByID(ctx, role, id)
	if err != nil {
		return nil, translate(err, notFoundMsg(role))
	}
	return ident, nil
}

// conflict reports whether another identity of role already uses the email
// or username.
func (s *AccountService) conflict(ctx context.Context, role model.Role, email, username, excludeID string) (*model.Identity, error) {
	c, err := s.identities.FindConflict(ctx, role, email, username, excludeID)
	if notFound, err := missing(err); err != nil {
		return nil, err
	} else if notFound {
		return nil, nil
	}
	return c, nil
}

// UpdateProfile applies a self-service edit. Buyers and sellers must send
// name, email and phone; admins may send any of name, username and email.
func (s *AccountService) UpdateProfile(ctx context.Context, role model.Role, id string, in model.ProfileInput) (*model.Identity, error) {
	if role == model.RoleAdmin {
		if err := validation.AdminProfile(in); err != nil {
			return nil, err
		}
	} else if err := validation.Profile(in); err != nil {
		return nil, err
	}

	ident, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}

	email := model.NormalizeHandle(in.Email)
	if email != "" && email != ident.Email {
		c, err := s.conflict(ctx, role, email, "", id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return nil, apperror.BadRequest("Email is already taken")
		}
		ident.Email = email
	}

	if role == model.RoleAdmin {
		username := model.NormalizeHandle(in.Username)
		if username != "" && username != ident.Username {
			c, err := s.conflict(ctx, role, "", username, id)
			if err != nil {
				return nil, err
			}
			if c != nil {
				return nil, apperror.BadRequest("Username is already taken")
			}
			ident.Username = username
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			ident.Name = name
		}
	} else {
		ident.Name = strings.TrimSpace(in.Name)
		ident.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	}

	if err := s.identities.Update(ctx, role, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.BadRequest("Email is already taken")
		}
		return nil, translate(err, notFoundMsg(role))
	}
	return ident, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password is a 400 for admins and a 401 for buyers and
// sellers.
func (s *AccountService) ChangePassword(ctx context.Context, role model.Role, id string, in model.PasswordChange) error {
	if err := validation.PasswordChange(in); err != nil {
		return err
	}
	ident, err := s.Get(ctx, role, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(in.CurrentPassword, ident.PasswordHash) {
		if role == model.RoleAdmin {
			return apperror.BadRequest("Current password is incorrect")
		}
		return apperror.Unauthorized("Current password is incorrect")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	ident.PasswordHash = hash
	return translate(s.identities.Update(ctx, role, ident), notFoundMsg(role))
}

// List pages through buyers or sellers.
func (s *AccountService) List(ctx context.Context, role model.Role, q repository.IdentityQuery) (Page[model.Identity], error) {
	q = q.Normalize()
	list, total, err := s.identities.List(ctx, role, q)
	if err != nil {
		return Page[model.Identity]{}, apperror.Internal(err)
	}
	return newPage(list, q, total), nil
}

func (s *AccountService) sellerListings(ctx context.Context, sellerID string) ([]model.Listing, error) {
	list, err := s.listings.Find(ctx, repository.ListingFilter{
		CreatedBy:      sellerID,
		CreatedByModel: model.CreatorSeller,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// ListSellers pages through sellers, each with their listings attached.
func (s *AccountService) ListSellers(ctx context.Context, q repository.IdentityQuery) (Page[SellerDetail], error) {
	page, err := s.List(ctx, model.RoleSeller, q)
	if err != nil {
		return Page[SellerDetail]{}, err
	}
	out := Page[SellerDetail]{
		Data:        make([]SellerDetail, 0, len(page.Data)),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
	}
	for _, seller := range page.Data {
		props, err := s.sellerListings(ctx, seller.ID)
		if err != nil {
			return Page[SellerDetail]{}, err
		}
		out.Data = append(out.Data, SellerDetail{Identity: seller, Properties: props})
	}
	return out, nil
}

func (s *AccountService) GetSeller(ctx context.Context, id string) (*SellerDetail, error) {
	seller, err := s.Get(ctx, model.RoleSeller, id)
	if err != nil {
		return nil, err
	}
	props, err := s.sellerListings(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SellerDetail{Identity: *seller, Properties: props}, nil
}

func (s *AccountService) SellerInventory(ctx context.Context, sellerID string) (*SellerListings, error) {
	seller, err := s.Get(ctx, model.RoleSeller, sellerID)
	if err != nil {
		return nil, err
	}
	props, err := s.sellerListings(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &SellerListings{
		Seller:     &model.Contact{ID: seller.ID, Name: seller.Name, Email: seller.Email},
		Properties: props,
	}, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Create adds a buyer or seller on the user's behalf.
func (s *AccountService) Create(ctx context.Context, role model.Role, in model.IdentityInput) (*model.Identity, error) {
	if err := validation.NewIdentity(in); err != nil {
		return nil, err
	}

	email := model.NormalizeHandle(strVal(in.Email))
	c, err := s.conflict(ctx, role, email, strVal(in.Username), "")
	if err != nil {
		return nil, err
	}
	if c != nil {
		field := "username"
		if c.Email == email {
			field = "email"
		}
		return nil, apperror.Conflict(role.Title() + " with this " + field + " already exists")
	}

	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	ident := &model.Identity{
		Name:         strVal(in.Name),
		Username:     strVal(in.Username),
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  strVal(in.PhoneNumber),
		Role:         role,
	}
	if err := s.identities.Create(ctx, role, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict(role.Title() + " with this email already exists")
		}
		return nil, apperror.Internal(err)
	}
	return ident, nil
}

// Update applies an admin edit. Role changes are ignored.
func (s *AccountService) Update(ctx context.Context, role model.Role, id string, in model.IdentityInput) (*model.Identity, error) {
	ident, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}
	if err := validation.IdentityUpdate(in); err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := model.NormalizeHandle(*in.Email)
		if email != ident.Email {
			c, err := s.conflict(ctx, role, email, "", id)
			if err != nil {
				return nil, err
			}
			if c != nil {
				return nil, apperror.Conflict("Email already in use by another " + string(role))
			}
		}
		ident.Email = email
	}
	if in.Username != nil {
		username := model.NormalizeHandle(*in.Username)
		if username != ident.Username {
			c, err := s.conflict(ctx, role, "", username, id)
			if err != nil {
				return nil, err
			}
			if c != nil {
				return nil, apperror.Conflict("Username already in use by another " + string(role))
			}
		}
		ident.Username = username
	}
	if in.Name != nil {
		ident.Name = strVal(in.Name)
	}
	if in.PhoneNumber != nil {
		ident.PhoneNumber = strVal(in.PhoneNumber)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		ident.PasswordHash = hash
	}

	if err := s.identities.Update(ctx, role, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Email already in use by another " + string(role))
		}
		return nil, translate(err, notFoundMsg(role))
	}
	return ident, nil
}

// Delete removes a buyer or seller. A seller who still owns listings is kept.
func (s *AccountService) Delete(ctx context.Context, role model.Role, id string) error {
	if _, err := s.Get(ctx, role, id); err != nil {
		return err
	}
	if role == model.RoleSeller {
		n, err := s.listings.Count(ctx, repository.ListingFilter{
			CreatedBy:      id,
			CreatedByModel: model.CreatorSeller,
		})
		if err != nil {
			return apperror.Internal(err)
		}
		if n > 0 {
			return apperror.BadRequest("Cannot delete seller with associated properties. Please reassign or delete them first.")
		}
	}
	return translate(s.identities.Delete(ctx, role, id), notFoundMsg(role))
}
