package service

import (
	"context"
	"sort"
	"time"

	"realestate-service/internal/apperror"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

const recentLimit = 5

type RecentProperty struct {
	ID        string              `json:"_id"`
	Title     string              `json:"title"`
	Address   string              `json:"address"`
	Price     string              `json:"price"`
	Status    model.ListingStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

type RecentUser struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

type AdminDashboard struct {
	TotalProperties  int64            `json:"totalProperties"`
	TotalUsers       int64            `json:"totalUsers"`
	RecentProperties []RecentProperty `json:"recentProperties"`
	RecentUsers      []RecentUser     `json:"recentUsers"`
}

type Activity struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Status           model.ListingStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	AppointmentCount int                 `json:"appointmentCount"`
}

type SellerDashboard struct {
	TotalProperties    int        `json:"totalProperties"`
	ApprovedProperties int        `json:"approvedProperties"`
	PendingProperties  int        `json:"pendingProperties"`
	RejectedProperties int        `json:"rejectedProperties"`
	TotalAppointments  int        `json:"totalAppointments"`
	RecentActivity     []Activity `json:"recentActivity"`
}

// DashboardService computes the summary panels.
type DashboardService struct {
	identities   repository.IdentityRepository
	listings     repository.ListingRepository
	appointments repository.AppointmentRepository
}

func NewDashboardService(ir repository.IdentityRepository, lr repository.ListingRepository, ar repository.AppointmentRepository) *DashboardService {
	return &DashboardService{identities: ir, listings: lr, appointments: ar}
}

// Admin totals listings and users and picks the newest five of each. Recent
// users are drawn from buyers and sellers together.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	totalProperties, err := s.listings.Count(ctx, repository.ListingFilter{})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	dash := &AdminDashboard{
		TotalProperties:  totalProperties,
		RecentProperties: []RecentProperty{},
		RecentUsers:      []RecentUser{},
	}

	recent, err := s.listings.Find(ctx, repository.ListingFilter{Limit: recentLimit})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, l := range recent {
		dash.RecentProperties = append(dash.RecentProperties, RecentProperty{
			ID:        l.ID,
			Title:     l.Title,
			Address:   l.Address,
			Price:     l.Price,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
		})
	}

	newest := repository.IdentityQuery{Limit: recentLimit, SortBy: "createdAt", Desc: true}
	for _, role := range []model.Role{model.RoleBuyer, model.RoleSeller} {
		list, total, err := s.identities.List(ctx, role, newest)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		dash.TotalUsers += total
		for _, u := range list {
			dash.RecentUsers = append(dash.RecentUsers, RecentUser{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      role,
				CreatedAt: u.CreatedAt,
			})
		}
	}
	sort.SliceStable(dash.RecentUsers, func(i, j int) bool {
		return dash.RecentUsers[i].CreatedAt.After(dash.RecentUsers[j].CreatedAt)
	})
	if len(dash.RecentUsers) > recentLimit {
		dash.RecentUsers = dash.RecentUsers[:recentLimit]
	}
	return dash, nil
}

// Seller summarises the seller's listings by status and the appointments
// made against them.
func (s *DashboardService) Seller(ctx context.Context, sellerID string) (*SellerDashboard, error) {
	props, err := s.listings.Find(ctx, repository.ListingFilter{
		CreatedBy:      sellerID,
		CreatedByModel: model.CreatorSeller,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	appts, err := s.appointments.Find(ctx, repository.AppointmentFilter{ListingIDs: ids})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	perListing := make(map[string]int, len(props))
	for _, a := range appts {
		perListing[a.ListingID]++
	}

	dash := &SellerDashboard{
		TotalProperties:   len(props),
		TotalAppointments: len(appts),
		RecentActivity:    []Activity{},
	}
	for _, p := range props {
		switch p.Status {
		case model.ListingApproved:
			dash.ApprovedProperties++
		case model.ListingPending:
			dash.PendingProperties++
		case model.ListingRejected:
			dash.RejectedProperties++
		}
	}
	for i, p := range props {
		if i == recentLimit {
			break
		}
		dash.RecentActivity = append(dash.RecentActivity, Activity{
			ID:               p.ID,
			Title:            p.Title,
			Status:           p.Status,
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
			AppointmentCount: perListing[p.ID],
		})
	}
	return dash, nil
}
