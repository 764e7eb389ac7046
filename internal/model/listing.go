package model

import "time"

type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyLand      PropertyType = "land"
	PropertyApartment PropertyType = "apartment"
)

func (p PropertyType) Valid() bool {
	switch p {
	case PropertyHouse, PropertyLand, PropertyApartment:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

// ListingStatuses is the moderation vocabulary accepted from admins.
var ListingStatuses = []ListingStatus{ListingApproved, ListingPending, ListingRejected}

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected:
		return true
	}
	return false
}

// CreatorModel records which identity store createdBy points into.
type CreatorModel string

const (
	CreatorAdmin  CreatorModel = "Admin"
	CreatorSeller CreatorModel = "Seller"
)

func (m CreatorModel) Role() Role {
	if m == CreatorAdmin {
		return RoleAdmin
	}
	return RoleSeller
}

type Listing struct {
	ID             string        `db:"id" json:"_id"`
	Title          string        `db:"title" json:"title"`
	PropertyType   PropertyType  `db:"property_type" json:"propertyType"`
	Price          string        `db:"price" json:"price"`
	Address        string        `db:"address" json:"address"`
	ImageURL       string        `db:"image_url" json:"imageUrl"`
	Beds           int           `db:"beds" json:"beds,omitempty"`
	Baths          int           `db:"baths" json:"baths,omitempty"`
	Sqft           string        `db:"sqft" json:"sqft,omitempty"`
	LandArea       string        `db:"land_area" json:"landArea,omitempty"`
	Zoning         string        `db:"zoning" json:"zoning,omitempty"`
	FloorNumber    int           `db:"floor_number" json:"floorNumber,omitempty"`
	TotalFloors    int           `db:"total_floors" json:"totalFloors,omitempty"`
	Status         ListingStatus `db:"status" json:"status"`
	CreatedBy      string        `db:"created_by" json:"createdBy"`
	CreatedByModel CreatorModel  `db:"created_by_model" json:"createdByModel"`
	Interested     []string      `db:"-" json:"interested,omitempty"`
	PhotoID        string        `db:"photo_id" json:"-"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsInterested reports whether buyerID is in the interested set.
func (l *Listing) IsInterested(buyerID string) bool {
	for _, id := range l.Interested {
		if id == buyerID {
			return true
		}
	}
	return false
}

// OwnedBy reports whether the listing was created by the given seller.
func (l *Listing) OwnedBy(sellerID string) bool {
	return l.CreatedByModel == CreatorSeller && l.CreatedBy == sellerID
}

// ListingView is a listing with its creator resolved.
type ListingView struct {
	Listing
	Creator *Contact `json:"creator,omitempty"`
}

// ListingSummary is the subset of a listing shown inside appointments.
type ListingSummary struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Address  string `json:"address"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl"`
	Beds     int    `json:"beds,omitempty"`
	Baths    int    `json:"baths,omitempty"`
	Sqft     string `json:"sqft,omitempty"`
}

func (l *Listing) Summary() *ListingSummary {
	if l == nil {
		return nil
	}
	return &ListingSummary{
		ID:       l.ID,
		Title:    l.Title,
		Address:  l.Address,
		Price:    l.Price,
		ImageURL: l.ImageURL,
		Beds:     l.Beds,
		Baths:    l.Baths,
		Sqft:     l.Sqft,
	}
}
