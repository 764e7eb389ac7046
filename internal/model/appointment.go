package model

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentAccepted  AppointmentStatus = "accepted"
	AppointmentRejected  AppointmentStatus = "rejected"
	AppointmentCompleted AppointmentStatus = "completed"
)

// AppointmentStatuses are the values a seller may set. Any status may move
// to any other.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentPending, AppointmentAccepted, AppointmentRejected, AppointmentCompleted,
}

func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Appointment is a buyer's request to visit a listing.
type Appointment struct {
	ID           string            `db:"id" json:"_id"`
	Date         time.Time         `db:"date" json:"date"`
	PlaceToVisit string            `db:"place_to_visit" json:"placeToVisit"`
	Message      string            `db:"message" json:"message"`
	SellerID     string            `db:"seller_id" json:"seller"`
	BuyerID      string            `db:"buyer_id" json:"buyer"`
	ListingID    string            `db:"listing_id" json:"property"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
}

// AppointmentView is an appointment with its references resolved. A
// reference whose record no longer exists renders as null.
type AppointmentView struct {
	ID           string            `json:"_id"`
	Date         time.Time         `json:"date"`
	PlaceToVisit string            `json:"placeToVisit"`
	Message      string            `json:"message"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	Seller       *Contact          `json:"seller"`
	Buyer        *Contact          `json:"buyer"`
	Property     *ListingSummary   `json:"property"`
}
