package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text decodes from a JSON string or a bare JSON number and is trimmed.
// Form-driven clients send prices and areas either way. Objects, arrays and
// booleans are rejected.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid text value %s", b)
	}
	// A zero number counts as absent, like an empty string.
	if f == 0 {
		*t = ""
		return nil
	}
	*t = Text(string(b))
	return nil
}

func (t Text) String() string { return string(t) }

// Count decodes from a JSON number or a numeric string. Empty means zero.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*c = Count(f)
	return nil
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"trimlen=2:50"`
	Username    string `json:"username" validate:"trimlen=3:30"`
	Email       string `json:"email" validate:"looseemail"`
	Password    string `json:"password" validate:"min=6"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role" validate:"role"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"looseemail"`
	Password string `json:"password" validate:"min=6"`
	Role     Role   `json:"role" validate:"role"`
}

// AuthResponse is returned by register and sign-in.
type AuthResponse struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// IdentityInput is an admin-supplied buyer or seller. Nil fields are left
// untouched on update. Role is accepted so it can be ignored.
type IdentityInput struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
	Role        *string `json:"role"`
}

// ProfileInput is a self-service profile edit.
type ProfileInput struct {
	Name        string `json:"name" validate:"nonblank"`
	Username    string `json:"username"`
	Email       string `json:"email" validate:"nonblank"`
	PhoneNumber string `json:"phoneNumber" validate:"nonblank"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ListingInput is the create/update payload for a listing.
type ListingInput struct {
	Title        Text  `json:"title"`
	PropertyType Text  `json:"propertyType"`
	Price        Text  `json:"price"`
	Address      Text  `json:"address"`
	ImageURL     Text  `json:"imageUrl"`
	Beds         Count `json:"beds"`
	Baths        Count `json:"baths"`
	Sqft         Text  `json:"sqft"`
	LandArea     Text  `json:"landArea"`
	Zoning       Text  `json:"zoning"`
	FloorNumber  Count `json:"floorNumber"`
	TotalFloors  Count `json:"totalFloors"`
	Status       Text  `json:"status"`
}

// Apply copies the input onto l, keeping only the attributes that belong to
// the declared property type.
func (in *ListingInput) Apply(l *Listing) {
	l.Title = in.Title.String()
	l.PropertyType = PropertyType(in.PropertyType)
	l.Price = in.Price.String()
	l.Address = in.Address.String()
	l.ImageURL = in.ImageURL.String()

	l.Beds, l.Baths, l.Sqft = 0, 0, ""
	l.LandArea, l.Zoning = "", ""
	l.FloorNumber, l.TotalFloors = 0, 0

	switch l.PropertyType {
	case PropertyHouse:
		l.Beds, l.Baths, l.Sqft = int(in.Beds), int(in.Baths), in.Sqft.String()
	case PropertyLand:
		l.LandArea, l.Zoning = in.LandArea.String(), in.Zoning.String()
	case PropertyApartment:
		l.FloorNumber, l.TotalFloors = int(in.FloorNumber), int(in.TotalFloors)
	}
}

type InterestRequest struct {
	Action string `json:"action"`
}

type AppointmentRequest struct {
	PropertyID   string `json:"propertyId" validate:"required"`
	SellerID     string `json:"sellerId" validate:"required"`
	Date         string `json:"date" validate:"nonblank"`
	PlaceToVisit string `json:"placeToVisit" validate:"nonblank"`
	Message      string `json:"message" validate:"nonblank"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
