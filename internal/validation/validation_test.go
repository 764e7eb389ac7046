package validation

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-service/internal/apperror"
	"realestate-service/internal/model"
)

func strp(s string) *string { return &s }

func TestRegistration(t *testing.T) {
	valid := model.RegisterRequest{
		Name:        "Alice",
		Username:    "alice",
		Email:       "alice@x.com",
		Password:    "secret1",
		PhoneNumber: "+1 234 567 8901",
		Role:        model.RoleBuyer,
	}

	tests := []struct {
		name   string
		mutate func(r *model.RegisterRequest)
		want   []string
	}{
		{"valid buyer", func(r *model.RegisterRequest) {}, nil},
		{"admin needs no phone", func(r *model.RegisterRequest) { r.Role = model.RoleAdmin; r.PhoneNumber = "" }, nil},
		{"short name", func(r *model.RegisterRequest) { r.Name = "A" }, []string{"Name must be between 2 and 50 characters"}},
		{"bad role", func(r *model.RegisterRequest) { r.Role = "owner" }, []string{"Invalid role specified"}},
		{"seller without phone", func(r *model.RegisterRequest) { r.Role = model.RoleSeller; r.PhoneNumber = "" },
			[]string{"Valid phone number is required for buyers and sellers"}},
		{"everything wrong", func(r *model.RegisterRequest) {
			*r = model.RegisterRequest{Role: model.RoleBuyer}
		}, []string{
			"Name must be between 2 and 50 characters",
			"Username must be between 3 and 30 characters",
			"Valid email is required",
			"Password must be at least 6 characters",
			"Valid phone number is required for buyers and sellers",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Equal(t, tt.want, Registration(r))
		})
	}
}

func TestSignIn(t *testing.T) {
	assert.Empty(t, SignIn(model.SignInRequest{Email: "a@b.co", Password: "123456", Role: model.RoleSeller}))
	assert.Equal(t, []string{
		"Valid email is required",
		"Password must be at least 6 characters",
		"Invalid role specified",
	}, SignIn(model.SignInRequest{Email: "nope", Password: "1", Role: "x"}))
}

func TestPhonePatternsStayDistinct(t *testing.T) {
	assert.True(t, ValidPhone("(234) 567-8901"))
	assert.False(t, ValidProfilePhone("(234) 567-8901"))
	assert.True(t, ValidProfilePhone("+1 234-567-8901"))
	assert.False(t, ValidAdminPhone("+1 234 567 8901"))
	assert.True(t, ValidAdminPhone("2345678901"))
}

func TestNewIdentity(t *testing.T) {
	err := NewIdentity(model.IdentityInput{Name: strp("Bob"), Email: strp("bob@x.com")})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Missing required fields", appErr.Message)
	assert.Equal(t, []string{"username", "password", "phoneNumber"}, appErr.Details["fields"])

	in := model.IdentityInput{
		Name:        strp("Bob"),
		Email:       strp("bob@x.com"),
		Username:    strp("bob"),
		Password:    strp("secret1"),
		PhoneNumber: strp("+1 234 567 8901"),
	}
	appErr, ok = apperror.As(NewIdentity(in))
	require.True(t, ok)
	assert.Equal(t, []string{"Please enter a valid 10-digit phone number"}, appErr.Details["errors"])

	in.PhoneNumber = strp("2345678901")
	assert.NoError(t, NewIdentity(in))
}

func TestListing(t *testing.T) {
	base := model.ListingInput{
		Title:        "Home",
		Price:        "100",
		Address:      "1 Main St",
		ImageURL:     "http://img",
		PropertyType: "house",
		Beds:         3,
		Baths:        2,
		Sqft:         "1000",
	}
	require.NoError(t, Listing(base))

	noBeds := base
	noBeds.Beds = 0
	appErr, ok := apperror.As(Listing(noBeds))
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Missing required fields for house property", appErr.Message)
	assert.Equal(t, []string{"beds", "baths", "sqft"}, appErr.Details["required"])

	land := base
	land.PropertyType = "land"
	land.LandArea = "2 acres"
	appErr, ok = apperror.As(Listing(land))
	require.True(t, ok)
	assert.Equal(t, "Missing required fields for land property", appErr.Message)

	land.Zoning = "R1"
	assert.NoError(t, Listing(land))

	apt := base
	apt.PropertyType = "apartment"
	apt.FloorNumber = 4
	apt.TotalFloors = 10
	assert.NoError(t, Listing(apt))

	castle := base
	castle.PropertyType = "castle"
	appErr, ok = apperror.As(Listing(castle))
	require.True(t, ok)
	assert.Equal(t, "Invalid property type", appErr.Message)

	appErr, ok = apperror.As(Listing(model.ListingInput{Title: "x"}))
	require.True(t, ok)
	assert.Equal(t, []string{"propertyType", "price", "address", "imageUrl"}, appErr.Details["fields"])
}

func TestListingZeroNumbersAreMissing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"house without area",
			`{"title":"Home","propertyType":"house","price":100,"address":"1 Main St","imageUrl":"http://img","beds":3,"baths":2,"sqft":0}`,
			"Missing required fields for house property"},
		{"land without area",
			`{"title":"Plot","propertyType":"land","price":100,"address":"Route 9","imageUrl":"http://img","landArea":0,"zoning":"R1"}`,
			"Missing required fields for land property"},
		{"free house",
			`{"title":"Home","propertyType":"house","price":0,"address":"1 Main St","imageUrl":"http://img","beds":3,"baths":2,"sqft":900}`,
			"Missing required fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in model.ListingInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			appErr, ok := apperror.As(Listing(in))
			require.True(t, ok)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestProfile(t *testing.T) {
	ok := model.ProfileInput{Name: "Ann", Email: "ann@x.com", PhoneNumber: "234-567-8901"}
	assert.NoError(t, Profile(ok))

	blank := ok
	blank.Name = "   "
	blank.PhoneNumber = ""
	appErr, isApp := apperror.As(Profile(blank))
	require.True(t, isApp)
	assert.Equal(t, "Name, email and phone number are required", appErr.Message)

	parens := ok
	parens.PhoneNumber = "(234) 567-8901"
	appErr, isApp = apperror.As(Profile(parens))
	require.True(t, isApp)
	assert.Equal(t, "Invalid phone number format", appErr.Message)

	assert.NoError(t, AdminProfile(model.ProfileInput{Username: "ann"}))
	assert.Error(t, AdminProfile(model.ProfileInput{Username: "an"}))
}

func TestAppointment(t *testing.T) {
	in := model.AppointmentRequest{
		PropertyID:   "p1",
		SellerID:     "s1",
		Date:         "2025-03-01T10:30",
		PlaceToVisit: "Front gate",
		Message:      "Can I see it?",
	}
	date, err := Appointment(in)
	require.NoError(t, err)
	assert.Equal(t, 10, date.Hour())

	blank := in
	blank.Message = "  "
	_, err = Appointment(blank)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Property ID, seller details, date, place to visit and message are required", appErr.Message)

	bad := in
	bad.Date = "soon"
	_, err = Appointment(bad)
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid appointment date", appErr.Message)
}

func TestStatuses(t *testing.T) {
	assert.NoError(t, ListingStatus(""))
	assert.NoError(t, ListingStatus("rejected"))
	assert.Error(t, ListingStatus("archived"))

	assert.NoError(t, AppointmentStatus("completed"))
	assert.Error(t, AppointmentStatus(""))
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-03-01", "2025-03-01T10:30", "2025-03-01T10:30:00Z"} {
		_, ok := ParseDate(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseDate("next tuesday")
	assert.False(t, ok)
}

func TestPasswordChange(t *testing.T) {
	tests := []struct {
		name string
		in   model.PasswordChange
		want string
	}{
		{"missing current", model.PasswordChange{NewPassword: "abcdef"}, "Current password and new password are required"},
		{"missing both", model.PasswordChange{}, "Current password and new password are required"},
		{"short new", model.PasswordChange{CurrentPassword: "abcdef", NewPassword: "abc"}, "New password must be at least 6 characters long"},
		{"missing current wins over short new", model.PasswordChange{NewPassword: "abc"}, "Current password and new password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, ok := apperror.As(PasswordChange(tt.in))
			require.True(t, ok)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
	assert.NoError(t, PasswordChange(model.PasswordChange{CurrentPassword: "abcdef", NewPassword: "ghijkl"}))
}
