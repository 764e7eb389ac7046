// Package validation holds the field rules shared by every role's routes.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"realestate-service/internal/apperror"
	"realestate-service/internal/model"
)

const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

	// Registration and admin edits accept international formatting.
	phonePattern = regexp.MustCompile(`^\+?[\d\s()-]{10,}$`)
	// Self-service profile edits do not accept parentheses.
	profilePhonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
	// Admin-created buyers and sellers need exactly ten digits.
	adminPhonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

func ValidPhone(phone string) bool { return phonePattern.MatchString(phone) }

func ValidProfilePhone(phone string) bool { return profilePhonePattern.MatchString(phone) }

func ValidAdminPhone(phone string) bool { return adminPhonePattern.MatchString(phone) }

func between(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// validate runs the struct tags declared on the model inputs. Tags are keyed
// by json name so messages line up with the request fields.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	rules := map[string]validator.Func{
		"nonblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		// trimlen=min:max bounds the trimmed rune count.
		"trimlen": func(fl validator.FieldLevel) bool {
			lo, hi, _ := strings.Cut(fl.Param(), ":")
			min, err1 := strconv.Atoi(lo)
			max, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				panic("validation: bad trimlen param " + fl.Param())
			}
			return between(fl.Field().String(), min, max)
		},
		"looseemail": func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		},
		"role": func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// violations validates s and maps each failing field to a message, looking
// up "field.tag" before "field". Repeated messages are reported once.
func violations(s any, messages map[string]string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(s), &verrs) {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = messages[fe.Field()]
		}
		if msg == "" || seen[msg] {
			continue
		}
		seen[msg] = true
		out = append(out, msg)
	}
	return out
}

var credentialMessages = map[string]string{
	"name":     "Name must be between 2 and 50 characters",
	"username": "Username must be between 3 and 30 characters",
	"email":    "Valid email is required",
	"password": "Password must be at least 6 characters",
	"role":     "Invalid role specified",
}

// Registration returns every rule the request violates.
func Registration(r model.RegisterRequest) []string {
	errs := violations(r, credentialMessages)
	if r.Role.RequiresPhone() && !ValidPhone(r.PhoneNumber) {
		errs = append(errs, "Valid phone number is required for buyers and sellers")
	}
	return errs
}

func SignIn(r model.SignInRequest) []string {
	return violations(r, credentialMessages)
}

func present(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// NewIdentity checks an admin-created buyer or seller.
func NewIdentity(in model.IdentityInput) error {
	required := []struct {
		name string
		val  *string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
		{"phoneNumber", in.PhoneNumber},
	}
	var missing []string
	for _, f := range required {
		if !present(f.val) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperror.BadRequest("Missing required fields").With("fields", missing)
	}
	if !ValidAdminPhone(strings.TrimSpace(*in.PhoneNumber)) {
		return apperror.BadRequest("Validation error").
			With("errors", []string{"Please enter a valid 10-digit phone number"})
	}
	var errs []string
	if !ValidEmail(strings.TrimSpace(*in.Email)) {
		errs = append(errs, "Please enter a valid email")
	}
	if len(*in.Password) < MinPasswordLength {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return apperror.BadRequest("Validation error").With("errors", errs)
	}
	return nil
}

// IdentityUpdate checks the fields present in an admin edit.
func IdentityUpdate(in model.IdentityInput) error {
	var errs []string
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		errs = append(errs, "Name is required")
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) == "" {
		errs = append(errs, "Username is required")
	}
	if in.Email != nil && !ValidEmail(strings.TrimSpace(*in.Email)) {
		errs = append(errs, "Please enter a valid email")
	}
	if in.PhoneNumber != nil && !ValidPhone(strings.TrimSpace(*in.PhoneNumber)) {
		errs = append(errs, "Please enter a valid phone number")
	}
	if in.Password != nil && len(*in.Password) < MinPasswordLength {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return apperror.BadRequest("Validation error").With("errors", errs)
	}
	return nil
}

const profileRequired = "Name, email and phone number are required"

var profileMessages = map[string]string{
	"name":        profileRequired,
	"email":       profileRequired,
	"phoneNumber": profileRequired,
}

// Profile checks a buyer or seller editing their own profile.
func Profile(in model.ProfileInput) error {
	if errs := violations(in, profileMessages); len(errs) > 0 {
		return apperror.BadRequest(errs[0])
	}
	if !ValidProfilePhone(strings.TrimSpace(in.PhoneNumber)) {
		return apperror.BadRequest("Invalid phone number format")
	}
	if !ValidEmail(strings.TrimSpace(in.Email)) {
		return apperror.BadRequest("Valid email is required")
	}
	return nil
}

// AdminProfile checks the optional fields of an admin profile edit.
func AdminProfile(in model.ProfileInput) error {
	if in.Email != "" && !ValidEmail(strings.TrimSpace(in.Email)) {
		return apperror.BadRequest("Valid email is required")
	}
	if in.Username != "" && !between(in.Username, 3, 30) {
		return apperror.BadRequest("Username must be between 3 and 30 characters")
	}
	return nil
}

var passwordMessages = map[string]string{
	"currentPassword":      "Current password and new password are required",
	"newPassword.required": "Current password and new password are required",
	"newPassword.min":      "New password must be at least 6 characters long",
}

func PasswordChange(in model.PasswordChange) error {
	if errs := violations(in, passwordMessages); len(errs) > 0 {
		return apperror.BadRequest(errs[0])
	}
	return nil
}

var typeFields = map[model.PropertyType][]string{
	model.PropertyHouse:     {"beds", "baths", "sqft"},
	model.PropertyLand:      {"landArea", "zoning"},
	model.PropertyApartment: {"floorNumber", "totalFloors"},
}

// Listing applies the common and type-dependent required-field rules.
func Listing(in model.ListingInput) error {
	common := []struct {
		name string
		val  model.Text
	}{
		{"title", in.Title},
		{"propertyType", in.PropertyType},
		{"price", in.Price},
		{"address", in.Address},
		{"imageUrl", in.ImageURL},
	}
	var missing []string
	for _, f := range common {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperror.BadRequest("Missing required fields").With("fields", missing)
	}

	pt := model.PropertyType(in.PropertyType)
	if !pt.Valid() {
		return apperror.BadRequest("Invalid property type").
			With("allowed", []model.PropertyType{model.PropertyHouse, model.PropertyLand, model.PropertyApartment})
	}

	var ok bool
	switch pt {
	case model.PropertyHouse:
		ok = in.Beds != 0 && in.Baths != 0 && in.Sqft != ""
	case model.PropertyLand:
		ok = in.LandArea != "" && in.Zoning != ""
	case model.PropertyApartment:
		ok = in.FloorNumber != 0 && in.TotalFloors != 0
	}
	if !ok {
		return apperror.BadRequest("Missing required fields for "+string(pt)+" property").
			With("required", typeFields[pt])
	}
	return nil
}

// ListingStatus accepts an empty status (meaning unchanged) or one of the
// moderation values.
func ListingStatus(status string) error {
	if status == "" || model.ListingStatus(status).Valid() {
		return nil
	}
	return apperror.BadRequest("Invalid status value").With("allowed", model.ListingStatuses)
}

func AppointmentStatus(status string) error {
	if model.AppointmentStatus(status).Valid() {
		return nil
	}
	return apperror.BadRequest("Invalid status").With("allowed", model.AppointmentStatuses)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts the formats browsers emit from date and
// datetime-local inputs.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

const appointmentRequired = "Property ID, seller details, date, place to visit and message are required"

var appointmentMessages = map[string]string{
	"propertyId":   appointmentRequired,
	"sellerId":     appointmentRequired,
	"date":         appointmentRequired,
	"placeToVisit": appointmentRequired,
	"message":      appointmentRequired,
}

// Appointment checks a buyer's visit request.
func Appointment(in model.AppointmentRequest) (time.Time, error) {
	if errs := violations(in, appointmentMessages); len(errs) > 0 {
		return time.Time{}, apperror.BadRequest(errs[0])
	}
	date, ok := ParseDate(in.Date)
	if !ok {
		return time.Time{}, apperror.BadRequest("Invalid appointment date")
	}
	return date, nil
}
