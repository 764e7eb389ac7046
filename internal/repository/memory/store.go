// Package memory is an in-memory backend. It is safe for concurrent use and
// is primarily intended for tests and local development.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

var (
	_ repository.IdentityRepository    = (*IdentityStore)(nil)
	_ repository.ListingRepository     = (*ListingStore)(nil)
	_ repository.AppointmentRepository = (*AppointmentStore)(nil)
	_ repository.PhotoRepository       = (*PhotoStore)(nil)
)

// New creates an empty store.
func New() *repository.Store {
	return &repository.Store{
		Identities:   NewIdentityStore(),
		Listings:     NewListingStore(),
		Appointments: NewAppointmentStore(),
		Photos:       NewPhotoStore(),
		Ping:         func(context.Context) error { return nil },
		Close:        func(context.Context) error { return nil },
	}
}

type entry[T any] struct {
	seq int64
	val T
}

// IdentityStore ---------------------------------------------------------------

type IdentityStore struct {
	mu    sync.RWMutex
	seq   int64
	roles map[model.Role]map[string]entry[model.Identity]
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{roles: make(map[model.Role]map[string]entry[model.Identity])}
}

func (s *IdentityStore) table(role model.Role) map[string]entry[model.Identity] {
	t, ok := s.roles[role]
	if !ok {
		t = make(map[string]entry[model.Identity])
		s.roles[role] = t
	}
	return t
}

func (s *IdentityStore) conflictLocked(role model.Role, email, username, excludeID string) *model.Identity {
	email, username = model.NormalizeHandle(email), model.NormalizeHandle(username)
	for id, e := range s.table(role) {
		if id == excludeID {
			continue
		}
		if (email != "" && e.val.Email == email) || (username != "" && e.val.Username == username) {
			v := e.val
			return &v
		}
	}
	return nil
}

func (s *IdentityStore) Create(_ context.Context, role model.Role, ident *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident.Email = model.NormalizeHandle(ident.Email)
	ident.Username = model.NormalizeHandle(ident.Username)
	if s.conflictLocked(role, ident.Email, ident.Username, "") != nil {
		return repository.ErrDuplicate
	}
	if ident.ID == "" {
		ident.ID = uuid.NewString()
	}
	if ident.CreatedAt.IsZero() {
		ident.CreatedAt = time.Now().UTC()
	}
	ident.Role = role
	s.seq++
	s.table(role)[ident.ID] = entry[model.Identity]{seq: s.seq, val: *ident}
	return nil
}

func (s *IdentityStore) GetByID(_ context.Context, role model.Role, id string) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.roles[role][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := e.val
	return &v, nil
}

func (s *IdentityStore) GetByEmail(_ context.Context, role model.Role, email string) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = model.NormalizeHandle(email)
	for _, e := range s.roles[role] {
		if e.val.Email == email {
			v := e.val
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *IdentityStore) FindConflict(_ context.Context, role model.Role, email, username, excludeID string) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.conflictLocked(role, email, username, excludeID); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *IdentityStore) Update(_ context.Context, role model.Role, ident *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.roles[role][ident.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ident.Email = model.NormalizeHandle(ident.Email)
	ident.Username = model.NormalizeHandle(ident.Username)
	if s.conflictLocked(role, ident.Email, ident.Username, ident.ID) != nil {
		return repository.ErrDuplicate
	}
	ident.Role = e.val.Role
	ident.CreatedAt = e.val.CreatedAt
	e.val = *ident
	s.roles[role][ident.ID] = e
	return nil
}

func (s *IdentityStore) Delete(_ context.Context, role model.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role][id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.roles[role], id)
	return nil
}

func identityField(i *model.Identity, field string) string {
	switch field {
	case "name":
		return i.Name
	case "email":
		return i.Email
	case "username":
		return i.Username
	case "phoneNumber":
		return i.PhoneNumber
	}
	return ""
}

func (s *IdentityStore) List(_ context.Context, role model.Role, q repository.IdentityQuery) ([]model.Identity, int64, error) {
	q = q.Normalize()
	search := strings.ToLower(q.Search)

	s.mu.RLock()
	var matched []entry[model.Identity]
	for _, e := range s.roles[role] {
		if search != "" {
			hit := false
			for _, f := range []string{"name", "email", "username", "phoneNumber"} {
				if strings.Contains(strings.ToLower(identityField(&e.val, f)), search) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	less := func(a, b *entry[model.Identity]) bool {
		if q.SortBy == "createdAt" {
			if a.val.CreatedAt.Equal(b.val.CreatedAt) {
				return a.seq < b.seq
			}
			return a.val.CreatedAt.Before(b.val.CreatedAt)
		}
		return identityField(&a.val, q.SortBy) < identityField(&b.val, q.SortBy)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Desc {
			return less(&matched[j], &matched[i])
		}
		return less(&matched[i], &matched[j])
	})

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]model.Identity, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, e.val)
	}
	return out, total, nil
}

func (s *IdentityStore) Count(_ context.Context, role model.Role) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.roles[role])), nil
}

// ListingStore ----------------------------------------------------------------

type ListingStore struct {
	mu       sync.RWMutex
	seq      int64
	listings map[string]entry[model.Listing]
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]entry[model.Listing])}
}

func cloneListing(l model.Listing) model.Listing {
	l.Interested = append([]string(nil), l.Interested...)
	return l
}

func (s *ListingStore) Create(_ context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	if l.Interested == nil {
		l.Interested = []string{}
	}
	s.seq++
	s.listings[l.ID] = entry[model.Listing]{seq: s.seq, val: cloneListing(*l)}
	return nil
}

func (s *ListingStore) GetByID(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := cloneListing(e.val)
	return &v, nil
}

func listingMatches(l *model.Listing, f repository.ListingFilter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.CreatedBy != "" && l.CreatedBy != f.CreatedBy {
		return false
	}
	if f.CreatedByModel != "" && l.CreatedByModel != f.CreatedByModel {
		return false
	}
	return true
}

func (s *ListingStore) Find(_ context.Context, f repository.ListingFilter) ([]model.Listing, error) {
	s.mu.RLock()
	var matched []entry[model.Listing]
	for _, e := range s.listings {
		if listingMatches(&e.val, f) {
			matched = append(matched, entry[model.Listing]{seq: e.seq, val: cloneListing(e.val)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.val.CreatedAt.Equal(b.val.CreatedAt) {
			return a.seq > b.seq
		}
		return a.val.CreatedAt.After(b.val.CreatedAt)
	})
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	out := make([]model.Listing, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.val)
	}
	return out, nil
}

func (s *ListingStore) Count(_ context.Context, f repository.ListingFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.listings {
		if listingMatches(&e.val, f) {
			n++
		}
	}
	return n, nil
}

func (s *ListingStore) mutate(id string, fn func(l *model.Listing)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&e.val)
	s.listings[id] = e
	return nil
}

func (s *ListingStore) Update(_ context.Context, l *model.Listing) error {
	return s.mutate(l.ID, func(cur *model.Listing) {
		interested := cur.Interested
		createdAt := cur.CreatedAt
		*cur = cloneListing(*l)
		cur.Interested = interested
		cur.CreatedAt = createdAt
		cur.UpdatedAt = time.Now().UTC()
	})
}

func (s *ListingStore) SetStatus(_ context.Context, id string, status model.ListingStatus) error {
	return s.mutate(id, func(cur *model.Listing) {
		cur.Status = status
		cur.UpdatedAt = time.Now().UTC()
	})
}

func (s *ListingStore) SetPhoto(_ context.Context, id, photoID, imageURL string, status model.ListingStatus) error {
	return s.mutate(id, func(cur *model.Listing) {
		cur.PhotoID = photoID
		cur.ImageURL = imageURL
		cur.Status = status
		cur.UpdatedAt = time.Now().UTC()
	})
}

func (s *ListingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

func (s *ListingStore) AddInterest(_ context.Context, id, buyerID string) error {
	return s.mutate(id, func(cur *model.Listing) {
		if !cur.IsInterested(buyerID) {
			cur.Interested = append(cur.Interested, buyerID)
		}
	})
}

func (s *ListingStore) RemoveInterest(_ context.Context, id, buyerID string) error {
	return s.mutate(id, func(cur *model.Listing) {
		kept := cur.Interested[:0]
		for _, b := range cur.Interested {
			if b != buyerID {
				kept = append(kept, b)
			}
		}
		cur.Interested = kept
	})
}

// AppointmentStore ------------------------------------------------------------

type AppointmentStore struct {
	mu           sync.RWMutex
	seq          int64
	appointments map[string]entry[model.Appointment]
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{appointments: make(map[string]entry[model.Appointment])}
}

func (s *AppointmentStore) Create(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.seq++
	s.appointments[a.ID] = entry[model.Appointment]{seq: s.seq, val: *a}
	return nil
}

func (s *AppointmentStore) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := e.val
	return &v, nil
}

func (s *AppointmentStore) Find(_ context.Context, f repository.AppointmentFilter) ([]model.Appointment, error) {
	var listings map[string]bool
	if f.ListingIDs != nil {
		listings = make(map[string]bool, len(f.ListingIDs))
		for _, id := range f.ListingIDs {
			listings[id] = true
		}
	}

	s.mu.RLock()
	var matched []entry[model.Appointment]
	for _, e := range s.appointments {
		if f.BuyerID != "" && e.val.BuyerID != f.BuyerID {
			continue
		}
		if f.SellerID != "" && e.val.SellerID != f.SellerID {
			continue
		}
		if listings != nil && !listings[e.val.ListingID] {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.val.CreatedAt.Equal(b.val.CreatedAt) {
			return a.seq > b.seq
		}
		return a.val.CreatedAt.After(b.val.CreatedAt)
	})
	out := make([]model.Appointment, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.val)
	}
	return out, nil
}

func (s *AppointmentStore) UpdateStatus(_ context.Context, id string, status model.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.val.Status = status
	s.appointments[id] = e
	return nil
}

func (s *AppointmentStore) DeletePending(_ context.Context, id, buyerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.appointments[id]
	if !ok || e.val.BuyerID != buyerID || e.val.Status != model.AppointmentPending {
		return false, nil
	}
	delete(s.appointments, id)
	return true, nil
}

// PhotoStore ------------------------------------------------------------------

type PhotoStore struct {
	mu     sync.RWMutex
	photos map[string][]byte
}

func NewPhotoStore() *PhotoStore {
	return &PhotoStore{photos: make(map[string][]byte)}
}

func (s *PhotoStore) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("read photo %s: %w", filename, err)
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.photos[id] = buf.Bytes()
	s.mu.Unlock()
	return id, nil
}

func (s *PhotoStore) Download(_ context.Context, photoID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.photos[photoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return data, nil
}
