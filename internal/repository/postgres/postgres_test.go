package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestEnsureSchemaExecutesEveryStatement(t *testing.T) {
	db, mock := newMock(t)
	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := NewIdentityRepository(db).Create(context.Background(), model.RoleBuyer, &model.Identity{
		Name: "Alice", Username: "Alice", Email: "A@X.com", PasswordHash: "h",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM identities WHERE role = $1 AND id = $2")).
		WithArgs("seller", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewIdentityRepository(db).GetByID(context.Background(), model.RoleSeller, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIdentityListSearchAndSort(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM identities WHERE role = $1 AND (name ILIKE $2")).
		WithArgs("buyer", `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs("buyer", `%50\%%`, 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "name", "username", "email", "password_hash", "phone_number", "created_at"}).
			AddRow("b1", "buyer", "Bob", "bob", "bob@x.com", "h", "5551234567", now))

	list, total, err := NewIdentityRepository(db).List(context.Background(), model.RoleBuyer, repository.IdentityQuery{
		Page: 2, Limit: 5, Search: "50%", SortBy: "name", Desc: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingFindAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND l.status = $1 AND l.created_by = $2 GROUP BY l.id ORDER BY l.created_at DESC, l.id DESC LIMIT $3")).
		WithArgs("approved", "s1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "property_type", "status", "created_by", "created_by_model", "created_at", "updated_at", "interested"}).
			AddRow("l1", "Cottage", "house", "approved", "s1", "Seller", now, now, "{b1,b2}"))

	list, err := NewListingRepository(db).Find(context.Background(), repository.ListingFilter{
		Status: model.ListingApproved, CreatedBy: "s1", Limit: 5,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.PropertyHouse, list[0].PropertyType)
	assert.Equal(t, []string{"b1", "b2"}, list[0].Interested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingInterestOnMissingListing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM listings WHERE id = $1")).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := NewListingRepository(db).AddInterest(context.Background(), "gone", "b1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingSetStatusMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE listings SET status = $1")).
		WithArgs("approved", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewListingRepository(db).SetStatus(context.Background(), "gone", model.ListingApproved)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentFindByListings(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)

	list, err := repo.Find(context.Background(), repository.AppointmentFilter{ListingIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, list)

	mock.ExpectQuery(regexp.QuoteMeta("AND listing_id IN ($1, $2) ORDER BY created_at DESC")).
		WithArgs("l1", "l2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "listing_id", "status"}).AddRow("a1", "l2", "pending"))

	list, err = repo.Find(context.Background(), repository.AppointmentFilter{ListingIDs: []string{"l1", "l2"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "l2", list[0].ListingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDeletePending(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments")).
		WithArgs("a1", "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewAppointmentRepository(db).DeletePending(context.Background(), "a1", "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}
