// Package postgres implements the repositories on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"realestate-service/internal/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		id            TEXT PRIMARY KEY,
		role          TEXT NOT NULL,
		name          TEXT NOT NULL,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		phone_number  TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		UNIQUE (role, email),
		UNIQUE (role, username)
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		property_type    TEXT NOT NULL,
		price            TEXT NOT NULL,
		address          TEXT NOT NULL,
		image_url        TEXT NOT NULL DEFAULT '',
		beds             INTEGER NOT NULL DEFAULT 0,
		baths            INTEGER NOT NULL DEFAULT 0,
		sqft             TEXT NOT NULL DEFAULT '',
		land_area        TEXT NOT NULL DEFAULT '',
		zoning           TEXT NOT NULL DEFAULT '',
		floor_number     INTEGER NOT NULL DEFAULT 0,
		total_floors     INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL,
		created_by       TEXT NOT NULL,
		created_by_model TEXT NOT NULL,
		photo_id         TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS listings_status_idx ON listings (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS listings_creator_idx ON listings (created_by, created_by_model)`,
	`CREATE TABLE IF NOT EXISTS listing_interests (
		listing_id TEXT NOT NULL REFERENCES listings (id) ON DELETE CASCADE,
		buyer_id   TEXT NOT NULL,
		PRIMARY KEY (listing_id, buyer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id             TEXT PRIMARY KEY,
		date           TIMESTAMPTZ NOT NULL,
		place_to_visit TEXT NOT NULL,
		message        TEXT NOT NULL,
		seller_id      TEXT NOT NULL,
		buyer_id       TEXT NOT NULL,
		listing_id     TEXT NOT NULL,
		status         TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listing_photos (
		id         TEXT PRIMARY KEY,
		filename   TEXT NOT NULL,
		data       BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Open connects, applies the schema and returns a store.
func Open(ctx context.Context, dsn string) (*repository.Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wires every repository to db.
func New(db *sqlx.DB) *repository.Store {
	return &repository.Store{
		Identities:   NewIdentityRepository(db),
		Listings:     NewListingRepository(db),
		Appointments: NewAppointmentRepository(db),
		Photos:       NewPhotoRepository(db),
		Ping:         db.PingContext,
		Close:        func(context.Context) error { return db.Close() },
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func affected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var (
	_ repository.IdentityRepository    = (*IdentityRepository)(nil)
	_ repository.ListingRepository     = (*ListingRepository)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepository)(nil)
	_ repository.PhotoRepository       = (*PhotoRepository)(nil)
)
