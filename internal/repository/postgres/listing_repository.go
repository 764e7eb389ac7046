package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

const listingColumns = `l.id, l.title, l.property_type, l.price, l.address, l.image_url,
	l.beds, l.baths, l.sqft, l.land_area, l.zoning, l.floor_number, l.total_floors,
	l.status, l.created_by, l.created_by_model, l.photo_id, l.created_at, l.updated_at,
	COALESCE(array_agg(i.buyer_id) FILTER (WHERE i.buyer_id IS NOT NULL), '{}') AS interested`

const listingFrom = `FROM listings l LEFT JOIN listing_interests i ON i.listing_id = l.id`

type listingRow struct {
	model.Listing
	Interested pq.StringArray `db:"interested"`
}

func (row *listingRow) toModel() model.Listing {
	l := row.Listing
	l.Interested = []string(row.Interested)
	if l.Interested == nil {
		l.Interested = []string{}
	}
	return l
}

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	now := time.Now().UTC()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	l.Interested = []string{}

	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO listings
			(id, title, property_type, price, address, image_url, beds, baths, sqft, land_area, zoning,
			 floor_number, total_floors, status, created_by, created_by_model, photo_id, created_at, updated_at)
		VALUES
			(:id, :title, :property_type, :price, :address, :image_url, :beds, :baths, :sqft, :land_area, :zoning,
			 :floor_number, :total_floors, :status, :created_by, :created_by_model, :photo_id, :created_at, :updated_at)
	`, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var row listingRow
	err := r.DB.GetContext(ctx, &row, `SELECT `+listingColumns+` `+listingFrom+` WHERE l.id = $1 GROUP BY l.id`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	l := row.toModel()
	return &l, nil
}

func listingWhere(f repository.ListingFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		where += fmt.Sprintf(" AND l.%s = $%d", col, len(args))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.PropertyType != "" {
		add("property_type", string(f.PropertyType))
	}
	if f.CreatedBy != "" {
		add("created_by", f.CreatedBy)
	}
	if f.CreatedByModel != "" {
		add("created_by_model", string(f.CreatedByModel))
	}
	return where, args
}

func (r *ListingRepository) Find(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error) {
	where, args := listingWhere(f)
	query := `SELECT ` + listingColumns + ` ` + listingFrom + where + ` GROUP BY l.id ORDER BY l.created_at DESC, l.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []listingRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.Find: %w", err)
	}
	out := make([]model.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (r *ListingRepository) Count(ctx context.Context, f repository.ListingFilter) (int64, error) {
	where, args := listingWhere(f)
	var n int64
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(1) FROM listings l`+where, args...); err != nil {
		return 0, fmt.Errorf("ListingRepository.Count: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	l.UpdatedAt = time.Now().UTC()
	res, err := r.DB.NamedExecContext(ctx, `
		UPDATE listings SET
			title            = :title,
			property_type    = :property_type,
			price            = :price,
			address          = :address,
			image_url        = :image_url,
			beds             = :beds,
			baths            = :baths,
			sqft             = :sqft,
			land_area        = :land_area,
			zoning           = :zoning,
			floor_number     = :floor_number,
			total_floors     = :total_floors,
			status           = :status,
			created_by_model = :created_by_model,
			photo_id         = :photo_id,
			updated_at       = :updated_at
		WHERE id = :id
	`, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	return affected(res)
}

func (r *ListingRepository) SetStatus(ctx context.Context, id string, status model.ListingStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("ListingRepository.SetStatus: %w", err)
	}
	return affected(res)
}

func (r *ListingRepository) SetPhoto(ctx context.Context, id, photoID, imageURL string, status model.ListingStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings SET photo_id = $1, image_url = $2, status = $3, updated_at = now() WHERE id = $4
	`, photoID, imageURL, string(status), id)
	if err != nil {
		return fmt.Errorf("ListingRepository.SetPhoto: %w", err)
	}
	return affected(res)
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	return affected(res)
}

func (r *ListingRepository) Exists(ctx context.Context, listingID string) (bool, error) {
	var count int
	const q = `SELECT COUNT(1) FROM listings WHERE id = $1`
	if err := r.DB.GetContext(ctx, &count, q, listingID); err != nil {
		return false, fmt.Errorf("ListingRepository.Exists: %w", err)
	}
	return count > 0, nil
}

func (r *ListingRepository) AddInterest(ctx context.Context, id, buyerID string) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO listing_interests (listing_id, buyer_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, id, buyerID)
	if err != nil {
		return fmt.Errorf("ListingRepository.AddInterest: %w", err)
	}
	return nil
}

func (r *ListingRepository) RemoveInterest(ctx context.Context, id, buyerID string) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx, `DELETE FROM listing_interests WHERE listing_id = $1 AND buyer_id = $2`, id, buyerID)
	if err != nil {
		return fmt.Errorf("ListingRepository.RemoveInterest: %w", err)
	}
	return nil
}
