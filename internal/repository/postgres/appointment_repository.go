package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

const appointmentColumns = `id, date, place_to_visit, message, seller_id, buyer_id, listing_id, status, created_at`

type AppointmentRepository struct {
	DB *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES (:id, :date, :place_to_visit, :message, :seller_id, :buyer_id, :listing_id, :status, :created_at)
	`, a)
	if err != nil {
		return fmt.Errorf("AppointmentRepository.Create: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	err := r.DB.GetContext(ctx, &a, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("AppointmentRepository.GetByID: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Find(ctx context.Context, f repository.AppointmentFilter) ([]model.Appointment, error) {
	if f.ListingIDs != nil && len(f.ListingIDs) == 0 {
		return []model.Appointment{}, nil
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	if f.BuyerID != "" {
		query += " AND buyer_id = ?"
		args = append(args, f.BuyerID)
	}
	if f.SellerID != "" {
		query += " AND seller_id = ?"
		args = append(args, f.SellerID)
	}
	if f.ListingIDs != nil {
		query += " AND listing_id IN (?)"
		args = append(args, f.ListingIDs)
	}
	query += " ORDER BY created_at DESC, id DESC"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("AppointmentRepository.Find: %w", err)
	}
	list := []model.Appointment{}
	if err := r.DB.SelectContext(ctx, &list, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("AppointmentRepository.Find: %w", err)
	}
	return list, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("AppointmentRepository.UpdateStatus: %w", err)
	}
	return affected(res)
}

func (r *AppointmentRepository) DeletePending(ctx context.Context, id, buyerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM appointments WHERE id = $1 AND buyer_id = $2 AND status = $3
	`, id, buyerID, string(model.AppointmentPending))
	if err != nil {
		return false, fmt.Errorf("AppointmentRepository.DeletePending: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
