package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"realestate-service/internal/repository"
)

// PhotoRepository stores photo bytes in the listing_photos table.
type PhotoRepository struct {
	DB *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

func (r *PhotoRepository) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO listing_photos (id, filename, data, created_at) VALUES ($1, $2, $3, $4)
	`, id, filename, data, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	return id, nil
}

func (r *PhotoRepository) Download(ctx context.Context, photoID string) ([]byte, error) {
	var data []byte
	err := r.DB.GetContext(ctx, &data, `SELECT data FROM listing_photos WHERE id = $1`, photoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("PhotoRepository.Download: %w", err)
	}
	return data, nil
}
