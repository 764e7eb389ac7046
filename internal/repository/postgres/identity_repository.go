package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

const identityColumns = `id, role, name, username, email, password_hash, phone_number, created_at`

var identitySortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"username":    "username",
	"phoneNumber": "phone_number",
	"createdAt":   "created_at",
}

type IdentityRepository struct {
	DB *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{DB: db}
}

func (r *IdentityRepository) Create(ctx context.Context, role model.Role, ident *model.Identity) error {
	ident.ID = uuid.NewString()
	ident.Role = role
	ident.Email = model.NormalizeHandle(ident.Email)
	ident.Username = model.NormalizeHandle(ident.Username)
	ident.CreatedAt = time.Now().UTC()

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO identities (id, role, name, username, email, password_hash, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, ident.ID, string(role), ident.Name, ident.Username, ident.Email, ident.PasswordHash, ident.PhoneNumber, ident.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("IdentityRepository.Create: %w", err)
	}
	return nil
}

func (r *IdentityRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Identity, error) {
	var ident model.Identity
	err := r.DB.GetContext(ctx, &ident, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("IdentityRepository.get: %w", err)
	}
	return &ident, nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, role model.Role, id string) (*model.Identity, error) {
	return r.get(ctx, `SELECT `+identityColumns+` FROM identities WHERE role = $1 AND id = $2`, string(role), id)
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, role model.Role, email string) (*model.Identity, error) {
	return r.get(ctx, `SELECT `+identityColumns+` FROM identities WHERE role = $1 AND email = $2`,
		string(role), model.NormalizeHandle(email))
}

func (r *IdentityRepository) FindConflict(ctx context.Context, role model.Role, email, username, excludeID string) (*model.Identity, error) {
	email, username = model.NormalizeHandle(email), model.NormalizeHandle(username)
	if email == "" && username == "" {
		return nil, repository.ErrNotFound
	}
	return r.get(ctx, `
		SELECT `+identityColumns+` FROM identities
		WHERE role = $1 AND id <> $2
		  AND (($3 <> '' AND email = $3) OR ($4 <> '' AND username = $4))
		LIMIT 1
	`, string(role), excludeID, email, username)
}

func (r *IdentityRepository) Update(ctx context.Context, role model.Role, ident *model.Identity) error {
	ident.Email = model.NormalizeHandle(ident.Email)
	ident.Username = model.NormalizeHandle(ident.Username)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE identities SET
			name          = $3,
			username      = $4,
			email         = $5,
			password_hash = $6,
			phone_number  = $7,
			updated_at    = now()
		WHERE role = $1 AND id = $2
	`, string(role), ident.ID, ident.Name, ident.Username, ident.Email, ident.PasswordHash, ident.PhoneNumber)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("IdentityRepository.Update: %w", err)
	}
	return affected(res)
}

func (r *IdentityRepository) Delete(ctx context.Context, role model.Role, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM identities WHERE role = $1 AND id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("IdentityRepository.Delete: %w", err)
	}
	return affected(res)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *IdentityRepository) List(ctx context.Context, role model.Role, q repository.IdentityQuery) ([]model.Identity, int64, error) {
	q = q.Normalize()
	where := "WHERE role = $1"
	args := []interface{}{string(role)}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		where += " AND (name ILIKE $2 OR email ILIKE $2 OR username ILIKE $2 OR phone_number ILIKE $2)"
	}

	var total int64
	if err := r.DB.GetContext(ctx, &total, "SELECT COUNT(1) FROM identities "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("IdentityRepository.List count: %w", err)
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	idx := len(args) + 1
	query := fmt.Sprintf("SELECT %s FROM identities %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		identityColumns, where, identitySortColumns[q.SortBy], dir, dir, idx, idx+1)
	args = append(args, q.Limit, q.Offset())

	list := []model.Identity{}
	if err := r.DB.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("IdentityRepository.List: %w", err)
	}
	return list, total, nil
}

func (r *IdentityRepository) Count(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(1) FROM identities WHERE role = $1`, string(role)); err != nil {
		return 0, fmt.Errorf("IdentityRepository.Count: %w", err)
	}
	return n, nil
}
