package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"avtosotuv/internal/domain"
)

type ServiceRepo struct{ q sqlx.ExtContext }

func NewServiceRepo(q sqlx.ExtContext) *ServiceRepo { return &ServiceRepo{q: q} }

// List filters the directory by exact type and city and a title substring.
func (r *ServiceRepo) List(ctx context.Context, typ, city, search string) ([]domain.Service, error) {
	q := `SELECT id, title, type, address, city, lat, lng, phone, description, rating, created_at FROM services WHERE 1=1`
	args := []any{}
	if typ != "" {
		q += ` AND type = ?`
		args = append(args, typ)
	}
	if city != "" {
		q += ` AND city = ?`
		args = append(args, city)
	}
	if search != "" {
		q += ` AND ulower(title) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	q += ` ORDER BY rating DESC, id ASC`

	out := []domain.Service{}
	if err := sqlx.SelectContext(ctx, r.q, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServiceRepo) Get(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	err := sqlx.GetContext(ctx, r.q, &s, `
		SELECT id, title, type, address, city, lat, lng, phone, description, rating, created_at
		FROM services WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Purge removes the whole directory. Maintenance only.
func (r *ServiceRepo) Purge(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM services`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
