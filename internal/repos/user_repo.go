package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"avtosotuv/internal/domain"
)

const userColumns = `id, telegram_id, first_name, username, is_blocked, is_admin, created_at`

type UserRepo struct{ q sqlx.ExtContext }

func NewUserRepo(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

// With returns a repo bound to q, typically a transaction.
func (r *UserRepo) With(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userColumns+` FROM users WHERE telegram_id=?`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the user on first login and refreshes the display names
// afterwards. A nil username keeps the stored one. Admin is only ever granted here.
func (r *UserRepo) Upsert(ctx context.Context, telegramID int64, firstName string, username *string, admin bool, createdAt string) (*domain.User, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users(telegram_id, first_name, username, is_admin, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
		  first_name = excluded.first_name,
		  username   = COALESCE(excluded.username, users.username),
		  is_admin   = MAX(users.is_admin, excluded.is_admin)
	`, telegramID, firstName, username, admin, createdAt)
	if err != nil {
		return nil, err
	}
	return r.ByTelegramID(ctx, telegramID)
}

func (r *UserRepo) IsBlocked(ctx context.Context, id int64) (bool, error) {
	var blocked bool
	err := sqlx.GetContext(ctx, r.q, &blocked, `SELECT is_blocked FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	return blocked, err
}

// ToggleBlocked flips is_blocked and returns the updated user.
func (r *UserRepo) ToggleBlocked(ctx context.Context, id int64) (*domain.User, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE users SET is_blocked = 1 - is_blocked WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.ByID(ctx, id)
}

// Page lists users newest first with their listing counts. page is 1-based.
func (r *UserRepo) Page(ctx context.Context, page, limit int) ([]domain.AdminUser, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}
	out := []domain.AdminUser{}
	offset, ok := pageOffset(page, limit)
	if !ok {
		return out, total, nil
	}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT u.id, u.telegram_id, u.first_name, u.username, u.is_blocked, u.is_admin, u.created_at,
		       (SELECT COUNT(*) FROM cars c WHERE c.user_id = u.id) AS cars_count
		FROM users u
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
