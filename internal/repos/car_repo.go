package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/validate"
)

const carColumns = `
    c.id, c.user_id, c.title, c.brand, c.year, c.price, c.mileage, c.city, c.description,
    c.status, c.views, c.created_at,
    u.first_name AS seller_first_name, u.username AS seller_username, u.telegram_id AS seller_telegram_id`

type carRow struct {
	domain.Car
	SellerFirstName  string  `db:"seller_first_name"`
	SellerUsername   *string `db:"seller_username"`
	SellerTelegramID int64   `db:"seller_telegram_id"`
}

func (r carRow) toCar(withTelegramID bool) domain.Car {
	c := r.Car
	c.User = &domain.Seller{FirstName: r.SellerFirstName, Username: r.SellerUsername}
	if withTelegramID {
		c.User.TelegramID = r.SellerTelegramID
	}
	c.Images = []domain.CarImage{}
	return c
}

type CarRepo struct{ q sqlx.ExtContext }

func NewCarRepo(q sqlx.ExtContext) *CarRepo { return &CarRepo{q: q} }

// With returns a repo bound to q, typically a transaction.
func (r *CarRepo) With(q sqlx.ExtContext) *CarRepo { return &CarRepo{q: q} }

// Create inserts an active listing with its images.
func (r *CarRepo) Create(ctx context.Context, userID int64, in domain.NewCar, createdAt string) (*domain.Car, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO cars(user_id, title, brand, year, price, mileage, city, description, status, views, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, 'active', 0, ?)
	`, userID, in.Title, in.Brand, in.Year, in.Price, in.Mileage, in.City, in.Description, createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	for _, u := range in.ImageURLs {
		if _, err := r.q.ExecContext(ctx, `INSERT INTO car_images(car_id, image_url) VALUES(?, ?)`, id, u); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

// Get returns a listing in any status with all of its images.
func (r *CarRepo) Get(ctx context.Context, id int64) (*domain.Car, error) {
	var row carRow
	err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+carColumns+`
		FROM cars c JOIN users u ON u.id = c.user_id
		WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cars := []domain.Car{row.toCar(false)}
	if err := r.attachImages(ctx, cars, false); err != nil {
		return nil, err
	}
	return &cars[0], nil
}

// Query returns one page of listings matching f plus the total match count.
// Ties on the sort key are broken by id so paging is stable.
func (r *CarRepo) Query(ctx context.Context, f domain.CarFilter) ([]domain.Car, int, error) {
	where := []string{}
	args := []any{}
	switch f.Scope {
	case domain.ScopeAdmin:
		where = append(where, `c.status != 'deleted'`)
	default:
		where = append(where, `c.status = 'active'`)
	}
	if f.Brand != "" {
		where = append(where, `c.brand = ?`)
		args = append(args, f.Brand)
	}
	if f.City != "" {
		where = append(where, `c.city = ?`)
		args = append(args, f.City)
	}
	if f.YearFrom > 0 {
		where = append(where, `c.year >= ?`)
		args = append(args, f.YearFrom)
	}
	if f.YearTo > 0 {
		where = append(where, `c.year <= ?`)
		args = append(args, f.YearTo)
	}
	if f.PriceFrom > 0 {
		where = append(where, `c.price >= ?`)
		args = append(args, f.PriceFrom)
	}
	if f.PriceTo > 0 {
		where = append(where, `c.price <= ?`)
		args = append(args, f.PriceTo)
	}
	if f.Search != "" {
		where = append(where, `ulower(c.title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM cars c WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	order := `c.created_at DESC, c.id DESC`
	switch f.Sort {
	case domain.SortCheapest:
		order = `c.price ASC, c.id ASC`
	case domain.SortExpensive:
		order = `c.price DESC, c.id ASC`
	}
	limit := validate.Limit(f.Limit)
	offset, ok := pageOffset(f.Page, limit)
	if !ok {
		return []domain.Car{}, total, nil
	}

	var rows []carRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT `+carColumns+`
		FROM cars c JOIN users u ON u.id = c.user_id
		WHERE `+cond+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	cars := make([]domain.Car, 0, len(rows))
	for _, row := range rows {
		cars = append(cars, row.toCar(f.Scope == domain.ScopeAdmin))
	}
	if err := r.attachImages(ctx, cars, true); err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// ListByOwner returns every listing of a user, newest first, with a cover image.
func (r *CarRepo) ListByOwner(ctx context.Context, userID int64) ([]domain.Car, error) {
	var rows []carRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT `+carColumns+`
		FROM cars c JOIN users u ON u.id = c.user_id
		WHERE c.user_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	cars := make([]domain.Car, 0, len(rows))
	for _, row := range rows {
		c := row.toCar(false)
		c.User = nil
		cars = append(cars, c)
	}
	if err := r.attachImages(ctx, cars, true); err != nil {
		return nil, err
	}
	return cars, nil
}

// SetStatus moves a listing to next if the lifecycle allows it.
func (r *CarRepo) SetStatus(ctx context.Context, id int64, next domain.Status) error {
	var cur domain.Status
	err := sqlx.GetContext(ctx, r.q, &cur, `SELECT status FROM cars WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !cur.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}
	if cur == next {
		return nil
	}
	_, err = r.q.ExecContext(ctx, `UPDATE cars SET status=? WHERE id=? AND status=?`, next, id, cur)
	return err
}

func (r *CarRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE cars SET views = views + 1 WHERE id=?`, id)
	return err
}

func (r *CarRepo) CountActiveByOwner(ctx context.Context, userID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM cars WHERE user_id=? AND status='active'`, userID)
	return n, err
}

// HasCreatedSince reports whether the user created any listing, in any status, at or after since.
func (r *CarRepo) HasCreatedSince(ctx context.Context, userID int64, since string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT COUNT(*) FROM (
		  SELECT id FROM cars WHERE user_id=? AND created_at >= ? ORDER BY created_at DESC LIMIT 1
		)`, userID, since)
	return n > 0, err
}

func (r *CarRepo) HasActiveDuplicate(ctx context.Context, userID int64, title string, price int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT COUNT(*) FROM cars WHERE user_id=? AND status='active' AND title=? AND price=?`,
		userID, title, price)
	return n > 0, err
}

// Stats aggregates the admin dashboard counters. dayStart bounds todayListings.
func (r *CarRepo) Stats(ctx context.Context, dayStart string) (domain.Stats, error) {
	var s domain.Stats
	err := sqlx.GetContext(ctx, r.q, &s, `
		SELECT
		  (SELECT COUNT(*) FROM users)                              AS total_users,
		  (SELECT COUNT(*) FROM cars WHERE status != 'deleted')     AS total_listings,
		  (SELECT COUNT(*) FROM cars WHERE status = 'active')       AS active_listings,
		  (SELECT COUNT(*) FROM cars WHERE created_at >= ?)         AS today_listings,
		  (SELECT COALESCE(SUM(views), 0) FROM cars)                AS total_views
	`, dayStart)
	return s, err
}

// Purge physically removes every listing and image. Maintenance only.
func (r *CarRepo) Purge(ctx context.Context) (images, cars int64, err error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM car_images`)
	if err != nil {
		return 0, 0, err
	}
	images, _ = res.RowsAffected()
	res, err = r.q.ExecContext(ctx, `DELETE FROM cars`)
	if err != nil {
		return images, 0, err
	}
	cars, _ = res.RowsAffected()
	return images, cars, nil
}

// attachImages loads images for cars in one query; firstOnly keeps the cover image.
func (r *CarRepo) attachImages(ctx context.Context, cars []domain.Car, firstOnly bool) error {
	if len(cars) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(cars))
	idx := make(map[int64]int, len(cars))
	for i := range cars {
		ids = append(ids, cars[i].ID)
		idx[cars[i].ID] = i
		cars[i].Images = []domain.CarImage{}
	}
	query, args, err := sqlx.In(`SELECT id, car_id, image_url FROM car_images WHERE car_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	var imgs []domain.CarImage
	if err := sqlx.SelectContext(ctx, r.q, &imgs, r.q.Rebind(query), args...); err != nil {
		return err
	}
	for _, img := range imgs {
		i := idx[img.CarID]
		if firstOnly && len(cars[i].Images) > 0 {
			continue
		}
		cars[i].Images = append(cars[i].Images, img)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
