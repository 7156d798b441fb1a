package repos

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	applog "avtosotuv/internal/log"
)

// TimeLayout is fixed-width so text comparison in SQL is chronological.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func Stamp(t time.Time) string { return t.UTC().Format(TimeLayout) }

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions adds ulower, a Unicode case fold. SQLite's LOWER only folds ASCII.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("ulower", 1, ulower)
	})
	return registerErr
}

func ulower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// pageOffset returns the row offset of a 1-based page. ok is false when the
// page lies beyond any offset SQLite can address.
func pageOffset(page, limit int) (offset int, ok bool) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// OpenDB opens the SQLite store, applies the schema and seeds the service directory.
func OpenDB(dsn string) (*sqlx.DB, error) {
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", err)
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedServices(db); err != nil {
		return nil, fmt.Errorf("seed services: %w", err)
	}
	return db, nil
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (Telegram identities)
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  telegram_id INTEGER NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  username TEXT,
  is_blocked INTEGER NOT NULL DEFAULT 0,
  is_admin INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at);

-- Car listings
CREATE TABLE IF NOT EXISTS cars(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  brand TEXT NOT NULL,
  year INTEGER NOT NULL,
  price INTEGER NOT NULL CHECK (price >= 0),
  mileage INTEGER NOT NULL CHECK (mileage >= 0),
  city TEXT NOT NULL,
  description TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','deleted')),
  views INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cars_user_status ON cars(user_id, status);
CREATE INDEX IF NOT EXISTS idx_cars_user_created ON cars(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_cars_status_created ON cars(status, created_at);
CREATE INDEX IF NOT EXISTS idx_cars_price ON cars(price);

CREATE TABLE IF NOT EXISTS car_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  car_id INTEGER NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
  image_url TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_car_images_car ON car_images(car_id);

-- Auto-service directory
CREATE TABLE IF NOT EXISTS services(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  type TEXT NOT NULL,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  lat REAL,
  lng REAL,
  phone TEXT,
  description TEXT,
  rating REAL NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_services_city ON services(city);
`
	_, err := db.Exec(schema)
	return err
}

func seedServices(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM services`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.services")

	now := Stamp(time.Now())
	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO services(title,type,address,city,lat,lng,phone,description,rating,created_at) VALUES
	  ('Avto Usta Servis','repair','Chilonzor 9-kvartal','Toshkent',41.2756,69.2034,'+998901234567','Dvigatel va xodovoy qism ta''miri',4.8,?),
	  ('Moy Almashtirish 24','oil','Yunusobod 4-mavze','Toshkent',41.3645,69.2862,'+998935554433','Moy va filtrlarni almashtirish',4.6,?),
	  ('Shina Markazi','tire','Sergeli 7','Toshkent',41.2281,69.2190,'+998977771122','Shinomontaj va balansirovka',4.5,?),
	  ('Clean Car Moyka','wash','Registon ko''chasi 12','Samarqand',39.6542,66.9597,NULL,'Avtomoyka va ximchistka',4.3,?),
	  ('Elektrik Avto','electric','Navoiy shoh ko''chasi 5','Buxoro',NULL,NULL,'+998912223344',NULL,4.1,?)`,
		now, now, now, now, now)
	return tx.Commit()
}
