package domain

type User struct {
	ID         int64   `db:"id" json:"id"`
	TelegramID int64   `db:"telegram_id" json:"telegramId,string"`
	FirstName  string  `db:"first_name" json:"firstName"`
	Username   *string `db:"username" json:"username"`
	IsBlocked  bool    `db:"is_blocked" json:"isBlocked"`
	IsAdmin    bool    `db:"is_admin" json:"isAdmin"`
	CreatedAt  string  `db:"created_at" json:"createdAt"`
}

// AdminUser is a row of the admin users page.
type AdminUser struct {
	User
	CarsCount int `db:"cars_count" json:"carsCount"`
}

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID  int64
	IsAdmin bool
}
