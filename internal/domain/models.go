package domain

// Status is the lifecycle state of a car listing.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// CanTransitionTo reports whether a listing in s may move to next.
// deleted is terminal; re-deleting is an allowed no-op.
func (s Status) CanTransitionTo(next Status) bool {
	switch {
	case next == StatusDeleted:
		return s == StatusActive || s == StatusDeleted
	case next == StatusActive:
		return s == StatusActive
	}
	return false
}

type Car struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"userId"`
	Title       string `db:"title" json:"title"`
	Brand       string `db:"brand" json:"brand"`
	Year        int    `db:"year" json:"year"`
	Price       int64  `db:"price" json:"price"` // so'm
	Mileage     int    `db:"mileage" json:"mileage"`
	City        string `db:"city" json:"city"`
	Description string `db:"description" json:"description"`
	Status      Status `db:"status" json:"status"`
	Views       int    `db:"views" json:"views"`
	CreatedAt   string `db:"created_at" json:"createdAt"`

	Images []CarImage `db:"-" json:"images"`
	User   *Seller    `db:"-" json:"user,omitempty"`
}

type CarImage struct {
	ID       int64  `db:"id" json:"id"`
	CarID    int64  `db:"car_id" json:"carId"`
	ImageURL string `db:"image_url" json:"imageUrl"`
}

// Seller is the public summary of a listing owner.
type Seller struct {
	FirstName  string  `json:"firstName"`
	Username   *string `json:"username"`
	TelegramID int64   `json:"telegramId,string,omitempty"`
}

// Service is an entry of the read-only auto-service directory.
type Service struct {
	ID          int64    `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	Type        string   `db:"type" json:"type"`
	Address     string   `db:"address" json:"address"`
	City        string   `db:"city" json:"city"`
	Lat         *float64 `db:"lat" json:"lat"`
	Lng         *float64 `db:"lng" json:"lng"`
	Phone       *string  `db:"phone" json:"phone"`
	Description *string  `db:"description" json:"description"`
	Rating      float64  `db:"rating" json:"rating"`
	CreatedAt   string   `db:"created_at" json:"createdAt"`
}

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortCheapest  SortOrder = "cheapest"
	SortExpensive SortOrder = "expensive"
)

// Scope selects which statuses a listing query may return.
type Scope int

const (
	ScopePublic Scope = iota // active only
	ScopeAdmin               // everything except deleted
)

// CarFilter narrows a listing query. Zero values mean "unset".
type CarFilter struct {
	Brand     string
	City      string
	YearFrom  int
	YearTo    int
	PriceFrom int64
	PriceTo   int64
	Search    string
	Sort      SortOrder
	Scope     Scope
	Page      int
	Limit     int
}

// NewCar is the validated input for a listing creation.
type NewCar struct {
	Title       string
	Brand       string
	Year        int
	Price       int64
	Mileage     int
	City        string
	Description string
	ImageURLs   []string
}

type Stats struct {
	TotalUsers     int   `db:"total_users" json:"totalUsers"`
	TotalListings  int   `db:"total_listings" json:"totalListings"`
	ActiveListings int   `db:"active_listings" json:"activeListings"`
	TodayListings  int   `db:"today_listings" json:"todayListings"`
	TotalViews     int64 `db:"total_views" json:"totalViews"`
}
