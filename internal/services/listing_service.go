package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/events"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/repos"
	"avtosotuv/internal/validate"
)

const (
	maxTitle       = 120
	maxName        = 60
	maxDescription = 2000
	minYear        = 1950
)

// CreateCarInput is the request body of POST /cars.
type CreateCarInput struct {
	Title       string           `json:"title"`
	Brand       string           `json:"brand"`
	Year        validate.FlexInt `json:"year"`
	Price       validate.FlexInt `json:"price"`
	Mileage     validate.FlexInt `json:"mileage"`
	City        string           `json:"city"`
	Description string           `json:"description"`
	ImageURLs   []string         `json:"imageUrls"`
}

func (in CreateCarInput) candidate() Candidate {
	return Candidate{Title: in.Title, Price: in.Price.Value, HasPrice: in.Price.Set}
}

// Validate trims free text and checks every field. thisYear bounds the model year.
func (in CreateCarInput) Validate(maxImages, thisYear int) (domain.NewCar, error) {
	var out domain.NewCar
	var ok bool
	if out.Title, ok = validate.Text(in.Title, maxTitle); !ok {
		return out, domain.Invalid("title", "Sarlavha kiritilmagan")
	}
	if out.Brand, ok = validate.Text(in.Brand, maxName); !ok {
		return out, domain.Invalid("brand", "Marka kiritilmagan")
	}
	if out.City, ok = validate.Text(in.City, maxName); !ok {
		return out, domain.Invalid("city", "Shahar kiritilmagan")
	}
	if out.Description, ok = validate.Text(in.Description, maxDescription); !ok {
		return out, domain.Invalid("description", "Tavsif kiritilmagan")
	}
	if !in.Year.Set || in.Year.Value < minYear || in.Year.Value > int64(thisYear+1) {
		return out, domain.Invalid("year", "Yil noto'g'ri")
	}
	if !in.Price.Set || in.Price.Value <= 0 {
		return out, domain.Invalid("price", "Narx noto'g'ri")
	}
	if !in.Mileage.Set || in.Mileage.Value < 0 || in.Mileage.Value > 10_000_000 {
		return out, domain.Invalid("mileage", "Yurgan masofa noto'g'ri")
	}
	if out.ImageURLs, ok = validate.ImageURLs(in.ImageURLs, maxImages); !ok {
		return out, domain.Invalid("imageUrls", fmt.Sprintf("1 tadan %d tagacha rasm yuklang", maxImages))
	}
	out.Year, out.Price, out.Mileage = int(in.Year.Value), in.Price.Value, int(in.Mileage.Value)
	return out, nil
}

type ListingService struct {
	DB        *sqlx.DB
	Cars      *repos.CarRepo
	Users     *repos.UserRepo
	Gate      Gate
	Events    events.Publisher
	MaxImages int
	Now       func() time.Time
}

func NewListingService(db *sqlx.DB, gate Gate, pub events.Publisher, maxImages int) *ListingService {
	return &ListingService{
		DB:        db,
		Cars:      repos.NewCarRepo(db),
		Users:     repos.NewUserRepo(db),
		Gate:      gate,
		Events:    pub,
		MaxImages: maxImages,
		Now:       time.Now,
	}
}

// Create runs the eligibility gate and the insert in one transaction.
func (s *ListingService) Create(ctx context.Context, actor domain.Actor, in CreateCarInput) (*domain.Car, error) {
	now := s.Now()
	var car *domain.Car
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cars := s.Cars.With(tx)
		if err := s.Gate.Check(ctx, gateSource{CarRepo: cars, users: s.Users.With(tx)}, actor.UserID, in.candidate()); err != nil {
			return err
		}
		nc, err := in.Validate(s.MaxImages, now.Year())
		if err != nil {
			return err
		}
		car, err = cars.Create(ctx, actor.UserID, nc, repos.Stamp(now))
		if err != nil {
			return fmt.Errorf("insert car: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	emit(ctx, s.Events, events.CarCreated, events.CarEvent{
		CarID: car.ID, UserID: car.UserID, Title: car.Title, Price: car.Price, At: car.CreatedAt,
	})
	return car, nil
}

// List returns a public page of active listings.
func (s *ListingService) List(ctx context.Context, f domain.CarFilter) ([]domain.Car, int, error) {
	f.Scope = domain.ScopePublic
	f.Search = strings.TrimSpace(f.Search)
	return s.Cars.Query(ctx, f)
}

// Mine returns every listing of the actor, deleted ones included.
func (s *ListingService) Mine(ctx context.Context, actor domain.Actor) ([]domain.Car, error) {
	return s.Cars.ListByOwner(ctx, actor.UserID)
}

// Get returns a listing and records the view. Deleted listings are only
// visible to admins and never accrue views.
func (s *ListingService) Get(ctx context.Context, id int64, viewer *domain.Actor) (*domain.Car, error) {
	car, err := s.Cars.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.Status != domain.StatusActive {
		if viewer != nil && viewer.IsAdmin {
			return car, nil
		}
		return nil, domain.ErrNotFound
	}
	if err := s.Cars.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	car.Views++
	return car, nil
}

// Delete soft-deletes a listing owned by the actor, or any listing for an admin.
func (s *ListingService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	car, err := s.Cars.Get(ctx, id)
	if err != nil {
		return err
	}
	if car.UserID != actor.UserID && !actor.IsAdmin {
		return domain.ErrForbidden
	}
	return s.softDelete(ctx, car, actor.UserID)
}

func (s *ListingService) softDelete(ctx context.Context, car *domain.Car, by int64) error {
	if err := s.Cars.SetStatus(ctx, car.ID, domain.StatusDeleted); err != nil {
		return err
	}
	if car.Status == domain.StatusActive {
		emit(ctx, s.Events, events.CarDeleted, events.CarEvent{
			CarID: car.ID, UserID: car.UserID, By: by, At: repos.Stamp(s.Now()),
		})
	}
	return nil
}

// emit publishes an event and only logs a failure.
func emit(ctx context.Context, pub events.Publisher, subject string, v any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, v); err != nil {
		applog.L().Warn("events.publish.fail", zap.String("subject", subject), zap.Error(err))
	}
}
