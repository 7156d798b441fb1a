package services

import (
	"context"
	"fmt"
	"time"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/events"
	"avtosotuv/internal/repos"
)

// AdminPageSize is fixed for the admin console lists.
const AdminPageSize = 20

type AdminService struct {
	Listings *ListingService
	Users    *repos.UserRepo
	Events   events.Publisher
}

// Stats counts today's listings from UTC midnight.
func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	now := s.Listings.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	st, err := s.Listings.Cars.Stats(ctx, repos.Stamp(day))
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// ListCars pages through every listing that is not deleted, seller ids included.
func (s *AdminService) ListCars(ctx context.Context, page int) ([]domain.Car, int, error) {
	return s.Listings.Cars.Query(ctx, domain.CarFilter{
		Scope: domain.ScopeAdmin,
		Sort:  domain.SortNewest,
		Page:  page,
		Limit: AdminPageSize,
	})
}

func (s *AdminService) ListUsers(ctx context.Context, page int) ([]domain.AdminUser, int, error) {
	return s.Users.Page(ctx, page, AdminPageSize)
}

// DeleteCar soft-deletes any listing.
func (s *AdminService) DeleteCar(ctx context.Context, admin domain.Actor, id int64) error {
	car, err := s.Listings.Cars.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.Listings.softDelete(ctx, car, admin.UserID)
}

// ToggleBlock flips the block flag of a user.
func (s *AdminService) ToggleBlock(ctx context.Context, admin domain.Actor, userID int64) (*domain.User, error) {
	if userID == admin.UserID {
		return nil, domain.Invalid("id", "O'zingizni bloklay olmaysiz")
	}
	u, err := s.Users.ToggleBlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.Events, events.UserBlockToggled, events.BlockEvent{
		UserID: u.ID, IsBlocked: u.IsBlocked, By: admin.UserID, At: repos.Stamp(s.Listings.Now()),
	})
	return u, nil
}
