package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/repos"
)

// EligibilitySource is the read side the gate needs. Implementations are
// expected to read from the same transaction the listing is inserted in.
type EligibilitySource interface {
	IsBlocked(ctx context.Context, userID int64) (bool, error)
	CountActiveByOwner(ctx context.Context, userID int64) (int, error)
	HasCreatedSince(ctx context.Context, userID int64, since string) (bool, error)
	HasActiveDuplicate(ctx context.Context, userID int64, title string, price int64) (bool, error)
}

// Candidate is what the gate knows about a listing before it is validated.
type Candidate struct {
	Title    string
	Price    int64
	HasPrice bool
}

// Gate decides whether a user may post another listing.
type Gate struct {
	MaxActive int
	Cooldown  time.Duration
	Now       func() time.Time
}

// Check runs block, quota, cooldown and duplicate checks in that order and
// stops at the first denial.
func (g Gate) Check(ctx context.Context, src EligibilitySource, userID int64, c Candidate) error {
	blocked, err := src.IsBlocked(ctx, userID)
	if err != nil {
		return fmt.Errorf("gate blocked: %w", err)
	}
	if blocked {
		return domain.Deny(domain.DenyBlocked)
	}

	active, err := src.CountActiveByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("gate quota: %w", err)
	}
	if active >= g.MaxActive {
		return domain.Deny(domain.DenyQuotaExceeded)
	}

	since := repos.Stamp(g.now().Add(-g.Cooldown))
	recent, err := src.HasCreatedSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("gate cooldown: %w", err)
	}
	if recent {
		return domain.Deny(domain.DenyCooldownActive)
	}

	title := strings.TrimSpace(c.Title)
	if title == "" || !c.HasPrice {
		return nil
	}
	dup, err := src.HasActiveDuplicate(ctx, userID, title, c.Price)
	if err != nil {
		return fmt.Errorf("gate duplicate: %w", err)
	}
	if dup {
		return domain.Deny(domain.DenyDuplicate)
	}
	return nil
}

func (g Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// gateSource joins the user and car repos bound to one transaction.
type gateSource struct {
	*repos.CarRepo
	users *repos.UserRepo
}

func (s gateSource) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	return s.users.IsBlocked(ctx, userID)
}
