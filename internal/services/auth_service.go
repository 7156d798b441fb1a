package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"avtosotuv/internal/auth"
	"avtosotuv/internal/domain"
	"avtosotuv/internal/repos"
)

// DevInitData is accepted in development in place of a signed payload.
const DevInitData = "dev_mode"

var devIdentity = auth.Identity{ID: 123456789, FirstName: "Dev", Username: "developer"}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService struct {
	Users    *repos.UserRepo
	Verifier *auth.Verifier
	Tokens   *auth.Issuer
	AdminIDs []int64
	DevMode  bool
	Now      func() time.Time
}

// Login verifies the launcher payload, creates or refreshes the user and
// issues a session token.
func (s *AuthService) Login(ctx context.Context, initData string) (*LoginResult, error) {
	initData = strings.TrimSpace(initData)
	if initData == "" {
		return nil, domain.Invalid("initData", "initData taqdim etilmagan")
	}

	var id *auth.Identity
	if s.DevMode && initData == DevInitData {
		dev := devIdentity
		id = &dev
	} else {
		var err error
		if id, err = s.Verifier.Verify(initData); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
	}

	var username *string
	if id.Username != "" {
		username = &id.Username
	}
	firstName := id.FirstName
	if strings.TrimSpace(firstName) == "" {
		firstName = "User"
	}
	u, err := s.Users.Upsert(ctx, id.ID, firstName, username, slices.Contains(s.AdminIDs, id.ID), repos.Stamp(s.now()))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if u.IsBlocked {
		return nil, domain.ErrBlocked
	}

	tok, err := s.Tokens.Issue(u.ID, u.TelegramID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}

// Authenticate resolves a bearer token to the current user row. Block status
// and admin rights come from the store, not from the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	claims, err := s.Tokens.Validate(token)
	if err != nil {
		return nil, nil, domain.ErrUnauthorized
	}
	u, err := s.Users.ByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if u.IsBlocked {
		return nil, nil, domain.ErrBlocked
	}
	return u, claims, nil
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
