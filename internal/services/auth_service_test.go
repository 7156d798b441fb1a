package services_test

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosotuv/internal/auth"
	"avtosotuv/internal/domain"
	"avtosotuv/internal/repos"
	"avtosotuv/internal/services"
)

const botToken = "123456:TEST-token"

func initData(user string, at time.Time) string {
	v := url.Values{}
	v.Set("user", user)
	v.Set("auth_date", strconv.FormatInt(at.Unix(), 10))
	v.Set("hash", auth.Sign(auth.WebAppSecret(botToken), v))
	return v.Encode()
}

func newAuth(t *testing.T, f *fixture, admins ...int64) *services.AuthService {
	t.Helper()
	return &services.AuthService{
		Users:    f.users,
		Verifier: auth.NewVerifier(botToken),
		Tokens:   auth.NewIssuer("s3cret"),
		AdminIDs: admins,
		Now:      f.clock.now,
	}
}

func TestLoginCreatesUserAndIssuesToken(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(t, f, 5000000000123)
	ctx := context.Background()

	res, err := svc.Login(ctx, initData(`{"id":5000000000123,"first_name":"Aziz","username":"aziz_uz"}`, time.Now()))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(5000000000123), res.User.TelegramID)
	assert.True(t, res.User.IsAdmin)

	u, claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)

	// second login refreshes the name and keeps the row
	res2, err := svc.Login(ctx, initData(`{"id":5000000000123,"first_name":"Azizbek"}`, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, res2.User.ID)
	assert.Equal(t, "Azizbek", res2.User.FirstName)
	require.NotNil(t, res2.User.Username)
	assert.Equal(t, "aziz_uz", *res2.User.Username)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(t, f)
	ctx := context.Background()

	_, err := svc.Login(ctx, "  ")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	tampered, err := url.ParseQuery(initData(`{"id":42,"first_name":"Aziz"}`, time.Now()))
	require.NoError(t, err)
	tampered.Set("user", `{"id":43,"first_name":"Aziz"}`)
	_, err = svc.Login(ctx, tampered.Encode())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, services.DevInitData)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "dev bypass is off outside development")
}

func TestLoginDevBypass(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(t, f)
	svc.DevMode = true

	res, err := svc.Login(context.Background(), services.DevInitData)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), res.User.TelegramID)
	assert.Equal(t, "Dev", res.User.FirstName)
}

func TestBlockTakesEffectOnNextRequest(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(t, f)
	ctx := context.Background()

	res, err := svc.Login(ctx, initData(`{"id":42,"first_name":"Aziz"}`, time.Now()))
	require.NoError(t, err)

	_, err = f.users.ToggleBlocked(ctx, res.User.ID)
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, domain.ErrBlocked)

	_, err = svc.Login(ctx, initData(`{"id":42,"first_name":"Aziz"}`, time.Now()))
	assert.ErrorIs(t, err, domain.ErrBlocked)

	_, _, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(t, f)
	tok, err := svc.Tokens.Issue(999, 1, false)
	require.NoError(t, err)
	_, _, err = svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginStampsCreatedAt(t *testing.T) {
	f := newFixture(t)
	res, err := newAuth(t, f).Login(context.Background(), initData(`{"id":42,"first_name":"Aziz"}`, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, repos.Stamp(f.clock.now()), res.User.CreatedAt)
}
