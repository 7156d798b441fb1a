package auth

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:TEST-token"

func signedInitData(t *testing.T, authDate time.Time, user string) url.Values {
	t.Helper()
	v := url.Values{}
	v.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	v.Set("user", user)
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	v.Set("hash", Sign(WebAppSecret(botToken), v))
	return v
}

func TestVerifyAcceptsFreshPayload(t *testing.T) {
	now := time.Now()
	v := signedInitData(t, now.Add(-time.Hour), `{"id":5000000000123,"first_name":"Aziz","username":"aziz_uz"}`)

	id, err := NewVerifier(botToken).Verify(v.Encode())
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000123), id.ID)
	assert.Equal(t, "Aziz", id.FirstName)
	assert.Equal(t, "aziz_uz", id.Username)
}

func TestVerifyRejectsTamperedField(t *testing.T) {
	v := signedInitData(t, time.Now(), `{"id":42,"first_name":"Aziz"}`)
	v.Set("user", `{"id":43,"first_name":"Aziz"}`)

	_, err := NewVerifier(botToken).Verify(v.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	v := signedInitData(t, time.Now(), `{"id":42,"first_name":"Aziz"}`)
	_, err := NewVerifier("other:token").Verify(v.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyRejectsStalePayload(t *testing.T) {
	now := time.Now()
	v := signedInitData(t, now.Add(-25*time.Hour), `{"id":42,"first_name":"Aziz"}`)

	_, err := NewVerifier(botToken).WithClock(func() time.Time { return now }).Verify(v.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyRejectsMissingParts(t *testing.T) {
	ver := NewVerifier(botToken)

	v := signedInitData(t, time.Now(), `{"id":42,"first_name":"Aziz"}`)
	v.Del("hash")
	_, err := ver.Verify(v.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)

	noUser := url.Values{}
	noUser.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	noUser.Set("hash", Sign(WebAppSecret(botToken), noUser))
	_, err = ver.Verify(noUser.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)

	_, err = ver.Verify("%%%")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	iss := NewIssuer("s3cret").WithClock(func() time.Time { return now })
	tok, err := iss.Issue(7, 5000000000123, true)
	require.NoError(t, err)

	c, err := iss.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, int64(5000000000123), c.TelegramID)
	assert.True(t, c.IsAdmin)
	require.NotNil(t, c.ExpiresAt)
	assert.Equal(t, now.Add(TokenTTL).Unix(), c.ExpiresAt.Unix())
}

func TestTokenCarriesOnlySessionClaims(t *testing.T) {
	tok, err := NewIssuer("s3cret").Issue(7, 5000000000123, false)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"userId", "telegramId", "isAdmin", "exp"}, keys)
}

func TestTokenRejectsExpiredForeignAndMalformed(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	old, err := NewIssuer("s3cret").WithClock(func() time.Time { return past }).Issue(7, 1, false)
	require.NoError(t, err)
	_, err = NewIssuer("s3cret").Validate(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewIssuer("other").Issue(7, 1, false)
	require.NoError(t, err)
	_, err = NewIssuer("s3cret").Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("s3cret").Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewIssuer("s3cret").Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
