// Package auth verifies Telegram launcher payloads and issues session tokens.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidInitData = errors.New("invalid telegram init data")

// DefaultMaxAge is how long a signed launcher payload stays acceptable.
const DefaultMaxAge = 24 * time.Hour

// Identity is the Telegram user asserted by a verified payload.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Verifier checks Telegram WebApp initData against the bot token.
type Verifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewVerifier(botToken string) *Verifier {
	return &Verifier{secret: WebAppSecret(botToken), maxAge: DefaultMaxAge, now: time.Now}
}

// WithClock overrides the time source.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// WebAppSecret derives the signing key Telegram uses for WebApp payloads.
func WebAppSecret(botToken string) []byte {
	m := hmac.New(sha256.New, []byte("WebAppData"))
	m.Write([]byte(botToken))
	return m.Sum(nil)
}

// Sign returns the hex signature of the data-check-string built from values.
// The hash key, if present, is ignored.
func Sign(secret []byte, values url.Values) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(checkString(values)))
	return hex.EncodeToString(m.Sum(nil))
}

func checkString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	return strings.Join(lines, "\n")
}

func (v *Verifier) Verify(initData string) (*Identity, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInvalidInitData
	}
	want := Sign(v.secret, values)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(hash))) {
		return nil, ErrInvalidInitData
	}

	authDate, _ := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if v.now().Unix()-authDate > int64(v.maxAge/time.Second) {
		return nil, ErrInvalidInitData
	}

	raw := values.Get("user")
	if raw == "" {
		return nil, ErrInvalidInitData
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &id, nil
}
