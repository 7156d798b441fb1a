package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosotuv/internal/http/handlers"
)

func TestLoginIsThrottled(t *testing.T) {
	ta := newTestApp(t)

	for i := 0; i < 20; i++ {
		status, _ := ta.do(t, "POST", "/api/auth/login", "", map[string]string{"initData": "hash=bad"})
		require.Equal(t, http.StatusUnauthorized, status, "attempt %d", i)
	}
	status, body := ta.do(t, "POST", "/api/auth/login", "", map[string]string{"initData": "hash=bad"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, ta.logs.FilterMessage("rate.login.hit").All())
}

func TestAPIRateLimit(t *testing.T) {
	ta := newTestApp(t)
	ta.deps.RateLimitMax = 3
	ta.app = handlers.NewApp(ta.deps)

	for i := 0; i < 3; i++ {
		status, _ := ta.do(t, "GET", "/api/health", "", nil)
		require.Equal(t, http.StatusOK, status, "request %d", i)
	}
	status, _ := ta.do(t, "GET", "/api/cars", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotEmpty(t, ta.logs.FilterMessage("rate.api.hit").All())
}

func TestAccessDeniedIsLogged(t *testing.T) {
	ta := newTestApp(t)
	userTok, _ := ta.login(t, 42)

	status, _ := ta.do(t, "GET", "/api/cars/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = ta.do(t, "GET", "/api/cars/my", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Len(t, ta.logs.FilterMessage("access.denied.user").All(), 2)

	status, _ = ta.do(t, "GET", "/api/admin/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, status)
	denied := ta.logs.FilterMessage("access.denied.admin").All()
	require.Len(t, denied, 1)
	assert.Equal(t, "not_admin", denied[0].ContextMap()["reason"])
}

func TestOversizedBodyRejected(t *testing.T) {
	ta := newTestApp(t)
	tok, _ := ta.login(t, 42)

	req := httptest.NewRequest("POST", "/api/cars", bytes.NewReader(bytes.Repeat([]byte("A"), (30<<20)+10)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := ta.app.Test(req, -1)
	// fasthttp may drop the connection instead of answering
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large"), err.Error())
		return
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
