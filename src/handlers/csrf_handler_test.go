package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCSRFToken(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	GetCSRFToken(rec, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.CSRFToken)
	return cookies[0], body.CSRFToken
}

func csrfProtectedOK() http.Handler {
	return CSRFMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddleware_ValidTokenPasses(t *testing.T) {
	cookie, token := issueCSRFToken(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", token)
	rec := httptest.NewRecorder()

	csrfProtectedOK().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddleware_SafeMethodsPass(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	csrfProtectedOK().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddleware_MissingHeaderRejected(t *testing.T) {
	cookie, _ := issueCSRFToken(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	csrfProtectedOK().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddleware_MismatchedTokenRejected(t *testing.T) {
	cookie, _ := issueCSRFToken(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", "some-other-token")
	rec := httptest.NewRecorder()

	csrfProtectedOK().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddleware_TamperedSignatureRejected(t *testing.T) {
	cookie, token := issueCSRFToken(t)
	cookie.Value = token + ".forged-signature"

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", token)
	rec := httptest.NewRecorder()

	csrfProtectedOK().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
