package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/fleetservis/backend/src/config"
	"github.com/username/fleetservis/backend/src/logger"
)

const csrfCookieName = "_fleetservis_csrf"

// GetCSRFToken issues a double-submit CSRF token. The cookie carries the
// token plus an HMAC signature under the configured auth key; mutating
// requests must echo the bare token back in the X-CSRF-Token header.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateRandomToken()
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		http.Error(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token + "." + signCSRFToken(token),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // behind TLS-terminating proxy in production
		MaxAge:   3600,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-CSRF-Token", token)
	json.NewEncoder(w).Encode(map[string]string{"csrfToken": token})
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func signCSRFToken(token string) string {
	mac := hmac.New(sha256.New, config.Cfg.CSRFAuthKey)
	mac.Write([]byte(token))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// CSRFMiddleware validates the double-submit token on every mutating request:
// the cookie signature must verify and the header token must match the signed
// cookie token. Safe methods pass through.
func CSRFMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken != "" && err == nil {
				if token, sig, ok := strings.Cut(cookie.Value, "."); ok &&
					token == headerToken &&
					hmac.Equal([]byte(sig), []byte(signCSRFToken(token))) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.L.Warn("CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"hasHeaderToken", headerToken != "",
				"hasCookie", err == nil,
			)
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
