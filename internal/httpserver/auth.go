package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/store"
)

const (
	cookieName  = "legendary_lines_game"
	tokenIssuer = "legendary-lines"
)

var errInvalidToken = errors.New("invalid token")

type ctxMachineKey struct{}

// signToken issues a token that lets its holder play game id.
func (s *Server) signToken(id string) (string, time.Time, error) {
	now := s.opts.Clock()
	exp := now.Add(s.opts.TokenTTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(s.opts.JWTSecret)
	return ss, exp, err
}

// parseToken returns the game id a token was issued for.
func (s *Server) parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.opts.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.opts.Clock),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

func (s *Server) setGameCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireGame resolves the caller's token to a live machine.
func (s *Server) requireGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerOrCookie(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := s.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		m, err := s.games.get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("session", id).Msg("load session")
			writeError(w, http.StatusInternalServerError, "load_failed")
			return
		}
		ctx := context.WithValue(r.Context(), ctxMachineKey{}, m)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func machineFrom(ctx context.Context) *game.Machine {
	m, _ := ctx.Value(ctxMachineKey{}).(*game.Machine)
	return m
}

// requireAdmin checks HTTP basic credentials against the configured bcrypt hash.
// Admin routes are disabled when no hash is configured.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminPasswordHash == "" {
			writeError(w, http.StatusForbidden, "admin_disabled")
			return
		}
		user, pw, ok := r.BasicAuth()
		if !ok || user != s.opts.AdminUser || !checkPassword(s.opts.AdminPasswordHash, pw) {
			w.Header().Set("WWW-Authenticate", `Basic realm="legendary-lines"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
