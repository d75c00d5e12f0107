// Package auth issues and verifies the bearer tokens guarding the
// candidate approval workflow, following the teacher's context-value
// middleware shape but with a JWT bearer token in place of a cookie
// session.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ganshmuel/platform/internal/httpjson"
)

type ctxKey string

const ctxUserKey ctxKey = "provreg_user"

type Claims struct {
	Username string `json:"sub"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type User struct {
	Username string
	Role     string
}

type Issuer struct {
	secret   []byte
	ttl      time.Duration
	adminUser string
	adminHash string
}

func NewIssuer(secret string, ttl time.Duration, adminUser, adminPassword string) (*Issuer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Issuer{
		secret:    []byte(secret),
		ttl:       ttl,
		adminUser: adminUser,
		adminHash: string(hash),
	}, nil
}

// Login validates the bootstrap admin credentials and issues a signed
// bearer token. There is a single seeded admin identity; all other
// users are rejected.
func (i *Issuer) Login(username, password string) (string, error) {
	if username != i.adminUser {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(i.adminHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth populates the request context with the caller's identity
// when a valid bearer token is present; it does not itself enforce a
// role.
func (i *Issuer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpjson.WriteAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims, err := i.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpjson.WriteAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey, User{Username: claims.Username, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin additionally demands the admin role, used to guard
// approve/reject.
func (i *Issuer) RequireAdmin(next http.Handler) http.Handler {
	return i.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := r.Context().Value(ctxUserKey).(User)
		if !ok {
			httpjson.WriteAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
			return
		}
		if u.Role != "admin" {
			httpjson.WriteAPIError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
