package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/store"
)

type contextKey struct{ name string }

var profileKey = &contextKey{"profile"}

// ProfileFromContext returns the profile resolved for the request.
func ProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*models.Profile)
	return p, ok
}

// ProfileResolver maps a caller credential to a Profile row and attaches it
// to the request context. It accepts a Bearer token carrying a profile_id
// claim, or a bare profile_id header for local use.
type ProfileResolver struct {
	store store.LedgerStore
}

func NewProfileResolver(st store.LedgerStore) *ProfileResolver {
	return &ProfileResolver{store: st}
}

func (m *ProfileResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID, err := resolveProfileID(r)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}

		profile, err := m.store.GetProfile(r.Context(), profileID)
		if err != nil {
			if err == store.ErrNotFound {
				writeJSONError(w, http.StatusNotFound, "Profile not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "Server error")
			return
		}

		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolveProfileID(r *http.Request) (int64, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return 0, errInvalidCredential
		}
		return profileIDFromToken(parts[1])
	}
	if raw := r.Header.Get("profile_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, errInvalidCredential
		}
		return id, nil
	}
	return 0, errMissingCredential
}

func profileIDFromToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidCredential
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidCredential
	}
	id, ok := claims["profile_id"].(float64)
	if !ok || id <= 0 {
		return 0, errInvalidCredential
	}
	return int64(id), nil
}

type credentialError string

func (e credentialError) Error() string { return string(e) }

const (
	errMissingCredential = credentialError("Profile credential is required")
	errInvalidCredential = credentialError("Invalid profile credential")
)

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
