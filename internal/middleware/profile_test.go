package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/store"
)

func testResolver(t *testing.T) (*ProfileResolver, http.Handler) {
	t.Helper()
	st := store.NewMemoryStore()
	st.PutProfile(models.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Kind: models.ProfileKindClient, Balance: 100000})

	resolver := NewProfileResolver(st)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := ProfileFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(1), p.ID)
		w.WriteHeader(http.StatusOK)
	})
	return resolver, resolver.Middleware(next)
}

func TestProfileResolver(t *testing.T) {
	t.Run("profile_id header resolves the profile", func(t *testing.T) {
		_, h := testResolver(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("profile_id", "1")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer token resolves the profile", func(t *testing.T) {
		viper.Set("jwt.secret_key", "test-secret")
		t.Cleanup(func() { viper.Set("jwt.secret_key", "") })

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"profile_id": 1})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, h := testResolver(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing credential", func(t *testing.T) {
		_, h := testResolver(t)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		_, h := testResolver(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("profile_id", "not-a-number")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, h := testResolver(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("profile_id", "99")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		viper.Set("jwt.secret_key", "test-secret")
		t.Cleanup(func() { viper.Set("jwt.secret_key", "") })

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"profile_id": 1})
		signed, err := token.SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		_, h := testResolver(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
