package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UkralStul/social-feed/internal/dataloader"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/UkralStul/social-feed/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = Options{AllowedOrigins: []string{"http://localhost:3000"}}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker(testOptions.AllowedOrigins)

	cases := map[string]bool{
		"":                      true,
		"http://localhost:3000": true,
		"http://evil.test":      false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest(http.MethodGet, QueryPath, nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, check(r), "origin %q", origin)
	}

	wildcard := OriginChecker([]string{"*"})
	r := httptest.NewRequest(http.MethodGet, QueryPath, nil)
	r.Header.Set("Origin", "http://anything.test")
	assert.True(t, wildcard(r))
}

func TestPresentError_NotFound(t *testing.T) {
	err := fmt.Errorf("post with id x: %w", storage.ErrNotFound)

	gqlErr := PresentError(context.Background(), err)
	require.NotNil(t, gqlErr)
	assert.Equal(t, err.Error(), gqlErr.Message)
	assert.Equal(t, CodeNotFound, gqlErr.Extensions["code"])

	other := PresentError(context.Background(), errors.New("boom"))
	assert.Nil(t, other.Extensions["code"])
}

func TestRouter_QueryGetsLoadersAndCORS(t *testing.T) {
	var sawLoaders bool
	gql := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLoaders = dataloader.For(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})
	router := NewRouter(gql, inmemory.New(), testOptions)

	req := httptest.NewRequest(http.MethodPost, QueryPath, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawLoaders)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, QueryPath, nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Preflight(t *testing.T) {
	called := false
	gql := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	router := NewRouter(gql, inmemory.New(), testOptions)

	req := httptest.NewRequest(http.MethodOptions, QueryPath, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := NewRouter(http.NotFoundHandler(), inmemory.New(), testOptions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
