package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/app"
	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/database/testutil"
	"github.com/campuskit/loantrack/internal/notifications"
	"github.com/campuskit/loantrack/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	cfg.Auth.JWT.Secret = "router-test-secret"

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         "test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)

	history, err := services.NewHistoryService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, history)
	require.NoError(t, err)
	equipment, err := services.NewEquipmentService(db, history)
	require.NoError(t, err)
	hub := notifications.NewHub()
	notificationSvc, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)
	loans, err := services.NewLoanService(db, history, notificationSvc, users)
	require.NoError(t, err)
	tokens, err := services.NewTokenService(db, history)
	require.NoError(t, err)

	router, err := NewRouter(db, cfg, Dependencies{
		JWT:           jwtSvc,
		Sessions:      sessions,
		Users:         users,
		Equipment:     equipment,
		Loans:         loans,
		Tokens:        tokens,
		Notifications: notificationSvc,
		History:       history,
		Hub:           hub,
	})
	require.NoError(t, err)

	return router, db
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	// Health is public
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Protected endpoints require a token
	for _, path := range []string{"/api/auth/me", "/api/loans", "/api/equipment", "/api/admin/users"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Unknown routes return a structured 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterAdminRequiresAdminRole(t *testing.T) {
	router, db := newTestRouter(t)

	history, err := services.NewHistoryService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, history)
	require.NoError(t, err)

	_, err = users.Register(context.Background(), services.RegisterUserInput{
		NationalID: "60000001",
		FirstName:  "Router",
		LastName:   "Student",
		Email:      "router-student@example.edu",
		Password:   "password123",
	})
	require.NoError(t, err)

	// Login through the actual endpoint
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"national_id":"60000001","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	start := strings.Index(body, `"access_token":"`)
	require.Greater(t, start, 0)
	token := body[start+len(`"access_token":"`):]
	token = token[:strings.Index(token, `"`)]

	// Students may list equipment but not reach the admin panel
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/equipment", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// The return endpoint is open to borrowers; a missing loan reads as 404,
	// not a role rejection.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/loans/missing-loan/return",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.Contains(t, metricsRec.Body.String(), "loantrack_api_latency_seconds")
}
