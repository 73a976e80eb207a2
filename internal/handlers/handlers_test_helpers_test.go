package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/database/testutil"
	"github.com/campuskit/loantrack/internal/middleware"
	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/response"
)

type handlerFixture struct {
	db            *gorm.DB
	users         *services.UserService
	equipment     *services.EquipmentService
	loans         *services.LoanService
	tokens        *services.TokenService
	notifications *services.NotificationService
	history       *services.HistoryService
	sessions      *iauth.SessionService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	history, err := services.NewHistoryService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db, history)
	require.NoError(t, err)
	equipment, err := services.NewEquipmentService(db, history)
	require.NoError(t, err)
	notificationSvc, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)
	loans, err := services.NewLoanService(db, history, notificationSvc, users)
	require.NoError(t, err)
	tokens, err := services.NewTokenService(db, history)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "handler-test-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)

	return &handlerFixture{
		db:            db,
		users:         users,
		equipment:     equipment,
		loans:         loans,
		tokens:        tokens,
		notifications: notificationSvc,
		history:       history,
		sessions:      sessions,
	}
}

func (f *handlerFixture) createUser(t *testing.T, nationalID string, role models.Role) *models.User {
	t.Helper()

	user, err := f.users.Register(context.Background(), services.RegisterUserInput{
		NationalID: nationalID,
		FirstName:  "Handler",
		LastName:   "Test " + nationalID,
		Email:      nationalID + "@example.edu",
		Phone:      "555-0100",
		Password:   "password123",
		Role:       role,
	})
	require.NoError(t, err)
	return user
}

func (f *handlerFixture) createEquipment(t *testing.T, code string) *models.Equipment {
	t.Helper()

	admin := f.createUser(t, "adm-"+code, models.RoleAdmin)
	item, err := f.equipment.Create(context.Background(), admin.ID, services.CreateEquipmentInput{
		Code:     code,
		Name:     "Test Item " + code,
		Category: models.CategoryLab,
	})
	require.NoError(t, err)
	return item
}

// performJSON invokes a handler through a minimal test context carrying the
// given identity, JSON body, and route params.
func performJSON(t *testing.T, handler gin.HandlerFunc, userID string, body any, params gin.Params, query string) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	target := "/test"
	if query != "" {
		target += "?" + query
	}
	c.Request = httptest.NewRequest(http.MethodPost, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if userID != "" {
		c.Set(middleware.CtxUserIDKey, userID)
	}

	handler(c)
	return recorder
}

func timeAfterHours(hours int) time.Time {
	return time.Now().Add(time.Duration(hours) * time.Hour)
}

// performSessionJSON invokes a handler with both the user and session context keys set.
func performSessionJSON(t *testing.T, handler gin.HandlerFunc, userID, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)
	c.Set(middleware.CtxUserIDKey, userID)
	c.Set(middleware.CtxSessionIDKey, sessionID)

	handler(c)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func decodeData[T any](t *testing.T, payload response.Response) T {
	t.Helper()

	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
