package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/internal/services"
)

func TestNotificationHandlerListAndMarkRead(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewNotificationHandler(fixture.notifications, nil)

	user := fixture.createUser(t, "53000001", models.RoleStudent)

	_, err := fixture.notifications.Notify(context.Background(), services.CreateNotificationInput{
		UserID:  user.ID,
		Type:    models.NotifyLoanApproved,
		Title:   "Loan approved",
		Message: "Your loan request was approved",
	})
	require.NoError(t, err)

	recorder := performJSON(t, handler.List, user.ID, nil, nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	items := decodeData[[]services.NotificationDTO](t, decodeResponse(t, recorder))
	require.Len(t, items, 1)
	require.False(t, items[0].IsRead)

	params := gin.Params{gin.Param{Key: "id", Value: items[0].ID}}
	recorder = performJSON(t, handler.MarkRead, user.ID, nil, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	read := decodeData[services.NotificationDTO](t, decodeResponse(t, recorder))
	require.True(t, read.IsRead)

	// Pending count drops to zero
	recorder = performJSON(t, handler.Count, user.ID, nil, nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	count := decodeData[map[string]int64](t, decodeResponse(t, recorder))
	require.Zero(t, count["pending"])
}

func TestNotificationHandlerScopesToOwner(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewNotificationHandler(fixture.notifications, nil)

	owner := fixture.createUser(t, "53000010", models.RoleStudent)
	other := fixture.createUser(t, "53000011", models.RoleStudent)

	created, err := fixture.notifications.Notify(context.Background(), services.CreateNotificationInput{
		UserID:  owner.ID,
		Type:    models.NotifyLoanRejected,
		Title:   "Loan rejected",
		Message: "Your loan request was rejected",
	})
	require.NoError(t, err)

	params := gin.Params{gin.Param{Key: "id", Value: created.ID}}

	require.Equal(t, http.StatusNotFound, performJSON(t, handler.MarkRead, other.ID, nil, params, "").Code)
	require.Equal(t, http.StatusNotFound, performJSON(t, handler.Delete, other.ID, nil, params, "").Code)
	require.Equal(t, http.StatusOK, performJSON(t, handler.Delete, owner.ID, nil, params, "").Code)
}
