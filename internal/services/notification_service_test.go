package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuskit/loantrack/internal/models"
	apperrors "github.com/campuskit/loantrack/pkg/errors"
)

func TestNotifyPersistsNotification(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createUser(t, db, "60400111", models.RoleStudent)

	dto, err := svc.Notify(context.Background(), CreateNotificationInput{
		UserID:  user.ID,
		Type:    models.NotifySystem,
		Title:   "Welcome",
		Message: "Your account is ready.",
		Metadata: map[string]any{
			"source": "registration",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "normal", dto.Urgency)
	require.Equal(t, "bell", dto.Icon)
	require.Equal(t, "registration", dto.Metadata["source"])
	require.False(t, dto.IsRead)
}

func TestNotifyRejectsInvalidUrgency(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createUser(t, db, "60400222", models.RoleStudent)

	_, err = svc.Notify(context.Background(), CreateNotificationInput{
		UserID:  user.ID,
		Type:    models.NotifySystem,
		Title:   "Bad",
		Urgency: models.Urgency("shouting"),
	})
	require.Error(t, err)
}

func TestListForUserOrdersByRecencyThenUrgency(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createUser(t, db, "60400333", models.RoleStudent)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rows := []models.Notification{
		{UserID: user.ID, Type: models.NotifySystem, Title: "oldest", Message: "m", Urgency: models.UrgencyCritical},
		{UserID: user.ID, Type: models.NotifySystem, Title: "newest", Message: "m", Urgency: models.UrgencyLow},
		{UserID: user.ID, Type: models.NotifySystem, Title: "same-instant-low", Message: "m", Urgency: models.UrgencyLow},
		{UserID: user.ID, Type: models.NotifySystem, Title: "same-instant-high", Message: "m", Urgency: models.UrgencyHigh},
	}
	stamps := []time.Time{base, base.Add(2 * time.Hour), base.Add(time.Hour), base.Add(time.Hour)}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
		require.NoError(t, db.Model(&rows[i]).Update("created_at", stamps[i]).Error)
	}

	listed, err := svc.ListForUser(context.Background(), ListNotificationsInput{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, listed, 4)
	require.Equal(t, "newest", listed[0].Title)
	require.Equal(t, "same-instant-high", listed[1].Title)
	require.Equal(t, "same-instant-low", listed[2].Title)
	require.Equal(t, "oldest", listed[3].Title)
}

func TestCountPendingAndMarkRead(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createUser(t, db, "60400444", models.RoleStudent)

	first, err := svc.Notify(context.Background(), CreateNotificationInput{
		UserID: user.ID, Type: models.NotifySystem, Title: "one", Message: "m",
	})
	require.NoError(t, err)
	_, err = svc.Notify(context.Background(), CreateNotificationInput{
		UserID: user.ID, Type: models.NotifySystem, Title: "two", Message: "m",
	})
	require.NoError(t, err)

	pending, err := svc.CountPending(context.Background(), user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, pending)

	read, err := svc.MarkRead(context.Background(), user.ID, first.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	pending, err = svc.CountPending(context.Background(), user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, pending)

	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))

	pending, err = svc.CountPending(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, pending)

	unread, err := svc.ListForUser(context.Background(), ListNotificationsInput{UserID: user.ID, OnlyUnread: true})
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	owner := createUser(t, db, "60400555", models.RoleStudent)
	other := createUser(t, db, "60400556", models.RoleStudent)

	dto, err := svc.Notify(context.Background(), CreateNotificationInput{
		UserID: owner.ID, Type: models.NotifySystem, Title: "private", Message: "m",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), other.ID, dto.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.Delete(context.Background(), other.ID, dto.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, dto.ID))
}
