package services

import (
	"context"
	"testing"

	"mahberhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifySkipsSelf(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeRealtime{}, zap.NewNop())

	err := svc.Notify(context.Background(), &models.Notification{
		UserID:  5,
		ActorID: 5,
		Type:    models.NotificationReply,
		Content: "Replied to your comment",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.all())
}

func TestNotifyStoresAndPublishes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	rt := &fakeRealtime{}
	svc := NewNotificationService(repo, rt, zap.NewNop())

	err := svc.Notify(context.Background(), &models.Notification{
		UserID:  5,
		ActorID: 6,
		Type:    models.NotificationReply,
		Content: "Replied to your comment",
	})
	require.NoError(t, err)

	require.Len(t, repo.all(), 1)
	require.Len(t, rt.events, 1)
	assert.Equal(t, int64(5), rt.events[0].UserID)
	assert.Equal(t, "notification", rt.events[0].Event)
}

func TestNotifyManyFiltersActor(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeRealtime{}, zap.NewNop())

	err := svc.NotifyMany(context.Background(), []int64{1, 2, 3}, &models.Notification{
		ActorID: 2,
		Type:    models.NotificationPost,
		Content: "New post",
	})
	require.NoError(t, err)

	created := repo.all()
	require.Len(t, created, 2)
	for _, n := range created {
		assert.NotEqual(t, int64(2), n.UserID)
	}
}

func TestNotifyManyAllRecipientsAreActorIsNoop(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeRealtime{}, zap.NewNop())

	err := svc.NotifyMany(context.Background(), []int64{2}, &models.Notification{
		ActorID: 2,
		Type:    models.NotificationPost,
		Content: "New post",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.all())
}

func TestListReturnsFeedWithCounts(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeRealtime{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(context.Background(), &models.Notification{
			UserID:  5,
			ActorID: 6,
			Type:    models.NotificationPost,
			Content: "New post",
		}))
	}
	require.NoError(t, svc.MarkRead(context.Background(), 5, repo.all()[0].ID))

	feed, err := svc.List(context.Background(), 5, Page{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 3)
	assert.Equal(t, int64(2), feed.UnreadCount)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeRealtime{}, zap.NewNop())

	require.NoError(t, svc.Notify(context.Background(), &models.Notification{
		UserID:  5,
		ActorID: 6,
		Type:    models.NotificationPost,
		Content: "New post",
	}))

	err := svc.MarkRead(context.Background(), 7, repo.all()[0].ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
