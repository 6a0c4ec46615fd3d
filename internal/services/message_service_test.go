package services

import (
	"context"
	"testing"

	"mahberhub/internal/models"
	"mahberhub/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type messageFixture struct {
	messages *fakeMessageRepo
	users    *fakeUserRepo
	notifs   *fakeNotificationRepo
	realtime *fakeRealtime
	svc      MessageService
}

func newMessageFixture(receiverRole string) *messageFixture {
	f := &messageFixture{
		messages: &fakeMessageRepo{},
		users:    &fakeUserRepo{},
		notifs:   &fakeNotificationRepo{},
		realtime: &fakeRealtime{},
	}
	f.users.GetByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Role: receiverRole, Status: models.StatusActive}, nil
	}
	notifications := NewNotificationService(f.notifs, f.realtime, zap.NewNop())
	f.svc = NewMessageService(f.messages, f.users, notifications, f.realtime, zap.NewNop())
	return f
}

func TestSendMessageMemberToMemberForbidden(t *testing.T) {
	f := newMessageFixture(models.RoleMember)

	_, err := f.svc.Send(context.Background(), member(2), &SendMessageRequest{ReceiverID: 30, Content: "hi"})
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
}

func TestSendMessageMemberToLeaderAllowed(t *testing.T) {
	f := newMessageFixture(models.RoleClassLeader)

	msg, err := f.svc.Send(context.Background(), member(2), &SendMessageRequest{ReceiverID: 30, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.SenderID)
	assert.Equal(t, int64(30), msg.ReceiverID)

	// Receiver gets a stored notification and a realtime push.
	notifs := f.notifs.all()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationMessage, notifs[0].Type)
	assert.Equal(t, int64(30), notifs[0].UserID)

	var messageEvents int
	for _, e := range f.realtime.events {
		if e.Event == "message" && e.UserID == 30 {
			messageEvents++
		}
	}
	assert.Equal(t, 1, messageEvents)
}

func TestSendMessageToSelfRejected(t *testing.T) {
	f := newMessageFixture(models.RoleMember)

	_, err := f.svc.Send(context.Background(), member(2), &SendMessageRequest{ReceiverID: 10, Content: "hi"})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
}

func TestConversationMarksRead(t *testing.T) {
	f := newMessageFixture(models.RoleClassLeader)
	var markedReceiver, markedSender int64
	f.messages.MarkConversationReadFn = func(ctx context.Context, receiverID, senderID int64) error {
		markedReceiver, markedSender = receiverID, senderID
		return nil
	}

	_, _, err := f.svc.Conversation(context.Background(), member(2), 30, Page{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(10), markedReceiver)
	assert.Equal(t, int64(30), markedSender)
}

func TestConversationReturnsAscendingHistory(t *testing.T) {
	f := newMessageFixture(models.RoleClassLeader)
	f.messages.ConversationFn = func(ctx context.Context, userID, peerID int64, opts repositories.ListOptions) ([]*models.Message, int64, error) {
		// Newest first, as the repository pages it.
		return []*models.Message{
			{ID: 3, SenderID: 30, ReceiverID: 10},
			{ID: 2, SenderID: 10, ReceiverID: 30},
			{ID: 1, SenderID: 30, ReceiverID: 10},
		}, 3, nil
	}

	msgs, total, err := f.svc.Conversation(context.Background(), member(2), 30, Page{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.Len(t, msgs, 3)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, int64(2), msgs[1].ID)
	assert.Equal(t, int64(3), msgs[2].ID)
}

func TestSearchUsersShortQueryReturnsNothing(t *testing.T) {
	f := newMessageFixture(models.RoleMember)
	called := false
	f.users.SearchActiveFn = func(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
		called = true
		return nil, nil
	}

	results, err := f.svc.SearchUsers(context.Background(), member(2), " a ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestSearchUsersMemberRestrictsRolesInQuery(t *testing.T) {
	f := newMessageFixture(models.RoleMember)
	var askedRoles []string
	f.users.SearchActiveFn = func(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
		askedRoles = roles
		return []*models.UserSummary{
			{ID: 40, Username: "leader", Role: models.RoleClassLeader},
			{ID: 50, Username: "admin", Role: models.RoleSuperAdmin},
		}, nil
	}

	results, err := f.svc.SearchUsers(context.Background(), member(2), "er")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{models.RoleClassLeader, models.RoleSuperAdmin}, askedRoles)
	require.Len(t, results, 2)
	assert.Equal(t, int64(40), results[0].ID)
	assert.Equal(t, int64(50), results[1].ID)
}

func TestSearchUsersMemberFindsLeaderAmongManyMembers(t *testing.T) {
	// A leader whose name sorts after a page of matching members must
	// still appear for a MEMBER caller, because the repository only
	// sees eligible roles.
	directory := []*models.UserSummary{
		{ID: 100, Username: "abelmember", Role: models.RoleMember},
		{ID: 101, Username: "abenezer", Role: models.RoleMember},
		{ID: 102, Username: "abeelav", Role: models.RoleMember},
		{ID: 103, Username: "abeworku", Role: models.RoleMember},
		{ID: 104, Username: "abeye", Role: models.RoleMember},
		{ID: 105, Username: "abezu", Role: models.RoleMember},
		{ID: 106, Username: "abedawit", Role: models.RoleMember},
		{ID: 107, Username: "abefikir", Role: models.RoleMember},
		{ID: 108, Username: "abegirma", Role: models.RoleMember},
		{ID: 109, Username: "abehana", Role: models.RoleMember},
		{ID: 110, Username: "abeisak", Role: models.RoleMember},
		{ID: 200, Username: "zabelleader", Role: models.RoleClassLeader},
	}

	f := newMessageFixture(models.RoleMember)
	f.users.SearchActiveFn = func(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
		allowed := make(map[string]bool, len(roles))
		for _, r := range roles {
			allowed[r] = true
		}
		var out []*models.UserSummary
		for _, u := range directory {
			if len(roles) > 0 && !allowed[u.Role] {
				continue
			}
			out = append(out, u)
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}

	results, err := f.svc.SearchUsers(context.Background(), member(2), "abe")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, int64(200), results[0].ID)
}

func TestSearchUsersLeaderSeesMembers(t *testing.T) {
	f := newMessageFixture(models.RoleMember)
	var askedRoles []string
	f.users.SearchActiveFn = func(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
		askedRoles = roles
		return []*models.UserSummary{
			{ID: 30, Username: "othermember", Role: models.RoleMember},
		}, nil
	}

	results, err := f.svc.SearchUsers(context.Background(), leaderOf(2), "other")
	require.NoError(t, err)
	assert.Empty(t, askedRoles)
	assert.Len(t, results, 1)
}
