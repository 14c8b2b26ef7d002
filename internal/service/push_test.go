package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
)

type fakeSender struct {
	sent       [][]string
	subscribed map[string][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{subscribed: map[string][]string{}}
}

func (f *fakeSender) SendToTokens(_ context.Context, tokens []string, _, _ string, _ map[string]string) ([]bool, error) {
	f.sent = append(f.sent, tokens)

	delivered := make([]bool, len(tokens))
	for i := range delivered {
		delivered[i] = true
	}

	return delivered, nil
}

func (f *fakeSender) Subscribe(_ context.Context, tokens []string, topic string) (int, int, error) {
	f.subscribed[topic] = append(f.subscribed[topic], tokens...)
	return len(tokens), 0, nil
}

func (f *fakeSender) Unsubscribe(_ context.Context, tokens []string, topic string) (int, int, error) {
	delete(f.subscribed, topic)
	return len(tokens), 0, nil
}

func testNotifications(t *testing.T, sender PushSender) (*Notifications, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.FcmToken{}))

	return NewNotifications(db, sender), db
}

func TestRegisterTokenUpsert(t *testing.T) {
	n, db := testNotifications(t, newFakeSender())

	_, err := n.RegisterToken("u1", "session-1", "token-a")
	require.NoError(t, err)

	// Same session re-registers, replacing the token instead of adding a row
	_, err = n.RegisterToken("u1", "session-1", "token-b")
	require.NoError(t, err)

	_, err = n.RegisterToken("u1", "session-2", "token-c")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(model.FcmToken{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	tokens, err := n.TokensOf("u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"token-b", "token-c"}, tokens)
}

func TestSubscribeNoTokens(t *testing.T) {
	n, _ := testNotifications(t, newFakeSender())

	_, _, err := n.Subscribe(context.Background(), "u1", "alerts")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	sender := newFakeSender()
	n, _ := testNotifications(t, sender)

	_, err := n.RegisterToken("u1", "s1", "token-a")
	require.NoError(t, err)
	_, err = n.RegisterToken("u1", "s2", "token-b")
	require.NoError(t, err)

	success, failure, err := n.Subscribe(context.Background(), "u1", "alerts")
	require.NoError(t, err)
	assert.Equal(t, 2, success)
	assert.Equal(t, 0, failure)
	assert.ElementsMatch(t, []string{"token-a", "token-b"}, sender.subscribed["alerts"])

	success, _, err = n.Unsubscribe(context.Background(), "u1", "alerts")
	require.NoError(t, err)
	assert.Equal(t, 2, success)
	assert.Empty(t, sender.subscribed["alerts"])
}

func TestTopicOpWithoutSender(t *testing.T) {
	n, _ := testNotifications(t, nil)

	_, err := n.RegisterToken("u1", "s1", "token-a")
	require.NoError(t, err)

	_, _, err = n.Subscribe(context.Background(), "u1", "alerts")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestSendToUsersRefreshesLastUsed(t *testing.T) {
	sender := newFakeSender()
	n, db := testNotifications(t, sender)

	base := time.Now().Add(-time.Hour)
	n.now = func() time.Time { return base }

	_, err := n.RegisterToken("u1", "s1", "token-a")
	require.NoError(t, err)

	later := base.Add(time.Hour)
	n.now = func() time.Time { return later }

	require.NoError(t, n.SendToUsers(context.Background(), []string{"u1"}, "hi", "body", nil))
	require.Len(t, sender.sent, 1)

	var rec model.FcmToken
	require.NoError(t, db.First(&rec).Error)
	assert.WithinDuration(t, later, rec.LastUsed, time.Second)
}

func TestDeleteStale(t *testing.T) {
	n, db := testNotifications(t, newFakeSender())

	old := model.FcmToken{UserID: "u1", SessionID: "s1", Token: "t", LastUsed: time.Now().Add(-100 * 24 * time.Hour)}
	fresh := model.FcmToken{UserID: "u1", SessionID: "s2", Token: "t", LastUsed: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	deleted, err := n.DeleteStale(90 * 24 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var count int64
	require.NoError(t, db.Model(model.FcmToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
