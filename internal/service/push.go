package service

import (
	"context"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
)

// PushSender is the narrow contract to the push transport. Delivery is
// best-effort per token; a failed send never rolls anything back.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]bool, error)
	Subscribe(ctx context.Context, tokens []string, topic string) (success, failure int, err error)
	Unsubscribe(ctx context.Context, tokens []string, topic string) (success, failure int, err error)
}

// FcmSender sends through Firebase Cloud Messaging.
type FcmSender struct {
	client *messaging.Client
}

func NewFcmSender(ctx context.Context) (*FcmSender, error) {
	app, err := firebase.NewApp(ctx, nil,
		option.WithCredentialsFile(viper.GetString("fcm.credentials_file")))
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &FcmSender{client: client}, nil
}

func (f *FcmSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]bool, error) {
	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	})
	if err != nil {
		return nil, err
	}

	delivered := make([]bool, len(tokens))
	for i, r := range resp.Responses {
		delivered[i] = r.Success
	}

	return delivered, nil
}

func (f *FcmSender) Subscribe(ctx context.Context, tokens []string, topic string) (int, int, error) {
	resp, err := f.client.SubscribeToTopic(ctx, tokens, topic)
	if err != nil {
		return 0, 0, err
	}

	return resp.SuccessCount, resp.FailureCount, nil
}

func (f *FcmSender) Unsubscribe(ctx context.Context, tokens []string, topic string) (int, int, error) {
	resp, err := f.client.UnsubscribeFromTopic(ctx, tokens, topic)
	if err != nil {
		return 0, 0, err
	}

	return resp.SuccessCount, resp.FailureCount, nil
}

// Notifications is the registry of per-session push tokens and the entry
// point for sending to users.
type Notifications struct {
	db     *gorm.DB
	sender PushSender
	now    func() time.Time
}

func NewNotifications(db *gorm.DB, sender PushSender) *Notifications {
	return &Notifications{db: db, sender: sender, now: time.Now}
}

// RegisterToken stores or refreshes the token of a (user, session) pair.
func (n *Notifications) RegisterToken(userID, sessionID, token string) (*model.FcmToken, error) {
	rec := model.FcmToken{
		UserID:    userID,
		SessionID: sessionID,
		Token:     token,
		LastUsed:  n.now(),
	}

	err := n.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "last_used"}),
		}).
		Create(&rec).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to register push token", err)
	}

	return &rec, nil
}

// TokensOf returns the raw push tokens registered for a user.
func (n *Notifications) TokensOf(userID string) ([]string, error) {
	var tokens []string

	err := n.db.
		Model(model.FcmToken{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch push tokens", err)
	}

	return tokens, nil
}

// SendToUsers pushes a notification to all tokens of the given users and
// refreshes last_used for the tokens that were actually delivered to.
func (n *Notifications) SendToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) error {
	var recs []model.FcmToken

	err := n.db.Where("user_id IN ?", userIDs).Find(&recs).Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to fetch push tokens", err)
	}

	if len(recs) == 0 {
		zap.L().Debug("No push tokens found for users", zap.Strings("user_ids", userIDs))
		return nil
	}

	if n.sender == nil {
		return apperr.New(apperr.InvalidState, "Push notifications are disabled")
	}

	tokens := make([]string, len(recs))
	for i, r := range recs {
		tokens[i] = r.Token
	}

	delivered, err := n.sender.SendToTokens(ctx, tokens, title, body, data)
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send push notifications", err)
	}

	now := n.now()
	sent := 0

	for i, ok := range delivered {
		if !ok {
			continue
		}
		sent++

		err := n.db.
			Model(model.FcmToken{}).
			Where("id = ?", recs[i].ID).
			Update("last_used", now).
			Error
		if err != nil {
			zap.L().Error("Failed to refresh push token last_used", zap.Error(err))
		}
	}

	zap.L().Info("Push notifications sent",
		zap.Int("delivered", sent),
		zap.Int("total", len(tokens)))

	return nil
}

// Subscribe adds all of the user's tokens to a topic.
func (n *Notifications) Subscribe(ctx context.Context, userID, topic string) (int, int, error) {
	return n.topicOp(ctx, userID, topic, n.sender.Subscribe)
}

// Unsubscribe removes all of the user's tokens from a topic.
func (n *Notifications) Unsubscribe(ctx context.Context, userID, topic string) (int, int, error) {
	return n.topicOp(ctx, userID, topic, n.sender.Unsubscribe)
}

func (n *Notifications) topicOp(ctx context.Context, userID, topic string, op func(context.Context, []string, string) (int, int, error)) (int, int, error) {
	if n.sender == nil {
		return 0, 0, apperr.New(apperr.InvalidState, "Push notifications are disabled")
	}

	tokens, err := n.TokensOf(userID)
	if err != nil {
		return 0, 0, err
	}

	if len(tokens) == 0 {
		return 0, 0, apperr.New(apperr.NotFound, "No push token found for user")
	}

	success, failure, err := op(ctx, tokens, topic)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.Unexpected, "Push transport error", err)
	}

	return success, failure, nil
}

// DeleteStale removes tokens unused for longer than maxAge.
func (n *Notifications) DeleteStale(maxAge time.Duration) (int64, error) {
	r := n.db.
		Where("last_used < ?", n.now().Add(-maxAge)).
		Delete(model.FcmToken{})
	if r.Error != nil {
		return 0, apperr.Wrap(apperr.Unexpected, "Failed to delete stale push tokens", r.Error)
	}

	return r.RowsAffected, nil
}
