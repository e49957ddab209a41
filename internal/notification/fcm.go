package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMService pushes leaderboard notifications to a Firebase topic that the
// club's devices subscribe to.
type FCMService struct {
	client *messaging.Client
	topic  string
	logger *zap.Logger
}

// NewFCMService first tries base64 credentials from FCM_SERVICE_ACCOUNT_JSON,
// then the service account file at localFilePath.
func NewFCMService(ctx context.Context, localFilePath, topic string, logger *zap.Logger) (*FCMService, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FCM_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		logger.Info("FCM initializing from environment")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FCM_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		logger.Info("FCM initializing from local file", zap.String("path", localFilePath))
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client, topic: topic, logger: logger}, nil
}

func (s *FCMService) SendPush(ctx context.Context, n *Notification) error {
	data := make(map[string]string, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = string(n.Type)
	data["notification_id"] = n.ID.String()

	message := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}

	id, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send push to topic %s: %w", s.topic, err)
	}

	s.logger.Debug("FCM message sent", zap.String("message_id", id), zap.String("type", string(n.Type)))
	return nil
}

// LogSink writes notifications to the log. Used when no push provider is set up.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) SendPush(_ context.Context, n *Notification) error {
	s.logger.Info("notification",
		zap.String("id", n.ID.String()),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
		zap.String("message", n.Message))
	return nil
}
