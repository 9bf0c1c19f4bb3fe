package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

const (
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"
	// DefaultPushEndpoint is formatted with the project id.
	DefaultPushEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

var (
	ErrNoTokens    = errors.New("at least one push token is required")
	ErrNoPushToken = errors.New("user has no push token")
)

type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// ProviderError is a rejection reported by the push provider. Error returns
// the provider's message unchanged.
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

type PushConfig struct {
	Endpoint       string
	AndroidChannel string
	Timeout        time.Duration
}

// PushService sends notifications through the FCM HTTP v1 API.
type PushService struct {
	tokens   oauth2.TokenSource
	endpoint string
	channel  string
	client   *http.Client
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewPushServiceFromFile reads a service account key and builds a
// PushService for the key's project.
func NewPushServiceFromFile(ctx context.Context, credentialsPath string, cfg PushConfig, users repository.UserRepository, logger *slog.Logger) (*PushService, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read push credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse push credentials: %w", err)
	}
	if cfg.Endpoint == "" {
		if creds.ProjectID == "" {
			return nil, errors.New("push credentials carry no project id")
		}
		cfg.Endpoint = fmt.Sprintf(DefaultPushEndpoint, creds.ProjectID)
	}
	return NewPushService(creds.TokenSource, cfg, users, logger), nil
}

// NewPushService builds a PushService around an existing token source.
// Tokens are cached and refreshed only when they expire.
func NewPushService(ts oauth2.TokenSource, cfg PushConfig, users repository.UserRepository, logger *slog.Logger) *PushService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AndroidChannel == "" {
		cfg.AndroidChannel = "default"
	}
	return &PushService{
		tokens:   oauth2.ReuseTokenSource(nil, ts),
		endpoint: cfg.Endpoint,
		channel:  cfg.AndroidChannel,
		client:   &http.Client{Timeout: cfg.Timeout},
		users:    users,
		logger:   logger,
	}
}

type fcmEnvelope struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      fcmAndroid        `json:"android"`
	APNS         fcmAPNS           `json:"apns"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string                 `json:"priority"`
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmAndroidNotification struct {
	Sound     string `json:"sound"`
	ChannelID string `json:"channel_id"`
}

type fcmAPNS struct {
	Payload struct {
		APS struct {
			Sound string `json:"sound"`
			Badge int    `json:"badge"`
		} `json:"aps"`
	} `json:"payload"`
}

type fcmResponse struct {
	Name  string `json:"name"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (s *PushService) envelope(token string, n Notification) fcmEnvelope {
	msg := fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: n.Title, Body: n.Body},
		Data:         n.Data,
		Android: fcmAndroid{
			Priority:     "high",
			Notification: fcmAndroidNotification{Sound: "default", ChannelID: s.channel},
		},
	}
	msg.APNS.Payload.APS.Sound = "default"
	msg.APNS.Payload.APS.Badge = 1
	return fcmEnvelope{Message: msg}
}

// Send delivers one message and returns the provider's message name.
func (s *PushService) Send(ctx context.Context, token string, n Notification) (string, error) {
	start := time.Now()
	id, err := s.send(ctx, token, n)
	pushDuration.Observe(time.Since(start).Seconds())
	pushMessagesTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("push send failed", slog.String("token", tokenPrefix(token)), slog.Any("error", err))
	}
	return id, err
}

func (s *PushService) send(ctx context.Context, token string, n Notification) (string, error) {
	if token == "" {
		return "", ErrNoTokens
	}
	body, err := json.Marshal(s.envelope(token, n))
	if err != nil {
		return "", fmt.Errorf("encode push message: %w", err)
	}

	bearer, err := s.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("obtain push access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	bearer.SetAuthHeader(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read push response: %w", err)
	}
	var out fcmResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pe := &ProviderError{StatusCode: resp.StatusCode, Message: string(raw)}
		if decodeErr == nil && out.Error != nil {
			pe.Status = out.Error.Status
			pe.Message = out.Error.Message
		}
		return "", pe
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode push response: %w", decodeErr)
	}
	return out.Name, nil
}

// SendBatch sends the same notification to every token concurrently and
// reports each outcome in token order.
func (s *PushService) SendBatch(ctx context.Context, tokens []string, n Notification) (*models.BatchPushResponse, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	results := make([]models.PushResult, len(tokens))
	var g errgroup.Group
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			id, err := s.Send(ctx, token, n)
			results[i] = models.PushResult{Token: token, Success: err == nil, MessageID: id}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := &models.BatchPushResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.SuccessCount++
		} else {
			resp.FailureCount++
		}
	}
	s.logger.Info("push batch finished",
		slog.Int("tokens", len(tokens)),
		slog.Int("succeeded", resp.SuccessCount),
		slog.Int("failed", resp.FailureCount),
	)
	return resp, nil
}

// SendToUser looks up the user's stored push token and sends to it.
func (s *PushService) SendToUser(ctx context.Context, uid string, n Notification) (string, error) {
	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return "", err
	}
	if user.PushToken == "" {
		return "", ErrNoPushToken
	}
	return s.Send(ctx, user.PushToken, n)
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
