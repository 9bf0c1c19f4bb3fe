package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

var (
	ErrNotCounsellor = errors.New("user is not a counsellor")
	ErrInvalidStatus = errors.New("invalid verification status")
)

const driftPageSize = 200

// Notifier delivers a single push message.
type Notifier interface {
	Send(ctx context.Context, token string, n Notification) (string, error)
}

// ModerationService moves counsellor applications between pending,
// verified and rejected.
type ModerationService struct {
	users    repository.UserRepository
	notifier Notifier
	logger   *slog.Logger
	// notifyTimeout bounds the detached decision notification.
	notifyTimeout time.Duration
}

func NewModerationService(users repository.UserRepository, notifier Notifier, logger *slog.Logger) *ModerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{
		users:         users,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: 15 * time.Second,
	}
}

// SetVerification writes the new status and its derived approval flag in
// one update. isApproved is optional and rejected when it disagrees with
// status. A failed write is returned as is; nothing is retried.
func (s *ModerationService) SetVerification(ctx context.Context, uid, status string, isApproved *bool) (*models.User, error) {
	st, err := models.ParseVerificationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	if isApproved != nil {
		if err := models.ValidateVerification(*isApproved, st); err != nil {
			return nil, err
		}
	}

	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCounsellor {
		return nil, ErrNotCounsellor
	}

	if err := s.users.SetVerification(ctx, uid, st); err != nil {
		s.logger.Error("verification update failed", slog.String("uid", uid), slog.String("status", string(st)), slog.Any("error", err))
		return nil, err
	}
	verificationChangesTotal.WithLabelValues(string(st)).Inc()

	previous := user.VerificationStatus
	user.VerificationStatus = st
	user.IsApproved = st.IsApproved()
	user.UpdatedAt = time.Now().UTC()

	s.logger.Info("counsellor verification changed",
		slog.String("uid", uid),
		slog.String("from", string(previous)),
		slog.String("to", string(st)),
	)

	if previous != st {
		s.notifyDecision(user)
	}
	return user, nil
}

func (s *ModerationService) Approve(ctx context.Context, uid string) (*models.User, error) {
	return s.SetVerification(ctx, uid, string(models.StatusVerified), nil)
}

func (s *ModerationService) Reject(ctx context.Context, uid string) (*models.User, error) {
	return s.SetVerification(ctx, uid, string(models.StatusRejected), nil)
}

// notifyDecision tells the counsellor about the decision in the
// background. Its outcome never affects the moderation result.
func (s *ModerationService) notifyDecision(user *models.User) {
	if s.notifier == nil || user.PushToken == "" {
		return
	}

	n := Notification{
		Title: "Application update",
		Body:  decisionMessage(user.VerificationStatus),
		Data: map[string]string{
			"type":               "verification",
			"verificationStatus": string(user.VerificationStatus),
		},
	}
	token, uid := user.PushToken, user.UID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if _, err := s.notifier.Send(ctx, token, n); err != nil {
			s.logger.Warn("verification notification failed", slog.String("uid", uid), slog.Any("error", err))
		}
	}()
}

func decisionMessage(st models.VerificationStatus) string {
	switch st {
	case models.StatusVerified:
		return "Your counsellor profile has been verified and is now visible to users."
	case models.StatusRejected:
		return "Your counsellor application was not approved."
	default:
		return "Your counsellor application is under review."
	}
}

// RepairDrift rewrites every counsellor whose verification fields disagree
// or whose status is missing, using ResolvedStatus. With dryRun set it only
// reports the affected uids. Counsellors are scanned in uid order so legacy
// records without createdAt are each visited once.
func (s *ModerationService) RepairDrift(ctx context.Context, dryRun bool) ([]string, error) {
	repaired := make([]string, 0)
	after := ""
	for {
		page, err := s.users.List(ctx, repository.UserFilter{
			Role:     models.RoleCounsellor,
			Limit:    driftPageSize,
			ByID:     true,
			AfterUID: after,
		})
		if err != nil {
			return repaired, fmt.Errorf("list counsellors: %w", err)
		}

		for i := range page {
			u := &page[i]
			if !u.HasDrift() {
				continue
			}
			st := u.ResolvedStatus()
			if !dryRun {
				if err := s.users.SetVerification(ctx, u.UID, st); err != nil {
					return repaired, fmt.Errorf("repair %s: %w", u.UID, err)
				}
			}
			s.logger.Info("verification drift",
				slog.String("uid", u.UID),
				slog.Bool("isApproved", u.IsApproved),
				slog.String("stored", string(u.VerificationStatus)),
				slog.String("resolved", string(st)),
				slog.Bool("dryRun", dryRun),
			)
			repaired = append(repaired, u.UID)
		}

		if len(page) < driftPageSize {
			return repaired, nil
		}
		after = page[len(page)-1].UID
	}
}
