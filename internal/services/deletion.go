package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/journal"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

var (
	ErrEmptyUserID  = errors.New("user id is required")
	ErrNoUserIDs    = errors.New("user id list is empty")
	ErrJournalBegin = errors.New("could not record pending deletion")
)

// DeletionJournal records deletions that have started in one store but may
// not have finished in the other.
type DeletionJournal interface {
	Begin(ctx context.Context, uid string) error
	Fail(ctx context.Context, uid string, cause error) error
	Complete(ctx context.Context, uid string) error
	Pending(ctx context.Context) ([]journal.Entry, error)
}

// DeletionService removes a user from the identity store and the document
// store. The two deletes are not atomic.
type DeletionService struct {
	identities identity.Store
	users      repository.UserRepository
	journal    DeletionJournal
	logger     *slog.Logger
}

type DeletionOption func(*DeletionService)

// WithJournal enables the pending-deletion journal.
func WithJournal(j DeletionJournal) DeletionOption {
	return func(s *DeletionService) {
		s.journal = j
	}
}

func NewDeletionService(identities identity.Store, users repository.UserRepository, logger *slog.Logger, opts ...DeletionOption) *DeletionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DeletionService{
		identities: identities,
		users:      users,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeleteUser deletes the identity, then the profile document. A missing
// identity is not an error. Any other failure aborts and is returned.
func (s *DeletionService) DeleteUser(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrEmptyUserID
	}

	if s.journal != nil {
		if err := s.journal.Begin(ctx, uid); err != nil {
			s.logger.Error("deletion journal begin failed", slog.String("uid", uid), slog.Any("error", err))
			deletionsTotal.WithLabelValues("failure").Inc()
			return fmt.Errorf("%w: %v", ErrJournalBegin, err)
		}
	}

	err := s.deleteBoth(ctx, uid)
	deletionsTotal.WithLabelValues(outcomeLabel(err)).Inc()

	if s.journal != nil {
		if err != nil {
			if jerr := s.journal.Fail(ctx, uid, err); jerr != nil {
				s.logger.Warn("deletion journal update failed", slog.String("uid", uid), slog.Any("error", jerr))
			}
		} else if jerr := s.journal.Complete(ctx, uid); jerr != nil {
			s.logger.Warn("deletion journal complete failed", slog.String("uid", uid), slog.Any("error", jerr))
		}
	}

	if err != nil {
		s.logger.Error("user deletion failed", slog.String("uid", uid), slog.Any("error", err))
		return err
	}
	s.logger.Info("user deleted", slog.String("uid", uid))
	return nil
}

func (s *DeletionService) deleteBoth(ctx context.Context, uid string) error {
	err := s.identities.DeleteUser(ctx, uid)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		s.logger.Info("identity already absent, continuing", slog.String("uid", uid))
	case err != nil:
		return fmt.Errorf("delete identity: %w", err)
	}

	if err := s.users.Delete(ctx, uid); err != nil {
		return fmt.Errorf("delete profile document: %w", err)
	}
	return nil
}

// BulkDelete runs DeleteUser for every id concurrently. It never stops
// early. Outcome lists keep the input order and together contain every id
// exactly once.
func (s *DeletionService) BulkDelete(ctx context.Context, uids []string) (*models.BulkOutcomes, error) {
	if len(uids) == 0 {
		return nil, ErrNoUserIDs
	}

	errs := make([]error, len(uids))
	var g errgroup.Group
	for i, uid := range uids {
		i, uid := i, uid
		g.Go(func() error {
			errs[i] = s.DeleteUser(ctx, uid)
			return nil
		})
	}
	_ = g.Wait()

	out := &models.BulkOutcomes{
		Success: make([]string, 0, len(uids)),
		Failed:  make([]string, 0),
		Errors:  make(map[string]string),
	}
	for i, uid := range uids {
		if errs[i] != nil {
			out.Failed = append(out.Failed, uid)
			out.Errors[uid] = errs[i].Error()
			continue
		}
		out.Success = append(out.Success, uid)
	}

	s.logger.Info("bulk deletion finished",
		slog.Int("requested", len(uids)),
		slog.Int("succeeded", len(out.Success)),
		slog.Int("failed", len(out.Failed)),
	)
	return out, nil
}

// Reconcile retries every deletion still recorded in the journal.
func (s *DeletionService) Reconcile(ctx context.Context) (*models.BulkOutcomes, error) {
	out := &models.BulkOutcomes{
		Success: make([]string, 0),
		Failed:  make([]string, 0),
		Errors:  make(map[string]string),
	}
	if s.journal == nil {
		return out, nil
	}

	entries, err := s.journal.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending deletions: %w", err)
	}
	for _, e := range entries {
		if err := s.DeleteUser(ctx, e.UID); err != nil {
			out.Failed = append(out.Failed, e.UID)
			out.Errors[e.UID] = err.Error()
			continue
		}
		out.Success = append(out.Success, e.UID)
	}

	if len(entries) > 0 {
		s.logger.Info("deletion reconcile finished",
			slog.Int("pending", len(entries)),
			slog.Int("completed", len(out.Success)),
			slog.Int("failed", len(out.Failed)),
		)
	}
	return out, nil
}

// StartSweeper runs Reconcile on every tick until ctx is done.
func (s *DeletionService) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.journal == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Reconcile(ctx); err != nil {
					s.logger.Error("deletion sweep failed", slog.Any("error", err))
				}
			}
		}
	}()
}
