package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

type StatsService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func NewStatsService(users repository.UserRepository, sessions repository.SessionRepository) *StatsService {
	return &StatsService{users: users, sessions: sessions}
}

// Dashboard collects the admin dashboard counters. The first failing count
// cancels the rest.
func (s *StatsService) Dashboard(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, f repository.UserFilter) {
		g.Go(func() error {
			n, err := s.users.Count(ctx, f)
			*dst = n
			return err
		})
	}
	count(&stats.TotalUsers, repository.UserFilter{})
	count(&stats.Counsellors, repository.UserFilter{Role: models.RoleCounsellor})
	count(&stats.PendingApplications, repository.UserFilter{Role: models.RoleCounsellor, Status: models.StatusPending})
	count(&stats.VerifiedCounsellors, repository.UserFilter{VisibleOnly: true})

	g.Go(func() error {
		n, err := s.sessions.CountByStatus(ctx, models.SessionConfirmed)
		stats.ActiveSessions = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
