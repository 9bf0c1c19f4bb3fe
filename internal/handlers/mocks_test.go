package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
)

// MockModerator is a mock implementation of Moderator.
type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) SetVerification(ctx context.Context, uid, status string, isApproved *bool) (*models.User, error) {
	args := m.Called(ctx, uid, status, isApproved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockModerator) Approve(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockModerator) Reject(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockDeleter is a mock implementation of Deleter.
type MockDeleter struct {
	mock.Mock
}

func (m *MockDeleter) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockDeleter) BulkDelete(ctx context.Context, uids []string) (*models.BulkOutcomes, error) {
	args := m.Called(ctx, uids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkOutcomes), args.Error(1)
}

func (m *MockDeleter) Reconcile(ctx context.Context) (*models.BulkOutcomes, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkOutcomes), args.Error(1)
}

// MockPusher is a mock implementation of Pusher.
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Send(ctx context.Context, token string, n services.Notification) (string, error) {
	args := m.Called(ctx, token, n)
	return args.String(0), args.Error(1)
}

func (m *MockPusher) SendBatch(ctx context.Context, tokens []string, n services.Notification) (*models.BatchPushResponse, error) {
	args := m.Called(ctx, tokens, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchPushResponse), args.Error(1)
}

func (m *MockPusher) SendToUser(ctx context.Context, uid string, n services.Notification) (string, error) {
	args := m.Called(ctx, uid, n)
	return args.String(0), args.Error(1)
}

// MockStats is a mock implementation of StatsProvider.
type MockStats struct {
	mock.Mock
}

func (m *MockStats) Dashboard(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type staticTokens struct{}

func (staticTokens) GenerateJWT(userID, role string) (string, error) {
	return "token-for-" + userID, nil
}

func (staticTokens) TTL() time.Duration { return 2 * time.Hour }

type memSessions struct {
	sessions []models.Session
	filters  []repository.SessionFilter
}

func (r *memSessions) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memSessions) List(ctx context.Context, f repository.SessionFilter) ([]models.Session, error) {
	r.filters = append(r.filters, f)
	out := make([]models.Session, 0)
	for _, s := range r.sessions {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.CounsellorID != "" && s.CounsellorID != f.CounsellorID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// memIdentities answers identity lookups from a map; a nil entry is an
// unreachable identity service.
type memIdentities struct {
	accounts map[string]*identity.Identity
}

func (r *memIdentities) GetUser(ctx context.Context, uid string) (*identity.Identity, error) {
	acct, ok := r.accounts[uid]
	if !ok {
		return nil, identity.ErrNotFound
	}
	if acct == nil {
		return nil, errors.New("identity service unavailable")
	}
	return acct, nil
}

func (r *memIdentities) DeleteUser(ctx context.Context, uid string) error {
	return nil
}

type memAdmins struct {
	admins map[string]*models.Admin
}

func (r *memAdmins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	a, ok := r.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAdmins) Upsert(ctx context.Context, admin *models.Admin) error {
	r.admins[admin.Email] = admin
	return nil
}

// memUsers is a minimal in-memory repository.UserRepository.
type memUsers struct {
	mu      sync.Mutex
	users   []models.User
	filters []repository.UserFilter
}

func (r *memUsers) Get(ctx context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UID == uid {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) List(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
	f = f.Normalize()
	out := make([]models.User, 0)
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.VerificationStatus != f.Status {
			continue
		}
		if f.VisibleOnly && !u.IsVisible() {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsers) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	users, err := r.List(ctx, f)
	return int64(len(users)), err
}

func (r *memUsers) SetVerification(ctx context.Context, uid string, st models.VerificationStatus) error {
	return nil
}

func (r *memUsers) SetPushToken(ctx context.Context, uid, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].UID == uid {
			r.users[i].PushToken = token
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUsers) Delete(ctx context.Context, uid string) error {
	return nil
}
