package services

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/journal"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

// MockIdentityStore is a mock implementation of identity.Store.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) GetUser(ctx context.Context, uid string) (*identity.Identity, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityStore) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
	sent chan string
}

func (m *MockNotifier) Send(ctx context.Context, token string, n Notification) (string, error) {
	args := m.Called(ctx, token, n)
	if m.sent != nil {
		m.sent <- token
	}
	return args.String(0), args.Error(1)
}

// memUsers is an in-memory repository.UserRepository with injectable
// failures.
type memUsers struct {
	mu        sync.Mutex
	docs      map[string]models.User
	deleteErr map[string]error
	updateErr error
	filters   []repository.UserFilter
}

func newMemUsers(users ...models.User) *memUsers {
	r := &memUsers{
		docs:      make(map[string]models.User),
		deleteErr: make(map[string]error),
	}
	for _, u := range users {
		r.docs[u.UID] = u
	}
	return r
}

func (r *memUsers) has(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[uid]
	return ok
}

func (r *memUsers) Get(ctx context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.docs[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) List(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	f = f.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)

	var all []models.User
	for _, u := range r.docs {
		if f.ByID && u.UID <= f.AfterUID {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.VerificationStatus != f.Status {
			continue
		}
		if f.VisibleOnly && !u.IsVisible() {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !f.ByID && !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].UID < all[j].UID
	})

	if f.Offset >= len(all) {
		return []models.User{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], nil
}

func (r *memUsers) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	f.Limit = 1 << 30
	f.Offset = 0
	users, err := r.List(ctx, f)
	return int64(len(users)), err
}

func (r *memUsers) SetVerification(ctx context.Context, uid string, st models.VerificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.docs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.VerificationStatus = st
	u.IsApproved = st.IsApproved()
	r.docs[uid] = u
	return nil
}

func (r *memUsers) SetPushToken(ctx context.Context, uid, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.docs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.PushToken = token
	r.docs[uid] = u
	return nil
}

func (r *memUsers) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[uid]; err != nil {
		return err
	}
	delete(r.docs, uid)
	return nil
}

// memJournal is an in-memory DeletionJournal.
type memJournal struct {
	mu       sync.Mutex
	pending  map[string]journal.Entry
	beginErr error
}

func newMemJournal(uids ...string) *memJournal {
	j := &memJournal{pending: make(map[string]journal.Entry)}
	for _, uid := range uids {
		j.pending[uid] = journal.Entry{UID: uid}
	}
	return j
}

func (j *memJournal) Begin(ctx context.Context, uid string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.beginErr != nil {
		return j.beginErr
	}
	e := j.pending[uid]
	e.UID = uid
	e.Attempts++
	j.pending[uid] = e
	return nil
}

func (j *memJournal) Fail(ctx context.Context, uid string, cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	e := j.pending[uid]
	e.LastError = cause.Error()
	j.pending[uid] = e
	return nil
}

func (j *memJournal) Complete(ctx context.Context, uid string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.pending, uid)
	return nil
}

func (j *memJournal) Pending(ctx context.Context) ([]journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]journal.Entry, 0, len(j.pending))
	for _, e := range j.pending {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UID < out[b].UID })
	return out, nil
}

type memSessions struct {
	counts map[string]int64
	err    error
}

func (s *memSessions) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.counts[status], s.err
}

func (s *memSessions) List(ctx context.Context, f repository.SessionFilter) ([]models.Session, error) {
	return nil, s.err
}
