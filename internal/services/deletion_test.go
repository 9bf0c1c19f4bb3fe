package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeletionService_DeleteUser_BothStores(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "u1").Return(nil)
	users := newMemUsers(models.User{UID: "u1"})

	svc := NewDeletionService(ids, users, discardLogger())
	require.NoError(t, svc.DeleteUser(context.Background(), "u1"))

	assert.False(t, users.has("u1"))
	ids.AssertExpectations(t)
}

func TestDeletionService_DeleteUser_IdentityMissing(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "u1").Return(identity.ErrNotFound)
	users := newMemUsers(models.User{UID: "u1"})

	svc := NewDeletionService(ids, users, discardLogger())
	require.NoError(t, svc.DeleteUser(context.Background(), "u1"))

	assert.False(t, users.has("u1"))
}

func TestDeletionService_DeleteUser_IdentityError(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "u1").Return(errors.New("quota exceeded"))
	users := newMemUsers(models.User{UID: "u1"})

	svc := NewDeletionService(ids, users, discardLogger())
	err := svc.DeleteUser(context.Background(), "u1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.True(t, users.has("u1"), "document must survive an identity failure")
}

func TestDeletionService_DeleteUser_DocumentError(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "ghost").Return(identity.ErrNotFound)
	users := newMemUsers()
	users.deleteErr["ghost"] = errors.New("permission denied")

	svc := NewDeletionService(ids, users, discardLogger())
	err := svc.DeleteUser(context.Background(), "ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDeletionService_DeleteUser_EmptyID(t *testing.T) {
	svc := NewDeletionService(new(MockIdentityStore), newMemUsers(), discardLogger())
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), "  "), ErrEmptyUserID)
}

func TestDeletionService_BulkDelete_AllSucceed(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "u1").Return(nil)
	ids.On("DeleteUser", mock.Anything, "u2").Return(identity.ErrNotFound)
	ids.On("DeleteUser", mock.Anything, "u3").Return(nil)
	users := newMemUsers(models.User{UID: "u1"}, models.User{UID: "u3"})

	svc := NewDeletionService(ids, users, discardLogger())
	out, err := svc.BulkDelete(context.Background(), []string{"u1", "u2", "u3"})

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, out.Success)
	assert.Empty(t, out.Failed)
	assert.Empty(t, out.Errors)
}

func TestDeletionService_BulkDelete_PartialFailure(t *testing.T) {
	uids := []string{"a", "b", "c", "d", "e", "f"}
	failing := map[string]bool{"b": true, "e": true}

	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, mock.Anything).Return(nil)
	users := newMemUsers()
	for _, uid := range uids {
		users.docs[uid] = models.User{UID: uid}
		if failing[uid] {
			users.deleteErr[uid] = errors.New("document store unavailable")
		}
	}

	svc := NewDeletionService(ids, users, discardLogger())
	out, err := svc.BulkDelete(context.Background(), uids)
	require.NoError(t, err)

	assert.Len(t, out.Success, len(uids)-len(failing))
	assert.Len(t, out.Failed, len(failing))
	assert.Equal(t, []string{"b", "e"}, out.Failed)

	seen := make(map[string]int)
	for _, uid := range append(append([]string{}, out.Success...), out.Failed...) {
		seen[uid]++
	}
	for _, uid := range uids {
		assert.Equal(t, 1, seen[uid], "uid %s", uid)
	}
	assert.Len(t, seen, len(uids))
	assert.Contains(t, out.Errors["b"], "document store unavailable")
}

func TestDeletionService_BulkDelete_Empty(t *testing.T) {
	svc := NewDeletionService(new(MockIdentityStore), newMemUsers(), discardLogger())
	_, err := svc.BulkDelete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoUserIDs)
}

func TestDeletionService_Journal(t *testing.T) {
	ids := new(MockIdentityStore)
	ids.On("DeleteUser", mock.Anything, "ok").Return(nil)
	ids.On("DeleteUser", mock.Anything, "stuck").Return(nil)
	users := newMemUsers(models.User{UID: "ok"}, models.User{UID: "stuck"})
	users.deleteErr["stuck"] = errors.New("timeout")
	j := newMemJournal()

	svc := NewDeletionService(ids, users, discardLogger(), WithJournal(j))
	require.NoError(t, svc.DeleteUser(context.Background(), "ok"))
	require.Error(t, svc.DeleteUser(context.Background(), "stuck"))

	pending, err := j.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "stuck", pending[0].UID)
	assert.Contains(t, pending[0].LastError, "timeout")

	delete(users.deleteErr, "stuck")
	out, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stuck"}, out.Success)
	assert.Empty(t, out.Failed)

	pending, err = j.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.False(t, users.has("stuck"))
}

func TestDeletionService_JournalBeginFailure(t *testing.T) {
	ids := new(MockIdentityStore)
	users := newMemUsers(models.User{UID: "u1"})
	j := newMemJournal()
	j.beginErr = errors.New("redis down")

	svc := NewDeletionService(ids, users, discardLogger(), WithJournal(j))
	err := svc.DeleteUser(context.Background(), "u1")

	assert.ErrorIs(t, err, ErrJournalBegin)
	assert.True(t, users.has("u1"))
	ids.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestDeletionService_ReconcileWithoutJournal(t *testing.T) {
	svc := NewDeletionService(new(MockIdentityStore), newMemUsers(), discardLogger())
	out, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.Success)
	assert.Empty(t, out.Failed)
}
