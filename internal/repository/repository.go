// Package repository stores profile, session and admin documents in the
// shared document store. MongoDB and Firestore backends behave the same.
package repository

import (
	"context"
	"errors"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
)

var ErrNotFound = errors.New("document not found")

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	adminsCollection   = "admins"

	defaultListLimit = 50
)

// UserFilter selects user documents. Results are sorted newest first, with
// the document id breaking ties.
type UserFilter struct {
	Role        models.Role
	Status      models.VerificationStatus
	VisibleOnly bool
	EmailPrefix string
	Limit       int
	Offset      int

	// ByID orders by document id and pages with AfterUID instead of
	// Offset. Full scans use it so records without createdAt are visited
	// exactly once.
	ByID     bool
	AfterUID string
}

// Normalize applies visibility implications and the default page size.
func (f UserFilter) Normalize() UserFilter {
	if f.VisibleOnly {
		f.Role = models.RoleCounsellor
		f.Status = models.StatusVerified
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 || f.ByID {
		f.Offset = 0
	}
	return f
}

type SessionFilter struct {
	Status       string
	UserID       string
	CounsellorID string
	Limit        int
}

type UserRepository interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	// SetVerification writes verificationStatus, the derived isApproved
	// flag and updatedAt in a single update.
	SetVerification(ctx context.Context, uid string, status models.VerificationStatus) error
	SetPushToken(ctx context.Context, uid, token string) error
	// Delete removes the profile document. Deleting an absent document
	// succeeds.
	Delete(ctx context.Context, uid string) error
}

type SessionRepository interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
	List(ctx context.Context, filter SessionFilter) ([]models.Session, error)
}

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Upsert(ctx context.Context, admin *models.Admin) error
}

// visibleOnly drops records whose two verification fields disagree even
// though the store query matched one of them.
func visibleOnly(users []models.User) []models.User {
	out := users[:0]
	for _, u := range users {
		if u.IsVisible() {
			out = append(out, u)
		}
	}
	return out
}
