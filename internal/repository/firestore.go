package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

type FirestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", uid, err)
	}
	user.UID = snap.Ref.ID
	return &user, nil
}

func (r *FirestoreUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	filter = filter.Normalize()
	docs, err := r.pageQuery(filter).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		var u models.User
		if err := doc.DataTo(&u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
		}
		u.UID = doc.Ref.ID
		users = append(users, u)
	}
	if filter.VisibleOnly {
		users = visibleOnly(users)
	}
	return users, nil
}

func (r *FirestoreUserRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	return countQuery(ctx, r.userQuery(filter.Normalize()))
}

// pageQuery orders and pages a normalized filter. Ordering on createdAt
// leaves out documents without the field, so scans order by document id.
func (r *FirestoreUserRepository) pageQuery(f UserFilter) firestore.Query {
	q := r.userQuery(f)
	switch {
	case f.ByID:
		q = q.OrderBy(firestore.DocumentID, firestore.Asc)
		if f.AfterUID != "" {
			q = q.StartAfter(f.AfterUID)
		}
		return q.Limit(f.Limit)
	case f.EmailPrefix != "":
		// Firestore requires the first ordering to be on the range field.
		q = q.OrderBy("email", firestore.Asc)
	default:
		q = q.OrderBy("createdAt", firestore.Desc)
	}
	return q.OrderBy(firestore.DocumentID, firestore.Asc).Offset(f.Offset).Limit(f.Limit)
}

// userQuery applies the filter predicates without ordering or paging.
func (r *FirestoreUserRepository) userQuery(f UserFilter) firestore.Query {
	q := r.client.Collection(usersCollection).Query
	if f.Role != "" {
		q = q.Where("role", "==", string(f.Role))
	}
	if f.Status != "" {
		q = q.Where("verificationStatus", "==", string(f.Status))
	}
	if f.VisibleOnly {
		q = q.Where("isApproved", "==", true)
	}
	if f.EmailPrefix != "" {
		q = q.Where("email", ">=", f.EmailPrefix).Where("email", "<", f.EmailPrefix+"\uf8ff")
	}
	return q
}

func (r *FirestoreUserRepository) SetVerification(ctx context.Context, uid string, st models.VerificationStatus) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "verificationStatus", Value: string(st)},
		{Path: "isApproved", Value: st.IsApproved()},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update verification for %s: %w", uid, err)
	}
	return nil
}

func (r *FirestoreUserRepository) SetPushToken(ctx context.Context, uid, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: token},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update push token for %s: %w", uid, err)
	}
	return nil
}

func (r *FirestoreUserRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("delete user document %s: %w", uid, err)
	}
	return nil
}

type FirestoreSessionRepository struct {
	client *firestore.Client
}

func NewFirestoreSessionRepository(client *firestore.Client) *FirestoreSessionRepository {
	return &FirestoreSessionRepository{client: client}
}

func (r *FirestoreSessionRepository) CountByStatus(ctx context.Context, st string) (int64, error) {
	return countQuery(ctx, r.client.Collection(sessionsCollection).Where("status", "==", st))
}

func (r *FirestoreSessionRepository) List(ctx context.Context, f SessionFilter) ([]models.Session, error) {
	q := r.client.Collection(sessionsCollection).Query
	if f.Status != "" {
		q = q.Where("status", "==", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("userId", "==", f.UserID)
	}
	if f.CounsellorID != "" {
		q = q.Where("counsellorId", "==", f.CounsellorID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	docs, err := q.OrderBy("scheduledAt", firestore.Desc).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	sessions := make([]models.Session, 0, len(docs))
	for _, doc := range docs {
		var s models.Session
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", doc.Ref.ID, err)
		}
		s.ID = doc.Ref.ID
		sessions = append(sessions, s)
	}
	return sessions, nil
}

type FirestoreAdminRepository struct {
	client *firestore.Client
}

func NewFirestoreAdminRepository(client *firestore.Client) *FirestoreAdminRepository {
	return &FirestoreAdminRepository{client: client}
}

func (r *FirestoreAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	docs, err := r.client.Collection(adminsCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var admin models.Admin
	if err := docs[0].DataTo(&admin); err != nil {
		return nil, fmt.Errorf("decode admin: %w", err)
	}
	admin.ID = docs[0].Ref.ID
	return &admin, nil
}

func (r *FirestoreAdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	admin.ID = admin.Email
	if _, err := r.client.Collection(adminsCollection).Doc(admin.ID).Set(ctx, admin); err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count query: unexpected result type %T", res["all"])
	}
	return v.GetIntegerValue(), nil
}
