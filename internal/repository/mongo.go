package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
)

// Connect opens a MongoDB client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

type MongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", uid, err)
	}
	return &user, nil
}

func (r *MongoUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	filter = filter.Normalize()
	cursor, err := r.users.Find(ctx, userFilterBSON(filter), userFindOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if filter.VisibleOnly {
		users = visibleOnly(users)
	}
	return users, nil
}

func (r *MongoUserRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	n, err := r.users.CountDocuments(ctx, userFilterBSON(filter.Normalize()))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *MongoUserRepository) SetVerification(ctx context.Context, uid string, status models.VerificationStatus) error {
	update := bson.M{"$set": bson.M{
		"verificationStatus": status,
		"isApproved":         status.IsApproved(),
		"updatedAt":          time.Now().UTC(),
	}}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("update verification for %s: %w", uid, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetPushToken(ctx context.Context, uid, token string) error {
	update := bson.M{"$set": bson.M{"fcmToken": token, "updatedAt": time.Now().UTC()}}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("update push token for %s: %w", uid, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.users.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete user document %s: %w", uid, err)
	}
	return nil
}

// userFindOptions expects a normalized filter. Skip over a sort key that
// ties is not stable, so _id always breaks ties.
func userFindOptions(f UserFilter) *options.FindOptions {
	opts := options.Find().SetLimit(int64(f.Limit))
	if f.ByID {
		return opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	return opts.
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset))
}

// userFilterBSON expects a normalized filter.
func userFilterBSON(f UserFilter) bson.M {
	filter := bson.M{}
	if f.ByID && f.AfterUID != "" {
		filter["_id"] = bson.M{"$gt": f.AfterUID}
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Status != "" {
		filter["verificationStatus"] = f.Status
	}
	if f.VisibleOnly {
		filter["isApproved"] = true
	}
	if f.EmailPrefix != "" {
		// case-sensitive like the Firestore range query
		filter["email"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.EmailPrefix)}
	}
	return filter
}

type MongoSessionRepository struct {
	sessions *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{sessions: db.Collection(sessionsCollection)}
}

func (r *MongoSessionRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := r.sessions.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *MongoSessionRepository) List(ctx context.Context, f SessionFilter) ([]models.Session, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.CounsellorID != "" {
		filter["counsellorId"] = f.CounsellorID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.sessions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := make([]models.Session, 0)
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

type MongoAdminRepository struct {
	admins *mongo.Collection
}

func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{admins: db.Collection(adminsCollection)}
}

func (r *MongoAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.admins.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

// Upsert keys admins by email; the email doubles as the document id.
func (r *MongoAdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	admin.ID = admin.Email
	opts := options.Replace().SetUpsert(true)
	if _, err := r.admins.ReplaceOne(ctx, bson.M{"_id": admin.ID}, admin, opts); err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}
