// Package bootstrap opens the external collaborators shared by every
// binary: the Firebase app, the identity store and the document store.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/mindcare-admin-api/internal/config"
	"github.com/harentsoaR/mindcare-admin-api/internal/firebase"
	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

type Stores struct {
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	Admins     repository.AdminRepository
	Identities identity.Store

	firebase *firebase.Clients
	mongo    *mongo.Client
}

// Open connects to Firebase and to the configured document store backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	useFirestore := cfg.Store.Backend == config.BackendFirestore

	fb, err := firebase.NewClients(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.ProjectID, useFirestore)
	if err != nil {
		return nil, err
	}
	s := &Stores{
		Identities: identity.NewFirebaseStore(fb.Auth),
		firebase:   fb,
	}
	logger.Info("Firebase initialized")

	if useFirestore {
		s.Users = repository.NewFirestoreUserRepository(fb.Firestore)
		s.Sessions = repository.NewFirestoreSessionRepository(fb.Firestore)
		s.Admins = repository.NewFirestoreAdminRepository(fb.Firestore)
		logger.Info("Using Firestore document store")
		return s, nil
	}

	client, err := repository.Connect(ctx, cfg.Store.MongoURI)
	if err != nil {
		_ = fb.Close()
		return nil, err
	}
	db := client.Database(cfg.Store.MongoDatabase)
	s.mongo = client
	s.Users = repository.NewMongoUserRepository(db)
	s.Sessions = repository.NewMongoSessionRepository(db)
	s.Admins = repository.NewMongoAdminRepository(db)
	logger.Info("Successfully connected to MongoDB", slog.String("database", cfg.Store.MongoDatabase))
	return s, nil
}

func (s *Stores) Close(ctx context.Context) error {
	var firstErr error
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			firstErr = fmt.Errorf("disconnect mongo: %w", err)
		}
	}
	if err := s.firebase.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close firestore: %w", err)
	}
	return firstErr
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(cfg.Production())
}
