// Package identity wraps the hosted authentication service that owns login
// credentials. Users are referenced only by their opaque uid.
package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

var ErrNotFound = errors.New("identity not found")

type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Disabled    bool
}

type Store interface {
	GetUser(ctx context.Context, uid string) (*Identity, error)
	DeleteUser(ctx context.Context, uid string) error
}

// authClient is the subset of *auth.Client used here.
type authClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

type FirebaseStore struct {
	client authClient
}

func NewFirebaseStore(client *auth.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) GetUser(ctx context.Context, uid string) (*Identity, error) {
	rec, err := s.client.GetUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity %s: %w", uid, err)
	}
	return &Identity{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Disabled:    rec.Disabled,
	}, nil
}

func (s *FirebaseStore) DeleteUser(ctx context.Context, uid string) error {
	err := s.client.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete identity %s: %w", uid, err)
	}
	return nil
}
