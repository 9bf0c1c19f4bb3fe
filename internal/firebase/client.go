package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type Clients struct {
	App  *fb.App
	Auth *auth.Client
	// Firestore is nil unless requested.
	Firestore *firestore.Client
}

// NewClients initializes the Firebase app from a service-account file.
// The Firestore client is only opened when withFirestore is set.
func NewClients(ctx context.Context, credentialsPath, projectID string, withFirestore bool) (*Clients, error) {
	var conf *fb.Config
	if projectID != "" {
		conf = &fb.Config{ProjectID: projectID}
	}

	app, err := fb.NewApp(ctx, conf, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Auth client: %w", err)
	}

	clients := &Clients{App: app, Auth: authClient}
	if withFirestore {
		fsClient, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error initializing Firestore client: %w", err)
		}
		clients.Firestore = fsClient
	}
	return clients, nil
}

// Close releases the Firestore connection if one was opened.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
