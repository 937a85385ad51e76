// Package firebase opens the Firebase Admin SDK clients the app is wired with.
package firebase

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
)

// App holds one Firebase app and hands out its service clients, each
// created on first use.
type App struct {
	app *firebase.App
	cfg config.FirebaseConfig

	mu        sync.Mutex
	firestore *firestore.Client
	auth      *auth.Client
	database  *db.Client
	bucket    *gcs.BucketHandle
}

func clientOptions(cfg config.FirebaseConfig) []option.ClientOption {
	switch {
	case cfg.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}
	case cfg.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	}
	// Application default credentials.
	return nil
}

// New initializes the Firebase app from cfg.
func New(ctx context.Context, cfg config.FirebaseConfig) (*App, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		DatabaseURL:   cfg.DatabaseURL,
		StorageBucket: cfg.StorageBucket,
	}, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	return &App{app: app, cfg: cfg}, nil
}

func (a *App) Config() config.FirebaseConfig { return a.cfg }

func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firestore == nil {
		client, err := a.app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting firestore client: %w", err)
		}
		a.firestore = client
	}
	return a.firestore, nil
}

func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.auth == nil {
		client, err := a.app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting auth client: %w", err)
		}
		a.auth = client
	}
	return a.auth, nil
}

func (a *App) Database(ctx context.Context) (*db.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.database == nil {
		client, err := a.app.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting database client: %w", err)
		}
		a.database = client
	}
	return a.database, nil
}

// Bucket returns the configured default storage bucket.
func (a *App) Bucket(ctx context.Context) (*gcs.BucketHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bucket == nil {
		client, err := a.app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting storage client: %w", err)
		}
		bucket, err := client.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("error getting default bucket: %w", err)
		}
		a.bucket = bucket
	}
	return a.bucket, nil
}

// Close releases the Firestore connection if one was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firestore != nil {
		return a.firestore.Close()
	}
	return nil
}
