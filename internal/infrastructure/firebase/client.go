package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Config selects the Firebase project. An empty CredentialsFile falls back
// to application default credentials.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// Client owns the Firebase app and its Firestore connection.
type Client struct {
	app       *firebase.App
	firestore *firestore.Client
}

// NewClient initializes a Firebase app and opens its Firestore client.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}

	logger.Info("firestore connected",
		zap.String("project_id", cfg.ProjectID),
		zap.Bool("credentials_file", cfg.CredentialsFile != ""),
	)
	return &Client{app: app, firestore: fs}, nil
}

func (c *Client) Firestore() *firestore.Client {
	return c.firestore
}

func (c *Client) Close() error {
	return c.firestore.Close()
}
