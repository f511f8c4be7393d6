// Package commands implements the syncctl CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"household/internal/shared/logging"
	"household/internal/syncclient"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	Server  string
	Path    string
	Token   string
	UserID  string
	Verbose bool
}

var globalFlags GlobalFlags

// NewRootCmd creates the root command for the syncctl CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Inspect and drive the household realtime sync hub",
		Long: `syncctl talks to the household API's WebSocket hub the same way a
browser tab does: it sends hello, relays updates, and reconnects when the
server goes away.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			if globalFlags.Token == "" {
				globalFlags.Token = os.Getenv("SYNC_TOKEN")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalFlags.Server, "server", "s", envOr("SYNC_SERVER", "http://localhost:8080"), "base URL of the household API")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Path, "path", envOr("REALTIME_PATH", "/api/ws"), "WebSocket endpoint path")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Token, "token", "t", "", "bearer token sent with the upgrade (default $SYNC_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.UserID, "user", "u", "", "user ID to announce in hello")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(NewListenCmd())
	rootCmd.AddCommand(NewSendCmd())
	rootCmd.AddCommand(NewTokenCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger() (*zap.Logger, error) {
	if !globalFlags.Verbose {
		return zap.NewNop(), nil
	}
	return logging.New("development", true)
}

// newClient builds a sync client from the global flags.
func newClient(logger *zap.Logger) (*syncclient.Client, error) {
	if globalFlags.UserID == "" {
		return nil, errors.New("--user is required")
	}
	endpoint, err := syncclient.EndpointURL(globalFlags.Server, globalFlags.Path)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if globalFlags.Token != "" {
		header.Set("Authorization", "Bearer "+globalFlags.Token)
	}

	return syncclient.New(syncclient.Config{
		URL:    endpoint,
		Header: header,
		Logger: logger,
	}), nil
}

// waitOpen polls until c is connected or ctx ends.
func waitOpen(ctx context.Context, c *syncclient.Client) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		if c.State() == syncclient.StateOpen {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("hub not reachable: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
