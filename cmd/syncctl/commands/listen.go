package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"household/internal/realtime"
)

// NewListenCmd creates the listen command.
func NewListenCmd() *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print updates from the user's other sessions",
		Long: `Connect as one more session of --user and print every update the hub
relays, one JSON object per line, until interrupted. The connection is
re-established automatically if the server drops it.`,
		Example: `  # Tail every update for a user
  syncctl listen -u user-123 -t $TOKEN

  # Only calendar and shopping changes
  syncctl listen -u user-123 --scope calendar --scope shopping`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runListen(ctx, cmd.OutOrStdout(), scopes)
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "only print these scopes (repeatable)")

	return cmd
}

func runListen(ctx context.Context, out io.Writer, scopes []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	client, err := newClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	updates, cancel := client.Subscribe(64)
	defer cancel()

	client.Connect(globalFlags.UserID)
	fmt.Fprintf(os.Stderr, "listening as %s (clientId %s)\n", globalFlags.UserID, client.ClientID())

	return printUpdates(ctx, out, updates, scopeFilter(scopes))
}

func scopeFilter(scopes []string) map[realtime.Scope]struct{} {
	if len(scopes) == 0 {
		return nil
	}
	filter := make(map[realtime.Scope]struct{}, len(scopes))
	for _, s := range scopes {
		filter[realtime.Scope(s)] = struct{}{}
	}
	return filter
}

func printUpdates(ctx context.Context, out io.Writer, updates <-chan realtime.Message, filter map[realtime.Scope]struct{}) error {
	enc := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			if filter != nil {
				if _, want := filter[msg.Scope]; !want {
					continue
				}
			}
			if err := enc.Encode(msg); err != nil {
				return err
			}
		}
	}
}
