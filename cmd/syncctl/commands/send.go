package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"household/internal/realtime"
)

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	var (
		action  string
		payload string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <scope>",
		Short: "Broadcast one update to the user's other sessions",
		Args:  cobra.ExactArgs(1),
		Example: `  # Ask every open tab to reload tasks
  syncctl send tasks -u user-123 -t $TOKEN

  # Push a theme inline
  syncctl send theme -u user-123 --payload '{"theme":{"accent":"#336699","bodyText":"#1f2933"}}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := buildUpdate(args[0], action, payload)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runSend(ctx, u)
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "action tag (calendar scope)")
	cmd.Flags().StringVar(&payload, "payload", "", "inline JSON payload")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the hub")

	return cmd
}

// buildUpdate goes through the wire decoder so the CLI accepts exactly what
// a browser could send.
func buildUpdate(scope, action, payload string) (realtime.Update, error) {
	msg := realtime.Message{
		Type:   realtime.TypeUpdate,
		Scope:  realtime.Scope(scope),
		Action: action,
	}
	if payload != "" {
		if !json.Valid([]byte(payload)) {
			return nil, fmt.Errorf("--payload is not valid JSON")
		}
		msg.Payload = json.RawMessage(payload)
		if err := checkFields(msg.Scope, msg.Payload); err != nil {
			return nil, err
		}
	}
	return msg.Decode()
}

// checkFields rejects misspelled keys in typed payloads. The hub and browsers
// decode leniently, so a typo would otherwise go out as an empty value.
func checkFields(scope realtime.Scope, payload json.RawMessage) error {
	var target any
	switch scope {
	case realtime.ScopeTheme:
		target = &realtime.ThemeUpdate{}
	case realtime.ScopeSettings:
		target = &realtime.SettingsUpdate{}
	default:
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("--payload does not match the %s update: %w", scope, err)
	}
	return nil
}

func runSend(ctx context.Context, u realtime.Update) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	client, err := newClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	client.Connect(globalFlags.UserID)
	if err := waitOpen(ctx, client); err != nil {
		return err
	}
	return client.SendUpdate(u)
}
