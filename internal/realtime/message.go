package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types on the wire
const (
	TypeHello  = "hello"
	TypeUpdate = "update"
)

// Scope identifies which domain view a receiver should refresh.
type Scope string

const (
	ScopeProfiles  Scope = "profiles"
	ScopeTasks     Scope = "tasks"
	ScopeCalendar  Scope = "calendar"
	ScopeTheme     Scope = "theme"
	ScopeSettings  Scope = "settings"
	ScopeMeals     Scope = "meals"
	ScopeInventory Scope = "inventory"
	ScopeShopping  Scope = "shopping"
)

// ActionEventAssignmentUpdated is sent with ScopeCalendar after an assignment write.
const ActionEventAssignmentUpdated = "event-assignment-updated"

var ErrMalformedMessage = errors.New("malformed sync message")

// Message is the JSON frame exchanged in both directions over the socket.
type Message struct {
	Type     string          `json:"type"`
	UserID   string          `json:"userId"`
	ClientID string          `json:"clientId,omitempty"`
	Scope    Scope           `json:"scope,omitempty"`
	Action   string          `json:"action,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ParseMessage decodes a single frame. Frames without a type are rejected.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if m.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return m, nil
}

// Update is the decoded, scope-specific content of an update message.
type Update interface {
	Scope() Scope
}

type ProfilesUpdate struct{}

type TasksUpdate struct{}

type CalendarUpdate struct {
	Action string
}

// Theme mirrors the colour settings a client applies without a re-fetch.
type Theme struct {
	Name              string `json:"name"`
	BackgroundType    string `json:"backgroundType"`
	BackgroundStart   string `json:"backgroundStart"`
	BackgroundEnd     string `json:"backgroundEnd"`
	BackgroundAngle   int    `json:"backgroundAngle"`
	PanelBackground   string `json:"panelBackground"`
	CardBackground    string `json:"cardBackground"`
	SectionBackground string `json:"sectionBackground"`
	SectionText       string `json:"sectionText"`
	SidebarBackground string `json:"sidebarBackground"`
	HeaderText        string `json:"headerText"`
	BodyText          string `json:"bodyText"`
	Accent            string `json:"accent"`
}

// ThemeUpdate carries the new theme inline. Theme is nil when the sender
// only asked receivers to reload.
type ThemeUpdate struct {
	Theme *Theme `json:"theme,omitempty"`
}

// SettingsUpdate carries feature toggles inline. PinSettings is passed
// through untouched.
type SettingsUpdate struct {
	EnabledFeatures map[string]bool `json:"enabledFeatures,omitempty"`
	PinSettings     json.RawMessage `json:"pinSettings,omitempty"`
}

type MealsUpdate struct{}

type InventoryUpdate struct{}

type ShoppingUpdate struct{}

// UnknownUpdate keeps scopes this build does not know about.
type UnknownUpdate struct {
	Tag Scope
	Raw json.RawMessage
}

func (ProfilesUpdate) Scope() Scope  { return ScopeProfiles }
func (TasksUpdate) Scope() Scope     { return ScopeTasks }
func (CalendarUpdate) Scope() Scope  { return ScopeCalendar }
func (ThemeUpdate) Scope() Scope     { return ScopeTheme }
func (SettingsUpdate) Scope() Scope  { return ScopeSettings }
func (MealsUpdate) Scope() Scope     { return ScopeMeals }
func (InventoryUpdate) Scope() Scope { return ScopeInventory }
func (ShoppingUpdate) Scope() Scope  { return ScopeShopping }
func (u UnknownUpdate) Scope() Scope { return u.Tag }

// Decode returns the typed variant for an update message's scope.
func (m Message) Decode() (Update, error) {
	if m.Type != TypeUpdate {
		return nil, fmt.Errorf("%w: type %q is not an update", ErrMalformedMessage, m.Type)
	}

	switch m.Scope {
	case ScopeProfiles:
		return ProfilesUpdate{}, nil
	case ScopeTasks:
		return TasksUpdate{}, nil
	case ScopeCalendar:
		return CalendarUpdate{Action: m.Action}, nil
	case ScopeMeals:
		return MealsUpdate{}, nil
	case ScopeInventory:
		return InventoryUpdate{}, nil
	case ScopeShopping:
		return ShoppingUpdate{}, nil
	case ScopeTheme:
		var u ThemeUpdate
		if err := unmarshalPayload(m.Payload, &u); err != nil {
			return nil, err
		}
		return u, nil
	case ScopeSettings:
		var u SettingsUpdate
		if err := unmarshalPayload(m.Payload, &u); err != nil {
			return nil, err
		}
		return u, nil
	default:
		return UnknownUpdate{Tag: m.Scope, Raw: m.Payload}, nil
	}
}

// NewUpdateMessage builds an update frame for the given variant.
func NewUpdateMessage(userID, clientID string, u Update) (Message, error) {
	m := Message{
		Type:     TypeUpdate,
		UserID:   userID,
		ClientID: clientID,
		Scope:    u.Scope(),
	}

	switch v := u.(type) {
	case CalendarUpdate:
		m.Action = v.Action
	case ThemeUpdate:
		if v.Theme != nil {
			raw, err := json.Marshal(v)
			if err != nil {
				return Message{}, fmt.Errorf("failed to encode theme payload: %w", err)
			}
			m.Payload = raw
		}
	case SettingsUpdate:
		raw, err := json.Marshal(v)
		if err != nil {
			return Message{}, fmt.Errorf("failed to encode settings payload: %w", err)
		}
		m.Payload = raw
	case UnknownUpdate:
		m.Payload = v.Raw
	}

	return m, nil
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: payload: %v", ErrMalformedMessage, err)
	}
	return nil
}
