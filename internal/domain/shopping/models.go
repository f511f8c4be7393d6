package shopping

import (
	"errors"
	"strings"
	"time"
)

const DefaultUnit = "unit"

// Domain errors
var (
	ErrEntryNotFound   = errors.New("shopping list entry not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
)

// Source tells where a combined entry's demand came from.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
	SourceMixed  Source = "mixed"
)

// Entry is a manually added shopping list line.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Purchased bool      `json:"purchased"`
	CreatedAt time.Time `json:"createdAt"`
}

// CombinedEntry is one line of the derived list.
type CombinedEntry struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Purchased bool    `json:"purchased"`
	Source    Source  `json:"source"`
}

// CreateEntryParams contains parameters for adding a manual entry
type CreateEntryParams struct {
	UserID   string
	Name     string
	Quantity *float64
	Unit     string
}

func (p CreateEntryParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// WithDefaults fills quantity 1 and unit "unit" when absent.
func (p CreateEntryParams) WithDefaults() CreateEntryParams {
	if p.Quantity == nil || *p.Quantity == 0 {
		one := 1.0
		p.Quantity = &one
	}
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = DefaultUnit
	}
	return p
}

// UpdateEntryParams contains the fields a client may change. Nil means unchanged.
type UpdateEntryParams struct {
	Name      *string
	Quantity  *float64
	Unit      *string
	Purchased *bool
}

func (p UpdateEntryParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func (p UpdateEntryParams) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Unit == nil && p.Purchased == nil
}
