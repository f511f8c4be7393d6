package inventory

import (
	"errors"
	"strings"
	"time"
)

const (
	DefaultUnit     = "unit"
	DefaultCategory = "other"
)

// Domain errors
var (
	ErrItemNotFound    = errors.New("inventory item not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
)

// Item is a pantry item the household already has.
type Item struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	Category   string    `json:"category"`
	ExpiryDate *string   `json:"expiryDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for adding a pantry item
type CreateParams struct {
	UserID     string
	Name       string
	Quantity   *float64
	Unit       string
	Category   string
	ExpiryDate *string
}

func (p CreateParams) Validate() error {
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

// WithDefaults fills quantity 1, unit "unit" and category "other" when
// absent. A zero quantity counts as absent.
func (p CreateParams) WithDefaults() CreateParams {
	if p.Quantity == nil || *p.Quantity == 0 {
		one := 1.0
		p.Quantity = &one
	}
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = DefaultUnit
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = DefaultCategory
	}
	if p.ExpiryDate != nil && *p.ExpiryDate == "" {
		p.ExpiryDate = nil
	}
	return p
}

// UpdateParams contains the fields a client may change. Nil means unchanged.
type UpdateParams struct {
	Name       *string
	Quantity   *float64
	Unit       *string
	Category   *string
	ExpiryDate *string
}

func (p UpdateParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Unit == nil && p.Category == nil && p.ExpiryDate == nil
}
