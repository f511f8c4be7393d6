package meal

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Meal types
const (
	TypeBreakfast = "breakfast"
	TypeLunch     = "lunch"
	TypeDinner    = "dinner"
	TypeSnack     = "snack"
)

var mealTypes = map[string]struct{}{
	TypeBreakfast: {},
	TypeLunch:     {},
	TypeDinner:    {},
	TypeSnack:     {},
}

// Domain errors
var (
	ErrMealNotFound    = errors.New("meal not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidMealType = errors.New("mealType must be breakfast, lunch, dinner or snack")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)

// Meal is one planned meal on a calendar day.
type Meal struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Date        string       `json:"date"`
	MealType    string       `json:"mealType"`
	Title       string       `json:"title"`
	Recipe      string       `json:"recipe"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Ingredient is either a bare name or a structured {name, quantity, unit}.
// Quantity is nil when absent or not a number.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*i = Ingredient{Name: name}
		return nil
	}

	var raw struct {
		Name     string          `json:"name"`
		Quantity json.RawMessage `json:"quantity"`
		Unit     string          `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Ingredient{Name: raw.Name, Unit: raw.Unit, Quantity: ParseQuantity(raw.Quantity)}
	return nil
}

// ParseQuantity reads a JSON number or numeric string. Anything else is nil.
func ParseQuantity(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// CreateParams contains parameters for adding a meal to the plan
type CreateParams struct {
	UserID      string
	Date        string
	MealType    string
	Title       string
	Recipe      string
	Ingredients []Ingredient
}

func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if !IsValidDate(p.Date) {
		return ErrInvalidDate
	}
	if !IsValidMealType(p.MealType) {
		return ErrInvalidMealType
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// UpdateParams contains the fields a client may change. Nil means unchanged.
type UpdateParams struct {
	Date        *string
	MealType    *string
	Title       *string
	Recipe      *string
	Ingredients *[]Ingredient
}

func (p UpdateParams) Validate() error {
	if p.Date != nil && !IsValidDate(*p.Date) {
		return ErrInvalidDate
	}
	if p.MealType != nil && !IsValidMealType(*p.MealType) {
		return ErrInvalidMealType
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errors.New("title cannot be empty")
	}
	return nil
}

func (p UpdateParams) IsEmpty() bool {
	return p.Date == nil && p.MealType == nil && p.Title == nil && p.Recipe == nil && p.Ingredients == nil
}

// ListFilter bounds a listing by inclusive YYYY-MM-DD dates. Empty bounds
// are open.
type ListFilter struct {
	StartDate string
	EndDate   string
}

func (f ListFilter) Validate() error {
	if f.StartDate != "" && !IsValidDate(f.StartDate) {
		return ErrInvalidDate
	}
	if f.EndDate != "" && !IsValidDate(f.EndDate) {
		return ErrInvalidDate
	}
	return nil
}

func IsValidMealType(t string) bool {
	_, ok := mealTypes[t]
	return ok
}

func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
