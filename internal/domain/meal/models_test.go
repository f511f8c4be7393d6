package meal

import (
	"encoding/json"
	"errors"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestIngredient_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Ingredient
	}{
		{"bare name", `"Eggs"`, Ingredient{Name: "Eggs"}},
		{"structured", `{"name":"Flour","quantity":2,"unit":"cups"}`, Ingredient{Name: "Flour", Quantity: floatPtr(2), Unit: "cups"}},
		{"numeric string quantity", `{"name":"Milk","quantity":" 1.5 ","unit":"l"}`, Ingredient{Name: "Milk", Quantity: floatPtr(1.5), Unit: "l"}},
		{"non-numeric quantity", `{"name":"Salt","quantity":"a pinch"}`, Ingredient{Name: "Salt"}},
		{"missing quantity", `{"name":"Basil"}`, Ingredient{Name: "Basil"}},
		{"null quantity", `{"name":"Basil","quantity":null}`, Ingredient{Name: "Basil"}},
		{"zero quantity", `{"name":"Ice","quantity":0}`, Ingredient{Name: "Ice", Quantity: floatPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Ingredient
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			if got.Name != tt.want.Name || got.Unit != tt.want.Unit {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			switch {
			case got.Quantity == nil && tt.want.Quantity == nil:
			case got.Quantity == nil || tt.want.Quantity == nil:
				t.Errorf("Quantity = %v, want %v", got.Quantity, tt.want.Quantity)
			case *got.Quantity != *tt.want.Quantity:
				t.Errorf("Quantity = %v, want %v", *got.Quantity, *tt.want.Quantity)
			}
		})
	}
}

func TestMeal_UnmarshalMixedIngredients(t *testing.T) {
	input := `{"title":"Pancakes","ingredients":["Eggs",{"name":"Flour","quantity":2,"unit":"cups"}]}`

	var m Meal
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(m.Ingredients) != 2 {
		t.Fatalf("got %d ingredients, want 2", len(m.Ingredients))
	}
	if m.Ingredients[0].Name != "Eggs" || m.Ingredients[0].Quantity != nil {
		t.Errorf("first ingredient = %+v", m.Ingredients[0])
	}
	if m.Ingredients[1].Name != "Flour" || *m.Ingredients[1].Quantity != 2 {
		t.Errorf("second ingredient = %+v", m.Ingredients[1])
	}
}

func TestCreateParams_Validate(t *testing.T) {
	valid := CreateParams{UserID: "u1", Date: "2026-10-17", MealType: TypeDinner, Title: "Soup"}

	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{"valid", func(p *CreateParams) {}, nil},
		{"bad date", func(p *CreateParams) { p.Date = "17/10/2026" }, ErrInvalidDate},
		{"missing date", func(p *CreateParams) { p.Date = "" }, ErrInvalidDate},
		{"bad meal type", func(p *CreateParams) { p.MealType = "brunch" }, ErrInvalidMealType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	p := valid
	p.Title = "   "
	if err := p.Validate(); err == nil {
		t.Error("Validate() accepted blank title")
	}
	p = valid
	p.UserID = ""
	if err := p.Validate(); err == nil {
		t.Error("Validate() accepted missing user ID")
	}
}

func TestUpdateParams(t *testing.T) {
	if !(UpdateParams{}).IsEmpty() {
		t.Error("zero UpdateParams should be empty")
	}

	bad := "tea"
	if err := (UpdateParams{MealType: &bad}).Validate(); !errors.Is(err, ErrInvalidMealType) {
		t.Errorf("Validate() = %v, want ErrInvalidMealType", err)
	}

	date := "2026-13-01"
	if err := (UpdateParams{Date: &date}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Validate() = %v, want ErrInvalidDate", err)
	}
}
