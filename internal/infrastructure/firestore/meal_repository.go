package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"household/internal/domain/meal"
)

const mealsCollection = "mealPlans"

type MealRepository struct {
	client *fs.Client
	now    func() time.Time
}

func NewMealRepository(client *fs.Client) *MealRepository {
	return &MealRepository{client: client, now: time.Now}
}

func (r *MealRepository) Create(ctx context.Context, params meal.CreateParams) (*meal.Meal, error) {
	now := r.now()
	ingredients := params.Ingredients
	if ingredients == nil {
		ingredients = []meal.Ingredient{}
	}

	ref, _, err := r.client.Collection(mealsCollection).Add(ctx, map[string]interface{}{
		"userId":      params.UserID,
		"date":        params.Date,
		"mealType":    params.MealType,
		"title":       params.Title,
		"recipe":      params.Recipe,
		"ingredients": encodeIngredients(ingredients),
		"createdAt":   isoNow(now),
		"updatedAt":   isoNow(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	return &meal.Meal{
		ID:          ref.ID,
		UserID:      params.UserID,
		Date:        params.Date,
		MealType:    params.MealType,
		Title:       params.Title,
		Recipe:      params.Recipe,
		Ingredients: ingredients,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (r *MealRepository) GetByID(ctx context.Context, id string) (*meal.Meal, error) {
	snap, err := r.client.Collection(mealsCollection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return decodeMeal(snap.Ref.ID, snap.Data()), nil
}

func (r *MealRepository) ListByUserID(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error) {
	q := r.client.Collection(mealsCollection).Where("userId", "==", userID)
	if filter.StartDate != "" {
		q = q.Where("date", ">=", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("date", "<=", filter.EndDate)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	meals := []*meal.Meal{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list meals: %w", err)
		}
		meals = append(meals, decodeMeal(snap.Ref.ID, snap.Data()))
	}

	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].Date < meals[j].Date
	})
	return meals, nil
}

func (r *MealRepository) Update(ctx context.Context, id string, params meal.UpdateParams) error {
	var updates []fs.Update
	if params.Date != nil {
		updates = append(updates, fs.Update{Path: "date", Value: *params.Date})
	}
	if params.MealType != nil {
		updates = append(updates, fs.Update{Path: "mealType", Value: *params.MealType})
	}
	if params.Title != nil {
		updates = append(updates, fs.Update{Path: "title", Value: *params.Title})
	}
	if params.Recipe != nil {
		updates = append(updates, fs.Update{Path: "recipe", Value: *params.Recipe})
	}
	if params.Ingredients != nil {
		updates = append(updates, fs.Update{Path: "ingredients", Value: encodeIngredients(*params.Ingredients)})
	}
	updates = append(updates, fs.Update{Path: "updatedAt", Value: isoNow(r.now())})

	_, err := r.client.Collection(mealsCollection).Doc(id).Update(ctx, updates)
	if isNotFound(err) {
		return meal.ErrMealNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update meal: %w", err)
	}
	return nil
}

func (r *MealRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(mealsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

func decodeMeal(id string, data map[string]interface{}) *meal.Meal {
	d := document(data)
	return &meal.Meal{
		ID:          id,
		UserID:      d.str("userId"),
		Date:        d.str("date"),
		MealType:    d.str("mealType"),
		Title:       d.str("title"),
		Recipe:      d.str("recipe"),
		Ingredients: d.ingredients("ingredients"),
		CreatedAt:   d.timestamp("createdAt"),
		UpdatedAt:   d.timestamp("updatedAt"),
	}
}
