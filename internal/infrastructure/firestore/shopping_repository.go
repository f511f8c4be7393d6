package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"household/internal/domain/shopping"
)

const shoppingCollection = "shoppingList"

type ShoppingRepository struct {
	client *fs.Client
	now    func() time.Time
}

func NewShoppingRepository(client *fs.Client) *ShoppingRepository {
	return &ShoppingRepository{client: client, now: time.Now}
}

func (r *ShoppingRepository) Create(ctx context.Context, params shopping.CreateEntryParams) (*shopping.Entry, error) {
	now := r.now()
	quantity := 0.0
	if params.Quantity != nil {
		quantity = *params.Quantity
	}

	ref, _, err := r.client.Collection(shoppingCollection).Add(ctx, map[string]interface{}{
		"userId":    params.UserID,
		"name":      params.Name,
		"quantity":  quantity,
		"unit":      params.Unit,
		"purchased": false,
		"createdAt": isoNow(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping entry: %w", err)
	}

	return &shopping.Entry{
		ID:        ref.ID,
		UserID:    params.UserID,
		Name:      params.Name,
		Quantity:  quantity,
		Unit:      params.Unit,
		CreatedAt: now.UTC(),
	}, nil
}

func (r *ShoppingRepository) GetByID(ctx context.Context, id string) (*shopping.Entry, error) {
	snap, err := r.client.Collection(shoppingCollection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping entry: %w", err)
	}
	return decodeEntry(snap.Ref.ID, snap.Data()), nil
}

func (r *ShoppingRepository) ListUnpurchased(ctx context.Context, userID string) ([]*shopping.Entry, error) {
	iter := r.client.Collection(shoppingCollection).
		Where("userId", "==", userID).
		Where("purchased", "==", false).
		Documents(ctx)
	defer iter.Stop()

	entries := []*shopping.Entry{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list shopping entries: %w", err)
		}
		entries = append(entries, decodeEntry(snap.Ref.ID, snap.Data()))
	}
	return entries, nil
}

func (r *ShoppingRepository) Update(ctx context.Context, id string, params shopping.UpdateEntryParams) error {
	var updates []fs.Update
	if params.Name != nil {
		updates = append(updates, fs.Update{Path: "name", Value: *params.Name})
	}
	if params.Quantity != nil {
		updates = append(updates, fs.Update{Path: "quantity", Value: *params.Quantity})
	}
	if params.Unit != nil {
		updates = append(updates, fs.Update{Path: "unit", Value: *params.Unit})
	}
	if params.Purchased != nil {
		updates = append(updates, fs.Update{Path: "purchased", Value: *params.Purchased})
	}
	if len(updates) == 0 {
		return nil
	}
	updates = append(updates, fs.Update{Path: "updatedAt", Value: isoNow(r.now())})

	_, err := r.client.Collection(shoppingCollection).Doc(id).Update(ctx, updates)
	if isNotFound(err) {
		return shopping.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update shopping entry: %w", err)
	}
	return nil
}

func (r *ShoppingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(shoppingCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete shopping entry: %w", err)
	}
	return nil
}

func decodeEntry(id string, data map[string]interface{}) *shopping.Entry {
	d := document(data)
	return &shopping.Entry{
		ID:        id,
		UserID:    d.str("userId"),
		Name:      d.str("name"),
		Quantity:  d.float("quantity"),
		Unit:      d.str("unit"),
		Purchased: d.boolean("purchased"),
		CreatedAt: d.timestamp("createdAt"),
	}
}
