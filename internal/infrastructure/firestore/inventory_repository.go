package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"household/internal/domain/inventory"
)

const inventoryCollection = "inventory"

type InventoryRepository struct {
	client *fs.Client
	now    func() time.Time
}

func NewInventoryRepository(client *fs.Client) *InventoryRepository {
	return &InventoryRepository{client: client, now: time.Now}
}

func (r *InventoryRepository) Create(ctx context.Context, params inventory.CreateParams) (*inventory.Item, error) {
	now := r.now()
	quantity := 0.0
	if params.Quantity != nil {
		quantity = *params.Quantity
	}

	ref, _, err := r.client.Collection(inventoryCollection).Add(ctx, map[string]interface{}{
		"userId":     params.UserID,
		"name":       params.Name,
		"quantity":   quantity,
		"unit":       params.Unit,
		"category":   params.Category,
		"expiryDate": stringOrNil(params.ExpiryDate),
		"createdAt":  isoNow(now),
		"updatedAt":  isoNow(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	return &inventory.Item{
		ID:         ref.ID,
		UserID:     params.UserID,
		Name:       params.Name,
		Quantity:   quantity,
		Unit:       params.Unit,
		Category:   params.Category,
		ExpiryDate: params.ExpiryDate,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*inventory.Item, error) {
	snap, err := r.client.Collection(inventoryCollection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return decodeItem(snap.Ref.ID, snap.Data()), nil
}

func (r *InventoryRepository) ListByUserID(ctx context.Context, userID string) ([]*inventory.Item, error) {
	iter := r.client.Collection(inventoryCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	items := []*inventory.Item{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list inventory: %w", err)
		}
		items = append(items, decodeItem(snap.Ref.ID, snap.Data()))
	}
	return items, nil
}

func (r *InventoryRepository) Update(ctx context.Context, id string, params inventory.UpdateParams) error {
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
	if params.Category != nil {
		updates = append(updates, fs.Update{Path: "category", Value: *params.Category})
	}
	if params.ExpiryDate != nil {
		var expiry interface{}
		if *params.ExpiryDate != "" {
			expiry = *params.ExpiryDate
		}
		updates = append(updates, fs.Update{Path: "expiryDate", Value: expiry})
	}
	updates = append(updates, fs.Update{Path: "updatedAt", Value: isoNow(r.now())})

	_, err := r.client.Collection(inventoryCollection).Doc(id).Update(ctx, updates)
	if isNotFound(err) {
		return inventory.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(inventoryCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

func decodeItem(id string, data map[string]interface{}) *inventory.Item {
	d := document(data)
	return &inventory.Item{
		ID:         id,
		UserID:     d.str("userId"),
		Name:       d.str("name"),
		Quantity:   d.float("quantity"),
		Unit:       d.str("unit"),
		Category:   d.str("category"),
		ExpiryDate: d.strPtr("expiryDate"),
		CreatedAt:  d.timestamp("createdAt"),
		UpdatedAt:  d.timestamp("updatedAt"),
	}
}
