package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

// FeeRepository persists fee definitions.
type FeeRepository struct {
	fees *collection[models.Fee]
	now  func() time.Time
}

// NewFeeRepository constructs a FeeRepository over store.
func NewFeeRepository(store kvstore.Store) *FeeRepository {
	return &FeeRepository{
		fees: newCollection(store, KeyFees, func(f models.Fee) string { return f.ID }),
		now:  time.Now,
	}
}

// All returns every fee.
func (r *FeeRepository) All(ctx context.Context) ([]models.Fee, error) {
	return r.fees.all(ctx)
}

// List returns fees matching filter, ordered by filter.SortBy. Unknown sort
// columns fall back to name ascending.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, error) {
	fees, err := r.fees.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Fee, 0, len(fees))
	for _, f := range fees {
		if filter.Department != "" && f.Department != filter.Department {
			continue
		}
		if filter.Type != "" && f.Type != filter.Type {
			continue
		}
		if search != "" && !containsAny(search, f.Name, f.Description) {
			continue
		}
		matched = append(matched, f)
	}

	less := feeSorters[filter.SortBy]
	if less == nil {
		less = feeSorters["name"]
	}
	desc := strings.EqualFold(filter.SortOrder, "desc")
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})
	return matched, nil
}

var feeSorters = map[string]func(a, b models.Fee) bool{
	"name":       func(a, b models.Fee) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"amount":     func(a, b models.Fee) bool { return a.Amount < b.Amount },
	"type":       func(a, b models.Fee) bool { return a.Type < b.Type },
	"department": func(a, b models.Fee) bool { return a.Department < b.Department },
	"dueDate":    func(a, b models.Fee) bool { return a.DueDate < b.DueDate },
}

// FindByID fetches a fee by id.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	fee, err := r.fees.find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get fee %s: %w", id, err)
	}
	return fee, nil
}

// Create stores a new fee.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	now := r.now().UTC()
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	fee.CreatedAt = now
	fee.UpdatedAt = now
	if err := r.fees.insert(ctx, *fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// Update overwrites an existing fee, keeping createdAt.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	err := r.fees.mutate(ctx, func(items []models.Fee) ([]models.Fee, error) {
		for i := range items {
			if items[i].ID != fee.ID {
				continue
			}
			fee.CreatedAt = items[i].CreatedAt
			fee.UpdatedAt = r.now().UTC()
			items[i] = *fee
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("update fee %s: %w", fee.ID, err)
	}
	return nil
}

// Delete removes a fee.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	if err := r.fees.remove(ctx, id); err != nil {
		return fmt.Errorf("delete fee %s: %w", id, err)
	}
	return nil
}

// ReplaceAll overwrites the whole collection.
func (r *FeeRepository) ReplaceAll(ctx context.Context, fees []models.Fee) error {
	if err := r.fees.replaceAll(ctx, fees); err != nil {
		return fmt.Errorf("replace fees: %w", err)
	}
	return nil
}
