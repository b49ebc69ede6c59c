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

// PaymentRepository persists the payment ledger.
type PaymentRepository struct {
	payments *collection[models.Payment]
	now      func() time.Time
}

// NewPaymentRepository constructs a PaymentRepository over store.
func NewPaymentRepository(store kvstore.Store) *PaymentRepository {
	return &PaymentRepository{
		payments: newCollection(store, KeyPayments, func(p models.Payment) string { return p.ID }),
		now:      time.Now,
	}
}

// All returns every payment in persisted order.
func (r *PaymentRepository) All(ctx context.Context) ([]models.Payment, error) {
	return r.payments.all(ctx)
}

// List returns payments matching filter, newest first. Date bounds compare
// the YYYY-MM-DD strings and are inclusive.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	payments, err := r.payments.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Method != "" && p.Method != filter.Method {
			continue
		}
		if filter.StartDate != "" && p.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && p.Date > filter.EndDate {
			continue
		}
		if search != "" && !containsAny(search, p.StudentName, p.TransactionID) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// FindByID fetches a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := r.payments.find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", id, err)
	}
	return payment, nil
}

// Create appends a payment, assigning an id and createdAt.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = r.now().UTC()
	if err := r.payments.insert(ctx, *payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update overwrites an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if err := r.payments.update(ctx, *payment); err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	if err := r.payments.remove(ctx, id); err != nil {
		return fmt.Errorf("delete payment %s: %w", id, err)
	}
	return nil
}

// ReplaceAll overwrites the whole ledger.
func (r *PaymentRepository) ReplaceAll(ctx context.Context, payments []models.Payment) error {
	if err := r.payments.replaceAll(ctx, payments); err != nil {
		return fmt.Errorf("replace payments: %w", err)
	}
	return nil
}
