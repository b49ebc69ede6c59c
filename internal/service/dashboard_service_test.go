package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

type countingPayments struct {
	items []models.Payment
	calls int
}

func (c *countingPayments) All(ctx context.Context) ([]models.Payment, error) {
	c.calls++
	return c.items, nil
}

func dashboardFixture(cache *CacheService) (*DashboardService, *countingPayments) {
	payments := &countingPayments{}
	for i := 1; i <= 12; i++ {
		payments.items = append(payments.items, models.Payment{
			ID:     fmt.Sprintf("p%d", i),
			Amount: 100,
			Method: "Cash",
			Date:   fmt.Sprintf("2024-03-%02d", i),
		})
	}
	payments.items = append(payments.items, models.Payment{ID: "card", Amount: 300, Method: "Credit Card", Date: "2024-01-15"})

	svc := NewDashboardService(DashboardServiceParams{
		Payments: payments,
		Fees: stubFees{items: []models.Fee{
			{Department: "Computer Science", Amount: 2000},
			{Department: "Mathematics", Amount: 500},
		}},
		Students: stubStudents{items: []models.Student{{ID: "s1"}, {ID: "s2"}}},
		Cache:    cache,
		Logger:   zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	return svc, payments
}

func TestDashboardServiceFinanceComposes(t *testing.T) {
	svc, _ := dashboardFixture(nil)

	result, hit, err := svc.Finance(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, TimeRange6Months, result.TimeRange)
	assert.Equal(t, 1500.0, result.TotalRevenue)
	assert.Equal(t, 2500.0, result.TotalFees)
	assert.Equal(t, 1000.0, result.OutstandingBalance)
	assert.Equal(t, result.TotalRevenue, result.TotalCollected)
	assert.Equal(t, 2, result.TotalStudents)

	require.Len(t, result.RecentTransactions, 10)
	assert.Equal(t, "2024-03-12", result.RecentTransactions[0].Date)

	require.Len(t, result.MonthlyRevenue, 6)
	assert.Equal(t, "2023-10", result.MonthlyRevenue[0].Period)
	assert.Equal(t, "Oct 23", result.MonthlyRevenue[0].Label)
	assert.Equal(t, 300.0, result.MonthlyRevenue[3].Revenue)
	assert.Equal(t, 1200.0, result.MonthlyRevenue[5].Revenue)

	require.Len(t, result.PaymentMethods, 2)
	assert.Equal(t, "Cash", result.PaymentMethods[0].Category)
	assert.Equal(t, 80.0, result.PaymentMethods[0].Percentage)
	assert.Equal(t, "Computer Science", result.DepartmentRevenue[0].Category)
}

func TestDashboardServiceFinanceCaches(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc, payments := dashboardFixture(cache)
	ctx := context.Background()

	first, hit, err := svc.Finance(ctx, TimeRange3Months)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, repo.store, "dash:finance:3months")

	second, hit, err := svc.Finance(ctx, TimeRange3Months)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.TotalRevenue, second.TotalRevenue)
	assert.Equal(t, 1, payments.calls)

	cache.InvalidateDashboards(ctx)
	_, hit, err = svc.Finance(ctx, TimeRange3Months)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, payments.calls)
}

func TestDashboardServiceFinanceErrors(t *testing.T) {
	svc, _ := dashboardFixture(nil)
	_, _, err := svc.Finance(context.Background(), "5years")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	svc.fees = stubFees{err: errors.New("disk gone")}
	_, _, err = svc.Finance(context.Background(), TimeRange12Months)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorage))
}
