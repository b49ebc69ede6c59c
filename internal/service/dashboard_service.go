package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/dto"
	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

// Dashboard time ranges.
const (
	TimeRange3Months  = "3months"
	TimeRange6Months  = "6months"
	TimeRange12Months = "12months"
)

var timeRangeMonths = map[string]int{
	TimeRange3Months:  3,
	TimeRange6Months:  6,
	TimeRange12Months: 12,
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	RecentTransactions int
}

// DashboardService composes the financial dashboard.
type DashboardService struct {
	payments paymentSource
	fees     feeSource
	students studentLister
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Payments paymentSource
	Fees     feeSource
	Students studentLister
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RecentTransactions <= 0 {
		cfg.RecentTransactions = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		payments: params.Payments,
		fees:     params.Fees,
		students: params.Students,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Finance returns the financial dashboard for timeRange and whether it came
// from cache. An empty range means 6 months.
func (s *DashboardService) Finance(ctx context.Context, timeRange string) (*dto.FinanceDashboardResponse, bool, error) {
	if timeRange == "" {
		timeRange = TimeRange6Months
	}
	months, ok := timeRangeMonths[timeRange]
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported time range %q", timeRange))
	}

	cacheKey := fmt.Sprintf("dash:finance:%s", timeRange)
	if summary, hit, err := s.tryCache(ctx, cacheKey); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
	} else if hit {
		return summary, true, nil
	}

	summary, err := s.composeFinance(ctx, timeRange, months)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.FinanceDashboardResponse, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached dto.FinanceDashboardResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return &cached, true, nil
	}
	return nil, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) composeFinance(ctx context.Context, timeRange string, months int) (*dto.FinanceDashboardResponse, error) {
	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load payments")
	}
	fees, err := s.fees.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load fees")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load students")
	}

	now := s.now().UTC()
	totalRevenue := SumPayments(payments)
	totalFees := SumFees(fees)

	return &dto.FinanceDashboardResponse{
		TimeRange:          timeRange,
		TotalRevenue:       totalRevenue,
		TotalFees:          totalFees,
		OutstandingBalance: roundMoney(totalFees - totalRevenue),
		TotalCollected:     totalRevenue,
		TotalStudents:      len(students),
		RecentTransactions: recentPayments(payments, s.cfg.RecentTransactions),
		MonthlyRevenue:     MonthlyRevenueWindow(payments, now, months),
		PaymentMethods:     WithPercentages(BreakdownPaymentsByMethod(payments)),
		DepartmentRevenue:  WithPercentages(BreakdownFeesByDepartment(fees)),
		GeneratedAt:        now.Format(time.RFC3339),
	}, nil
}

// recentPayments returns the n newest payments by date.
func recentPayments(payments []models.Payment, n int) []models.Payment {
	sorted := make([]models.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	return TopN(sorted, n)
}
